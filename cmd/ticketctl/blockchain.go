package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/nspcc-dev/ticket-contract/rpc/ticket"
	"golang.org/x/term"
)

// wrapper over Neo RPC client providing services needed for ticket commands.
type remoteBlockchain struct {
	rpc     *rpcclient.Client
	actor   *actor.Actor
	account *wallet.Account
}

// newRemoteBlockchain dials Neo RPC server and opens the signing account from
// the wallet.
func newRemoteBlockchain(ctx context.Context, cfg *Config) (*remoteBlockchain, error) {
	acc, err := openAccount(cfg.Wallet)
	if err != nil {
		return nil, err
	}

	c, err := rpcclient.New(ctx, cfg.RPC.Endpoint, rpcclient.Options{
		DialTimeout:    cfg.RPC.DialTimeout,
		RequestTimeout: cfg.RPC.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init RPC client: %w", err)
	}

	act, err := actor.NewSimple(c, acc)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init actor: %w", err)
	}

	return &remoteBlockchain{
		rpc:     c,
		actor:   act,
		account: acc,
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

func (x *remoteBlockchain) sender() util.Uint160 {
	return x.account.ScriptHash()
}

// ticket returns ticket contract client signing with the local account.
func (x *remoteBlockchain) ticket(h util.Uint160) *ticket.Contract {
	return ticket.New(x.actor, h)
}

// await waits for the transaction and returns an error if it failed.
func (x *remoteBlockchain) await(ctx context.Context, h util.Uint256, vub uint32, err error) error {
	if err != nil {
		return ticket.MapError(err)
	}

	res, err := x.actor.WaitAny(ctx, vub, h)
	if err != nil {
		return fmt.Errorf("wait for transaction %s: %w", h.StringLE(), err)
	}

	if res.VMState.HasFlag(vmstate.Fault) {
		return ticket.FaultError(res.FaultException)
	}

	return nil
}

func openAccount(cfg WalletConfig) (*wallet.Account, error) {
	w, err := wallet.NewWalletFromFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}

	var acc *wallet.Account
	if cfg.Address == "" {
		acc = w.GetAccount(w.GetChangeAddress())
	} else {
		h, err := parseAccount(cfg.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid account address: %w", err)
		}

		acc = w.GetAccount(h)
	}

	if acc == nil {
		return nil, errors.New("account not found in the wallet")
	}

	password := cfg.Password
	if password == "" {
		password, err = readPassword()
		if err != nil {
			return nil, err
		}
	}

	err = acc.Decrypt(password, w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account: %w", err)
	}

	return acc, nil
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal available for password prompt, set wallet password in config")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	return string(b), nil
}

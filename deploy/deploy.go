package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/nspcc-dev/ticket-contract/contracts"
	"github.com/nspcc-dev/ticket-contract/contracts/ticket/ticketconst"
	"github.com/nspcc-dev/ticket-contract/rpc/ticket"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the ticket contract deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to the
	// blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by its
	// address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// Prm groups all parameters of the ticket contract deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy the contract to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// It pays for the deployment and determines the contract address.
	LocalAccount *wallet.Account

	// Compiled ticket contract.
	Contract contracts.Contract

	// Contract owner. Zero value means the local account.
	Owner util.Uint160

	// Price of a single ticket in GAS fractions.
	Price int64

	// Seat catalogue, empty for a contract without seats.
	Seats []string
}

var errMissingContract = errors.New("unknown contract")

// Deploy makes the ticket contract available on the chain and returns its
// address.
//
// If the contract is missing, it is deployed with the owner, the price and the
// seats from Prm. If the contract with the same address exists, but its NEF
// differs from the given one, the contract is updated keeping its storage.
// Deploy waits for transaction acceptance, the wait is aborted by the context.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	if err := prm.validate(); err != nil {
		return util.Uint160{}, fmt.Errorf("invalid deployment parameters: %w", err)
	}

	sender := prm.LocalAccount.ScriptHash()
	addr := prm.Contract.Hash(sender)

	l := prm.Logger.With(zap.Stringer("address", addr))

	onChain, err := prm.Blockchain.GetContractStateByHash(addr)
	if err != nil {
		if !isMissingContract(err) {
			return util.Uint160{}, fmt.Errorf("get contract state: %w", err)
		}

		onChain = nil
	}

	if onChain != nil && onChain.NEF.Checksum == prm.Contract.NEF.Checksum {
		l.Info("ticket contract is already deployed and up to date")
		return addr, nil
	}

	act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	if onChain != nil {
		l.Info("updating ticket contract...",
			zap.Uint32("on-chain checksum", onChain.NEF.Checksum),
			zap.Uint32("new checksum", prm.Contract.NEF.Checksum))

		err = update(ctx, act, addr, prm.Contract)
		if err != nil {
			return util.Uint160{}, fmt.Errorf("update contract: %w", err)
		}

		l.Info("ticket contract successfully updated")
		return addr, nil
	}

	l.Info("deploying ticket contract...",
		zap.Stringer("owner", prm.owner()),
		zap.Int64("price", prm.Price),
		zap.Int("seats", len(prm.Seats)))

	h, vub, err := management.New(act).Deploy(&prm.Contract.NEF, &prm.Contract.Manifest, prm.deployData())
	if err != nil {
		return util.Uint160{}, fmt.Errorf("send deployment transaction: %w", err)
	}

	l.Debug("deployment transaction sent, waiting for acceptance...",
		zap.Stringer("tx", h), zap.Uint32("vub", vub))

	err = await(ctx, act, h, vub)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("deploy contract: %w", err)
	}

	l.Info("ticket contract successfully deployed")

	return addr, nil
}

func update(ctx context.Context, act *actor.Actor, addr util.Uint160, c contracts.Contract) error {
	bNEF, err := c.NEF.Bytes()
	if err != nil {
		return fmt.Errorf("encode NEF: %w", err)
	}

	jManifest, err := json.Marshal(c.Manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	h, vub, err := ticket.New(act, addr).Update(bNEF, jManifest, nil)
	if err != nil {
		return fmt.Errorf("send update transaction: %w", ticket.MapError(err))
	}

	return await(ctx, act, h, vub)
}

// await waits for the transaction and checks its execution result.
func await(ctx context.Context, act *actor.Actor, h util.Uint256, vub uint32) error {
	res, err := act.WaitAny(ctx, vub, h)
	if err != nil {
		return fmt.Errorf("wait for transaction %s: %w", h.StringLE(), err)
	}

	if res.VMState != vmstate.Halt {
		return fmt.Errorf("transaction %s failed: %w", h.StringLE(), ticket.FaultError(res.FaultException))
	}

	return nil
}

func (prm Prm) validate() error {
	switch {
	case prm.Logger == nil:
		return errors.New("missing logger")
	case prm.Blockchain == nil:
		return errors.New("missing blockchain")
	case prm.LocalAccount == nil:
		return errors.New("missing local account")
	case prm.Price < 0:
		return errors.New("negative ticket price")
	}

	seen := make(map[string]struct{}, len(prm.Seats))
	for _, s := range prm.Seats {
		if s == "" {
			return errors.New("empty seat identifier")
		}

		if len(s) > ticketconst.MaxSeatLength {
			return fmt.Errorf("seat identifier %s is longer than %d bytes", s, ticketconst.MaxSeatLength)
		}

		if _, ok := seen[s]; ok {
			return fmt.Errorf("duplicate seat %s", s)
		}

		seen[s] = struct{}{}
	}

	return nil
}

func (prm Prm) owner() util.Uint160 {
	if prm.Owner.Equals(util.Uint160{}) {
		return prm.LocalAccount.ScriptHash()
	}

	return prm.Owner
}

// deployData returns _deploy argument of the ticket contract.
func (prm Prm) deployData() []any {
	seats := make([]any, len(prm.Seats))
	for i := range prm.Seats {
		seats[i] = prm.Seats[i]
	}

	return []any{prm.owner(), big.NewInt(prm.Price), seats}
}

func isMissingContract(err error) bool {
	return errors.Is(err, errMissingContract) || strings.Contains(strings.ToLower(err.Error()), errMissingContract.Error())
}

package main

import (
	"context"
	"crypto/elliptic"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/ticket-contract/contracts"
	"github.com/nspcc-dev/ticket-contract/deploy"
	"github.com/nspcc-dev/ticket-contract/rpc/ticket"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

const maxListedVerifiers = 100

type action func(ctx context.Context, env *environment, b *remoteBlockchain, c *cli.Context) error

// withBlockchain prepares the environment and the connection for the command.
func withBlockchain(a action) cli.ActionFunc {
	return func(c *cli.Context) error {
		env, err := newEnvironment(c)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer func() { _ = env.log.Sync() }()

		ctx, cancel := context.WithTimeout(context.Background(), env.cfg.RPC.WaitTimeout)
		defer cancel()

		b, err := newRemoteBlockchain(ctx, env.cfg)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer b.close()

		err = a(ctx, env, b, c)
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		return nil
	}
}

func deployCommand() cli.Command {
	return cli.Command{
		Name:  "deploy",
		Usage: "Deploy ticket contract or update the deployed one",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "contracts", Value: "contracts", Usage: "Root directory of compiled contracts"},
			cli.StringFlag{Name: "owner", Usage: "Contract owner (local account if omitted)"},
			cli.Int64Flag{Name: "price", Usage: "Price of a single ticket in GAS fractions"},
			cli.StringSliceFlag{Name: "seat", Usage: "Seat identifier, repeat for each seat"},
		},
		Action: withBlockchain(func(ctx context.Context, env *environment, b *remoteBlockchain, c *cli.Context) error {
			ctr, err := contracts.GetTicket(os.DirFS(c.String("contracts")))
			if err != nil {
				return err
			}

			var owner util.Uint160
			if s := c.String("owner"); s != "" {
				owner, err = parseAccount(s)
				if err != nil {
					return fmt.Errorf("invalid owner: %w", err)
				}
			}

			addr, err := deploy.Deploy(ctx, deploy.Prm{
				Logger:       env.log,
				Blockchain:   b.rpc,
				LocalAccount: b.account,
				Contract:     ctr,
				Owner:        owner,
				Price:        c.Int64("price"),
				Seats:        c.StringSlice("seat"),
			})
			if err != nil {
				return err
			}

			fmt.Printf("Contract: %s (0x%s)\n", address.Uint160ToString(addr), addr.StringLE())
			return nil
		}),
	}
}

func purchaseCommand() cli.Command {
	return cli.Command{
		Name:  "purchase",
		Usage: "Buy tickets paying GAS",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "to", Usage: "Ticket recipient (local account if omitted)"},
			cli.Int64Flag{Name: "amount", Value: 1, Usage: "Number of tickets"},
			cli.StringSliceFlag{Name: "seat", Usage: "Seat identifier, repeat for each ticket"},
			cli.StringFlag{Name: "signature", Usage: "Base58 encoded holder signature"},
			cli.StringFlag{Name: "sign", Usage: "Message to sign with the local account and use as holder signature"},
		},
		Action: withBlockchain(func(ctx context.Context, env *environment, b *remoteBlockchain, c *cli.Context) error {
			h, err := env.cfg.contractHash()
			if err != nil {
				return err
			}

			req := ticket.PurchaseRequest{
				Amount: c.Int64("amount"),
				Seats:  c.StringSlice("seat"),
			}

			if s := c.String("to"); s != "" {
				req.To, err = parseAccount(s)
				if err != nil {
					return fmt.Errorf("invalid recipient: %w", err)
				}
			}

			req.Signature, err = purchaseSignature(b, c.String("signature"), c.String("sign"))
			if err != nil {
				return err
			}

			txHash, vub, err := b.ticket(h).Purchase(b.sender(), req)
			env.log.Debug("purchase transaction sent", zap.Stringer("tx", txHash), zap.Error(err))

			err = b.await(ctx, txHash, vub, err)
			if err != nil {
				return fmt.Errorf("purchase tickets: %w", err)
			}

			log, err := b.rpc.GetApplicationLog(txHash, nil)
			if err != nil {
				return fmt.Errorf("get application log: %w", err)
			}

			p, err := ticket.CheckPurchase(log)
			if err != nil {
				return err
			}

			env.log.Info("tickets were purchased",
				zap.Stringer("tx", txHash),
				zap.String("holder", address.Uint160ToString(p.To)),
				zap.Stringer("amount", p.Amount),
				zap.Strings("seats", p.Seats))

			return nil
		}),
	}
}

// purchaseSignature returns either decoded signature or the signature of the
// message made by the local account.
func purchaseSignature(b *remoteBlockchain, encoded, message string) ([]byte, error) {
	switch {
	case encoded != "" && message != "":
		return nil, errors.New("signature and message to sign are mutually exclusive")
	case encoded != "":
		sig, err := base58.Decode(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode signature: %w", err)
		}
		return sig, nil
	case message != "":
		return b.account.PrivateKey().Sign([]byte(message)), nil
	default:
		return nil, nil
	}
}

func addVerifierCommand() cli.Command {
	return cli.Command{
		Name:      "add-verifier",
		Usage:     "Allow the account to burn tickets",
		ArgsUsage: "<address>",
		Action: withBlockchain(func(ctx context.Context, env *environment, b *remoteBlockchain, c *cli.Context) error {
			h, err := env.cfg.contractHash()
			if err != nil {
				return err
			}

			if c.NArg() != 1 {
				return errors.New("verifier address required")
			}

			verifier, err := parseAccount(c.Args().First())
			if err != nil {
				return fmt.Errorf("invalid verifier: %w", err)
			}

			txHash, vub, err := b.ticket(h).AddVerifier(verifier)
			err = b.await(ctx, txHash, vub, err)
			if err != nil {
				return fmt.Errorf("add verifier: %w", err)
			}

			env.log.Info("verifier added", zap.String("verifier", address.Uint160ToString(verifier)))
			return nil
		}),
	}
}

func clearCommand() cli.Command {
	return cli.Command{
		Name:  "clear",
		Usage: "Withdraw all contract GAS to the owner",
		Action: withBlockchain(func(ctx context.Context, env *environment, b *remoteBlockchain, _ *cli.Context) error {
			h, err := env.cfg.contractHash()
			if err != nil {
				return err
			}

			txHash, vub, err := b.ticket(h).Clear()
			err = b.await(ctx, txHash, vub, err)
			if err != nil {
				return fmt.Errorf("clear contract balance: %w", err)
			}

			log, err := b.rpc.GetApplicationLog(txHash, nil)
			if err != nil {
				return fmt.Errorf("get application log: %w", err)
			}

			events, err := ticket.ClearEventsFromApplicationLog(log)
			if err != nil {
				return err
			}

			for _, e := range events {
				env.log.Info("contract balance cleared",
					zap.String("owner", address.Uint160ToString(e.Owner)),
					zap.String("amount", fixedn.ToString(e.Amount, 8)))
			}

			return nil
		}),
	}
}

func burnCommand() cli.Command {
	return cli.Command{
		Name:      "burn",
		Usage:     "Burn tickets of the holder, local account must be a verifier",
		ArgsUsage: "<holder>",
		Flags: []cli.Flag{
			cli.Int64Flag{Name: "amount", Value: 1, Usage: "Number of tickets"},
		},
		Action: withBlockchain(func(ctx context.Context, env *environment, b *remoteBlockchain, c *cli.Context) error {
			h, err := env.cfg.contractHash()
			if err != nil {
				return err
			}

			if c.NArg() != 1 {
				return errors.New("holder address required")
			}

			holder, err := parseAccount(c.Args().First())
			if err != nil {
				return fmt.Errorf("invalid holder: %w", err)
			}

			txHash, vub, err := b.ticket(h).Burn(b.sender(), holder, big.NewInt(c.Int64("amount")))
			err = b.await(ctx, txHash, vub, err)
			if err != nil {
				return fmt.Errorf("burn tickets: %w", err)
			}

			env.log.Info("tickets burnt",
				zap.String("holder", address.Uint160ToString(holder)),
				zap.Int64("amount", c.Int64("amount")))
			return nil
		}),
	}
}

func infoCommand() cli.Command {
	return cli.Command{
		Name:  "info",
		Usage: "Show contract state",
		Action: withBlockchain(func(_ context.Context, env *environment, b *remoteBlockchain, _ *cli.Context) error {
			h, err := env.cfg.contractHash()
			if err != nil {
				return err
			}

			r := ticket.NewReader(b.actor, h)

			info, err := collectInfo(r)
			if err != nil {
				return err
			}

			info.print()
			return nil
		}),
	}
}

func proofCommand() cli.Command {
	return cli.Command{
		Name:      "proof",
		Usage:     "Show the signature bound to the holder or verify it",
		ArgsUsage: "<holder>",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "message", Usage: "Message the signature is expected to sign"},
			cli.StringFlag{Name: "key", Usage: "Hex encoded compressed public key of the holder"},
		},
		Action: withBlockchain(func(_ context.Context, env *environment, b *remoteBlockchain, c *cli.Context) error {
			h, err := env.cfg.contractHash()
			if err != nil {
				return err
			}

			if c.NArg() != 1 {
				return errors.New("holder address required")
			}

			holder, err := parseAccount(c.Args().First())
			if err != nil {
				return fmt.Errorf("invalid holder: %w", err)
			}

			r := ticket.NewReader(b.actor, h)

			if c.String("message") == "" {
				sig, err := r.ProofOf(holder)
				if err != nil {
					return ticket.MapError(err)
				}

				if sig == nil {
					fmt.Println("No signature bound")
					return nil
				}

				fmt.Println(base58.Encode(sig))
				return nil
			}

			bKey, err := hex.DecodeString(c.String("key"))
			if err != nil {
				return fmt.Errorf("decode public key: %w", err)
			}

			key, err := keys.NewPublicKeyFromBytes(bKey, elliptic.P256())
			if err != nil {
				return fmt.Errorf("invalid public key: %w", err)
			}

			ok, err := r.VerifyProof(holder, key, []byte(c.String("message")))
			if err != nil {
				return ticket.MapError(err)
			}

			fmt.Println("Valid:", ok)
			return nil
		}),
	}
}

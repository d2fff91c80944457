package main

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"text/tabwriter"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/ticket-contract/rpc/ticket"
)

// stateReader is a subset of ticket.ContractReader used by info command.
type stateReader interface {
	Symbol() (string, error)
	TotalSupply() (*big.Int, error)
	Owner() (util.Uint160, error)
	Price() (*big.Int, error)
	ContractBalance() (*big.Int, error)
	HasSeats() (bool, error)
	Seats() ([]string, error)
	IsAvailable(seat string) (bool, error)
	ListVerifiers(max int) ([]util.Uint160, error)
	Version() (*big.Int, error)
}

type seatInfo struct {
	ID        string
	Available bool
}

type contractInfo struct {
	Symbol    string
	Owner     util.Uint160
	Price     *big.Int
	Supply    *big.Int
	Balance   *big.Int
	Version   *big.Int
	Seats     []seatInfo
	HasSeats  bool
	Verifiers []util.Uint160
}

func collectInfo(r stateReader) (*contractInfo, error) {
	var (
		info contractInfo
		err  error
	)

	if info.Symbol, err = r.Symbol(); err != nil {
		return nil, fmt.Errorf("get symbol: %w", ticket.MapError(err))
	}
	if info.Owner, err = r.Owner(); err != nil {
		return nil, fmt.Errorf("get owner: %w", ticket.MapError(err))
	}
	if info.Price, err = r.Price(); err != nil {
		return nil, fmt.Errorf("get price: %w", ticket.MapError(err))
	}
	if info.Supply, err = r.TotalSupply(); err != nil {
		return nil, fmt.Errorf("get total supply: %w", ticket.MapError(err))
	}
	if info.Balance, err = r.ContractBalance(); err != nil {
		return nil, fmt.Errorf("get contract balance: %w", ticket.MapError(err))
	}
	if info.Version, err = r.Version(); err != nil {
		return nil, fmt.Errorf("get version: %w", ticket.MapError(err))
	}
	if info.HasSeats, err = r.HasSeats(); err != nil {
		return nil, fmt.Errorf("get seat mode: %w", ticket.MapError(err))
	}
	if info.Verifiers, err = r.ListVerifiers(maxListedVerifiers); err != nil {
		return nil, fmt.Errorf("list verifiers: %w", ticket.MapError(err))
	}

	if !info.HasSeats {
		return &info, nil
	}

	seats, err := r.Seats()
	if err != nil {
		return nil, fmt.Errorf("get seats: %w", ticket.MapError(err))
	}

	info.Seats = make([]seatInfo, len(seats))
	for i := range seats {
		info.Seats[i].ID = seats[i]
		info.Seats[i].Available, err = r.IsAvailable(seats[i])
		if err != nil {
			return nil, fmt.Errorf("check seat %s: %w", seats[i], ticket.MapError(err))
		}
	}

	return &info, nil
}

func (x *contractInfo) print() {
	x.write(os.Stdout)
}

func (x *contractInfo) write(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "Symbol:\t%s\n", x.Symbol)
	fmt.Fprintf(w, "Owner:\t%s\n", address.Uint160ToString(x.Owner))
	fmt.Fprintf(w, "Price:\t%s GAS\n", fixedn.ToString(x.Price, 8))
	fmt.Fprintf(w, "Sold:\t%s\n", x.Supply)
	fmt.Fprintf(w, "Balance:\t%s GAS\n", fixedn.ToString(x.Balance, 8))
	fmt.Fprintf(w, "Version:\t%s\n", x.Version)

	if x.HasSeats {
		free := 0
		for i := range x.Seats {
			if x.Seats[i].Available {
				free++
			}
		}
		fmt.Fprintf(w, "Seats:\t%d (%d free)\n", len(x.Seats), free)
		for i := range x.Seats {
			state := "taken"
			if x.Seats[i].Available {
				state = "free"
			}
			fmt.Fprintf(w, "  %s\t%s\n", x.Seats[i].ID, state)
		}
	} else {
		fmt.Fprintln(w, "Seats:\tnot used")
	}

	fmt.Fprintf(w, "Verifiers:\t%d\n", len(x.Verifiers))
	for i := range x.Verifiers {
		fmt.Fprintf(w, "  %s\t\n", address.Uint160ToString(x.Verifiers[i]))
	}

	_ = w.Flush()
}

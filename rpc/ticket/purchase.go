package ticket

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
)

// PurchaseRequest describes tickets to buy.
type PurchaseRequest struct {
	// To is the ticket recipient. Zero value means the payer.
	To util.Uint160
	// Amount is the number of tickets.
	Amount int64
	// Signature is bound to the recipient for later verification.
	Signature []byte
	// Seats lists a seat for each ticket, it must be empty for contracts
	// without seats.
	Seats []string
}

// Data returns the purchase request as a data argument of GAS transfer.
func (r PurchaseRequest) Data() []any {
	var to any
	if !r.To.Equals(util.Uint160{}) {
		to = r.To
	}

	seats := make([]any, len(r.Seats))
	for i := range r.Seats {
		seats[i] = r.Seats[i]
	}

	sig := r.Signature
	if sig == nil {
		sig = []byte{}
	}

	return []any{to, big.NewInt(r.Amount), sig, seats}
}

// Cost returns the amount of GAS to pay for the request.
func (c *ContractReader) Cost(r PurchaseRequest) (*big.Int, error) {
	if r.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	price, err := c.Price()
	if err != nil {
		return nil, fmt.Errorf("get ticket price: %w", err)
	}

	return new(big.Int).Mul(price, big.NewInt(r.Amount)), nil
}

// Purchase creates a transaction transferring the exact ticket cost in GAS
// from the payer to the contract. This transaction is signed and immediately
// sent to the network. The values returned are its hash, ValidUntilBlock value
// and error if any.
func (c *Contract) Purchase(from util.Uint160, r PurchaseRequest) (util.Uint256, uint32, error) {
	cost, err := c.Cost(r)
	if err != nil {
		return util.Uint256{}, 0, err
	}

	h, vub, err := gas.New(c.actor).Transfer(from, c.hash, cost, r.Data())
	return h, vub, MapError(err)
}

// PurchaseTransaction is similar to Purchase, but the transaction is signed
// and returned to the caller instead of being sent to the network.
func (c *Contract) PurchaseTransaction(from util.Uint160, r PurchaseRequest) (*transaction.Transaction, error) {
	cost, err := c.Cost(r)
	if err != nil {
		return nil, err
	}

	tx, err := gas.New(c.actor).TransferTransaction(from, c.hash, cost, r.Data())
	return tx, MapError(err)
}

// PurchaseUnsigned is similar to Purchase, but the transaction is neither
// signed nor sent.
func (c *Contract) PurchaseUnsigned(from util.Uint160, r PurchaseRequest) (*transaction.Transaction, error) {
	cost, err := c.Cost(r)
	if err != nil {
		return nil, err
	}

	tx, err := gas.New(c.actor).TransferUnsigned(from, c.hash, cost, r.Data())
	return tx, MapError(err)
}

// ProofOf returns the signature bound to the holder. It returns nil without
// an error if the holder has never bought a ticket.
func (c *ContractReader) ProofOf(holder util.Uint160) ([]byte, error) {
	item, err := c.Proof(holder)
	if err != nil {
		return nil, err
	}

	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}

	sig, err := item.TryBytes()
	if err != nil {
		return nil, fmt.Errorf("invalid proof: %w", err)
	}

	return sig, nil
}

// SeatsAvailable checks that all the seats are available.
func (c *ContractReader) SeatsAvailable(seats []string) (bool, error) {
	list := make([]any, len(seats))
	for i := range seats {
		list[i] = seats[i]
	}

	return c.IsSeatAvailable(list)
}

// ListVerifiers returns up to max verifier addresses using in-VM iterator
// expansion.
func (c *ContractReader) ListVerifiers(max int) ([]util.Uint160, error) {
	items, err := c.VerifiersExpanded(max)
	if err != nil {
		return nil, err
	}

	res := make([]util.Uint160, 0, len(items))
	for i := range items {
		b, err := items[i].TryBytes()
		if err != nil {
			return nil, fmt.Errorf("verifier %d: %w", i, err)
		}

		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return nil, fmt.Errorf("verifier %d: %w", i, err)
		}

		res = append(res, u)
	}

	return res, nil
}

var errNilLog = errors.New("nil application log")

// CheckPurchase returns purchase details from the application log of a
// successful purchase transaction or the contract error of a failed one.
func CheckPurchase(log *result.ApplicationLog) (*PurchaseEvent, error) {
	if log == nil {
		return nil, errNilLog
	}

	for _, ex := range log.Executions {
		if ex.VMState.HasFlag(vmstate.Fault) {
			return nil, FaultError(ex.FaultException)
		}
	}

	events, err := PurchaseEventsFromApplicationLog(log)
	if err != nil {
		return nil, err
	}

	if len(events) == 0 {
		return nil, errors.New("no purchase event")
	}

	return events[len(events)-1], nil
}

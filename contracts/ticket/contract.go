package ticket

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/ticket-contract/common"
	"github.com/nspcc-dev/ticket-contract/contracts/ticket/ticketconst"
)

const (
	ownerKey     = "owner"
	priceKey     = "price"
	hasSeatsKey  = "hasSeats"
	catalogueKey = "catalogue"

	accPrefix      = 'a'
	seatPrefix     = 's'
	verifierPrefix = 'v'
	proofPrefix    = 'k'
)

// _deploy sets the contract owner, the ticket price and the seat catalogue.
// Empty catalogue makes a contract without seats.
// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()

	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		owner interop.Hash160
		price int
		seats []string
	})

	if len(args.owner) != interop.Hash160Len {
		panic("incorrect length of owner address")
	}

	if args.price < 0 {
		panic("negative ticket price")
	}

	storage.Put(ctx, ownerKey, args.owner)
	storage.Put(ctx, priceKey, args.price)

	hasSeats := len(args.seats) > 0
	storage.Put(ctx, hasSeatsKey, hasSeats)
	if hasSeats {
		registerSeats(ctx, args.seats)
	}

	runtime.Log("ticket contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the contract owner.
func Update(script []byte, manifest []byte, data any) {
	ctx := storage.GetReadOnlyContext()
	checkOwner(ctx)

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("ticket contract updated")
}

// Symbol is a NEP-17 standard method that returns TICKET token symbol.
func Symbol() string {
	return token.Symbol
}

// Decimals is a NEP-17 standard method that returns precision of ticket
// balances. Tickets are indivisible.
func Decimals() int {
	return token.Decimals
}

// TotalSupply is a NEP-17 standard method that returns total amount of
// tickets held by all accounts.
func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	return token.getSupply(ctx)
}

// BalanceOf is a NEP-17 standard method that returns amount of tickets held
// by the specified account.
func BalanceOf(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return token.balanceOf(ctx, account)
}

// Transfer is a NEP-17 standard method that transfers tickets from one
// account to another.
func Transfer(from, to interop.Hash160, amount int, data any) bool {
	ctx := storage.GetContext()
	return token.transfer(ctx, from, to, amount, data)
}

// OnNEP17Payment purchases tickets. Only GAS is accepted, the amount must be
// exactly the price of the requested tickets.
//
// data is an array of four items: ticket recipient (empty means the payer),
// number of tickets, holder signature and the list of seats. The seat list
// must contain a seat for each ticket on a contract with seats and must be
// empty otherwise. Any failure faults the GAS transfer, so the payment stays
// with the payer.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		common.AbortWithMessage("only GAS can be accepted for tickets")
	}

	to, value, signature, seats := parsePurchase(from, data)

	ctx := storage.GetContext()
	purchaseTickets(ctx, from, to, amount, value, signature, seats)
}

func parsePurchase(from interop.Hash160, data any) (interop.Hash160, int, []byte, []string) {
	if data == nil {
		panic(ticketconst.ErrInvalidPurchase)
	}

	args := data.([]any)
	if len(args) != ticketconst.PurchaseArgs {
		panic(ticketconst.ErrInvalidPurchase)
	}

	to := from
	if args[0] != nil {
		rcv := args[0].(interop.Hash160)
		switch len(rcv) {
		case interop.Hash160Len:
			to = rcv
		case 0:
		default:
			panic(ticketconst.ErrInvalidPurchase)
		}
	}

	var signature []byte
	if args[2] != nil {
		signature = args[2].([]byte)
	}

	seats := []string{}
	if args[3] != nil {
		seats = args[3].([]string)
	}

	return to, args[1].(int), signature, seats
}

func purchaseTickets(ctx storage.Context, from, to interop.Hash160, payment, value int, signature []byte, seats []string) {
	price := storage.Get(ctx, priceKey).(int)
	if payment != price*value {
		panic(ticketconst.ErrPaymentMismatch)
	}

	if value <= 0 {
		panic(ticketconst.ErrInvalidAmount)
	}

	if storage.Get(ctx, hasSeatsKey).(bool) {
		if len(seats) != value {
			panic(ticketconst.ErrSeatCountMismatch)
		}

		reserve(ctx, seats)
	} else if len(seats) != 0 {
		panic(ticketconst.ErrSeatsNotAllowed)
	}

	token.mint(ctx, to, value)
	recordProof(ctx, to, signature)

	runtime.Log("tickets were purchased")
	runtime.Notify("Purchase", from, to, value, seats)
}

// AddVerifier grants the account a right to burn tickets. It can be invoked
// only by the contract owner. Adding an existing verifier does nothing.
func AddVerifier(to interop.Hash160) {
	if len(to) != interop.Hash160Len {
		panic("incorrect length of verifier address")
	}

	ctx := storage.GetContext()
	checkOwner(ctx)

	if addVerifier(ctx, to) {
		runtime.Notify("VerifierAdded", to)
	}
}

// IsVerifier returns true if the account has been added as a verifier.
func IsVerifier(account interop.Hash160) bool {
	ctx := storage.GetReadOnlyContext()
	return isVerifier(ctx, account)
}

// Verifiers returns an iterator over addresses of all verifiers.
func Verifiers() iterator.Iterator {
	ctx := storage.GetReadOnlyContext()
	return storage.Find(ctx, []byte{verifierPrefix}, storage.KeysOnly|storage.RemovePrefix)
}

// Clear transfers the whole GAS balance of the contract to the owner. It can
// be invoked only by the contract owner.
func Clear() {
	ctx := storage.GetReadOnlyContext()
	owner := checkOwner(ctx)

	self := runtime.GetExecutingScriptHash()
	amount := gas.BalanceOf(self)

	if !gas.Transfer(self, owner, amount, nil) {
		panic("can't transfer assets")
	}

	runtime.Log("contract balance has been cleared")
	runtime.Notify("Clear", owner, amount)
}

// Burn destroys tickets of the holder. It can be invoked only by a verifier
// and must be witnessed by it.
func Burn(verifier, from interop.Hash160, amount int) {
	if amount <= 0 {
		panic(ticketconst.ErrInvalidAmount)
	}

	ctx := storage.GetContext()
	checkVerifier(ctx, verifier)

	if !token.burn(ctx, from, amount) {
		panic(ticketconst.ErrInsufficientBalance)
	}

	runtime.Log("tickets were burnt")
}

// Owner returns the contract owner address.
func Owner() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return getOwner(ctx)
}

// Price returns the price of a single ticket in GAS fractions.
func Price() int {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, priceKey).(int)
}

// ContractBalance returns the amount of GAS held by the contract.
func ContractBalance() int {
	return gas.BalanceOf(runtime.GetExecutingScriptHash())
}

// HasSeats returns true if tickets of this contract are bound to seats.
func HasSeats() bool {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, hasSeatsKey).(bool)
}

// Seats returns the seat catalogue in deployment order.
func Seats() []string {
	ctx := storage.GetReadOnlyContext()
	return common.GetStrings(ctx, catalogueKey)
}

// IsAvailable returns true if the seat is in the catalogue and not taken yet.
func IsAvailable(seat string) bool {
	ctx := storage.GetReadOnlyContext()
	return isAvailable(ctx, seat)
}

// IsSeatAvailable returns true if all listed seats are available.
func IsSeatAvailable(seats []string) bool {
	ctx := storage.GetReadOnlyContext()
	for _, seat := range seats {
		if !isAvailable(ctx, seat) {
			return false
		}
	}

	return true
}

// Proof returns the signature bound to the holder on the last purchase.
func Proof(holder interop.Hash160) []byte {
	ctx := storage.GetReadOnlyContext()
	return getProof(ctx, holder)
}

// VerifyProof checks that the signature bound to the holder signs message
// with the key of the holder.
func VerifyProof(holder interop.Hash160, key interop.PublicKey, message []byte) bool {
	ctx := storage.GetReadOnlyContext()
	return verifyProof(ctx, holder, key, message)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

/*
Package ticketconst contains Ticket contract constants shared by the contract
itself and its off-chain clients.

Error constants are the prefixes of the exception messages thrown by the
contract. Seat errors are followed by the seat identifier, e.g.
"seat already taken: A1".
*/
package ticketconst

const (
	// ErrUnauthorized is thrown when an owner-only method is invoked
	// without the owner witness.
	ErrUnauthorized = "unauthorized"
	// ErrNotVerifier is thrown when a verifier-only method is invoked by an
	// account out of the verifier set.
	ErrNotVerifier = "not a verifier"
	// ErrPaymentMismatch is thrown when transferred GAS amount differs from
	// the ticket price multiplied by the number of tickets.
	ErrPaymentMismatch = "payment mismatch"
	// ErrSeatCountMismatch is thrown when the number of seats differs from the
	// number of tickets on a contract with seats.
	ErrSeatCountMismatch = "seat count mismatch"
	// ErrSeatsNotAllowed is thrown when seats are requested on a contract
	// without seats.
	ErrSeatsNotAllowed = "seats not allowed"
	// ErrSeatTaken is thrown when a requested seat is already taken or named
	// twice in the same purchase.
	ErrSeatTaken = "seat already taken"
	// ErrUnknownSeat is thrown when a requested seat is out of the catalogue.
	ErrUnknownSeat = "unknown seat"
	// ErrInsufficientBalance is thrown when tickets to burn exceed the holder
	// balance.
	ErrInsufficientBalance = "insufficient balance"
	// ErrInvalidPurchase is thrown when purchase data attached to the GAS
	// transfer has wrong format.
	ErrInvalidPurchase = "invalid purchase request"
	// ErrInvalidAmount is thrown when the number of tickets to purchase is not
	// positive.
	ErrInvalidAmount = "invalid ticket amount"
)

// MaxSeatLength is the maximum length of a seat identifier in bytes. Seat
// state is stored under a one-byte prefix followed by the identifier, and
// storage keys are limited to 64 bytes.
const MaxSeatLength = 63

// PurchaseArgs is the number of elements of purchase data attached to the GAS
// transfer: recipient, number of tickets, signature and seats.
const PurchaseArgs = 4

package ticket

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/ticket-contract/contracts/ticket/ticketconst"
)

// Errors returned by the contract. Use errors.Is to check the reason of a
// failed invocation mapped with MapError or FaultError.
var (
	ErrUnauthorized        = errors.New(ticketconst.ErrUnauthorized)
	ErrNotVerifier         = errors.New(ticketconst.ErrNotVerifier)
	ErrPaymentMismatch     = errors.New(ticketconst.ErrPaymentMismatch)
	ErrSeatCountMismatch   = errors.New(ticketconst.ErrSeatCountMismatch)
	ErrSeatsNotAllowed     = errors.New(ticketconst.ErrSeatsNotAllowed)
	ErrSeatTaken           = errors.New(ticketconst.ErrSeatTaken)
	ErrUnknownSeat         = errors.New(ticketconst.ErrUnknownSeat)
	ErrInsufficientBalance = errors.New(ticketconst.ErrInsufficientBalance)
	ErrInvalidPurchase     = errors.New(ticketconst.ErrInvalidPurchase)
	ErrInvalidAmount       = errors.New(ticketconst.ErrInvalidAmount)
)

var knownErrors = []error{
	ErrUnauthorized,
	ErrNotVerifier,
	ErrPaymentMismatch,
	ErrSeatCountMismatch,
	ErrSeatsNotAllowed,
	ErrSeatTaken,
	ErrUnknownSeat,
	ErrInsufficientBalance,
	ErrInvalidPurchase,
	ErrInvalidAmount,
}

// SeatError is a seat reservation failure.
type SeatError struct {
	// Reason is either ErrSeatTaken or ErrUnknownSeat.
	Reason error
	Seat   string
}

func (e *SeatError) Error() string {
	return e.Reason.Error() + ": " + e.Seat
}

func (e *SeatError) Unwrap() error {
	return e.Reason
}

// FaultError converts the VM fault exception to the contract error. Unknown
// exceptions are returned as is.
func FaultError(exception string) error {
	for _, known := range knownErrors {
		msg := known.Error()
		i := strings.Index(exception, msg)
		if i < 0 {
			continue
		}

		if known == ErrSeatTaken || known == ErrUnknownSeat {
			if seat, ok := seatFromException(exception[i+len(msg):]); ok {
				return &SeatError{Reason: known, Seat: seat}
			}
		}

		return fmt.Errorf("%w: %s", known, exception)
	}

	return errors.New(exception)
}

// seatFromException cuts the seat from the ": <seat>" exception tail.
func seatFromException(tail string) (string, bool) {
	seat, ok := strings.CutPrefix(tail, ": ")
	if !ok {
		return "", false
	}

	// Fault exception wraps the message in quotes.
	seat, _, _ = strings.Cut(seat, "\"")
	return seat, seat != ""
}

// MapError converts invocation error to the contract error if it is caused by
// a contract fault.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return err
		}
	}

	mapped := FaultError(err.Error())
	for _, known := range knownErrors {
		if errors.Is(mapped, known) {
			return mapped
		}
	}

	return err
}

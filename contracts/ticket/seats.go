package ticket

import (
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/ticket-contract/common"
	"github.com/nspcc-dev/ticket-contract/contracts/ticket/ticketconst"
)

// Seat states. Seats out of the catalogue have no state at all.
const (
	seatUnknown = 0
	seatFree    = 1
	seatTaken   = 2
)

func seatKey(seat string) []byte {
	return append([]byte{seatPrefix}, []byte(seat)...)
}

// registerSeats stores seat catalogue and marks every seat free.
func registerSeats(ctx storage.Context, seats []string) {
	for _, seat := range seats {
		if len(seat) == 0 {
			panic("empty seat identifier")
		}

		if len(seat) > ticketconst.MaxSeatLength {
			panic("seat identifier is too long: " + seat)
		}

		k := seatKey(seat)
		if storage.Get(ctx, k) != nil {
			panic("duplicate seat in catalogue: " + seat)
		}

		storage.Put(ctx, k, seatFree)
	}

	common.SetSerialized(ctx, catalogueKey, seats)
}

func seatState(ctx storage.Context, seat string) int {
	raw := storage.Get(ctx, seatKey(seat))
	if raw == nil {
		return seatUnknown
	}

	return raw.(int)
}

func isAvailable(ctx storage.Context, seat string) bool {
	return seatState(ctx, seat) == seatFree
}

// reserve marks all requested seats taken or panics without touching any
// of them. Every seat is checked before the first write.
func reserve(ctx storage.Context, seats []string) {
	for i := 0; i < len(seats); i++ { //nolint:intrange // Not supported by NeoGo
		seat := seats[i]

		state := seatState(ctx, seat)
		if state == seatUnknown {
			panic(ticketconst.ErrUnknownSeat + ": " + seat)
		}

		if state != seatFree || requestedBefore(seats, i) {
			panic(ticketconst.ErrSeatTaken + ": " + seat)
		}
	}

	for _, seat := range seats {
		storage.Put(ctx, seatKey(seat), seatTaken)
	}
}

// requestedBefore checks whether seats[i] occurs in seats[:i].
func requestedBefore(seats []string, i int) bool {
	for j := 0; j < i; j++ { //nolint:intrange // Not supported by NeoGo
		if seats[j] == seats[i] {
			return true
		}
	}

	return false
}

package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/ticket-contract/contracts/ticket/ticketconst"
)

// ErrOwnerWitnessFailed appears when the method must be called by the
// contract owner but was not.
var ErrOwnerWitnessFailed = ticketconst.ErrUnauthorized + ": owner witness check failed"

// CheckOwnerWitness checks witness of the contract owner.
// It panics with ErrOwnerWitnessFailed message on fail.
func CheckOwnerWitness(owner []byte) {
	checkWitnessWithPanic(owner, ErrOwnerWitnessFailed)
}

// CheckRoleWitness checks that the account has been granted a role and
// witnesses the invocation. It panics with the given message on fail.
func CheckRoleWitness(account []byte, granted bool, panicMsg string) {
	if !granted {
		panic(panicMsg)
	}

	checkWitnessWithPanic(account, panicMsg)
}

func checkWitnessWithPanic(caller []byte, panicMsg string) {
	if !runtime.CheckWitness(caller) {
		panic(panicMsg)
	}
}

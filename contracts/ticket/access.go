package ticket

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/ticket-contract/common"
	"github.com/nspcc-dev/ticket-contract/contracts/ticket/ticketconst"
)

func getOwner(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, ownerKey).(interop.Hash160)
}

// checkOwner panics if the invocation is not witnessed by the contract owner.
func checkOwner(ctx storage.Context) interop.Hash160 {
	owner := getOwner(ctx)
	common.CheckOwnerWitness(owner)

	return owner
}

// checkVerifier panics if the account is not a verifier or has not witnessed
// the invocation.
func checkVerifier(ctx storage.Context, account interop.Hash160) {
	common.CheckRoleWitness(account, isVerifier(ctx, account), ticketconst.ErrNotVerifier)
}

func isVerifier(ctx storage.Context, account interop.Hash160) bool {
	return storage.Get(ctx, append([]byte{verifierPrefix}, account...)) != nil
}

// addVerifier returns false if the account is already a verifier.
func addVerifier(ctx storage.Context, account interop.Hash160) bool {
	key := append([]byte{verifierPrefix}, account...)
	if storage.Get(ctx, key) != nil {
		return false
	}

	storage.Put(ctx, key, []byte{1})

	return true
}

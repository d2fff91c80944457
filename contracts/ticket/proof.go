package ticket

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/crypto"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/ticket-contract/common"
)

func proofKey(holder interop.Hash160) []byte {
	return append([]byte{proofPrefix}, holder...)
}

// recordProof binds signature to the holder overwriting the previous one.
// Signature is stored serialized, so an empty signature is still a binding.
func recordProof(ctx storage.Context, holder interop.Hash160, signature []byte) {
	common.SetSerialized(ctx, proofKey(holder), signature)
}

func getProof(ctx storage.Context, holder interop.Hash160) []byte {
	data := storage.Get(ctx, proofKey(holder))
	if data == nil {
		return nil
	}

	return std.Deserialize(data.([]byte)).([]byte)
}

// verifyProof checks that the signature bound to the holder is a valid
// secp256r1 signature of the message made by the key of the holder.
func verifyProof(ctx storage.Context, holder interop.Hash160, key interop.PublicKey, message []byte) bool {
	if len(key) != interop.PublicKeyCompressedLen {
		return false
	}

	sig := getProof(ctx, holder)
	if len(sig) != interop.SignatureLen {
		return false
	}

	if !interop.Hash160(contract.CreateStandardAccount(key)).Equals(holder) {
		return false
	}

	return crypto.VerifyWithECDsa(message, key, interop.Signature(sig), crypto.Secp256r1)
}

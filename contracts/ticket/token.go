package ticket

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// Token holds all token info.
type Token struct {
	// Ticker symbol
	Symbol string
	// Amount of decimals
	Decimals int
	// Storage key for circulation value
	CirculationKey string
}

const (
	symbol      = "TICKET"
	decimals    = 0
	circulation = "circulation"
)

var token Token

func createToken() Token {
	return Token{
		Symbol:         symbol,
		Decimals:       decimals,
		CirculationKey: circulation,
	}
}

func init() {
	token = createToken()
}

// getSupply gets the token totalSupply value from VM storage.
func (t Token) getSupply(ctx storage.Context) int {
	supply := storage.Get(ctx, t.CirculationKey)
	if supply != nil {
		return supply.(int)
	}

	return 0
}

// balanceOf gets the token balance of a specific address.
func (t Token) balanceOf(ctx storage.Context, holder interop.Hash160) int {
	data := storage.Get(ctx, append([]byte{accPrefix}, holder...))
	if data != nil {
		return data.(int)
	}

	return 0
}

func (t Token) setBalance(ctx storage.Context, holder interop.Hash160, amount int) {
	key := append([]byte{accPrefix}, holder...)
	if amount == 0 {
		storage.Delete(ctx, key)
		return
	}

	storage.Put(ctx, key, amount)
}

func (t Token) transfer(ctx storage.Context, from, to interop.Hash160, amount int, data any) bool {
	if amount < 0 {
		panic("negative amount")
	}

	if len(from) != interop.Hash160Len || len(to) != interop.Hash160Len {
		panic("invalid account")
	}

	if !isUsableAddress(from) {
		runtime.Log("bad script hashes")
		return false
	}

	amountFrom := t.balanceOf(ctx, from)
	if amountFrom < amount {
		runtime.Log("not enough assets")
		return false
	}

	if amount != 0 && !from.Equals(to) {
		t.setBalance(ctx, from, amountFrom-amount)
		t.setBalance(ctx, to, t.balanceOf(ctx, to)+amount)
	}

	postTransfer(from, to, amount, data)

	return true
}

// mint issues new tickets to the holder. It does not call onNEP17Payment
// of the recipient since it runs inside GAS payment callback.
func (t Token) mint(ctx storage.Context, to interop.Hash160, amount int) {
	var from interop.Hash160

	t.setBalance(ctx, to, t.balanceOf(ctx, to)+amount)
	storage.Put(ctx, t.CirculationKey, t.getSupply(ctx)+amount)

	runtime.Notify("Transfer", from, to, amount)
}

// burn destroys holder tickets. Returns false if holder has not enough of them.
func (t Token) burn(ctx storage.Context, from interop.Hash160, amount int) bool {
	var to interop.Hash160

	balance := t.balanceOf(ctx, from)
	if balance < amount {
		return false
	}

	supply := t.getSupply(ctx)
	if supply < amount {
		panic("negative supply after burn")
	}

	t.setBalance(ctx, from, balance-amount)
	storage.Put(ctx, t.CirculationKey, supply-amount)

	runtime.Notify("Transfer", from, to, amount)

	return true
}

// postTransfer sends Transfer notification to the network and calls
// onNEP17Payment method of the recipient contract.
func postTransfer(from, to interop.Hash160, amount int, data any) {
	runtime.Notify("Transfer", from, to, amount)
	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}
}

// isUsableAddress checks if the sender is either a correct NEO address or SC address.
func isUsableAddress(addr interop.Hash160) bool {
	if runtime.CheckWitness(addr) {
		return true
	}

	// Check if a smart contract is calling script hash
	callingScriptHash := runtime.GetCallingScriptHash()
	return callingScriptHash.Equals(addr)
}

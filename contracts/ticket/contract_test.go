package ticket_test

import (
	"encoding/json"
	"math/big"
	"path"
	"strings"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/ticket-contract/common"
	"github.com/nspcc-dev/ticket-contract/contracts/ticket/ticketconst"
	"github.com/stretchr/testify/require"
)

const (
	ticketPath = "."
	recvPath   = "../../internal/testcontracts/nep17recv"
)

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

type market struct {
	e     *neotest.Executor
	c     *neotest.ContractInvoker
	ctr   *neotest.Contract
	owner neotest.Signer
}

func newMarket(t *testing.T, price int64, seats ...string) market {
	e := newExecutor(t)
	owner := e.NewAccount(t)

	catalogue := make([]any, len(seats))
	for i := range seats {
		catalogue[i] = seats[i]
	}

	c := neotest.CompileFile(t, e.CommitteeHash, ticketPath, path.Join(ticketPath, "config.yml"))
	e.DeployContract(t, c, []any{owner.ScriptHash(), price, catalogue})

	return market{
		e:     e,
		c:     e.CommitteeInvoker(c.Hash),
		ctr:   c,
		owner: owner,
	}
}

func purchaseData(to any, value int64, sig []byte, seats ...string) []any {
	list := make([]any, len(seats))
	for i := range seats {
		list[i] = seats[i]
	}
	return []any{to, value, sig, list}
}

func (m market) gas(t *testing.T, buyer neotest.Signer) *neotest.ContractInvoker {
	return m.e.NewInvoker(m.e.NativeHash(t, nativenames.Gas), buyer)
}

func (m market) purchase(t *testing.T, buyer neotest.Signer, payment int64, data []any) util.Uint256 {
	return m.gas(t, buyer).Invoke(t, true, "transfer", buyer.ScriptHash(), m.c.Hash, payment, data)
}

func (m market) purchaseFail(t *testing.T, msg string, buyer neotest.Signer, payment int64, data []any) util.Uint256 {
	return m.gas(t, buyer).InvokeFail(t, msg, "transfer", buyer.ScriptHash(), m.c.Hash, payment, data)
}

func (m market) gasBalance(acc util.Uint160) *big.Int {
	return m.e.Chain.GetUtilityTokenBalance(acc)
}

// fee returns GAS spent by the sender of the transaction.
func (m market) fee(t *testing.T, h util.Uint256) int64 {
	tx, _, err := m.e.Chain.GetTransaction(h)
	require.NoError(t, err)
	return tx.SystemFee + tx.NetworkFee
}

// lastEvent returns parameters of the last notification of the ticket
// contract made by the transaction.
func (m market) lastEvent(t *testing.T, h util.Uint256, name string) []stackitem.Item {
	aer, err := m.e.Chain.GetAppExecResults(h, trigger.Application)
	require.NoError(t, err)

	events := aer[0].Events
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].ScriptHash.Equals(m.c.Hash) {
			require.Equal(t, name, events[i].Name)
			return events[i].Item.Value().([]stackitem.Item)
		}
	}

	require.FailNow(t, "no notifications from the contract", name)
	return nil
}

// bytes returns the byte string result of the test invocation. Values read
// from storage come back as buffers, so they are compared by contents.
func (m market) bytes(t *testing.T, method string, args ...any) []byte {
	s, err := m.c.TestInvoke(t, method, args...)
	require.NoError(t, err)

	bs, err := s.Pop().Item().TryBytes()
	require.NoError(t, err)
	return bs
}

func (m market) seats(t *testing.T) []string {
	s, err := m.c.TestInvoke(t, "seats")
	require.NoError(t, err)

	arr := s.Pop().Array()
	res := make([]string, len(arr))
	for i := range arr {
		bs, err := arr[i].TryBytes()
		require.NoError(t, err)
		res[i] = string(bs)
	}
	return res
}

func TestTicket_Deploy(t *testing.T) {
	t.Run("with seats", func(t *testing.T) {
		m := newMarket(t, 10, "A1", "A2", "A3")

		m.c.Invoke(t, "TICKET", "symbol")
		m.c.Invoke(t, 0, "decimals")
		m.c.Invoke(t, 0, "totalSupply")
		m.c.Invoke(t, 10, "price")
		m.c.Invoke(t, true, "hasSeats")
		require.Equal(t, m.owner.ScriptHash().BytesBE(), m.bytes(t, "owner"))
		m.c.Invoke(t, common.Version, "version")
		require.Equal(t, []string{"A1", "A2", "A3"}, m.seats(t))

		for _, seat := range []string{"A1", "A2", "A3"} {
			m.c.Invoke(t, true, "isAvailable", seat)
		}
		m.c.Invoke(t, false, "isAvailable", "B1")
	})
	t.Run("without seats", func(t *testing.T) {
		m := newMarket(t, 5)

		m.c.Invoke(t, false, "hasSeats")
		m.c.Invoke(t, false, "isAvailable", "A1")
		require.Empty(t, m.seats(t))
	})
	t.Run("invalid catalogue", func(t *testing.T) {
		e := newExecutor(t)
		owner := e.NewAccount(t)
		c := neotest.CompileFile(t, e.CommitteeHash, ticketPath, path.Join(ticketPath, "config.yml"))

		e.DeployContractCheckFAULT(t, c, []any{owner.ScriptHash(), 10, []any{"A1", "A1"}}, "duplicate seat in catalogue: A1")
		e.DeployContractCheckFAULT(t, c, []any{owner.ScriptHash(), 10, []any{"A1", ""}}, "empty seat identifier")
		e.DeployContractCheckFAULT(t, c, []any{owner.ScriptHash(), 10, []any{"A1", strings.Repeat("B", ticketconst.MaxSeatLength+1)}}, "seat identifier is too long")
		e.DeployContractCheckFAULT(t, c, []any{owner.ScriptHash(), -1, []any{}}, "negative ticket price")
		e.DeployContractCheckFAULT(t, c, []any{[]byte{1, 2, 3}, 10, []any{}}, "incorrect length of owner address")
	})
}

func TestTicket_Purchase(t *testing.T) {
	m := newMarket(t, 10, "A1", "A2", "A3")
	x := m.e.NewAccount(t)
	y := m.e.NewAccount(t)
	sig := []byte("signature of X")

	m.purchase(t, x, 20, purchaseData(x.ScriptHash(), 2, sig, "A1", "A2"))

	m.c.Invoke(t, false, "isAvailable", "A1")
	m.c.Invoke(t, false, "isAvailable", "A2")
	m.c.Invoke(t, true, "isAvailable", "A3")
	m.c.Invoke(t, false, "isSeatAvailable", []any{"A1", "A3"})
	m.c.Invoke(t, true, "isSeatAvailable", []any{"A3"})
	m.c.Invoke(t, 2, "balanceOf", x.ScriptHash())
	m.c.Invoke(t, 2, "totalSupply")
	require.Equal(t, sig, m.bytes(t, "proof", x.ScriptHash()))
	m.c.Invoke(t, 20, "contractBalance")

	t.Run("seat already taken", func(t *testing.T) {
		m.purchaseFail(t, ticketconst.ErrSeatTaken+": A1", y, 10, purchaseData(y.ScriptHash(), 1, []byte{1}, "A1"))

		m.c.Invoke(t, 0, "balanceOf", y.ScriptHash())
		m.c.Invoke(t, stackitem.Null{}, "proof", y.ScriptHash())
		m.c.Invoke(t, 20, "contractBalance")
	})
	t.Run("partially taken seats are not reserved", func(t *testing.T) {
		m.purchaseFail(t, ticketconst.ErrSeatTaken+": A2", y, 20, purchaseData(y.ScriptHash(), 2, []byte{1}, "A3", "A2"))
		m.c.Invoke(t, true, "isAvailable", "A3")
	})
	t.Run("unknown seat", func(t *testing.T) {
		m.purchaseFail(t, ticketconst.ErrUnknownSeat+": B7", y, 20, purchaseData(y.ScriptHash(), 2, []byte{1}, "A3", "B7"))
		m.c.Invoke(t, true, "isAvailable", "A3")
	})
	t.Run("seat named twice", func(t *testing.T) {
		m.purchaseFail(t, ticketconst.ErrSeatTaken+": A3", y, 20, purchaseData(y.ScriptHash(), 2, []byte{1}, "A3", "A3"))
		m.c.Invoke(t, true, "isAvailable", "A3")
	})
	t.Run("seat count mismatch", func(t *testing.T) {
		m.purchaseFail(t, ticketconst.ErrSeatCountMismatch, y, 20, purchaseData(y.ScriptHash(), 2, []byte{1}, "A3"))
		m.purchaseFail(t, ticketconst.ErrSeatCountMismatch, y, 10, purchaseData(y.ScriptHash(), 1, []byte{1}))
		m.c.Invoke(t, true, "isAvailable", "A3")
	})
	t.Run("payment is checked before seats", func(t *testing.T) {
		m.purchaseFail(t, ticketconst.ErrPaymentMismatch, y, 15, purchaseData(y.ScriptHash(), 1, []byte{1}, "A1"))
	})
	t.Run("repeated purchase overwrites proof", func(t *testing.T) {
		newSig := []byte("new signature of X")
		m.purchase(t, x, 10, purchaseData(nil, 1, newSig, "A3"))

		m.c.Invoke(t, 3, "balanceOf", x.ScriptHash())
		require.Equal(t, newSig, m.bytes(t, "proof", x.ScriptHash()))
		m.c.Invoke(t, false, "isAvailable", "A3")
	})
}

func TestTicket_PurchaseWithoutSeats(t *testing.T) {
	m := newMarket(t, 5)
	z := m.e.NewAccount(t)

	m.purchase(t, z, 20, purchaseData(z.ScriptHash(), 4, []byte{1, 2}))
	m.c.Invoke(t, 4, "balanceOf", z.ScriptHash())

	m.purchaseFail(t, ticketconst.ErrSeatsNotAllowed, z, 20, purchaseData(z.ScriptHash(), 4, []byte{1, 2}, "A1"))
	m.c.Invoke(t, 4, "balanceOf", z.ScriptHash())
	m.c.Invoke(t, 20, "contractBalance")
}

func TestTicket_PurchaseForAnotherAccount(t *testing.T) {
	m := newMarket(t, 5)
	payer := m.e.NewAccount(t)
	holder := m.e.NewAccount(t)

	h := m.purchase(t, payer, 5, purchaseData(holder.ScriptHash(), 1, []byte{7}))

	m.c.Invoke(t, 0, "balanceOf", payer.ScriptHash())
	m.c.Invoke(t, 1, "balanceOf", holder.ScriptHash())
	require.Equal(t, []byte{7}, m.bytes(t, "proof", holder.ScriptHash()))
	m.c.Invoke(t, stackitem.Null{}, "proof", payer.ScriptHash())

	items := m.lastEvent(t, h, "Purchase")
	require.Len(t, items, 4)
	require.Equal(t, payer.ScriptHash().BytesBE(), items[0].Value())
	require.Equal(t, holder.ScriptHash().BytesBE(), items[1].Value())
	require.Equal(t, big.NewInt(1), items[2].Value())
	require.Empty(t, items[3].Value())
}

func TestTicket_PaymentMismatch(t *testing.T) {
	m := newMarket(t, 10, "A1", "A2")
	buyer := m.e.NewAccount(t)

	for _, payment := range []int64{0, 9, 11, 30} {
		before := m.gasBalance(buyer.ScriptHash())

		h := m.purchaseFail(t, ticketconst.ErrPaymentMismatch, buyer, payment, purchaseData(buyer.ScriptHash(), 1, []byte{1}, "A1"))

		// Only the transaction fee is spent, the payment stays with the buyer.
		after := m.gasBalance(buyer.ScriptHash())
		require.Equal(t, new(big.Int).Sub(before, big.NewInt(m.fee(t, h))), after)
	}

	m.c.Invoke(t, 0, "contractBalance")
	m.c.Invoke(t, 0, "totalSupply")
	m.c.Invoke(t, true, "isAvailable", "A1")
	m.c.Invoke(t, stackitem.Null{}, "proof", buyer.ScriptHash())
}

func TestTicket_InvalidPurchase(t *testing.T) {
	m := newMarket(t, 10)
	buyer := m.e.NewAccount(t)

	m.purchaseFail(t, ticketconst.ErrInvalidAmount, buyer, 0, purchaseData(buyer.ScriptHash(), 0, []byte{1}))
	m.purchaseFail(t, ticketconst.ErrInvalidPurchase, buyer, 10, []any{buyer.ScriptHash(), 1})
	m.purchaseFail(t, ticketconst.ErrInvalidPurchase, buyer, 10, purchaseData([]byte{1, 2, 3}, 1, []byte{1}))
	m.gas(t, buyer).InvokeFail(t, ticketconst.ErrInvalidPurchase, "transfer", buyer.ScriptHash(), m.c.Hash, 10, nil)

	t.Run("only GAS is accepted", func(t *testing.T) {
		neo := m.e.ValidatorInvoker(m.e.NativeHash(t, nativenames.Neo))
		neo.InvokeFail(t, "ABORT", "transfer", m.e.Validator.ScriptHash(), m.c.Hash, 1, purchaseData(nil, 1, []byte{1}))
	})

	m.c.Invoke(t, 0, "totalSupply")
}

func TestTicket_AddVerifier(t *testing.T) {
	m := newMarket(t, 10)
	verifier := m.e.NewAccount(t)
	stranger := m.e.NewAccount(t)

	m.c.WithSigners(stranger).InvokeFail(t, ticketconst.ErrUnauthorized, "addVerifier", verifier.ScriptHash())
	m.c.Invoke(t, false, "isVerifier", verifier.ScriptHash())

	owner := m.c.WithSigners(m.owner)

	h := owner.Invoke(t, stackitem.Null{}, "addVerifier", verifier.ScriptHash())
	items := m.lastEvent(t, h, "VerifierAdded")
	require.Equal(t, verifier.ScriptHash().BytesBE(), items[0].Value())
	m.c.Invoke(t, true, "isVerifier", verifier.ScriptHash())

	t.Run("list", func(t *testing.T) {
		another := m.e.NewAccount(t)
		owner.Invoke(t, stackitem.Null{}, "addVerifier", another.ScriptHash())

		s, err := m.c.TestInvoke(t, "verifiers")
		require.NoError(t, err)

		iter := s.Pop().Interop().Value().(*storage.Iterator)
		var got [][]byte
		for iter.Next() {
			got = append(got, iter.Value().Value().([]byte))
		}
		require.ElementsMatch(t, [][]byte{verifier.ScriptHash().BytesBE(), another.ScriptHash().BytesBE()}, got)
	})
	t.Run("idempotent", func(t *testing.T) {
		h := owner.Invoke(t, stackitem.Null{}, "addVerifier", verifier.ScriptHash())

		aer, err := m.e.Chain.GetAppExecResults(h, trigger.Application)
		require.NoError(t, err)
		require.Empty(t, aer[0].Events)
		m.c.Invoke(t, true, "isVerifier", verifier.ScriptHash())
	})
}

func TestTicket_Clear(t *testing.T) {
	m := newMarket(t, 10, "A1", "A2", "A3")
	buyer := m.e.NewAccount(t)
	stranger := m.e.NewAccount(t)

	m.purchase(t, buyer, 30, purchaseData(nil, 3, []byte{1}, "A1", "A2", "A3"))
	m.c.Invoke(t, 30, "contractBalance")

	m.c.WithSigners(stranger).InvokeFail(t, ticketconst.ErrUnauthorized, "clear")
	m.c.Invoke(t, 30, "contractBalance")

	owner := m.c.WithSigners(m.owner)

	before := m.gasBalance(m.owner.ScriptHash())
	h := owner.Invoke(t, stackitem.Null{}, "clear")
	after := m.gasBalance(m.owner.ScriptHash())

	require.Equal(t, new(big.Int).Sub(new(big.Int).Add(before, big.NewInt(30)), big.NewInt(m.fee(t, h))), after)
	m.c.Invoke(t, 0, "contractBalance")
	items := m.lastEvent(t, h, "Clear")
	require.Equal(t, m.owner.ScriptHash().BytesBE(), items[0].Value())
	require.Equal(t, int64(30), items[1].Value().(*big.Int).Int64())

	t.Run("zero balance", func(t *testing.T) {
		h := owner.Invoke(t, stackitem.Null{}, "clear")
		items := m.lastEvent(t, h, "Clear")
		require.Zero(t, items[1].Value().(*big.Int).Sign())
		m.c.Invoke(t, 0, "contractBalance")
	})
}

func TestTicket_Burn(t *testing.T) {
	m := newMarket(t, 10)
	holder := m.e.NewAccount(t)
	verifier := m.e.NewAccount(t)

	m.purchase(t, holder, 30, purchaseData(nil, 3, []byte{1}))
	m.c.WithSigners(m.owner).Invoke(t, stackitem.Null{}, "addVerifier", verifier.ScriptHash())

	t.Run("not a verifier", func(t *testing.T) {
		m.c.WithSigners(holder).InvokeFail(t, ticketconst.ErrNotVerifier, "burn", holder.ScriptHash(), holder.ScriptHash(), 1)
	})
	t.Run("verifier witness is required", func(t *testing.T) {
		m.c.WithSigners(holder).InvokeFail(t, ticketconst.ErrNotVerifier, "burn", verifier.ScriptHash(), holder.ScriptHash(), 1)
	})

	v := m.c.WithSigners(verifier)
	v.InvokeFail(t, ticketconst.ErrInsufficientBalance, "burn", verifier.ScriptHash(), holder.ScriptHash(), 4)
	v.InvokeFail(t, ticketconst.ErrInvalidAmount, "burn", verifier.ScriptHash(), holder.ScriptHash(), 0)

	v.Invoke(t, stackitem.Null{}, "burn", verifier.ScriptHash(), holder.ScriptHash(), 2)
	m.c.Invoke(t, 1, "balanceOf", holder.ScriptHash())
	m.c.Invoke(t, 1, "totalSupply")
}

func TestTicket_VerifyProof(t *testing.T) {
	m := newMarket(t, 1)
	holder := m.e.NewAccount(t).(neotest.SingleSigner)
	other := m.e.NewAccount(t).(neotest.SingleSigner)

	msg := []byte("ticket holder")
	priv := holder.Account().PrivateKey()
	pub := priv.PublicKey().Bytes()

	m.c.Invoke(t, false, "verifyProof", holder.ScriptHash(), pub, msg)

	m.purchase(t, holder, 1, purchaseData(nil, 1, priv.Sign(msg)))

	m.c.Invoke(t, true, "verifyProof", holder.ScriptHash(), pub, msg)
	m.c.Invoke(t, false, "verifyProof", holder.ScriptHash(), pub, []byte("another message"))
	m.c.Invoke(t, false, "verifyProof", holder.ScriptHash(), other.Account().PrivateKey().PublicKey().Bytes(), msg)
	m.c.Invoke(t, false, "verifyProof", other.ScriptHash(), pub, msg)
}

func TestTicket_Transfer(t *testing.T) {
	m := newMarket(t, 2)
	holder := m.e.NewAccount(t)
	friend := m.e.NewAccount(t)

	m.purchase(t, holder, 6, purchaseData(nil, 3, []byte{1}))

	h := m.c.WithSigners(holder)
	h.Invoke(t, true, "transfer", holder.ScriptHash(), friend.ScriptHash(), 1, nil)
	h.Invoke(t, false, "transfer", holder.ScriptHash(), friend.ScriptHash(), 5, nil)
	m.c.WithSigners(friend).Invoke(t, false, "transfer", holder.ScriptHash(), friend.ScriptHash(), 1, nil)
	h.InvokeFail(t, "negative amount", "transfer", holder.ScriptHash(), friend.ScriptHash(), -1, nil)

	m.c.Invoke(t, 2, "balanceOf", holder.ScriptHash())
	m.c.Invoke(t, 1, "balanceOf", friend.ScriptHash())
	m.c.Invoke(t, 3, "totalSupply")

	t.Run("to contract", func(t *testing.T) {
		recv := neotest.CompileFile(t, m.e.CommitteeHash, recvPath, path.Join(recvPath, "config.yml"))
		m.e.DeployContract(t, recv, nil)

		h.Invoke(t, true, "transfer", holder.ScriptHash(), recv.Hash, 2, "hello")
		m.c.Invoke(t, 2, "balanceOf", recv.Hash)
		m.c.Invoke(t, 0, "balanceOf", holder.ScriptHash())

		s, err := m.e.CommitteeInvoker(recv.Hash).TestInvoke(t, "get")
		require.NoError(t, err)

		call := s.Pop().Array()
		require.Equal(t, holder.ScriptHash().BytesBE(), call[0].Value())
		require.Equal(t, big.NewInt(2), call[1].Value())
		require.Equal(t, []byte("hello"), call[2].Value())
	})
}

func TestTicket_Update(t *testing.T) {
	m := newMarket(t, 1, "A1")
	stranger := m.e.NewAccount(t)
	owner := m.c.WithSigners(m.owner)

	rawNEF, err := m.ctr.NEF.Bytes()
	require.NoError(t, err)
	rawManifest, err := json.Marshal(m.ctr.Manifest)
	require.NoError(t, err)

	m.c.WithSigners(stranger).InvokeFail(t, common.ErrOwnerWitnessFailed, "update", rawNEF, rawManifest, nil)

	t.Run("already updated", func(t *testing.T) {
		owner.InvokeFail(t, common.ErrAlreadyUpdated, "update", rawNEF, rawManifest, nil)
		owner.InvokeFail(t, common.ErrAlreadyUpdated, "update", rawNEF, rawManifest, []any{"extra"})
		m.c.Invoke(t, common.Version, "version")
	})
	t.Run("new code", func(t *testing.T) {
		recv := neotest.CompileFile(t, m.e.CommitteeHash, recvPath, path.Join(recvPath, "config.yml"))

		recvNEF, err := recv.NEF.Bytes()
		require.NoError(t, err)

		// Contract name can't be changed on update.
		mf := *recv.Manifest
		mf.Name = m.ctr.Manifest.Name
		recvManifest, err := json.Marshal(&mf)
		require.NoError(t, err)

		owner.Invoke(t, stackitem.Null{}, "update", recvNEF, recvManifest, nil)

		s, err := m.c.TestInvoke(t, "get")
		require.NoError(t, err)
		require.Len(t, s.Pop().Array(), 3)

		_, err = m.c.TestInvoke(t, "symbol")
		require.Error(t, err)
	})
}

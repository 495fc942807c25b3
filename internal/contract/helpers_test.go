package contract

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Klingon-tech/klingnet-jetton/config"
	"github.com/Klingon-tech/klingnet-jetton/internal/chain"
	"github.com/Klingon-tech/klingnet-jetton/internal/storage"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

var variants = []jetton.Variant{jetton.VariantBase, jetton.VariantGovernance}

func tons(s string) *big.Int {
	return tlb.MustFromTON(s).Nano()
}

func jettons(s string) *uint256.Int {
	return jetton.MustParseAmount(s, jetton.Decimals)
}

func actorAddr(b byte) *address.Address {
	return address.NewAddress(0, 0, bytes.Repeat([]byte{b}, 32))
}

func masterchainAddr(b byte) *address.Address {
	return address.NewAddress(0, 255, bytes.Repeat([]byte{b}, 32))
}

// env is a ledger with one minter and funded actors.
type env struct {
	t       *testing.T
	v       jetton.Variant
	c       *chain.Chain
	reg     *Registry
	admin   *address.Address
	minter  *address.Address
	content *cell.Cell
	qid     uint64
}

func newEnv(t *testing.T, v jetton.Variant) *env {
	return newEnvWith(t, v, Options{})
}

func newEnvWith(t *testing.T, v jetton.Variant, opts Options) *env {
	t.Helper()
	c, err := chain.New(storage.NewMemory(), config.DefaultParams())
	require.NoError(t, err)
	reg, err := Register(c, opts)
	require.NoError(t, err)

	e := &env{t: t, v: v, c: c, reg: reg, admin: actorAddr(0xad)}
	require.NoError(t, c.Fund(e.admin, tons("1000")))
	e.content = cell.BeginCell().MustStoreUInt(0x01, 8).MustStoreStringSnake("https://example.org/jetton.json").EndCell()
	e.minter, err = DeployMinter(c, v, e.admin, e.content, tons("1"))
	require.NoError(t, err)
	return e
}

// actor returns a plain account funded with 100 TON.
func (e *env) actor(b byte) *address.Address {
	a := actorAddr(b)
	require.NoError(e.t, e.c.Fund(a, tons("100")))
	return a
}

func (e *env) nextQueryID() uint64 {
	e.qid++
	return e.qid
}

// submit queues a bounceable request without delivering it.
func (e *env) submit(from, to *address.Address, value *big.Int, msg jetton.Message) {
	e.t.Helper()
	body, err := msg.Encode()
	require.NoError(e.t, err)
	_, err = e.c.Submit(from, chain.OutMessage{Dst: to, Value: value, Bounce: true, Body: body})
	require.NoError(e.t, err)
}

// send submits a bounceable request and runs the ledger until it settles.
func (e *env) send(from, to *address.Address, value *big.Int, msg jetton.Message) chain.Trace {
	e.t.Helper()
	e.submit(from, to, value, msg)
	trace, err := e.c.Run(context.Background())
	require.NoError(e.t, err)
	return trace
}

func (e *env) mintFrom(from, to *address.Address, amount *uint256.Int) chain.Trace {
	m := NewMint(e.nextQueryID(), e.admin, e.minter, to, amount, nil, tons("0.05"), jetton.Payload{})
	return e.send(from, e.minter, tons("0.1"), m)
}

func (e *env) mint(to *address.Address, amount string) chain.Trace {
	return e.mintFrom(e.admin, to, jettons(amount))
}

func (e *env) walletOf(owner *address.Address) *address.Address {
	addr, err := jetton.WalletAddress(owner, e.minter, jetton.WalletCode(e.v))
	require.NoError(e.t, err)
	return addr
}

func (e *env) transfer(from, to *address.Address, amount string, forwardTon *big.Int) chain.Trace {
	if forwardTon == nil {
		forwardTon = new(big.Int)
	}
	return e.send(from, e.walletOf(from), tons("0.2"), &jetton.Transfer{
		QueryID:             e.nextQueryID(),
		Amount:              jettons(amount),
		Destination:         to,
		ResponseDestination: from,
		ForwardTonAmount:    tlb.FromNanoTON(forwardTon),
	})
}

func (e *env) burn(owner *address.Address, amount string) chain.Trace {
	return e.send(owner, e.walletOf(owner), tons("0.1"), &jetton.Burn{
		QueryID:             e.nextQueryID(),
		Amount:              jettons(amount),
		ResponseDestination: owner,
	})
}

func (e *env) balance(owner *address.Address) *uint256.Int {
	b, err := GetBalance(e.c, e.minter, owner)
	require.NoError(e.t, err)
	return b
}

func (e *env) supply() *uint256.Int {
	jd, err := GetJettonData(e.c, e.minter)
	require.NoError(e.t, err)
	return jd.TotalSupply
}

func (e *env) jettonData() *JettonData {
	jd, err := GetJettonData(e.c, e.minter)
	require.NoError(e.t, err)
	return jd
}

// requireSettled checks conservation with nothing in flight or pending.
func (e *env) requireSettled() {
	e.t.Helper()
	r, err := Audit(e.c, e.minter)
	require.NoError(e.t, err)
	require.Zero(e.t, r.Queued, "messages in flight")
	require.Zero(e.t, r.Pending, "unsettled deltas")
	require.True(e.t, r.Balanced, "supply %s != wallet sum %s", r.TotalSupply.Dec(), r.WalletSum.Dec())
}

func (e *env) pending(addr *address.Address) map[uint64]*Delta {
	deltas, err := PendingDeltas(e.c, addr)
	require.NoError(e.t, err)
	return deltas
}

func (e *env) exit(r jetton.Reason) int {
	return jetton.ExitCode(e.v, r)
}

func requireAmount(t *testing.T, want string, got *uint256.Int, msgAndArgs ...interface{}) {
	t.Helper()
	require.Equal(t, jettons(want).Dec(), got.Dec(), msgAndArgs...)
}

// reply decodes the body of the first transaction on dst with op.
func reply(t *testing.T, trace chain.Trace, dst *address.Address, op uint32) jetton.Message {
	t.Helper()
	for _, tx := range trace.To(dst) {
		if tx.Op == op && !tx.Bounced {
			msg, err := jetton.Decode(tx.Body)
			require.NoError(t, err)
			return msg
		}
	}
	require.Failf(t, "no reply", "no %s delivered to %s", jetton.OpName(op), dst)
	return nil
}

// rejectTo makes the destination reject messages with op.
func (e *env) rejectTo(dst *address.Address, op uint32) {
	e.c.SetFaultInjector(func(m *chain.Message) error {
		if jetton.SameAddress(m.Dst, dst) && m.Op() == op && !m.Bounced {
			return jetton.Abort(e.v, jetton.ReasonContractLocked)
		}
		return nil
	})
}

package contract

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

func TestAdminHandover(t *testing.T) {
	for _, v := range variants {
		t.Run(v.String(), func(t *testing.T) {
			e := newEnv(t, v)
			next, mallory := e.actor(2), e.actor(6)

			trace := e.send(mallory, e.minter, tons("0.05"), &jetton.ChangeAdmin{QueryID: 1, NewAdmin: mallory})
			require.Equal(t, 73, trace[0].ExitCode)

			trace = e.send(next, e.minter, tons("0.05"), &jetton.ClaimAdmin{QueryID: 2})
			require.Equal(t, 73, trace[0].ExitCode, "nothing proposed")

			require.Empty(t, e.send(e.admin, e.minter, tons("0.05"), &jetton.ChangeAdmin{QueryID: 3, NewAdmin: next}).Failed())
			jd := e.jettonData()
			require.True(t, jetton.SameAddress(jd.Admin, e.admin), "proposal alone changes nothing")
			require.True(t, jetton.SameAddress(jd.PendingAdmin, next))

			trace = e.send(mallory, e.minter, tons("0.05"), &jetton.ClaimAdmin{QueryID: 4})
			require.Equal(t, 73, trace[0].ExitCode)

			require.Empty(t, e.send(next, e.minter, tons("0.05"), &jetton.ClaimAdmin{QueryID: 5}).Failed())
			jd = e.jettonData()
			require.True(t, jetton.SameAddress(jd.Admin, next))
			require.True(t, jetton.IsNone(jd.PendingAdmin))

			// Only the new admin mints now.
			a := e.actor(1)
			require.Equal(t, 73, e.mint(a, "1")[0].ExitCode)
			require.Empty(t, e.mintFrom(next, a, jettons("1")).Failed())
			requireAmount(t, "1", e.supply())
			e.requireSettled()
		})
	}
}

func TestChangeContent(t *testing.T) {
	e := newEnv(t, jetton.VariantBase)
	mallory := e.actor(6)
	content := cell.BeginCell().MustStoreUInt(0x01, 8).MustStoreStringSnake("ipfs://new").EndCell()

	trace := e.send(mallory, e.minter, tons("0.05"), &jetton.ChangeContent{QueryID: 1, Content: content})
	require.Equal(t, 73, trace[0].ExitCode)
	require.Equal(t, e.content.Hash(), e.jettonData().Content.Hash())

	require.Empty(t, e.send(e.admin, e.minter, tons("0.05"), &jetton.ChangeContent{QueryID: 2, Content: content}).Failed())
	require.Equal(t, content.Hash(), e.jettonData().Content.Hash())
}

func TestMinterClaimTon(t *testing.T) {
	for _, v := range variants {
		t.Run(v.String(), func(t *testing.T) {
			e := newEnv(t, v)
			receiver := actorAddr(0x77)

			trace := e.send(e.admin, e.minter, tons("0.1"), &jetton.ClaimTon{QueryID: 1, Receiver: receiver, Amount: tlb.FromNanoTON(tons("5"))})
			require.Equal(t, e.exit(jetton.ReasonNotEnoughTon), trace[0].ExitCode)

			trace = e.send(e.actor(6), e.minter, tons("0.1"), &jetton.ClaimTon{QueryID: 2, Receiver: receiver})
			require.Equal(t, 73, trace[0].ExitCode)

			// Everything above the storage reserve leaves, minus one forward fee.
			trace = e.send(e.admin, e.minter, tons("0.1"), &jetton.ClaimTon{QueryID: 3, Receiver: receiver})
			require.Empty(t, trace.Failed())

			got, err := e.c.Balance(receiver)
			require.NoError(t, err)
			require.Equal(t, tons("1.075").String(), got.String())
			left, err := e.c.Balance(e.minter)
			require.NoError(t, err)
			require.Equal(t, tons("0.01").String(), left.String())
		})
	}
}

func TestWalletClaimTon(t *testing.T) {
	e := newEnv(t, jetton.VariantBase)
	a, mallory := e.actor(1), e.actor(6)
	e.mint(a, "1")

	trace := e.send(mallory, e.walletOf(a), tons("0.1"), &jetton.ClaimTon{QueryID: 1, Receiver: mallory})
	require.Equal(t, 705, trace[0].ExitCode)

	trace = e.send(a, e.walletOf(a), tons("0.1"), &jetton.ClaimTon{QueryID: 2, Receiver: a, Amount: tlb.FromNanoTON(tons("50"))})
	require.Equal(t, 709, trace[0].ExitCode)

	require.Empty(t, e.send(a, e.walletOf(a), tons("0.1"), &jetton.ClaimTon{QueryID: 3, Receiver: a}).Failed())
	left, err := e.c.Balance(e.walletOf(a))
	require.NoError(t, err)
	require.Equal(t, tons("0.01").String(), left.String())
	requireAmount(t, "1", e.balance(a))
}

func TestProvideWalletBalance(t *testing.T) {
	for _, v := range variants {
		t.Run(v.String(), func(t *testing.T) {
			e := newEnv(t, v)
			a, b := e.actor(1), e.actor(2)
			e.mint(a, "7.5")

			trace := e.send(b, e.walletOf(a), tons("0.1"), &jetton.ProvideWalletBalance{QueryID: 1, Receiver: b, IncludeVerifyInfo: true})
			require.Empty(t, trace.Failed())
			tb := reply(t, trace, b, jetton.OpTakeWalletBalance).(*jetton.TakeWalletBalance)
			requireAmount(t, "7.5", tb.Balance)
			require.NotNil(t, tb.Verify)

			addr, err := jetton.WalletAddress(tb.Verify.Owner, tb.Verify.Minter, tb.Verify.WalletCode)
			require.NoError(t, err)
			require.True(t, jetton.SameAddress(addr, e.walletOf(a)), "receiver can verify the wallet")

			trace = e.send(b, e.walletOf(a), tons("0.1"), &jetton.ProvideWalletBalance{QueryID: 2, Receiver: b})
			tb = reply(t, trace, b, jetton.OpTakeWalletBalance).(*jetton.TakeWalletBalance)
			require.Nil(t, tb.Verify)
		})
	}
}

package contract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

func TestScenario_MintAndTransfer(t *testing.T) {
	for _, v := range variants {
		t.Run(v.String(), func(t *testing.T) {
			e := newEnv(t, v)
			a, b := e.actor(1), e.actor(2)

			require.Empty(t, e.mint(a, "1000.23").Failed())
			requireAmount(t, "1000.23", e.supply())
			require.Empty(t, e.mint(a, "2.31").Failed())
			requireAmount(t, "1002.54", e.supply())
			require.Empty(t, e.mint(b, "3.12").Failed())
			requireAmount(t, "1005.66", e.supply())

			trace := e.transfer(a, b, "0.5", tons("0.05"))
			require.Empty(t, trace.Failed())

			requireAmount(t, "999.73", e.balance(a))
			requireAmount(t, "3.62", e.balance(b))
			requireAmount(t, "1005.66", e.supply())

			notif := trace.To(b).ByOp(jetton.OpTransferNotification)
			require.Len(t, notif, 1)
			require.Equal(t, tons("0.05").String(), notif[0].Value.String())
			n := reply(t, trace, b, jetton.OpTransferNotification).(*jetton.TransferNotification)
			requireAmount(t, "0.5", n.Amount)
			require.True(t, jetton.SameAddress(n.Sender, a))

			require.Len(t, trace.To(a).ByOp(jetton.OpExcesses), 1, "excess returned to A")
			e.requireSettled()
		})
	}
}

func TestMint_DeploysWalletLazily(t *testing.T) {
	e := newEnv(t, jetton.VariantBase)
	a := e.actor(1)
	_, err := e.c.Account(e.walletOf(a))
	require.Error(t, err)

	trace := e.mint(a, "5")
	require.Empty(t, trace.Failed())
	deployed := trace.To(e.walletOf(a))
	require.Len(t, deployed, 1)
	require.True(t, deployed[0].Deployed)

	ws, err := GetWalletData(e.c, e.walletOf(a))
	require.NoError(t, err)
	require.True(t, jetton.SameAddress(ws.Owner, a))
	require.True(t, jetton.SameAddress(ws.Minter, e.minter))
	requireAmount(t, "5", ws.Balance)

	// Excess of the mint goes back to the minter.
	require.Len(t, trace.To(e.minter).ByOp(jetton.OpExcesses), 1)
	e.requireSettled()
}

func TestMint_NotAdmin(t *testing.T) {
	for _, v := range variants {
		t.Run(v.String(), func(t *testing.T) {
			e := newEnv(t, v)
			a, mallory := e.actor(1), e.actor(6)
			e.mint(a, "10")

			trace := e.mintFrom(mallory, mallory, jettons("1000"))
			require.False(t, trace[0].Success)
			require.Equal(t, 73, trace[0].ExitCode)
			require.Len(t, trace.Bounces(), 1, "value bounced back")

			requireAmount(t, "10", e.supply())
			requireAmount(t, "10", e.balance(a))
			requireAmount(t, "0", e.balance(mallory))
			e.requireSettled()
		})
	}
}

func TestMint_Closed(t *testing.T) {
	for _, v := range variants {
		t.Run(v.String(), func(t *testing.T) {
			e := newEnv(t, v)
			a := e.actor(1)
			e.mint(a, "10")

			trace := e.send(e.admin, e.minter, tons("0.05"), &jetton.CloseMinting{QueryID: 1})
			require.Empty(t, trace.Failed())
			require.False(t, e.jettonData().Mintable)

			trace = e.mint(a, "1")
			require.Equal(t, e.exit(jetton.ReasonMintClosed), trace[0].ExitCode)
			require.Equal(t, 76, trace[0].ExitCode)
			requireAmount(t, "10", e.supply())

			// Closing again is a no-op.
			trace = e.send(e.admin, e.minter, tons("0.05"), &jetton.CloseMinting{QueryID: 2})
			require.Empty(t, trace.Failed())
			e.requireSettled()
		})
	}
}

func TestMint_Rejections(t *testing.T) {
	e := newEnv(t, jetton.VariantBase)
	a := e.actor(1)

	m := NewMint(1, e.admin, e.minter, a, jettons("1"), tons("0.05"), tons("0.05"), jetton.Payload{})
	trace := e.send(e.admin, e.minter, tons("0.2"), m)
	require.Equal(t, 709, trace[0].ExitCode, "total ton must exceed forward ton")

	// Enough to cover the forward amount but not a bounce from the wallet.
	m = NewMint(4, e.admin, e.minter, a, jettons("1"), tons("0.02"), tons("0.06"), jetton.Payload{})
	trace = e.send(e.admin, e.minter, tons("0.2"), m)
	require.Equal(t, 709, trace[0].ExitCode, "total ton must fund the wallet and its bounce")
	requireAmount(t, "0", e.supply())

	m = NewMint(2, e.admin, e.minter, masterchainAddr(1), jettons("1"), nil, tons("0.05"), jetton.Payload{})
	trace = e.send(e.admin, e.minter, tons("0.2"), m)
	require.Equal(t, 333, trace[0].ExitCode)

	m = NewMint(3, e.admin, e.minter, a, jetton.MaxAmount, nil, tons("0.05"), jetton.Payload{})
	require.Empty(t, e.send(e.admin, e.minter, tons("0.2"), m).Failed())
	trace = e.mint(a, "1")
	require.Equal(t, e.exit(jetton.ReasonAmountOverflow), trace[0].ExitCode)
	require.Equal(t, jetton.MaxAmount.Dec(), e.supply().Dec())
	e.requireSettled()
}

func TestMint_WithForwardNotifiesReceiver(t *testing.T) {
	e := newEnv(t, jetton.VariantBase)
	a := e.actor(1)
	payload := jetton.InlinePayload(jetton.MustEncode(&jetton.Excesses{QueryID: 77}))
	m := NewMint(1, e.admin, e.minter, a, jettons("3"), tons("0.02"), tons("0.1"), payload)
	trace := e.send(e.admin, e.minter, tons("0.2"), m)
	require.Empty(t, trace.Failed())

	n := reply(t, trace, a, jetton.OpTransferNotification).(*jetton.TransferNotification)
	require.True(t, jetton.SameAddress(n.Sender, e.admin), "mint origin is the admin")
	require.True(t, n.ForwardPayload.Equal(payload))
	require.Equal(t, tons("0.02").String(), trace.To(a).ByOp(jetton.OpTransferNotification)[0].Value.String())
	e.requireSettled()
}

func TestTransfer_Correctness(t *testing.T) {
	for _, v := range variants {
		t.Run(v.String(), func(t *testing.T) {
			e := newEnv(t, v)
			a, b, c := e.actor(1), e.actor(2), e.actor(3)
			e.mint(a, "100")

			require.Empty(t, e.transfer(a, c, "40", nil).Failed(), "transfer to a fresh wallet")
			requireAmount(t, "60", e.balance(a))
			requireAmount(t, "40", e.balance(c))

			trace := e.transfer(a, b, "60.000000001", nil)
			require.Equal(t, e.exit(jetton.ReasonBalance), trace[0].ExitCode)
			requireAmount(t, "60", e.balance(a))
			requireAmount(t, "0", e.balance(b))

			require.Empty(t, e.transfer(a, b, "60", nil).Failed(), "whole balance")
			requireAmount(t, "0", e.balance(a))
			requireAmount(t, "60", e.balance(b))
			requireAmount(t, "100", e.supply())
			e.requireSettled()
		})
	}
}

func TestTransfer_Rejections(t *testing.T) {
	e := newEnv(t, jetton.VariantBase)
	a, b, mallory := e.actor(1), e.actor(2), e.actor(6)
	e.mint(a, "10")

	// Not the owner.
	trace := e.send(mallory, e.walletOf(a), tons("0.2"), &jetton.Transfer{
		QueryID: 1, Amount: jettons("1"), Destination: mallory, ResponseDestination: mallory,
	})
	require.Equal(t, 705, trace[0].ExitCode)

	// Not enough value for two hops, forward and storage.
	trace = e.send(a, e.walletOf(a), tons("0.04"), &jetton.Transfer{
		QueryID: 2, Amount: jettons("1"), Destination: b, ResponseDestination: a,
	})
	require.Equal(t, 709, trace[0].ExitCode)
	require.Contains(t, trace[0].Err, string(jetton.ReasonNotEnoughTon))

	// Destination outside the basechain.
	trace = e.send(a, e.walletOf(a), tons("0.2"), &jetton.Transfer{
		QueryID: 3, Amount: jettons("1"), Destination: masterchainAddr(2), ResponseDestination: a,
	})
	require.Equal(t, 333, trace[0].ExitCode)

	// Unknown op.
	trace = e.send(a, e.walletOf(a), tons("0.2"), &jetton.ChangeAdmin{QueryID: 4, NewAdmin: a})
	require.Equal(t, 0xffff, trace[0].ExitCode)

	requireAmount(t, "10", e.balance(a))
	e.requireSettled()
}

func TestInternalTransfer_NotValidWallet(t *testing.T) {
	for _, v := range variants {
		t.Run(v.String(), func(t *testing.T) {
			e := newEnv(t, v)
			a, mallory := e.actor(1), e.actor(6)
			e.mint(a, "10")

			trace := e.send(mallory, e.walletOf(a), tons("0.2"), &jetton.InternalTransfer{
				QueryID: 1, Amount: jettons("1000"), From: mallory, ResponseAddress: mallory,
			})
			require.Equal(t, e.exit(jetton.ReasonNotValidWallet), trace[0].ExitCode)
			requireAmount(t, "10", e.balance(a))
			e.requireSettled()
		})
	}
}

func TestBurn(t *testing.T) {
	for _, v := range variants {
		t.Run(v.String(), func(t *testing.T) {
			e := newEnv(t, v)
			a := e.actor(1)
			e.mint(a, "10")

			trace := e.burn(a, "4")
			require.Empty(t, trace.Failed())
			requireAmount(t, "6", e.balance(a))
			requireAmount(t, "6", e.supply())
			require.Len(t, trace.To(a).ByOp(jetton.OpExcesses), 1, "burn excess to response address")

			trace = e.burn(a, "7")
			require.Equal(t, e.exit(jetton.ReasonBalance), trace[0].ExitCode)

			trace = e.send(a, e.walletOf(a), tons("0.02"), &jetton.Burn{QueryID: 9, Amount: jettons("1"), ResponseDestination: a})
			require.Equal(t, e.exit(jetton.ReasonNotEnoughGas), trace[0].ExitCode)
			require.Contains(t, trace[0].Err, string(jetton.ReasonNotEnoughGas))

			requireAmount(t, "6", e.supply())
			e.requireSettled()
		})
	}
}

func TestBurnNotification_Unauthorized(t *testing.T) {
	for _, v := range variants {
		t.Run(v.String(), func(t *testing.T) {
			e := newEnv(t, v)
			a, mallory := e.actor(1), e.actor(6)
			e.mint(a, "10")

			trace := e.send(mallory, e.minter, tons("0.1"), &jetton.BurnNotification{
				QueryID: 1, Amount: jettons("10"), Sender: a, ResponseDestination: mallory,
			})
			require.Equal(t, 74, trace[0].ExitCode)
			requireAmount(t, "10", e.supply())
			e.requireSettled()
		})
	}
}

func TestMinter_AcceptsTopUpAndExcesses(t *testing.T) {
	e := newEnv(t, jetton.VariantBase)
	a := e.actor(1)
	before, err := e.c.Balance(e.minter)
	require.NoError(t, err)

	trace := e.send(a, e.minter, tons("1"), &jetton.Excesses{QueryID: 5})
	require.Empty(t, trace.Failed())
	after, err := e.c.Balance(e.minter)
	require.NoError(t, err)
	require.Equal(t, 1, after.Cmp(before))
}

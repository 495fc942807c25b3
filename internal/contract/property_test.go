package contract

import (
	"math/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"

	"github.com/Klingon-tech/klingnet-jetton/internal/chain"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// TestConservation_RandomOps runs random mints, transfers and burns with
// random delivery faults and checks that supply equals the wallet sum once
// the queue drains.
func TestConservation_RandomOps(t *testing.T) {
	for _, v := range variants {
		t.Run(v.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			e := newEnv(t, v)
			actors := []*address.Address{e.actor(1), e.actor(2), e.actor(3), e.actor(4)}

			e.c.SetFaultInjector(func(m *chain.Message) error {
				if m.Bounced {
					return nil
				}
				switch m.Op() {
				case jetton.OpInternalTransfer, jetton.OpBurnNotification:
					if rng.Intn(4) == 0 {
						return jetton.Abort(e.v, jetton.ReasonContractLocked)
					}
				}
				return nil
			})

			amount := func() *uint256.Int {
				return new(uint256.Int).Mul(uint256.NewInt(uint64(rng.Intn(50))+1), uint256.NewInt(1e8))
			}
			for i := 0; i < 150; i++ {
				from := actors[rng.Intn(len(actors))]
				to := actors[rng.Intn(len(actors))]
				switch rng.Intn(3) {
				case 0:
					e.mintFrom(e.admin, to, amount())
				case 1:
					e.send(from, e.walletOf(from), tons("0.2"), &jetton.Transfer{
						QueryID:             e.nextQueryID(),
						Amount:              amount(),
						Destination:         to,
						ResponseDestination: from,
						ForwardTonAmount:    tlb.MustFromTON("0.01"),
					})
				default:
					e.send(from, e.walletOf(from), tons("0.1"), &jetton.Burn{
						QueryID:             e.nextQueryID(),
						Amount:              amount(),
						ResponseDestination: from,
					})
				}
				e.requireSettled()
			}

			r, err := Audit(e.c, e.minter)
			require.NoError(t, err)
			require.NotZero(t, r.Wallets)
			require.False(t, r.TotalSupply.IsZero())
		})
	}
}

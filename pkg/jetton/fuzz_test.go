package jetton

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// FuzzDecode checks that arbitrary bodies never panic the decoder and that
// whatever decodes also re-encodes.
func FuzzDecode(f *testing.F) {
	f.Add(MustEncode(&Excesses{QueryID: 1}).ToBOC())
	f.Add(MustEncode(&Burn{QueryID: 2, Amount: uint256.NewInt(3)}).ToBOC())
	f.Add(MustEncode(&ProvideWalletAddress{QueryID: 3, Owner: NoAddress(), IncludeAddress: true}).ToBOC())
	f.Add(BounceBody(MustEncode(&BurnNotification{Amount: uint256.NewInt(1)})).ToBOC())

	f.Fuzz(func(t *testing.T, boc []byte) {
		body, err := cell.FromBOC(boc)
		if err != nil {
			return
		}
		m, err := Decode(body)
		if err != nil {
			return
		}
		if _, err := m.Encode(); err != nil {
			// Exotic address forms may not re-encode.
			t.Logf("re-encode %s: %v", OpName(m.Op()), err)
		}
	})
}

// FuzzParseBounce checks that ParseBounce never panics and only accepts
// sentinel-prefixed bodies.
func FuzzParseBounce(f *testing.F) {
	f.Add(BounceBody(MustEncode(&InternalTransfer{Amount: uint256.NewInt(10)})).ToBOC())
	f.Add(MustEncode(&InternalTransfer{Amount: uint256.NewInt(10)}).ToBOC())

	f.Fuzz(func(t *testing.T, boc []byte) {
		body, err := cell.FromBOC(boc)
		if err != nil {
			return
		}
		b, err := ParseBounce(body)
		if err != nil {
			return
		}
		op, _, ok := PeekOp(body)
		if !ok || op != BounceSentinel {
			t.Fatalf("accepted body without sentinel: %x", op)
		}
		if b.Op != OpInternalTransfer && b.Op != OpBurnNotification {
			t.Fatalf("accepted op %x", b.Op)
		}
	})
}

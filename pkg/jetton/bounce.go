package jetton

import (
	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// BounceBodyBits is how much of the original body a bounce preserves.
const BounceBodyBits = 256

// BounceBody builds the body of a bounced message: the sentinel followed by
// the first 256 bits of the original body. References are dropped.
func BounceBody(orig *cell.Cell) *cell.Cell {
	b := cell.BeginCell().MustStoreUInt(uint64(BounceSentinel), 32)
	if orig == nil {
		return b.EndCell()
	}
	n := orig.BitsSize()
	if n > BounceBodyBits {
		n = BounceBodyBits
	}
	if n > 0 {
		data, err := orig.BeginParse().LoadSlice(n)
		if err == nil {
			b.MustStoreSlice(data, n)
		}
	}
	return b.EndCell()
}

// Bounced is the part of a bounced token message that survives truncation.
type Bounced struct {
	Op      uint32
	QueryID uint64
	Amount  *uint256.Int
}

// ParseBounce accepts only sentinel-prefixed echoes of internal_transfer and
// burn_notification. Anything else is rejected with ErrNotBounce.
func ParseBounce(body *cell.Cell) (*Bounced, error) {
	if body == nil {
		return nil, ErrNotBounce
	}
	s := body.BeginParse()
	if s.BitsLeft() < 32+32+64 {
		return nil, ErrNotBounce
	}
	sentinel, _ := s.LoadUInt(32)
	if uint32(sentinel) != BounceSentinel {
		return nil, ErrNotBounce
	}
	op, _ := s.LoadUInt(32)
	if uint32(op) != OpInternalTransfer && uint32(op) != OpBurnNotification {
		return nil, ErrNotBounce
	}
	qid, _ := s.LoadUInt(64)
	amount, err := loadAmount(s)
	if err != nil {
		return nil, ErrNotBounce
	}
	return &Bounced{Op: uint32(op), QueryID: qid, Amount: amount}, nil
}

package contract

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Klingon-tech/klingnet-jetton/internal/chain"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// PendingPrefix is the side-storage namespace of pending deltas.
const PendingPrefix = "pending/"

// Delta is an optimistic mutation awaiting the fate of the message that
// caused it: a supply increment on mint, a balance decrement on transfer or
// burn. It is keyed by the LT of that message.
type Delta struct {
	Op      uint32
	QueryID uint64
	Amount  *uint256.Int
	Peer    *address.Address // destination of the message
}

func deltaKey(lt uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], lt)
	return PendingPrefix + string(buf[:])
}

// DeltaLT extracts the message LT from a pending-delta key.
func DeltaLT(key string) (uint64, bool) {
	if len(key) != len(PendingPrefix)+8 || key[:len(PendingPrefix)] != PendingPrefix {
		return 0, false
	}
	return binary.BigEndian.Uint64([]byte(key[len(PendingPrefix):])), true
}

// op:32 query_id:64 amount:Coins peer:MsgAddress
func (d *Delta) encode() ([]byte, error) {
	b := cell.BeginCell().MustStoreUInt(uint64(d.Op), 32).MustStoreUInt(d.QueryID, 64)
	if err := b.StoreBigCoins(d.Amount.ToBig()); err != nil {
		return nil, fmt.Errorf("delta amount: %w", err)
	}
	if err := b.StoreAddr(d.Peer); err != nil {
		return nil, fmt.Errorf("delta peer: %w", err)
	}
	return b.EndCell().ToBOC(), nil
}

// DecodeDelta parses a stored pending delta.
func DecodeDelta(raw []byte) (*Delta, error) {
	c, err := cell.FromBOC(raw)
	if err != nil {
		return nil, fmt.Errorf("delta boc: %w", err)
	}
	s := c.BeginParse()
	op, err := s.LoadUInt(32)
	if err != nil {
		return nil, err
	}
	qid, err := s.LoadUInt(64)
	if err != nil {
		return nil, err
	}
	amount, err := s.LoadBigCoins()
	if err != nil {
		return nil, err
	}
	peer, err := s.LoadAddr()
	if err != nil {
		return nil, err
	}
	a, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, jetton.ErrAmountRange
	}
	return &Delta{Op: uint32(op), QueryID: qid, Amount: a, Peer: peer}, nil
}

// recordDelta logs d against the message sent with LT lt. It is staged with
// the mutation itself, so both commit or neither does.
func recordDelta(x *chain.Context, lt uint64, d Delta) error {
	raw, err := d.encode()
	if err != nil {
		return err
	}
	x.Put(deltaKey(lt), raw)
	return nil
}

// takeBounced returns the pending delta the inbound bounce answers and
// removes it. It returns nil when the bounce body is not a sentinel echo of a
// token message, when nothing is pending under the original LT, or when the
// echo does not match the recorded op, query id, amount and peer exactly.
func takeBounced(x *chain.Context) (*Delta, error) {
	msg := x.Message()
	echo, err := jetton.ParseBounce(msg.Body)
	if err != nil {
		x.Logger().Debug().Uint64("orig_lt", msg.OrigLT).Msg("Ignoring bounce without token echo")
		return nil, nil
	}
	raw, ok, err := x.Get(deltaKey(msg.OrigLT))
	if err != nil {
		return nil, err
	}
	if !ok {
		x.Logger().Debug().Uint64("orig_lt", msg.OrigLT).Msg("Ignoring bounce with no pending delta")
		return nil, nil
	}
	d, err := DecodeDelta(raw)
	if err != nil {
		return nil, err
	}
	if d.Op != echo.Op || d.QueryID != echo.QueryID || !d.Amount.Eq(echo.Amount) ||
		!jetton.SameAddress(d.Peer, msg.Src) {
		x.Logger().Warn().Uint64("orig_lt", msg.OrigLT).Str("op", jetton.OpName(echo.Op)).
			Msg("Bounce does not match pending delta")
		return nil, nil
	}
	x.Delete(deltaKey(msg.OrigLT))
	return d, nil
}

// settleDelta drops the delta of a delivered message.
func settleDelta(x *chain.Context, lt uint64) error {
	_, ok, err := x.Get(deltaKey(lt))
	if err != nil || !ok {
		return err
	}
	x.Delete(deltaKey(lt))
	return nil
}

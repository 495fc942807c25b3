package jetton

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

func TestBounceBody_Truncates(t *testing.T) {
	orig := MustEncode(&InternalTransfer{
		QueryID:         5,
		Amount:          uint256.NewInt(1_000_000),
		From:            address.NewAddress(0, 0, make([]byte, 32)),
		ResponseAddress: address.NewAddress(0, 0, make([]byte, 32)),
	})
	if orig.BitsSize() <= BounceBodyBits {
		t.Fatalf("test body too short: %d bits", orig.BitsSize())
	}

	b := BounceBody(orig)
	if b.BitsSize() != 32+BounceBodyBits {
		t.Errorf("bounce body bits = %d, want %d", b.BitsSize(), 32+BounceBodyBits)
	}
	if b.RefsNum() != 0 {
		t.Errorf("bounce body refs = %d, want 0", b.RefsNum())
	}
}

func TestBounceBody_ShortBody(t *testing.T) {
	orig := cell.BeginCell().MustStoreUInt(0xab, 8).EndCell()
	b := BounceBody(orig)
	if b.BitsSize() != 40 {
		t.Errorf("bits = %d, want 40", b.BitsSize())
	}
	if BounceBody(nil).BitsSize() != 32 {
		t.Error("nil body should bounce as bare sentinel")
	}
}

func TestParseBounce(t *testing.T) {
	amount := uint256.NewInt(123456789)

	tests := []struct {
		name   string
		body   *cell.Cell
		wantOp uint32
		wantOK bool
	}{
		{
			name:   "internal transfer",
			body:   BounceBody(MustEncode(&InternalTransfer{QueryID: 7, Amount: amount})),
			wantOp: OpInternalTransfer,
			wantOK: true,
		},
		{
			name:   "burn notification",
			body:   BounceBody(MustEncode(&BurnNotification{QueryID: 7, Amount: amount})),
			wantOp: OpBurnNotification,
			wantOK: true,
		},
		{
			name: "no sentinel",
			body: MustEncode(&InternalTransfer{QueryID: 7, Amount: amount}),
		},
		{
			name: "other op",
			body: BounceBody(MustEncode(&Burn{QueryID: 7, Amount: amount})),
		},
		{
			name: "truncated",
			body: cell.BeginCell().MustStoreUInt(uint64(BounceSentinel), 32).MustStoreUInt(uint64(OpInternalTransfer), 32).EndCell(),
		},
		{
			name: "nil",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBounce(tt.body)
			if !tt.wantOK {
				if err == nil {
					t.Fatal("expected rejection")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBounce: %v", err)
			}
			if b.Op != tt.wantOp || b.QueryID != 7 || !b.Amount.Eq(amount) {
				t.Errorf("got op=%x qid=%d amount=%s", b.Op, b.QueryID, b.Amount.Dec())
			}
		})
	}
}

func TestParseBounce_MaxAmountSurvivesTruncation(t *testing.T) {
	body := BounceBody(MustEncode(&InternalTransfer{QueryID: 1, Amount: MaxAmount}))
	b, err := ParseBounce(body)
	if err != nil {
		t.Fatalf("ParseBounce: %v", err)
	}
	if !b.Amount.Eq(MaxAmount) {
		t.Errorf("amount = %s, want %s", b.Amount.Dec(), MaxAmount.Dec())
	}
}

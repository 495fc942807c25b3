package jetton

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

func TestMinterData_RoundTrip(t *testing.T) {
	content := cell.BeginCell().MustStoreUInt(1, 8).MustStoreStringSnake("https://example.org/meta.json").EndCell()
	m := &MinterData{
		TotalSupply: MustParseAmount("1005.66", Decimals),
		Mintable:    true,
		Admin:       AdminState{Current: testAddr(1), Pending: NoAddress()},
		WalletCode:  WalletCode(VariantBase),
		Content:     content,
	}
	c, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeMinterData(c)
	if err != nil {
		t.Fatalf("DecodeMinterData: %v", err)
	}
	if !got.TotalSupply.Eq(m.TotalSupply) || got.Mintable != m.Mintable {
		t.Errorf("supply/mintable mismatch: %s %v", got.TotalSupply.Dec(), got.Mintable)
	}
	if !SameAddress(got.Admin.Current, m.Admin.Current) || !IsNone(got.Admin.Pending) {
		t.Error("admin mismatch")
	}
	if !bytes.Equal(got.WalletCode.Hash(), m.WalletCode.Hash()) || !bytes.Equal(got.Content.Hash(), content.Hash()) {
		t.Error("refs mismatch")
	}
}

func TestWalletData_RoundTrip(t *testing.T) {
	for _, v := range []Variant{VariantBase, VariantGovernance} {
		w := &WalletData{
			Status:     StatusInLocked,
			Balance:    uint256.NewInt(42),
			Owner:      testAddr(1),
			Minter:     testAddr(2),
			WalletCode: WalletCode(v),
		}
		if v == VariantBase {
			w.Status = 0
		}
		c, err := w.Encode(v)
		if err != nil {
			t.Fatalf("%s: Encode: %v", v, err)
		}
		got, err := DecodeWalletData(v, c)
		if err != nil {
			t.Fatalf("%s: Decode: %v", v, err)
		}
		if got.Status != w.Status || !got.Balance.Eq(w.Balance) ||
			!SameAddress(got.Owner, w.Owner) || !SameAddress(got.Minter, w.Minter) {
			t.Errorf("%s: mismatch %+v", v, got)
		}
		if v == VariantBase && !bytes.Equal(got.WalletCode.Hash(), w.WalletCode.Hash()) {
			t.Errorf("%s: wallet code mismatch", v)
		}
	}
}

func TestWalletData_StatusBits(t *testing.T) {
	tests := []struct {
		status   uint8
		outLock, inLock bool
	}{
		{StatusUnlocked, false, false},
		{StatusOutLocked, true, false},
		{StatusInLocked, false, true},
		{StatusFullLocked, true, true},
	}
	for _, tt := range tests {
		w := &WalletData{Status: tt.status}
		if w.OutLocked() != tt.outLock || w.InLocked() != tt.inLock {
			t.Errorf("status %d: out=%v in=%v", tt.status, w.OutLocked(), w.InLocked())
		}
	}

	w := &WalletData{Status: 4, Balance: uint256.NewInt(0), Owner: testAddr(1), Minter: testAddr(2)}
	if _, err := w.Encode(VariantGovernance); err == nil {
		t.Error("expected error for status 4")
	}
}

func TestAdminState_TwoPhase(t *testing.T) {
	s := AdminState{Current: testAddr(1), Pending: NoAddress()}

	if err := s.Claim(testAddr(2)); err != ErrNoPendingAdmin {
		t.Fatalf("Claim without proposal = %v, want ErrNoPendingAdmin", err)
	}

	s.Propose(testAddr(2))
	if !s.IsAdmin(testAddr(1)) {
		t.Fatal("proposal must not change the current admin")
	}
	if err := s.Claim(testAddr(3)); err == nil {
		t.Fatal("Claim by a third party must fail")
	}
	if err := s.Claim(testAddr(2)); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if !s.IsAdmin(testAddr(2)) || s.IsAdmin(testAddr(1)) {
		t.Error("admin not transferred")
	}
	if !IsNone(s.Pending) {
		t.Error("pending admin not cleared")
	}
}

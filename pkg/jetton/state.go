package jetton

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

func zero() *uint256.Int { return new(uint256.Int) }

// AdminState is the two-phase admin handover: the current admin proposes,
// the proposed party claims.
type AdminState struct {
	Current *address.Address
	Pending *address.Address
}

// ErrNoPendingAdmin is returned by Claim when nobody was proposed.
var ErrNoPendingAdmin = errors.New("no pending admin")

// IsAdmin reports whether a is the current admin.
func (s AdminState) IsAdmin(a *address.Address) bool {
	return !IsNone(s.Current) && SameAddress(s.Current, a)
}

// Propose records next as the pending admin.
func (s *AdminState) Propose(next *address.Address) {
	s.Pending = orNone(next)
}

// Claim promotes the pending admin when sender matches it.
func (s *AdminState) Claim(sender *address.Address) error {
	if IsNone(s.Pending) {
		return ErrNoPendingAdmin
	}
	if !SameAddress(s.Pending, sender) {
		return ErrNotAdmin
	}
	s.Current = s.Pending
	s.Pending = NoAddress()
	return nil
}

// MinterData is the persistent state of a minter account.
type MinterData struct {
	TotalSupply *uint256.Int
	Mintable    bool
	Admin       AdminState
	WalletCode  *cell.Cell
	Content     *cell.Cell
}

// Encode serializes the minter state.
func (m *MinterData) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.amount(m.TotalSupply)
	e.bit(m.Mintable)
	e.addr(m.Admin.Current)
	e.addr(m.Admin.Pending)
	e.ref(m.WalletCode)
	e.ref(orEmpty(m.Content))
	c, err := e.end()
	if err != nil {
		return nil, fmt.Errorf("encode minter data: %w", err)
	}
	return c, nil
}

// DecodeMinterData parses a minter data cell.
func DecodeMinterData(c *cell.Cell) (*MinterData, error) {
	if c == nil {
		return nil, errors.New("decode minter data: nil cell")
	}
	d := newDec(c)
	m := &MinterData{}
	m.TotalSupply = d.amount()
	m.Mintable = d.bit()
	m.Admin.Current = d.addr()
	m.Admin.Pending = d.addr()
	m.WalletCode = d.ref()
	m.Content = d.ref()
	if err := d.err; err != nil {
		return nil, fmt.Errorf("decode minter data: %w", err)
	}
	return m, nil
}

// Wallet lock status bits.
const (
	StatusUnlocked   uint8 = 0
	StatusOutLocked  uint8 = 1
	StatusInLocked   uint8 = 2
	StatusFullLocked uint8 = 3
)

// WalletData is the persistent state of a wallet account. Status is only
// stored by the governance variant and WalletCode only by the base variant.
type WalletData struct {
	Status     uint8
	Balance    *uint256.Int
	Owner      *address.Address
	Minter     *address.Address
	WalletCode *cell.Cell
}

// OutLocked reports whether outgoing transfers and burns are forbidden.
func (w *WalletData) OutLocked() bool { return w.Status&StatusOutLocked != 0 }

// InLocked reports whether incoming transfers are forbidden.
func (w *WalletData) InLocked() bool { return w.Status&StatusInLocked != 0 }

// Encode serializes the wallet state in the layout of variant v.
func (w *WalletData) Encode(v Variant) (*cell.Cell, error) {
	e := newEnc()
	switch v {
	case VariantGovernance:
		if w.Status > StatusFullLocked {
			return nil, ErrInvalidStatus
		}
		e.uint(uint64(w.Status), 4)
		e.amount(w.Balance)
		e.addr(w.Owner)
		e.addr(w.Minter)
	case VariantBase:
		e.amount(w.Balance)
		e.addr(w.Owner)
		e.addr(w.Minter)
		e.ref(w.WalletCode)
	default:
		return nil, fmt.Errorf("encode wallet data: %w", ErrUnknownCode)
	}
	c, err := e.end()
	if err != nil {
		return nil, fmt.Errorf("encode wallet data: %w", err)
	}
	return c, nil
}

// DecodeWalletData parses a wallet data cell of variant v. For the
// governance layout WalletCode is left nil.
func DecodeWalletData(v Variant, c *cell.Cell) (*WalletData, error) {
	if c == nil {
		return nil, errors.New("decode wallet data: nil cell")
	}
	d := newDec(c)
	w := &WalletData{}
	switch v {
	case VariantGovernance:
		w.Status = uint8(d.uint(4))
		w.Balance = d.amount()
		w.Owner = d.addr()
		w.Minter = d.addr()
	case VariantBase:
		w.Balance = d.amount()
		w.Owner = d.addr()
		w.Minter = d.addr()
		w.WalletCode = d.ref()
	default:
		return nil, fmt.Errorf("decode wallet data: %w", ErrUnknownCode)
	}
	if err := d.err; err != nil {
		return nil, fmt.Errorf("decode wallet data: %w", err)
	}
	return w, nil
}

func orEmpty(c *cell.Cell) *cell.Cell {
	if c == nil {
		return cell.BeginCell().EndCell()
	}
	return c
}

package jetton

import (
	"fmt"

	"github.com/xssnick/tonutils-go/tvm/cell"
)

// Variant selects between the two contract families.
type Variant uint8

const (
	// VariantBase is the reference token: bare integer exit codes, mintable
	// flag, discovery fee enforced.
	VariantBase Variant = 1
	// VariantGovernance adds wallet lock status, forced transfers and burns,
	// and in-place upgrades, with a named error table.
	VariantGovernance Variant = 2
)

func (v Variant) String() string {
	switch v {
	case VariantBase:
		return "base"
	case VariantGovernance:
		return "governance"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// ParseVariant parses "base" or "governance".
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "base", "":
		return VariantBase, nil
	case "governance", "gov", "stablecoin":
		return VariantGovernance, nil
	}
	return 0, fmt.Errorf("unknown variant %q", s)
}

// Kind tells minter code from wallet code.
type Kind uint8

const (
	KindMinter Kind = 1
	KindWallet Kind = 2
)

// Code images are fixed cells. Their hash identifies the account logic that
// the runtime dispatches to, and feeds address derivation.
const codeMagic = 0x4a45544e // "JETN"

func codeCell(k Kind, v Variant) *cell.Cell {
	return cell.BeginCell().
		MustStoreUInt(codeMagic, 32).
		MustStoreUInt(uint64(k), 8).
		MustStoreUInt(uint64(v), 8).
		EndCell()
}

// MinterCode returns the minter code image of a variant.
func MinterCode(v Variant) *cell.Cell { return codeCell(KindMinter, v) }

// WalletCode returns the wallet code image of a variant.
func WalletCode(v Variant) *cell.Cell { return codeCell(KindWallet, v) }

// ParseCode recovers kind and variant from a code image.
func ParseCode(code *cell.Cell) (Kind, Variant, error) {
	if code == nil {
		return 0, 0, ErrUnknownCode
	}
	s := code.BeginParse()
	if s.BitsLeft() != 48 {
		return 0, 0, ErrUnknownCode
	}
	magic, err := s.LoadUInt(32)
	if err != nil || magic != codeMagic {
		return 0, 0, ErrUnknownCode
	}
	k, _ := s.LoadUInt(8)
	v, _ := s.LoadUInt(8)
	kind, variant := Kind(k), Variant(v)
	if (kind != KindMinter && kind != KindWallet) ||
		(variant != VariantBase && variant != VariantGovernance) {
		return 0, 0, ErrUnknownCode
	}
	return kind, variant, nil
}

// VariantOf returns the variant encoded in a code image.
func VariantOf(code *cell.Cell) (Variant, error) {
	_, v, err := ParseCode(code)
	return v, err
}

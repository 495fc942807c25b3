package jetton

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// Basechain is the only workchain wallets and mint receivers may live in.
const Basechain = 0

// NoAddress returns the addr_none sentinel.
func NoAddress() *address.Address {
	return address.NewAddressNone()
}

// IsNone reports whether a is nil or addr_none.
func IsNone(a *address.Address) bool {
	return a == nil || a.Type() == address.NoneAddress
}

// IsBasechain reports whether a is a standard basechain address.
func IsBasechain(a *address.Address) bool {
	return a != nil && a.Type() == address.StdAddress && a.Workchain() == Basechain
}

// SameAddress compares two addresses by type, workchain and hash part.
// Flags such as bounceable or testnet are ignored.
func SameAddress(a, b *address.Address) bool {
	if IsNone(a) || IsNone(b) {
		return IsNone(a) && IsNone(b)
	}
	return a.Type() == b.Type() &&
		a.Workchain() == b.Workchain() &&
		bytes.Equal(a.Data(), b.Data())
}

// AddressKey returns a stable raw string form usable as a map or storage key.
func AddressKey(a *address.Address) string {
	if IsNone(a) {
		return "none"
	}
	return fmt.Sprintf("%d:%x", a.Workchain(), a.Data())
}

// ParseAddress accepts both user-friendly and raw ("0:<hex>") forms.
func ParseAddress(s string) (*address.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return NoAddress(), nil
	}
	if strings.Contains(s, ":") {
		a, err := address.ParseRawAddr(s)
		if err != nil {
			return nil, fmt.Errorf("parse raw address %q: %w", s, err)
		}
		return a, nil
	}
	a, err := address.ParseAddr(s)
	if err != nil {
		return nil, fmt.Errorf("parse address %q: %w", s, err)
	}
	return a, nil
}

func orNone(a *address.Address) *address.Address {
	if a == nil {
		return NoAddress()
	}
	return a
}

// StateInitCell serializes a StateInit with code and data and nothing else:
// no split depth, no tick-tock, empty library.
func StateInitCell(code, data *cell.Cell) *cell.Cell {
	return cell.BeginCell().
		MustStoreUInt(0b00110, 5).
		MustStoreRef(code).
		MustStoreRef(data).
		EndCell()
}

// StateInit returns the StateInit carried by deploying messages.
func StateInit(code, data *cell.Cell) *tlb.StateInit {
	return &tlb.StateInit{Code: code, Data: data}
}

// ContractAddress is the basechain address of an account with the given
// initial code and data.
func ContractAddress(code, data *cell.Cell) *address.Address {
	return address.NewAddress(0, Basechain, StateInitCell(code, data).Hash())
}

// InitialWalletData returns the data cell a fresh wallet is deployed with.
// The wallet variant is read from the code image.
func InitialWalletData(owner, minter *address.Address, walletCode *cell.Cell) (*cell.Cell, error) {
	v, err := VariantOf(walletCode)
	if err != nil {
		return nil, err
	}
	w := &WalletData{
		Balance:    zero(),
		Owner:      owner,
		Minter:     minter,
		WalletCode: walletCode,
	}
	return w.Encode(v)
}

// WalletStateInit returns the StateInit and address of the wallet of owner
// under minter.
func WalletStateInit(owner, minter *address.Address, walletCode *cell.Cell) (*tlb.StateInit, *address.Address, error) {
	data, err := InitialWalletData(owner, minter, walletCode)
	if err != nil {
		return nil, nil, err
	}
	return StateInit(walletCode, data), ContractAddress(walletCode, data), nil
}

// WalletAddress derives the wallet address of owner under minter. It is a
// pure function of its inputs and matches what the wallets themselves use to
// authenticate peers.
func WalletAddress(owner, minter *address.Address, walletCode *cell.Cell) (*address.Address, error) {
	_, addr, err := WalletStateInit(owner, minter, walletCode)
	return addr, err
}

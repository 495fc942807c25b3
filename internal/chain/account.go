package chain

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// Account is a ledger account. Accounts without code are plain: they accept
// every message and only hold a balance.
type Account struct {
	Address *address.Address
	Balance *big.Int
	Code    *cell.Cell
	Data    *cell.Cell
}

// IsContract reports whether the account runs code.
func (a *Account) IsContract() bool {
	return a.Code != nil
}

// CodeHash returns the hash of the account code, or nil for plain accounts.
func (a *Account) CodeHash() []byte {
	if a.Code == nil {
		return nil
	}
	return a.Code.Hash()
}

// HasCode reports whether the account runs exactly the given code.
func (a *Account) HasCode(code *cell.Cell) bool {
	return a.Code != nil && code != nil && bytes.Equal(a.Code.Hash(), code.Hash())
}

func (a *Account) clone() *Account {
	return &Account{
		Address: a.Address,
		Balance: new(big.Int).Set(a.Balance),
		Code:    a.Code,
		Data:    a.Data,
	}
}

// encodeAccount serializes balance:Coins code:Maybe ^Cell data:Maybe ^Cell.
func encodeAccount(a *Account) ([]byte, error) {
	b := cell.BeginCell()
	if err := b.StoreBigCoins(a.Balance); err != nil {
		return nil, fmt.Errorf("account balance: %w", err)
	}
	if err := b.StoreMaybeRef(a.Code); err != nil {
		return nil, err
	}
	if err := b.StoreMaybeRef(a.Data); err != nil {
		return nil, err
	}
	return b.EndCell().ToBOC(), nil
}

func decodeAccount(addr *address.Address, raw []byte) (*Account, error) {
	c, err := cell.FromBOC(raw)
	if err != nil {
		return nil, fmt.Errorf("account boc: %w", err)
	}
	s := c.BeginParse()
	balance, err := s.LoadBigCoins()
	if err != nil {
		return nil, fmt.Errorf("account balance: %w", err)
	}
	a := &Account{Address: addr, Balance: balance}
	if a.Code, err = loadMaybeCell(s); err != nil {
		return nil, fmt.Errorf("account code: %w", err)
	}
	if a.Data, err = loadMaybeCell(s); err != nil {
		return nil, fmt.Errorf("account data: %w", err)
	}
	return a, nil
}

func loadMaybeCell(s *cell.Slice) (*cell.Cell, error) {
	ref, err := s.LoadMaybeRef()
	if err != nil || ref == nil {
		return nil, err
	}
	return ref.ToCell()
}

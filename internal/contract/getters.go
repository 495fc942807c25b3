package contract

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Klingon-tech/klingnet-jetton/internal/chain"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// Getter errors.
var (
	ErrNotMinter = errors.New("account is not a jetton minter")
	ErrNotWallet = errors.New("account is not a jetton wallet")
)

// JettonData is the get_jetton_data view of a minter.
type JettonData struct {
	Address      *address.Address
	Variant      jetton.Variant
	TotalSupply  *uint256.Int
	Mintable     bool
	Admin        *address.Address
	PendingAdmin *address.Address
	Content      *cell.Cell
	WalletCode   *cell.Cell
}

// WalletState is the get_wallet_data view of a wallet.
type WalletState struct {
	Address *address.Address
	Variant jetton.Variant
	Status  uint8
	Balance *uint256.Int
	Owner   *address.Address
	Minter  *address.Address
	Code    *cell.Cell
}

// GetJettonData reads the state of the minter at addr.
func GetJettonData(c *chain.Chain, addr *address.Address) (*JettonData, error) {
	acct, err := c.Account(addr)
	if err != nil {
		return nil, err
	}
	return jettonData(acct)
}

func jettonData(acct *chain.Account) (*JettonData, error) {
	if !acct.IsContract() {
		return nil, ErrNotMinter
	}
	kind, v, err := jetton.ParseCode(acct.Code)
	if err != nil || kind != jetton.KindMinter {
		return nil, ErrNotMinter
	}
	d, err := jetton.DecodeMinterData(acct.Data)
	if err != nil {
		return nil, fmt.Errorf("minter %s: %w", acct.Address, err)
	}
	return &JettonData{
		Address:      acct.Address,
		Variant:      v,
		TotalSupply:  d.TotalSupply,
		Mintable:     d.Mintable,
		Admin:        d.Admin.Current,
		PendingAdmin: d.Admin.Pending,
		Content:      d.Content,
		WalletCode:   d.WalletCode,
	}, nil
}

// GetWalletAddress derives the wallet of owner under the minter at minter.
// Non-basechain owners yield addr_none, as in discovery.
func GetWalletAddress(c *chain.Chain, minter, owner *address.Address) (*address.Address, error) {
	jd, err := GetJettonData(c, minter)
	if err != nil {
		return nil, err
	}
	if !jetton.IsBasechain(owner) {
		return jetton.NoAddress(), nil
	}
	return jetton.WalletAddress(owner, minter, jd.WalletCode)
}

// GetWalletData reads the state of the wallet at addr.
func GetWalletData(c *chain.Chain, addr *address.Address) (*WalletState, error) {
	acct, err := c.Account(addr)
	if err != nil {
		return nil, err
	}
	return walletState(acct)
}

func walletState(acct *chain.Account) (*WalletState, error) {
	if !acct.IsContract() {
		return nil, ErrNotWallet
	}
	kind, v, err := jetton.ParseCode(acct.Code)
	if err != nil || kind != jetton.KindWallet {
		return nil, ErrNotWallet
	}
	d, err := jetton.DecodeWalletData(v, acct.Data)
	if err != nil {
		return nil, fmt.Errorf("wallet %s: %w", acct.Address, err)
	}
	return &WalletState{
		Address: acct.Address,
		Variant: v,
		Status:  d.Status,
		Balance: d.Balance,
		Owner:   d.Owner,
		Minter:  d.Minter,
		Code:    acct.Code,
	}, nil
}

// GetBalance returns the token balance of owner under minter, zero when the
// wallet was never deployed.
func GetBalance(c *chain.Chain, minter, owner *address.Address) (*uint256.Int, error) {
	wallet, err := GetWalletAddress(c, minter, owner)
	if err != nil {
		return nil, err
	}
	if jetton.IsNone(wallet) {
		return new(uint256.Int), nil
	}
	ws, err := GetWalletData(c, wallet)
	if errors.Is(err, chain.ErrAccountNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	return ws.Balance, nil
}

// PendingDeltas lists the unsettled deltas of the account at addr by LT.
func PendingDeltas(c *chain.Chain, addr *address.Address) (map[uint64]*Delta, error) {
	out := make(map[uint64]*Delta)
	err := c.ForEachSide(addr, PendingPrefix, func(key string, value []byte) error {
		lt, ok := DeltaLT(key)
		if !ok {
			return nil
		}
		d, err := DecodeDelta(value)
		if err != nil {
			return fmt.Errorf("delta %d: %w", lt, err)
		}
		out[lt] = d
		return nil
	})
	return out, err
}

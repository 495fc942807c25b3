package contract

import (
	"encoding/hex"
	"fmt"
	"math/big"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Klingon-tech/klingnet-jetton/config"
	"github.com/Klingon-tech/klingnet-jetton/internal/chain"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// DiscoveryPolicy decides whether discovery requests must carry a minimum
// value.
type DiscoveryPolicy uint8

const (
	DiscoveryAuto    DiscoveryPolicy = iota // enforced for the base variant only
	DiscoveryEnforce                        // always enforced
	DiscoverySkip                           // never enforced
)

// PolicyFromConfig maps the configured fee mode to a policy.
func PolicyFromConfig(mode config.DiscoveryFeeMode) (DiscoveryPolicy, error) {
	switch mode {
	case config.DiscoveryFeeAuto, "":
		return DiscoveryAuto, nil
	case config.DiscoveryFeeOn:
		return DiscoveryEnforce, nil
	case config.DiscoveryFeeOff:
		return DiscoverySkip, nil
	}
	return 0, fmt.Errorf("unknown discovery fee mode %q", mode)
}

// Enforced reports whether the fee is checked for minters of variant v.
func (p DiscoveryPolicy) Enforced(v jetton.Variant) bool {
	switch p {
	case DiscoveryEnforce:
		return true
	case DiscoverySkip:
		return false
	}
	return v == jetton.VariantBase
}

func (p DiscoveryPolicy) String() string {
	switch p {
	case DiscoveryEnforce:
		return "on"
	case DiscoverySkip:
		return "off"
	}
	return "auto"
}

// DefaultCacheSize is the number of derived wallets an AddressCache keeps.
const DefaultCacheSize = 4096

type derived struct {
	addr *address.Address
	init *tlb.StateInit
}

// AddressCache memoizes wallet address derivation. Derivation is a pure
// function of (owner, minter, wallet code), so a cached answer is always the
// answer derivation would give.
type AddressCache struct {
	cache *lru.Cache[string, derived]
}

// NewAddressCache creates a cache holding up to size derivations.
func NewAddressCache(size int) (*AddressCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, derived](size)
	if err != nil {
		return nil, fmt.Errorf("address cache: %w", err)
	}
	return &AddressCache{cache: c}, nil
}

func cacheKey(owner, minter *address.Address, code *cell.Cell) string {
	return jetton.AddressKey(owner) + "|" + jetton.AddressKey(minter) + "|" + hex.EncodeToString(code.Hash())
}

// WalletStateInit returns the StateInit and address of the wallet of owner
// under minter.
func (c *AddressCache) WalletStateInit(owner, minter *address.Address, code *cell.Cell) (*tlb.StateInit, *address.Address, error) {
	key := cacheKey(owner, minter, code)
	if d, ok := c.cache.Get(key); ok {
		return d.init, d.addr, nil
	}
	init, addr, err := jetton.WalletStateInit(owner, minter, code)
	if err != nil {
		return nil, nil, err
	}
	c.cache.Add(key, derived{addr: addr, init: init})
	return init, addr, nil
}

// WalletAddress derives the wallet address of owner under minter.
func (c *AddressCache) WalletAddress(owner, minter *address.Address, code *cell.Cell) (*address.Address, error) {
	_, addr, err := c.WalletStateInit(owner, minter, code)
	return addr, err
}

// Len returns the number of cached derivations.
func (c *AddressCache) Len() int {
	return c.cache.Len()
}

// discoverWallet resolves the wallet of owner, or addr_none when owner is not
// a basechain address.
func (m *Minter) discoverWallet(owner, minter *address.Address, code *cell.Cell) (*address.Address, error) {
	if !jetton.IsBasechain(owner) {
		return jetton.NoAddress(), nil
	}
	return m.cache.WalletAddress(owner, minter, code)
}

// provideWalletAddress answers a discovery request. A bad candidate owner is
// answered with addr_none; only a missing fee aborts.
func (m *Minter) provideWalletAddress(x *chain.Context, d *jetton.MinterData, req *jetton.ProvideWalletAddress) error {
	if m.policy.Enforced(m.variant) && x.Value().Cmp(x.Params().DiscoveryMinValue()) <= 0 {
		return m.abort(jetton.ReasonDiscoveryFee)
	}
	wallet, err := m.discoverWallet(req.Owner, x.Address(), d.WalletCode)
	if err != nil {
		return err
	}
	reply := &jetton.TakeWalletAddress{QueryID: req.QueryID, Wallet: wallet}
	if req.IncludeAddress {
		reply.Owner = req.Owner
		if reply.Owner == nil {
			reply.Owner = jetton.NoAddress()
		}
	}
	return send(x, chain.OutMessage{
		Dst:    x.Sender(),
		Value:  new(big.Int),
		Mode:   chain.SendCarryInbound,
		Bounce: true,
	}, reply)
}

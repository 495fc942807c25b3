// Package contract implements the minter and wallet accounts of the jetton
// ledger on top of the chain runtime.
//
// Every handler validates first, then stages its state mutation, then emits
// outbound messages. Mutations whose downstream message may bounce are logged
// as pending deltas (see pending.go) so a bounce reverses exactly what the
// message promised.
package contract

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Klingon-tech/klingnet-jetton/config"
	"github.com/Klingon-tech/klingnet-jetton/internal/chain"
	klog "github.com/Klingon-tech/klingnet-jetton/internal/log"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// Options configure the contract implementations.
type Options struct {
	Discovery DiscoveryPolicy
	CacheSize int
}

// Registry holds the registered implementations.
type Registry struct {
	Cache   *AddressCache
	Minters map[jetton.Variant]*Minter
	Wallets map[jetton.Variant]*Wallet
}

// Register binds minter and wallet logic of both variants to c.
func Register(c *chain.Chain, opts Options) (*Registry, error) {
	cache, err := NewAddressCache(opts.CacheSize)
	if err != nil {
		return nil, err
	}
	r := &Registry{
		Cache:   cache,
		Minters: make(map[jetton.Variant]*Minter),
		Wallets: make(map[jetton.Variant]*Wallet),
	}
	for _, v := range []jetton.Variant{jetton.VariantBase, jetton.VariantGovernance} {
		m := &Minter{
			variant: v,
			policy:  opts.Discovery,
			cache:   cache,
			log:     klog.Minter.With().Str("variant", v.String()).Logger(),
		}
		w := &Wallet{
			variant: v,
			cache:   cache,
			log:     klog.Wallet.With().Str("variant", v.String()).Logger(),
		}
		if err := c.RegisterCode(jetton.MinterCode(v), m); err != nil {
			return nil, fmt.Errorf("register %s minter: %w", v, err)
		}
		if err := c.RegisterCode(jetton.WalletCode(v), w); err != nil {
			return nil, fmt.Errorf("register %s wallet: %w", v, err)
		}
		r.Minters[v], r.Wallets[v] = m, w
	}
	return r, nil
}

// MinterInit returns the code and initial data of a fresh minter.
func MinterInit(v jetton.Variant, admin *address.Address, content *cell.Cell) (*cell.Cell, *cell.Cell, error) {
	if jetton.IsNone(admin) {
		return nil, nil, errors.New("minter admin is required")
	}
	d := &jetton.MinterData{
		TotalSupply: new(uint256.Int),
		Mintable:    true,
		Admin:       jetton.AdminState{Current: admin, Pending: jetton.NoAddress()},
		WalletCode:  jetton.WalletCode(v),
		Content:     content,
	}
	data, err := d.Encode()
	if err != nil {
		return nil, nil, err
	}
	return jetton.MinterCode(v), data, nil
}

// DeployMinter deploys a minter administered by admin and funds it with value.
func DeployMinter(c *chain.Chain, v jetton.Variant, admin *address.Address, content *cell.Cell, value *big.Int) (*address.Address, error) {
	code, data, err := MinterInit(v, admin, content)
	if err != nil {
		return nil, err
	}
	return c.Deploy(code, data, value)
}

// NewMint builds a mint request. The internal transfer names the admin as
// its origin and the minter as the response address, so fee excess flows
// back to the minter.
func NewMint(queryID uint64, admin, minter, receiver *address.Address, amount *uint256.Int, forwardTon, totalTon *big.Int, forwardPayload jetton.Payload) *jetton.Mint {
	if forwardTon == nil {
		forwardTon = new(big.Int)
	}
	return &jetton.Mint{
		QueryID:   queryID,
		Receiver:  receiver,
		TonAmount: tlb.FromNanoTON(totalTon),
		Message: &jetton.InternalTransfer{
			QueryID:          queryID,
			Amount:           amount,
			From:             admin,
			ResponseAddress:  minter,
			ForwardTonAmount: tlb.FromNanoTON(forwardTon),
			ForwardPayload:   forwardPayload,
		},
	}
}

// send encodes body and stages the outbound message.
func send(x *chain.Context, out chain.OutMessage, body jetton.Message) error {
	_, err := sendLT(x, out, body)
	return err
}

// sendLT is send that also returns the LT the message will carry.
func sendLT(x *chain.Context, out chain.OutMessage, body jetton.Message) (uint64, error) {
	c, err := body.Encode()
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", jetton.OpName(body.Op()), err)
	}
	out.Body = c
	return x.Send(out), nil
}

// decodeBody decodes the inbound body, mapping codec failures to aborts.
// A body without an op is a plain top-up and yields (nil, nil).
func decodeBody(x *chain.Context, v jetton.Variant) (jetton.Message, error) {
	if _, _, ok := jetton.PeekOp(x.Body()); !ok {
		return nil, nil
	}
	msg, err := jetton.Decode(x.Body())
	if err == nil {
		return msg, nil
	}
	if errors.Is(err, jetton.ErrUnexpectedOp) {
		return nil, jetton.Abort(v, jetton.ReasonUnknownOp)
	}
	return nil, jetton.Abort(v, jetton.ReasonMalformedPayload)
}

// claimTon withdraws amount, or everything above the storage reserve when
// amount is zero, to receiver.
func claimTon(x *chain.Context, v jetton.Variant, req *jetton.ClaimTon) error {
	if !jetton.IsBasechain(req.Receiver) {
		return jetton.Abort(v, jetton.ReasonWrongWorkchain)
	}
	reserve := config.Nano(x.Params().MinTonsForStorage)
	avail := new(big.Int).Sub(x.Balance(), reserve)
	amount := req.Amount.Nano()
	if amount.Sign() == 0 {
		amount = avail
	}
	if avail.Sign() <= 0 || amount.Cmp(avail) > 0 || amount.Cmp(config.Nano(x.Params().ForwardFee)) <= 0 {
		return jetton.Abort(v, jetton.ReasonNotEnoughTon)
	}
	x.Reserve(reserve)
	x.Send(chain.OutMessage{Dst: req.Receiver, Value: amount, Bounce: false})
	return nil
}

func addAmount(a, b *uint256.Int) (*uint256.Int, bool) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow || !jetton.FitsCoins(sum) {
		return nil, false
	}
	return sum, true
}

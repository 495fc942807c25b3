package contract

import (
	"fmt"
	"math/big"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/klingnet-jetton/internal/chain"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// Minter is the account logic of a token minter. One implementation serves
// every minter of its variant; all state lives in the account data.
type Minter struct {
	variant jetton.Variant
	policy  DiscoveryPolicy
	cache   *AddressCache
	log     zerolog.Logger
}

// Logger returns the component logger used for minter transactions.
func (m *Minter) Logger() zerolog.Logger { return m.log }

// Variant returns the contract variant.
func (m *Minter) Variant() jetton.Variant { return m.variant }

func (m *Minter) abort(r jetton.Reason) error {
	return jetton.Abort(m.variant, r)
}

// Receive handles one inbound message.
func (m *Minter) Receive(x *chain.Context) error {
	d, err := jetton.DecodeMinterData(x.Data())
	if err != nil {
		return fmt.Errorf("minter state: %w", err)
	}
	if x.Bounced() {
		return m.onBounce(x, d)
	}
	msg, err := decodeBody(x, m.variant)
	if err != nil || msg == nil {
		return err
	}

	switch req := msg.(type) {
	case *jetton.Mint:
		return m.mint(x, d, req)
	case *jetton.BurnNotification:
		return m.burnNotification(x, d, req)
	case *jetton.ProvideWalletAddress:
		return m.provideWalletAddress(x, d, req)
	case *jetton.Excesses:
		return nil
	case *jetton.ClaimAdmin:
		if err := d.Admin.Claim(x.Sender()); err != nil {
			return m.abort(jetton.ReasonNotAdmin)
		}
		x.Logger().Info().Str("admin", d.Admin.Current.String()).Msg("Admin claimed")
		return m.save(x, d)
	}

	// Everything below is admin-only.
	if !d.Admin.IsAdmin(x.Sender()) {
		return m.abort(jetton.ReasonNotAdmin)
	}
	switch req := msg.(type) {
	case *jetton.ChangeAdmin:
		d.Admin.Propose(req.NewAdmin)
		return m.save(x, d)
	case *jetton.ChangeContent:
		d.Content = req.Content
		return m.save(x, d)
	case *jetton.CloseMinting:
		d.Mintable = false
		return m.save(x, d)
	case *jetton.ClaimTon:
		return claimTon(x, m.variant, req)
	}

	if m.variant != jetton.VariantGovernance {
		return m.abort(jetton.ReasonUnknownOp)
	}
	switch req := msg.(type) {
	case *jetton.CallTo:
		return m.callTo(x, d, req)
	case *jetton.Upgrade:
		return m.upgrade(x, req)
	}
	return m.abort(jetton.ReasonUnknownOp)
}

// upgrade replaces code and data after checking that the minter can still
// decode its state and derive wallets under them.
func (m *Minter) upgrade(x *chain.Context, req *jetton.Upgrade) error {
	kind, _, err := jetton.ParseCode(req.NewCode)
	if err != nil || kind != jetton.KindMinter {
		return m.abort(jetton.ReasonMalformedPayload)
	}
	nd, err := jetton.DecodeMinterData(req.NewData)
	if err != nil {
		return m.abort(jetton.ReasonMalformedPayload)
	}
	if wk, _, err := jetton.ParseCode(nd.WalletCode); err != nil || wk != jetton.KindWallet {
		return m.abort(jetton.ReasonMalformedPayload)
	}
	if err := x.SetCode(req.NewCode); err != nil {
		return m.abort(jetton.ReasonMalformedPayload)
	}
	x.SetData(req.NewData)
	x.Logger().Info().Msg("Minter upgraded")
	return nil
}

// mint increments the supply optimistically and sends the internal transfer
// to the receiver's wallet, deploying it if needed.
func (m *Minter) mint(x *chain.Context, d *jetton.MinterData, req *jetton.Mint) error {
	if !d.Admin.IsAdmin(x.Sender()) {
		return m.abort(jetton.ReasonNotAdmin)
	}
	if !d.Mintable {
		return m.abort(jetton.ReasonMintClosed)
	}
	if !jetton.IsBasechain(req.Receiver) {
		return m.abort(jetton.ReasonWrongWorkchain)
	}
	it := req.Message
	if it == nil || it.Amount == nil {
		return m.abort(jetton.ReasonMalformedPayload)
	}
	if req.TonAmount.Nano().Cmp(it.ForwardTonAmount.Nano()) <= 0 {
		return m.abort(jetton.ReasonInsufficientValue)
	}
	// The wallet must be able to bounce the transfer back.
	if req.TonAmount.Nano().Cmp(x.Params().MintMinValue(it.ForwardTonAmount.Nano())) <= 0 {
		return m.abort(jetton.ReasonInsufficientValue)
	}
	supply, ok := addAmount(d.TotalSupply, it.Amount)
	if !ok {
		return m.abort(jetton.ReasonAmountOverflow)
	}

	init, wallet, err := m.cache.WalletStateInit(req.Receiver, x.Address(), d.WalletCode)
	if err != nil {
		return err
	}
	d.TotalSupply = supply
	if err := m.save(x, d); err != nil {
		return err
	}
	lt, err := sendLT(x, chain.OutMessage{
		Dst:       wallet,
		Value:     req.TonAmount.Nano(),
		Mode:      chain.SendPayFees,
		Bounce:    true,
		StateInit: init,
	}, it)
	if err != nil {
		return err
	}
	x.Logger().Info().Str("receiver", req.Receiver.String()).Str("amount", it.Amount.Dec()).
		Str("supply", supply.Dec()).Msg("Mint")
	return recordDelta(x, lt, Delta{
		Op:      jetton.OpInternalTransfer,
		QueryID: it.QueryID,
		Amount:  it.Amount,
		Peer:    wallet,
	})
}

// burnNotification accepts a burn from the wallet derived for the claimed
// owner and decrements the supply.
func (m *Minter) burnNotification(x *chain.Context, d *jetton.MinterData, req *jetton.BurnNotification) error {
	wallet, err := m.cache.WalletAddress(req.Sender, x.Address(), d.WalletCode)
	if err != nil || !jetton.SameAddress(wallet, x.Sender()) {
		return m.abort(jetton.ReasonUnauthorizedBurn)
	}
	if d.TotalSupply.Lt(req.Amount) {
		return m.abort(jetton.ReasonBalance)
	}
	d.TotalSupply = d.TotalSupply.Clone().Sub(d.TotalSupply, req.Amount)
	if err := m.save(x, d); err != nil {
		return err
	}
	x.Logger().Info().Str("owner", req.Sender.String()).Str("amount", req.Amount.Dec()).
		Str("supply", d.TotalSupply.Dec()).Msg("Burn")
	if jetton.IsNone(req.ResponseDestination) {
		return nil
	}
	return send(x, chain.OutMessage{
		Dst:   req.ResponseDestination,
		Value: new(big.Int),
		Mode:  chain.SendCarryInbound | chain.SendIgnoreErrors,
	}, &jetton.Excesses{QueryID: req.QueryID})
}

// callTo delivers a privileged transfer, burn or status change to the wallet
// of req.Owner.
func (m *Minter) callTo(x *chain.Context, d *jetton.MinterData, req *jetton.CallTo) error {
	if !jetton.IsBasechain(req.Owner) {
		return m.abort(jetton.ReasonWrongWorkchain)
	}
	switch req.Action.(type) {
	case *jetton.Transfer, *jetton.Burn, *jetton.SetStatus:
	default:
		return m.abort(jetton.ReasonMalformedPayload)
	}
	init, wallet, err := m.cache.WalletStateInit(req.Owner, x.Address(), d.WalletCode)
	if err != nil {
		return err
	}
	x.Logger().Info().Str("owner", req.Owner.String()).Str("op", jetton.OpName(req.Action.Op())).
		Msg("Privileged call")
	return send(x, chain.OutMessage{
		Dst:       wallet,
		Value:     req.TonAmount.Nano(),
		Mode:      chain.SendPayFees,
		Bounce:    true,
		StateInit: init,
	}, req.Action)
}

// onBounce reverses the supply increment of a mint whose internal transfer
// bounced.
func (m *Minter) onBounce(x *chain.Context, d *jetton.MinterData) error {
	delta, err := takeBounced(x)
	if err != nil || delta == nil {
		return err
	}
	if delta.Op != jetton.OpInternalTransfer {
		return nil
	}
	if d.TotalSupply.Lt(delta.Amount) {
		return fmt.Errorf("rollback of %s exceeds supply %s", delta.Amount.Dec(), d.TotalSupply.Dec())
	}
	d.TotalSupply = d.TotalSupply.Clone().Sub(d.TotalSupply, delta.Amount)
	x.Logger().Info().Str("amount", delta.Amount.Dec()).Str("supply", d.TotalSupply.Dec()).
		Msg("Mint rolled back")
	return m.save(x, d)
}

// Settle drops the pending delta of a delivered mint.
func (m *Minter) Settle(x *chain.Context, lt uint64) error {
	return settleDelta(x, lt)
}

func (m *Minter) save(x *chain.Context, d *jetton.MinterData) error {
	c, err := d.Encode()
	if err != nil {
		return err
	}
	x.SetData(c)
	return nil
}

package contract

import (
	"fmt"
	"math/big"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/klingnet-jetton/config"
	"github.com/Klingon-tech/klingnet-jetton/internal/chain"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// Wallet is the account logic of a jetton wallet.
type Wallet struct {
	variant jetton.Variant
	cache   *AddressCache
	log     zerolog.Logger
}

// Logger returns the component logger used for wallet transactions.
func (w *Wallet) Logger() zerolog.Logger { return w.log }

// Variant returns the contract variant.
func (w *Wallet) Variant() jetton.Variant { return w.variant }

func (w *Wallet) abort(r jetton.Reason) error {
	return jetton.Abort(w.variant, r)
}

// Receive handles one inbound message.
func (w *Wallet) Receive(x *chain.Context) error {
	d, err := jetton.DecodeWalletData(w.variant, x.Data())
	if err != nil {
		return fmt.Errorf("wallet state: %w", err)
	}
	if x.Bounced() {
		return w.onBounce(x, d)
	}
	msg, err := decodeBody(x, w.variant)
	if err != nil || msg == nil {
		return err
	}

	switch req := msg.(type) {
	case *jetton.Transfer:
		return w.transfer(x, d, req)
	case *jetton.InternalTransfer:
		return w.internalTransfer(x, d, req)
	case *jetton.Burn:
		return w.burn(x, d, req)
	case *jetton.ProvideWalletBalance:
		return w.provideBalance(x, d, req)
	case *jetton.ClaimTon:
		if !jetton.SameAddress(x.Sender(), d.Owner) {
			return w.abort(jetton.ReasonNotOwner)
		}
		return claimTon(x, w.variant, req)
	case *jetton.SetStatus:
		if w.variant != jetton.VariantGovernance {
			return w.abort(jetton.ReasonUnknownOp)
		}
		if !jetton.SameAddress(x.Sender(), d.Minter) {
			return w.abort(jetton.ReasonNotValidWallet)
		}
		d.Status = req.Status
		x.Logger().Info().Uint8("status", req.Status).Msg("Wallet status changed")
		return w.save(x, d)
	}
	return w.abort(jetton.ReasonUnknownOp)
}

// privileged reports whether the sender may bypass owner and out-lock checks.
func (w *Wallet) privileged(x *chain.Context, d *jetton.WalletData) bool {
	return w.variant == jetton.VariantGovernance && jetton.SameAddress(x.Sender(), d.Minter)
}

// transfer debits the balance optimistically and sends the internal transfer
// to the destination owner's wallet.
func (w *Wallet) transfer(x *chain.Context, d *jetton.WalletData, req *jetton.Transfer) error {
	forced := w.privileged(x, d)
	if !forced && !jetton.SameAddress(x.Sender(), d.Owner) {
		return w.abort(jetton.ReasonNotOwner)
	}
	if !forced && d.OutLocked() {
		return w.abort(jetton.ReasonContractLocked)
	}
	if !jetton.IsBasechain(req.Destination) {
		return w.abort(jetton.ReasonWrongWorkchain)
	}
	if req.Amount.Gt(d.Balance) {
		return w.abort(jetton.ReasonBalance)
	}
	if x.Value().Cmp(x.Params().TransferMinValue(req.ForwardTonAmount.Nano())) <= 0 {
		return w.abort(jetton.ReasonInsufficientValue)
	}

	init, peer, err := w.cache.WalletStateInit(req.Destination, d.Minter, x.Code())
	if err != nil {
		return err
	}
	d.Balance = d.Balance.Clone().Sub(d.Balance, req.Amount)
	if err := w.save(x, d); err != nil {
		return err
	}
	it := &jetton.InternalTransfer{
		QueryID:          req.QueryID,
		Amount:           req.Amount,
		From:             d.Owner,
		ResponseAddress:  req.ResponseDestination,
		ForwardTonAmount: req.ForwardTonAmount,
		ForwardPayload:   req.ForwardPayload,
	}
	lt, err := sendLT(x, chain.OutMessage{
		Dst:       peer,
		Value:     new(big.Int),
		Mode:      chain.SendCarryInbound,
		Bounce:    true,
		StateInit: init,
	}, it)
	if err != nil {
		return err
	}
	return recordDelta(x, lt, Delta{
		Op:      jetton.OpInternalTransfer,
		QueryID: req.QueryID,
		Amount:  req.Amount,
		Peer:    peer,
	})
}

// internalTransfer credits an incoming amount, notifies the owner when a
// forward amount is attached and returns the excess.
func (w *Wallet) internalTransfer(x *chain.Context, d *jetton.WalletData, req *jetton.InternalTransfer) error {
	if d.InLocked() {
		return w.abort(jetton.ReasonContractLocked)
	}
	if !jetton.SameAddress(x.Sender(), d.Minter) {
		peer, err := w.cache.WalletAddress(req.From, d.Minter, x.Code())
		if err != nil || !jetton.SameAddress(peer, x.Sender()) {
			return w.abort(jetton.ReasonNotValidWallet)
		}
	}
	balance, ok := addAmount(d.Balance, req.Amount)
	if !ok {
		return w.abort(jetton.ReasonAmountOverflow)
	}
	d.Balance = balance
	if err := w.save(x, d); err != nil {
		return err
	}

	p := x.Params()
	minStorage := config.Nano(p.MinTonsForStorage)
	storageFee := new(big.Int).Sub(minStorage, minBig(x.BalanceBefore(), minStorage))
	left := new(big.Int).Sub(x.Value(), storageFee)
	left.Sub(left, config.Nano(p.GasConsumption))

	forward := req.ForwardTonAmount.Nano()
	if forward.Sign() > 0 {
		left.Sub(left, forward)
		left.Sub(left, config.Nano(p.ForwardFee))
		err := send(x, chain.OutMessage{
			Dst:   d.Owner,
			Value: forward,
			Mode:  chain.SendPayFees,
		}, &jetton.TransferNotification{
			QueryID:        req.QueryID,
			Amount:         req.Amount,
			Sender:         req.From,
			ForwardPayload: req.ForwardPayload,
		})
		if err != nil {
			return err
		}
	}
	if !jetton.IsNone(req.ResponseAddress) && left.Sign() > 0 {
		return send(x, chain.OutMessage{
			Dst:   req.ResponseAddress,
			Value: left,
			Mode:  chain.SendIgnoreErrors,
		}, &jetton.Excesses{QueryID: req.QueryID})
	}
	return nil
}

// burn debits the balance optimistically and notifies the minter.
func (w *Wallet) burn(x *chain.Context, d *jetton.WalletData, req *jetton.Burn) error {
	forced := w.privileged(x, d)
	if !forced && !jetton.SameAddress(x.Sender(), d.Owner) {
		return w.abort(jetton.ReasonNotOwner)
	}
	if !forced && d.OutLocked() {
		return w.abort(jetton.ReasonContractLocked)
	}
	if req.Amount.Gt(d.Balance) {
		return w.abort(jetton.ReasonBalance)
	}
	if x.Value().Cmp(x.Params().BurnMinValue()) <= 0 {
		return w.abort(jetton.ReasonNotEnoughGas)
	}

	d.Balance = d.Balance.Clone().Sub(d.Balance, req.Amount)
	if err := w.save(x, d); err != nil {
		return err
	}
	lt, err := sendLT(x, chain.OutMessage{
		Dst:    d.Minter,
		Value:  new(big.Int),
		Mode:   chain.SendCarryInbound,
		Bounce: true,
	}, &jetton.BurnNotification{
		QueryID:             req.QueryID,
		Amount:              req.Amount,
		Sender:              d.Owner,
		ResponseDestination: req.ResponseDestination,
	})
	if err != nil {
		return err
	}
	return recordDelta(x, lt, Delta{
		Op:      jetton.OpBurnNotification,
		QueryID: req.QueryID,
		Amount:  req.Amount,
		Peer:    d.Minter,
	})
}

func (w *Wallet) provideBalance(x *chain.Context, d *jetton.WalletData, req *jetton.ProvideWalletBalance) error {
	if jetton.IsNone(req.Receiver) {
		return w.abort(jetton.ReasonMalformedPayload)
	}
	reply := &jetton.TakeWalletBalance{QueryID: req.QueryID, Balance: d.Balance}
	if req.IncludeVerifyInfo {
		reply.Verify = &jetton.VerifyInfo{Owner: d.Owner, Minter: d.Minter, WalletCode: x.Code()}
	}
	return send(x, chain.OutMessage{
		Dst:   req.Receiver,
		Value: new(big.Int),
		Mode:  chain.SendCarryInbound,
	}, reply)
}

// onBounce restores the balance debited by a transfer or burn whose message
// bounced.
func (w *Wallet) onBounce(x *chain.Context, d *jetton.WalletData) error {
	delta, err := takeBounced(x)
	if err != nil || delta == nil {
		return err
	}
	balance, ok := addAmount(d.Balance, delta.Amount)
	if !ok {
		return fmt.Errorf("rollback of %s overflows balance", delta.Amount.Dec())
	}
	d.Balance = balance
	x.Logger().Info().Str("amount", delta.Amount.Dec()).Str("op", jetton.OpName(delta.Op)).
		Msg("Debit rolled back")
	return w.save(x, d)
}

// Settle drops the pending delta of a delivered transfer or burn.
func (w *Wallet) Settle(x *chain.Context, lt uint64) error {
	return settleDelta(x, lt)
}

func (w *Wallet) save(x *chain.Context, d *jetton.WalletData) error {
	c, err := d.Encode(w.variant)
	if err != nil {
		return err
	}
	x.SetData(c)
	return nil
}

func minBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) < 0 {
		return a
	}
	return b
}

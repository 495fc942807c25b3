package chain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"

	"github.com/Klingon-tech/klingnet-jetton/config"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// Exit codes produced by the runtime itself.
const (
	ExitOK            = 0
	ExitActionPhase   = 37 // an outbound message could not be sent
	ExitUninitialized = -1 // bounceable message to an account without code
	ExitInternal      = -2 // handler failed without an exit code
)

// Action phase errors.
var (
	ErrActionFunds  = errors.New("not enough balance for outbound message")
	ErrActionTarget = errors.New("outbound message has no destination")
)

// PhaseError is a runtime failure carrying an exit code.
type PhaseError struct {
	Code int
	Err  error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("exit %d: %v", e.Code, e.Err)
}

// Unwrap returns the underlying error.
func (e *PhaseError) Unwrap() error { return e.Err }

// ExitCode returns the exit code.
func (e *PhaseError) ExitCode() int { return e.Code }

func exitCodeOf(err error) int {
	var ec interface{ ExitCode() int }
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return ExitInternal
}

// deliver runs one transaction: msg against its destination. All writes are
// committed in one batch. It returns the LTs of the messages it queued.
func (c *Chain) deliver(msg *Message) (*TxResult, []uint64, error) {
	st := c.state.clone()
	st.TxCount++
	res := newTxResult(msg)
	b := c.store.newBatch()
	if err := b.deleteQueued(msg.LT); err != nil {
		return nil, nil, err
	}

	value := msg.Value.Nano()
	if jetton.IsNone(msg.Dst) || msg.Dst.Type() != address.StdAddress {
		// Nothing can receive it; the value is burned into fees.
		st.Fees.Add(st.Fees, value)
		res.ExitCode = ExitInternal
		res.Err = ErrBadAddress.Error()
		return c.finish(b, st, res, nil)
	}

	acct, err := c.store.GetAccount(msg.Dst)
	if err != nil {
		return nil, nil, err
	}
	exists := acct != nil
	if !exists {
		acct = &Account{Address: msg.Dst, Balance: new(big.Int)}
	}
	before := new(big.Int).Set(acct.Balance)
	acct.Balance.Add(acct.Balance, value)

	if !acct.IsContract() && c.canDeploy(msg) {
		acct.Code, acct.Data = msg.StateInit.Code, msg.StateInit.Data
		res.Deployed = true
	}

	if !acct.IsContract() {
		if !exists && msg.Bounce && !msg.Bounced {
			res.ExitCode = ExitUninitialized
			res.Err = "destination not initialized"
			queued, err := c.bounce(b, &st, acct, msg, value)
			if err != nil {
				return nil, nil, err
			}
			if err := c.keepAccount(b, acct, exists); err != nil {
				return nil, nil, err
			}
			res.Out = queued
			return c.finish(b, st, res, queued)
		}
		// Plain accounts accept everything.
		if err := b.putAccount(acct); err != nil {
			return nil, nil, err
		}
		if err := c.settle(b, msg, acct); err != nil {
			return nil, nil, err
		}
		res.Success = true
		return c.finish(b, st, res, nil)
	}

	// Compute phase.
	computeFee := minBig(config.Nano(c.params.ComputeFee), acct.Balance)
	acct.Balance.Sub(acct.Balance, computeFee)
	st.Fees.Add(st.Fees, computeFee)
	inbound := new(big.Int).Sub(value, computeFee)
	if inbound.Sign() < 0 {
		inbound.SetInt64(0)
	}

	x := newContext(c, acct, msg, before, new(big.Int).Set(acct.Balance), inbound)
	err = c.execute(x, msg)
	var out []*Message
	var fwdFees *big.Int
	if err == nil {
		out, fwdFees, err = c.actionPhase(x, st.NextLT)
		if err != nil {
			err = &PhaseError{Code: ExitActionPhase, Err: err}
		}
	}
	if err != nil {
		res.ExitCode = exitCodeOf(err)
		res.Err = err.Error()
		if res.Deployed {
			acct.Code, acct.Data = nil, nil
			res.Deployed = false
		}
		queued, berr := c.bounce(b, &st, acct, msg, inbound)
		if berr != nil {
			return nil, nil, berr
		}
		if err := c.keepAccount(b, acct, exists); err != nil {
			return nil, nil, err
		}
		res.Out = queued
		c.logger.Debug().Uint64("lt", msg.LT).Str("op", jetton.OpName(res.Op)).
			Int("exit", res.ExitCode).Err(err).Msg("Transaction aborted")
		return c.finish(b, st, res, queued)
	}

	// Commit phase.
	acct.Code, acct.Data, acct.Balance = x.code, x.data, x.balance
	if err := b.putAccount(acct); err != nil {
		return nil, nil, err
	}
	if err := x.stageSide(b); err != nil {
		return nil, nil, err
	}
	var queued []uint64
	for _, m := range out {
		if err := b.putQueued(m); err != nil {
			return nil, nil, err
		}
		queued = append(queued, m.LT)
	}
	st.NextLT += uint64(len(x.out))
	st.Fees.Add(st.Fees, fwdFees)
	if err := c.settle(b, msg, acct); err != nil {
		return nil, nil, err
	}
	res.Success = true
	res.Out = queued
	return c.finish(b, st, res, queued)
}

func (c *Chain) finish(b *batch, st State, res *TxResult, queued []uint64) (*TxResult, []uint64, error) {
	if err := b.putState(st); err != nil {
		return nil, nil, err
	}
	if err := b.commit(); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	c.state = st
	return res, queued, nil
}

// keepAccount stores acct unless it did not exist before and ended up as an
// empty plain account.
func (c *Chain) keepAccount(b *batch, acct *Account, existed bool) error {
	if !existed && !acct.IsContract() && acct.Balance.Sign() == 0 {
		return nil
	}
	return b.putAccount(acct)
}

func (c *Chain) canDeploy(msg *Message) bool {
	si := msg.StateInit
	if si == nil || si.Code == nil || si.Data == nil {
		return false
	}
	if _, ok := c.codes[string(si.Code.Hash())]; !ok {
		return false
	}
	return jetton.SameAddress(jetton.ContractAddress(si.Code, si.Data), msg.Dst)
}

func (c *Chain) execute(x *Context, msg *Message) (err error) {
	impl, ok := c.codes[string(x.code.Hash())]
	if !ok {
		return ErrCodeNotRegistered
	}
	x.useLogger(impl)
	if c.fault != nil {
		if err := c.fault(msg); err != nil {
			return err
		}
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("contract panic: %v", r)
		}
	}()
	return impl.Receive(x)
}

// actionPhase turns the staged outbound messages into queued messages,
// charging values and forward fees against the staged balance. Message i
// gets LT firstLT+i, skipped messages included.
func (c *Chain) actionPhase(x *Context, firstLT uint64) ([]*Message, *big.Int, error) {
	balance := new(big.Int).Set(x.balance)
	fwd := config.Nano(c.params.ForwardFee)
	fees := new(big.Int)
	var msgs []*Message

	for i, om := range x.out {
		value := new(big.Int).Set(om.Value)
		switch {
		case om.Mode&SendCarryBalance != 0:
			value.Sub(balance, x.reserve)
		case om.Mode&SendCarryInbound != 0:
			value.Add(value, x.inbound)
		}

		send, cost := new(big.Int).Set(value), new(big.Int).Set(value)
		if om.Mode&SendPayFees != 0 && om.Mode&SendCarryBalance == 0 {
			cost.Add(cost, fwd)
		} else {
			send.Sub(send, fwd)
		}

		var err error
		switch {
		case jetton.IsNone(om.Dst):
			err = ErrActionTarget
		case send.Sign() < 0 || cost.Cmp(balance) > 0:
			err = fmt.Errorf("%w: message %d needs %s, have %s", ErrActionFunds, i, cost, balance)
		}
		if err != nil {
			if om.Mode&SendIgnoreErrors != 0 {
				continue
			}
			return nil, nil, err
		}

		balance.Sub(balance, cost)
		fees.Add(fees, fwd)
		msgs = append(msgs, &Message{
			LT:        firstLT + uint64(i),
			Src:       x.Address(),
			Dst:       om.Dst,
			Value:     tlb.FromNanoTON(send),
			Bounce:    om.Bounce,
			Body:      om.Body,
			StateInit: om.StateInit,
			Mode:      om.Mode,
		})
	}
	x.balance = balance
	return msgs, fees, nil
}

// bounce returns up to avail of the inbound value to the sender, minus the
// forward fee, with the sentinel body. Nothing is sent for non-bounceable
// messages or when the value cannot cover the fee.
func (c *Chain) bounce(b *batch, st *State, acct *Account, msg *Message, avail *big.Int) ([]uint64, error) {
	if !msg.Bounce || msg.Bounced {
		return nil, nil
	}
	left := minBig(avail, acct.Balance)
	fwd := config.Nano(c.params.ForwardFee)
	if left.Cmp(fwd) <= 0 {
		return nil, nil
	}
	acct.Balance.Sub(acct.Balance, left)
	st.Fees.Add(st.Fees, fwd)
	bm := &Message{
		LT:      st.NextLT,
		Src:     msg.Dst,
		Dst:     msg.Src,
		Value:   tlb.FromNanoTON(new(big.Int).Sub(left, fwd)),
		Bounced: true,
		OrigLT:  msg.LT,
		Body:    jetton.BounceBody(msg.Body),
	}
	st.NextLT++
	if err := b.putQueued(bm); err != nil {
		return nil, err
	}
	return []uint64{bm.LT}, nil
}

// settle tells the sender of a delivered bounceable message that it will
// not bounce.
func (c *Chain) settle(b *batch, msg *Message, dst *Account) error {
	if !msg.Bounce || msg.Bounced || jetton.IsNone(msg.Src) {
		return nil
	}
	var src *Account
	if jetton.SameAddress(msg.Src, dst.Address) {
		src = dst
	} else {
		var err error
		if src, err = c.store.GetAccount(msg.Src); err != nil {
			return err
		}
	}
	if src == nil || !src.IsContract() {
		return nil
	}
	s, ok := c.codes[string(src.Code.Hash())].(Settler)
	if !ok {
		return nil
	}
	x := newContext(c, src.clone(), nil, src.Balance, src.Balance, new(big.Int))
	x.useLogger(s)
	if err := s.Settle(x, msg.LT); err != nil {
		c.logger.Warn().Err(err).Uint64("lt", msg.LT).Str("account", src.Address.String()).Msg("Settle failed")
		return nil
	}
	return x.stageSide(b)
}

func minBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) < 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

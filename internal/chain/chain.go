// Package chain implements the in-process message-delivery runtime the
// jetton contracts execute on.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Klingon-tech/klingnet-jetton/config"
	klog "github.com/Klingon-tech/klingnet-jetton/internal/log"
	"github.com/Klingon-tech/klingnet-jetton/internal/storage"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// Runtime errors.
var (
	ErrQueueEmpty        = errors.New("message queue is empty")
	ErrStepLimit         = errors.New("step limit reached")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already deployed")
	ErrNotPlainAccount   = errors.New("external requests must come from a plain account")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidValue      = errors.New("invalid value")
)

// FaultInjector can force the destination of a message to reject it. A
// non-nil error is handled as if the contract had returned it.
type FaultInjector func(msg *Message) error

// Chain delivers internal messages between accounts. One transaction runs at
// a time, so every account handles a message to completion before the next.
// It is safe for concurrent use.
type Chain struct {
	mu       sync.Mutex
	store    *Store
	params   config.Params
	logger   zerolog.Logger
	codes    map[string]Contract
	fault    FaultInjector
	state    State
	queue    []uint64 // LTs of queued messages, ascending
	maxSteps int
}

// New opens the runtime on db. Queued messages left by a previous run are
// resumed.
func New(db storage.DB, params config.Params) (*Chain, error) {
	if db == nil {
		return nil, fmt.Errorf("nil database")
	}
	store := NewStore(storage.NewPrefixDB(db, []byte("ledger/")))
	st, err := store.LoadState()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	queue, err := store.QueuedLTs()
	if err != nil {
		return nil, fmt.Errorf("load queue: %w", err)
	}
	c := &Chain{
		store:    store,
		params:   params,
		logger:   klog.Chain,
		codes:    make(map[string]Contract),
		state:    st,
		queue:    queue,
		maxSteps: config.DefaultMaxSteps,
	}
	if len(queue) > 0 {
		c.logger.Info().Int("queued", len(queue)).Uint64("next_lt", st.NextLT).Msg("Resuming queued messages")
	}
	return c, nil
}

// SetMaxSteps bounds the number of transactions a single Run executes.
func (c *Chain) SetMaxSteps(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > 0 {
		c.maxSteps = n
	}
}

// SetLogger replaces the runtime logger.
func (c *Chain) SetLogger(l zerolog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
}

// SetFaultInjector installs f, or removes the current one when f is nil.
func (c *Chain) SetFaultInjector(f FaultInjector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fault = f
}

// Params returns the fee constants.
func (c *Chain) Params() config.Params {
	return c.params
}

// RegisterCode binds a code image to its implementation.
func (c *Chain) RegisterCode(code *cell.Cell, impl Contract) error {
	if code == nil || impl == nil {
		return fmt.Errorf("register code: nil argument")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[string(code.Hash())] = impl
	return nil
}

// Fund credits value to addr, creating a plain account if needed.
func (c *Chain) Fund(addr *address.Address, value *big.Int) error {
	if value == nil || value.Sign() < 0 {
		return ErrInvalidValue
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.store.GetAccount(addr)
	if err != nil {
		return err
	}
	if acct == nil {
		acct = &Account{Address: addr, Balance: new(big.Int)}
	}
	acct.Balance.Add(acct.Balance, value)
	b := c.store.newBatch()
	if err := b.putAccount(acct); err != nil {
		return err
	}
	if err := b.commit(); err != nil {
		return fmt.Errorf("fund commit: %w", err)
	}
	c.logger.Debug().Str("account", addr.String()).Str("value", value.String()).Msg("Account funded")
	return nil
}

// Deploy installs a contract with the given initial state at its derived
// address and credits value to it. A plain account already living at that
// address keeps its balance.
func (c *Chain) Deploy(code, data *cell.Cell, value *big.Int) (*address.Address, error) {
	if code == nil || data == nil {
		return nil, fmt.Errorf("deploy: nil code or data")
	}
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return nil, ErrInvalidValue
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.codes[string(code.Hash())]; !ok {
		return nil, ErrCodeNotRegistered
	}
	addr := jetton.ContractAddress(code, data)
	acct, err := c.store.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acct != nil && acct.IsContract() {
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}
	if acct == nil {
		acct = &Account{Address: addr, Balance: new(big.Int)}
	}
	acct.Balance.Add(acct.Balance, value)
	acct.Code, acct.Data = code, data

	b := c.store.newBatch()
	if err := b.putAccount(acct); err != nil {
		return nil, err
	}
	if err := b.commit(); err != nil {
		return nil, fmt.Errorf("deploy commit: %w", err)
	}
	c.logger.Info().Str("account", addr.String()).Str("value", value.String()).Msg("Contract deployed")
	return addr, nil
}

// Submit queues a message on behalf of the plain account src, debiting the
// value and the forward fee. It returns the LT of the queued message.
func (c *Chain) Submit(src *address.Address, m OutMessage) (uint64, error) {
	if m.Value == nil || m.Value.Sign() < 0 {
		return 0, ErrInvalidValue
	}
	if jetton.IsNone(m.Dst) || m.Dst.Type() != address.StdAddress {
		return 0, fmt.Errorf("submit: %w", ErrBadAddress)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.store.GetAccount(src)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, src)
	}
	if acct.IsContract() {
		return 0, ErrNotPlainAccount
	}
	fee := config.Nano(c.params.ForwardFee)
	total := new(big.Int).Add(m.Value, fee)
	if acct.Balance.Cmp(total) < 0 {
		return 0, fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds, acct.Balance, total)
	}

	st := c.state.clone()
	msg := &Message{
		LT:        st.NextLT,
		Src:       src,
		Dst:       m.Dst,
		Value:     tlb.FromNanoTON(m.Value),
		Bounce:    m.Bounce,
		Body:      m.Body,
		StateInit: m.StateInit,
		Mode:      m.Mode,
	}
	st.NextLT++
	st.Fees.Add(st.Fees, fee)
	acct.Balance.Sub(acct.Balance, total)

	b := c.store.newBatch()
	if err := b.putAccount(acct); err != nil {
		return 0, err
	}
	if err := b.putQueued(msg); err != nil {
		return 0, err
	}
	if err := b.putState(st); err != nil {
		return 0, err
	}
	if err := b.commit(); err != nil {
		return 0, fmt.Errorf("submit commit: %w", err)
	}
	c.state = st
	c.queue = append(c.queue, msg.LT)
	c.logger.Debug().Uint64("lt", msg.LT).Str("op", jetton.OpName(msg.Op())).
		Str("src", src.String()).Str("dst", m.Dst.String()).Msg("Message submitted")
	return msg.LT, nil
}

// Step delivers the oldest queued message.
func (c *Chain) Step(ctx context.Context) (*TxResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step()
}

func (c *Chain) step() (*TxResult, error) {
	if len(c.queue) == 0 {
		return nil, ErrQueueEmpty
	}
	lt := c.queue[0]
	msg, err := c.store.GetQueued(lt)
	if err != nil {
		return nil, err
	}
	res, queued, err := c.deliver(msg)
	if err != nil {
		return nil, fmt.Errorf("deliver %d: %w", lt, err)
	}
	c.queue = append(c.queue[1:], queued...)
	return res, nil
}

// Run delivers messages until the queue drains and returns the trace. It
// stops with ErrStepLimit after the configured number of transactions.
func (c *Chain) Run(ctx context.Context) (Trace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var trace Trace
	for len(c.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return trace, err
		}
		if len(trace) >= c.maxSteps {
			return trace, fmt.Errorf("%w (%d)", ErrStepLimit, c.maxSteps)
		}
		res, err := c.step()
		if err != nil {
			return trace, err
		}
		trace = append(trace, res)
	}
	return trace, nil
}

// Account returns a copy of the account at addr.
func (c *Chain) Account(addr *address.Address) (*Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	acct, err := c.store.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	return acct, nil
}

// Balance returns the balance of addr, zero if no account exists.
func (c *Chain) Balance(addr *address.Address) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	acct, err := c.store.GetAccount(addr)
	if err != nil || acct == nil {
		return new(big.Int), err
	}
	return acct.Balance, nil
}

// ForEachAccount calls fn for every account in address order.
func (c *Chain) ForEachAccount(fn func(*Account) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.ForEachAccount(fn)
}

// ForEachSide iterates the side storage of addr under prefix.
func (c *Chain) ForEachSide(addr *address.Address, prefix string, fn func(key string, value []byte) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.ForEachSide(addr, prefix, fn)
}

// State returns a copy of the runtime counters.
func (c *Chain) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// CollectedFees returns the fees charged so far.
func (c *Chain) CollectedFees() *big.Int {
	return c.State().Fees
}

// QueueLen returns the number of messages waiting for delivery.
func (c *Chain) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Contract returns the implementation registered for code.
func (c *Chain) Contract(code *cell.Cell) (Contract, bool) {
	if code == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	impl, ok := c.codes[string(code.Hash())]
	return impl, ok
}

package chain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Klingon-tech/klingnet-jetton/config"
)

// Contract is the logic behind a code image. Receive handles one inbound
// message; returning an error discards every staged change.
type Contract interface {
	Receive(ctx *Context) error
}

// Settler is implemented by contracts that track their own bounceable
// messages. Settle is called once the message with the given LT was
// processed successfully by its destination. Only side storage changes made
// during Settle are kept.
type Settler interface {
	Settle(ctx *Context, lt uint64) error
}

// ComponentLogger is implemented by contracts that log under their own
// component instead of the chain's.
type ComponentLogger interface {
	Logger() zerolog.Logger
}

// ContractFunc adapts a function to the Contract interface.
type ContractFunc func(ctx *Context) error

// Receive calls f(ctx).
func (f ContractFunc) Receive(ctx *Context) error { return f(ctx) }

// ErrCodeNotRegistered is returned when code has no registered contract.
var ErrCodeNotRegistered = errors.New("code not registered")

type sideWrite struct {
	value   []byte
	deleted bool
}

// Context is the view a contract has of its account while handling one
// message. Every change is staged and only committed when the handler and
// the action phase succeed.
type Context struct {
	chain   *Chain
	account *Account
	msg     *Message

	before  *big.Int // balance before the inbound value was credited
	balance *big.Int // balance after credit and compute fee
	inbound *big.Int // inbound value left after the compute fee
	reserve *big.Int

	code *cell.Cell
	data *cell.Cell
	out  []*OutMessage
	side map[string]sideWrite
	log  zerolog.Logger
}

func newContext(c *Chain, acct *Account, msg *Message, before, balance, inbound *big.Int) *Context {
	return &Context{
		chain:   c,
		account: acct,
		msg:     msg,
		before:  before,
		balance: balance,
		inbound: inbound,
		reserve: new(big.Int),
		code:    acct.Code,
		data:    acct.Data,
		side:    make(map[string]sideWrite),
		log:     c.logger.With().Str("account", acct.Address.String()).Logger(),
	}
}

func (x *Context) useLogger(impl interface{}) {
	if cl, ok := impl.(ComponentLogger); ok {
		x.log = cl.Logger().With().Str("account", x.account.Address.String()).Logger()
	}
}

// Address returns the address of the executing account.
func (x *Context) Address() *address.Address { return x.account.Address }

// Message returns the inbound message. It is nil during Settle.
func (x *Context) Message() *Message { return x.msg }

// Sender returns the source address of the inbound message.
func (x *Context) Sender() *address.Address {
	if x.msg == nil {
		return nil
	}
	return x.msg.Src
}

// Value returns the value attached to the inbound message.
func (x *Context) Value() *big.Int {
	if x.msg == nil {
		return new(big.Int)
	}
	return x.msg.Value.Nano()
}

// Body returns the inbound message body.
func (x *Context) Body() *cell.Cell {
	if x.msg == nil {
		return nil
	}
	return x.msg.Body
}

// Bounced reports whether the inbound message is a bounce.
func (x *Context) Bounced() bool { return x.msg != nil && x.msg.Bounced }

// Data returns the staged data cell.
func (x *Context) Data() *cell.Cell { return x.data }

// SetData stages a new data cell.
func (x *Context) SetData(c *cell.Cell) { x.data = c }

// Code returns the staged code cell.
func (x *Context) Code() *cell.Cell { return x.code }

// SetCode stages a code replacement. The code must be registered.
func (x *Context) SetCode(c *cell.Cell) error {
	if c == nil {
		return fmt.Errorf("set code: nil code")
	}
	if _, ok := x.chain.codes[string(c.Hash())]; !ok {
		return ErrCodeNotRegistered
	}
	x.code = c
	return nil
}

// Balance returns the account balance after the inbound value was credited
// and the compute fee charged.
func (x *Context) Balance() *big.Int { return new(big.Int).Set(x.balance) }

// BalanceBefore returns the balance the account had before this message.
func (x *Context) BalanceBefore() *big.Int { return new(big.Int).Set(x.before) }

// Reserve keeps amount on the account. Carry-balance sends never touch it.
func (x *Context) Reserve(amount *big.Int) {
	x.reserve.Add(x.reserve, amount)
}

// Params returns the fee constants of the runtime.
func (x *Context) Params() config.Params { return x.chain.params }

// Logger returns a logger tagged with the account address.
func (x *Context) Logger() *zerolog.Logger { return &x.log }

// Send stages an outbound message and returns the LT it will carry.
func (x *Context) Send(m OutMessage) uint64 {
	if m.Value == nil {
		m.Value = new(big.Int)
	}
	x.out = append(x.out, &m)
	return x.chain.state.NextLT + uint64(len(x.out)) - 1
}

// Get reads a side-storage value, seeing staged writes.
func (x *Context) Get(key string) ([]byte, bool, error) {
	if w, ok := x.side[key]; ok {
		if w.deleted {
			return nil, false, nil
		}
		return w.value, true, nil
	}
	return x.chain.store.GetSide(x.account.Address, key)
}

// Put stages a side-storage write.
func (x *Context) Put(key string, value []byte) {
	v := make([]byte, len(value))
	copy(v, value)
	x.side[key] = sideWrite{value: v}
}

// Delete stages a side-storage deletion.
func (x *Context) Delete(key string) {
	x.side[key] = sideWrite{deleted: true}
}

func (x *Context) stageSide(b *batch) error {
	for k, w := range x.side {
		var err error
		if w.deleted {
			err = b.deleteSide(x.account.Address, k)
		} else {
			err = b.putSide(x.account.Address, k, w.value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

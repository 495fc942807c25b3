package jetton

import (
	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// enc keeps the first builder error so encoders read as a field list.
type enc struct {
	b   *cell.Builder
	err error
}

func newEnc() *enc { return &enc{b: cell.BeginCell()} }

func (e *enc) do(f func() error) {
	if e.err == nil {
		e.err = f()
	}
}

func (e *enc) uint(v uint64, bits uint) { e.do(func() error { return e.b.StoreUInt(v, bits) }) }
func (e *enc) bit(v bool)               { e.do(func() error { return e.b.StoreBoolBit(v) }) }
func (e *enc) amount(x *uint256.Int)    { e.do(func() error { return storeAmount(e.b, x) }) }
func (e *enc) ton(c tlb.Coins)          { e.do(func() error { return storeTon(e.b, c.Nano()) }) }
func (e *enc) addr(a *address.Address)  { e.do(func() error { return e.b.StoreAddr(orNone(a)) }) }
func (e *enc) either(p Payload)         { e.do(func() error { return storeEither(e.b, p) }) }
func (e *enc) maybe(p Payload)          { e.do(func() error { return storeMaybe(e.b, p) }) }

func (e *enc) ref(c *cell.Cell) {
	e.do(func() error { return e.b.StoreRef(orEmpty(c)) })
}

func (e *enc) maybeRef(c *cell.Cell) { e.do(func() error { return e.b.StoreMaybeRef(c) }) }

func (e *enc) header(op uint32, queryID uint64) {
	e.uint(uint64(op), 32)
	e.uint(queryID, 64)
}

func (e *enc) end() (*cell.Cell, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.b.EndCell(), nil
}

// dec keeps the first slice error; later reads return zero values.
type dec struct {
	s   *cell.Slice
	err error
}

func newDec(c *cell.Cell) *dec { return &dec{s: c.BeginParse()} }

func (d *dec) uint(bits uint) uint64 {
	if d.err != nil {
		return 0
	}
	v, err := d.s.LoadUInt(bits)
	d.err = err
	return v
}

func (d *dec) bit() bool {
	if d.err != nil {
		return false
	}
	v, err := d.s.LoadBoolBit()
	d.err = err
	return v
}

func (d *dec) amount() *uint256.Int {
	if d.err != nil {
		return zero()
	}
	v, err := loadAmount(d.s)
	if err != nil {
		d.err = err
		return zero()
	}
	return v
}

func (d *dec) ton() tlb.Coins {
	if d.err != nil {
		return tlb.ZeroCoins
	}
	v, err := d.s.LoadBigCoins()
	if err != nil {
		d.err = err
		return tlb.ZeroCoins
	}
	return tlb.FromNanoTON(v)
}

func (d *dec) addr() *address.Address {
	if d.err != nil {
		return NoAddress()
	}
	a, err := d.s.LoadAddr()
	if err != nil {
		d.err = err
		return NoAddress()
	}
	return a
}

func (d *dec) ref() *cell.Cell {
	if d.err != nil {
		return nil
	}
	c, err := d.s.LoadRefCell()
	d.err = err
	return c
}

func (d *dec) maybeRef() *cell.Cell {
	if d.err != nil {
		return nil
	}
	s, err := d.s.LoadMaybeRef()
	if err != nil || s == nil {
		d.err = err
		return nil
	}
	c, err := s.ToCell()
	d.err = err
	return c
}

func (d *dec) either() Payload {
	if d.err != nil {
		return Payload{}
	}
	p, err := loadEither(d.s)
	d.err = err
	return p
}

func (d *dec) maybe() Payload {
	if d.err != nil {
		return Payload{}
	}
	p, err := loadMaybe(d.s)
	d.err = err
	return p
}

// header reads op and query id and checks the op.
func (d *dec) header(want uint32) uint64 {
	op := d.uint(32)
	if d.err == nil && uint32(op) != want {
		d.err = ErrUnexpectedOp
	}
	return d.uint(64)
}

package jetton

import (
	"bytes"
	"errors"

	"github.com/xssnick/tonutils-go/tvm/cell"
)

// PayloadKind tags how an optional payload travels on the wire.
type PayloadKind uint8

const (
	PayloadNone PayloadKind = iota
	PayloadInline
	PayloadRef
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadInline:
		return "inline"
	case PayloadRef:
		return "ref"
	default:
		return "none"
	}
}

// Payload is an optional cell that is either stored inline in the parent
// message or behind a reference. Business logic never sees the tag bit.
type Payload struct {
	Kind PayloadKind
	Cell *cell.Cell
}

// InlinePayload returns a payload stored in the remaining bits of the parent.
// An empty cell is equivalent to no payload.
func InlinePayload(c *cell.Cell) Payload {
	if c == nil || (c.BitsSize() == 0 && c.RefsNum() == 0) {
		return Payload{}
	}
	return Payload{Kind: PayloadInline, Cell: c}
}

// RefPayload returns a payload stored behind a reference.
func RefPayload(c *cell.Cell) Payload {
	if c == nil {
		return Payload{}
	}
	return Payload{Kind: PayloadRef, Cell: c}
}

// IsEmpty reports whether the payload carries nothing.
func (p Payload) IsEmpty() bool {
	return p.Kind == PayloadNone || p.Cell == nil
}

// Equal compares kind and cell hash.
func (p Payload) Equal(o Payload) bool {
	if p.IsEmpty() || o.IsEmpty() {
		return p.IsEmpty() == o.IsEmpty()
	}
	return p.Kind == o.Kind && bytes.Equal(p.Cell.Hash(), o.Cell.Hash())
}

var errInlineMaybe = errors.New("inline payload in maybe-ref position")

// storeEither writes an Either X ^X payload. It consumes the rest of the
// builder when inline, so it must be the last field.
func storeEither(b *cell.Builder, p Payload) error {
	switch {
	case p.IsEmpty():
		return b.StoreBoolBit(false)
	case p.Kind == PayloadRef:
		if err := b.StoreBoolBit(true); err != nil {
			return err
		}
		return b.StoreRef(p.Cell)
	default:
		if err := b.StoreBoolBit(false); err != nil {
			return err
		}
		return b.StoreBuilder(p.Cell.ToBuilder())
	}
}

func loadEither(s *cell.Slice) (Payload, error) {
	if s.BitsLeft() == 0 {
		return Payload{}, ErrMalformed
	}
	isRef, err := s.LoadBoolBit()
	if err != nil {
		return Payload{}, err
	}
	if isRef {
		if s.RefsNum() == 0 {
			return Payload{}, ErrEitherNoRef
		}
		c, err := s.LoadRefCell()
		if err != nil {
			return Payload{}, err
		}
		return RefPayload(c), nil
	}
	if s.BitsLeft() == 0 && s.RefsNum() == 0 {
		return Payload{}, nil
	}
	c, err := s.ToCell()
	if err != nil {
		return Payload{}, err
	}
	return InlinePayload(c), nil
}

func storeMaybe(b *cell.Builder, p Payload) error {
	if p.Kind == PayloadInline {
		return errInlineMaybe
	}
	if p.IsEmpty() {
		return b.StoreMaybeRef(nil)
	}
	return b.StoreMaybeRef(p.Cell)
}

func loadMaybe(s *cell.Slice) (Payload, error) {
	ref, err := s.LoadMaybeRef()
	if err != nil {
		return Payload{}, err
	}
	if ref == nil {
		return Payload{}, nil
	}
	c, err := ref.ToCell()
	if err != nil {
		return Payload{}, err
	}
	return RefPayload(c), nil
}

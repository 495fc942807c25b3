package chain

import (
	"fmt"
	"math/big"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// Send modes understood by the action phase. Flags combine with one of the
// carry modes.
const (
	SendDefault      = 0   // value as given, forward fee deducted from it
	SendPayFees      = 1   // forward fee paid from the balance
	SendIgnoreErrors = 2   // a failing send is skipped instead of aborting
	SendCarryInbound = 64  // add the inbound value left after compute
	SendCarryBalance = 128 // send the whole balance above the reserve
)

// Message is an internal message queued for delivery.
type Message struct {
	LT        uint64
	Src       *address.Address
	Dst       *address.Address
	Value     tlb.Coins
	Bounce    bool
	Bounced   bool
	OrigLT    uint64 // LT of the message a bounce answers
	Body      *cell.Cell
	StateInit *tlb.StateInit
	Mode      uint8 // send mode the message was emitted with
}

// Op returns the opcode of the body, or 0 if it carries none.
func (m *Message) Op() uint32 {
	op, _, _ := jetton.PeekOp(m.Body)
	return op
}

// QueryID returns the query id of the body, or 0.
func (m *Message) QueryID() uint64 {
	_, qid, _ := jetton.PeekOp(m.Body)
	return qid
}

// OutMessage is a message a contract asks the runtime to send.
type OutMessage struct {
	Dst       *address.Address
	Value     *big.Int
	Mode      uint8
	Bounce    bool
	Body      *cell.Cell
	StateInit *tlb.StateInit
}

// msg:^[lt:64 src dst value:Coins bounce:1 bounced:1 orig_lt:64 mode:8]
// body:^Cell init:Maybe ^[code:^Cell data:^Cell]
func encodeMessage(m *Message) ([]byte, error) {
	b := cell.BeginCell()
	if err := b.StoreUInt(m.LT, 64); err != nil {
		return nil, err
	}
	if err := b.StoreAddr(orNone(m.Src)); err != nil {
		return nil, fmt.Errorf("message src: %w", err)
	}
	if err := b.StoreAddr(orNone(m.Dst)); err != nil {
		return nil, fmt.Errorf("message dst: %w", err)
	}
	if err := b.StoreBigCoins(m.Value.Nano()); err != nil {
		return nil, fmt.Errorf("message value: %w", err)
	}
	b.MustStoreBoolBit(m.Bounce)
	b.MustStoreBoolBit(m.Bounced)
	b.MustStoreUInt(m.OrigLT, 64)
	b.MustStoreUInt(uint64(m.Mode), 8)
	body := m.Body
	if body == nil {
		body = cell.BeginCell().EndCell()
	}
	b.MustStoreRef(body)
	var init *cell.Cell
	if m.StateInit != nil {
		init = cell.BeginCell().MustStoreRef(m.StateInit.Code).MustStoreRef(m.StateInit.Data).EndCell()
	}
	if err := b.StoreMaybeRef(init); err != nil {
		return nil, err
	}
	return b.EndCell().ToBOC(), nil
}

func decodeMessage(raw []byte) (*Message, error) {
	c, err := cell.FromBOC(raw)
	if err != nil {
		return nil, fmt.Errorf("message boc: %w", err)
	}
	s := c.BeginParse()
	m := &Message{}
	if m.LT, err = s.LoadUInt(64); err != nil {
		return nil, err
	}
	if m.Src, err = s.LoadAddr(); err != nil {
		return nil, fmt.Errorf("message src: %w", err)
	}
	if m.Dst, err = s.LoadAddr(); err != nil {
		return nil, fmt.Errorf("message dst: %w", err)
	}
	value, err := s.LoadBigCoins()
	if err != nil {
		return nil, fmt.Errorf("message value: %w", err)
	}
	m.Value = tlb.FromNanoTON(value)
	if m.Bounce, err = s.LoadBoolBit(); err != nil {
		return nil, err
	}
	if m.Bounced, err = s.LoadBoolBit(); err != nil {
		return nil, err
	}
	if m.OrigLT, err = s.LoadUInt(64); err != nil {
		return nil, err
	}
	mode, err := s.LoadUInt(8)
	if err != nil {
		return nil, err
	}
	m.Mode = uint8(mode)
	if m.Body, err = s.LoadRefCell(); err != nil {
		return nil, fmt.Errorf("message body: %w", err)
	}
	init, err := s.LoadMaybeRef()
	if err != nil {
		return nil, fmt.Errorf("message init: %w", err)
	}
	if init != nil {
		code, err := init.LoadRefCell()
		if err != nil {
			return nil, fmt.Errorf("message init code: %w", err)
		}
		data, err := init.LoadRefCell()
		if err != nil {
			return nil, fmt.Errorf("message init data: %w", err)
		}
		m.StateInit = &tlb.StateInit{Code: code, Data: data}
	}
	return m, nil
}

func orNone(a *address.Address) *address.Address {
	if a == nil {
		return address.NewAddressNone()
	}
	return a
}

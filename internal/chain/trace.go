package chain

import (
	"math/big"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// TxResult describes one executed transaction.
type TxResult struct {
	LT       uint64
	Src      *address.Address
	Dst      *address.Address
	Op       uint32
	QueryID  uint64
	Value    *big.Int
	Body     *cell.Cell
	Bounced  bool // the inbound message was a bounce
	Deployed bool
	Success  bool
	ExitCode int
	Err      string
	Out      []uint64 // LTs of the messages this transaction queued
}

func newTxResult(msg *Message) *TxResult {
	op, qid, _ := jetton.PeekOp(msg.Body)
	return &TxResult{
		LT:      msg.LT,
		Src:     msg.Src,
		Dst:     msg.Dst,
		Op:      op,
		QueryID: qid,
		Value:   msg.Value.Nano(),
		Body:    msg.Body,
		Bounced: msg.Bounced,
	}
}

// Trace is the ordered list of transactions executed by Run.
type Trace []*TxResult

// Failed returns the transactions that aborted.
func (t Trace) Failed() Trace {
	var out Trace
	for _, r := range t {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

// ByOp returns the transactions whose inbound body carried op.
func (t Trace) ByOp(op uint32) Trace {
	var out Trace
	for _, r := range t {
		if r.Op == op && !r.Bounced {
			out = append(out, r)
		}
	}
	return out
}

// To returns the transactions executed on addr.
func (t Trace) To(addr *address.Address) Trace {
	var out Trace
	for _, r := range t {
		if jetton.SameAddress(r.Dst, addr) {
			out = append(out, r)
		}
	}
	return out
}

// Bounces returns the transactions that handled a bounced message.
func (t Trace) Bounces() Trace {
	var out Trace
	for _, r := range t {
		if r.Bounced {
			out = append(out, r)
		}
	}
	return out
}

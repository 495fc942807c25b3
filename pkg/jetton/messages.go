package jetton

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// Message is a decoded message body.
type Message interface {
	Op() uint32
	Encode() (*cell.Cell, error)
}

// Transfer asks a wallet to move Amount to the wallet of Destination.
type Transfer struct {
	QueryID             uint64
	Amount              *uint256.Int
	Destination         *address.Address
	ResponseDestination *address.Address
	CustomPayload       Payload
	ForwardTonAmount    tlb.Coins
	ForwardPayload      Payload
}

// InternalTransfer moves Amount between wallets, or from the minter on mint.
type InternalTransfer struct {
	QueryID          uint64
	Amount           *uint256.Int
	From             *address.Address
	ResponseAddress  *address.Address
	ForwardTonAmount tlb.Coins
	ForwardPayload   Payload
}

// TransferNotification tells a wallet owner about an incoming transfer.
type TransferNotification struct {
	QueryID        uint64
	Amount         *uint256.Int
	Sender         *address.Address
	ForwardPayload Payload
}

// Burn asks a wallet to destroy Amount.
type Burn struct {
	QueryID             uint64
	Amount              *uint256.Int
	ResponseDestination *address.Address
	CustomPayload       Payload
}

// BurnNotification tells the minter to decrease total supply.
type BurnNotification struct {
	QueryID             uint64
	Amount              *uint256.Int
	Sender              *address.Address
	ResponseDestination *address.Address
}

// Excesses returns unused TON.
type Excesses struct {
	QueryID uint64
}

// ProvideWalletAddress asks the minter for the wallet address of Owner.
type ProvideWalletAddress struct {
	QueryID        uint64
	Owner          *address.Address
	IncludeAddress bool
}

// TakeWalletAddress answers ProvideWalletAddress. Wallet is addr_none when
// the owner address is not acceptable. Owner is nil unless requested.
type TakeWalletAddress struct {
	QueryID uint64
	Wallet  *address.Address
	Owner   *address.Address
}

// Mint asks the minter to send Message to the wallet of Receiver with
// TonAmount attached.
type Mint struct {
	QueryID   uint64
	Receiver  *address.Address
	TonAmount tlb.Coins
	Message   *InternalTransfer
}

// ChangeAdmin proposes a new admin.
type ChangeAdmin struct {
	QueryID  uint64
	NewAdmin *address.Address
}

// ClaimAdmin completes the admin handover.
type ClaimAdmin struct {
	QueryID uint64
}

// ChangeContent replaces the token metadata cell.
type ChangeContent struct {
	QueryID uint64
	Content *cell.Cell
}

// CloseMinting disables minting for good.
type CloseMinting struct {
	QueryID uint64
}

// ClaimTon withdraws TON above the storage reserve. A zero Amount means
// everything above the reserve.
type ClaimTon struct {
	QueryID  uint64
	Receiver *address.Address
	Amount   tlb.Coins
}

// ProvideWalletBalance asks a wallet to report its balance to Receiver.
type ProvideWalletBalance struct {
	QueryID           uint64
	Receiver          *address.Address
	IncludeVerifyInfo bool
}

// VerifyInfo lets the receiver of TakeWalletBalance recompute the wallet
// address on its own.
type VerifyInfo struct {
	Owner      *address.Address
	Minter     *address.Address
	WalletCode *cell.Cell
}

// TakeWalletBalance answers ProvideWalletBalance.
type TakeWalletBalance struct {
	QueryID uint64
	Balance *uint256.Int
	Verify  *VerifyInfo
}

// SetStatus changes the lock status of a governance wallet.
type SetStatus struct {
	QueryID uint64
	Status  uint8
}

// CallTo makes the governance minter deliver Action to the wallet of Owner.
// Action is a Transfer, Burn or SetStatus.
type CallTo struct {
	QueryID   uint64
	Owner     *address.Address
	TonAmount tlb.Coins
	Action    Message
}

// Upgrade replaces the minter code and data in one step.
type Upgrade struct {
	QueryID uint64
	NewData *cell.Cell
	NewCode *cell.Cell
}

func (*Transfer) Op() uint32             { return OpTransfer }
func (*InternalTransfer) Op() uint32     { return OpInternalTransfer }
func (*TransferNotification) Op() uint32 { return OpTransferNotification }
func (*Burn) Op() uint32                 { return OpBurn }
func (*BurnNotification) Op() uint32     { return OpBurnNotification }
func (*Excesses) Op() uint32             { return OpExcesses }
func (*ProvideWalletAddress) Op() uint32 { return OpProvideWalletAddress }
func (*TakeWalletAddress) Op() uint32    { return OpTakeWalletAddress }
func (*Mint) Op() uint32                 { return OpMint }
func (*ChangeAdmin) Op() uint32          { return OpChangeAdmin }
func (*ClaimAdmin) Op() uint32           { return OpClaimAdmin }
func (*ChangeContent) Op() uint32        { return OpChangeContent }
func (*CloseMinting) Op() uint32         { return OpCloseMinting }
func (*ClaimTon) Op() uint32             { return OpClaimTon }
func (*ProvideWalletBalance) Op() uint32 { return OpProvideWalletBalance }
func (*TakeWalletBalance) Op() uint32    { return OpTakeWalletBalance }
func (*SetStatus) Op() uint32            { return OpSetStatus }
func (*CallTo) Op() uint32               { return OpCallTo }
func (*Upgrade) Op() uint32              { return OpUpgrade }

func (m *Transfer) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpTransfer, m.QueryID)
	e.amount(m.Amount)
	e.addr(m.Destination)
	e.addr(m.ResponseDestination)
	e.maybe(m.CustomPayload)
	e.ton(m.ForwardTonAmount)
	e.either(m.ForwardPayload)
	return e.end()
}

func decodeTransfer(d *dec) *Transfer {
	m := &Transfer{}
	m.QueryID = d.header(OpTransfer)
	m.Amount = d.amount()
	m.Destination = d.addr()
	m.ResponseDestination = d.addr()
	m.CustomPayload = d.maybe()
	m.ForwardTonAmount = d.ton()
	m.ForwardPayload = d.either()
	return m
}

func (m *InternalTransfer) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpInternalTransfer, m.QueryID)
	e.amount(m.Amount)
	e.addr(m.From)
	e.addr(m.ResponseAddress)
	e.ton(m.ForwardTonAmount)
	e.either(m.ForwardPayload)
	return e.end()
}

func decodeInternalTransfer(d *dec) *InternalTransfer {
	m := &InternalTransfer{}
	m.QueryID = d.header(OpInternalTransfer)
	m.Amount = d.amount()
	m.From = d.addr()
	m.ResponseAddress = d.addr()
	m.ForwardTonAmount = d.ton()
	m.ForwardPayload = d.either()
	return m
}

func (m *TransferNotification) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpTransferNotification, m.QueryID)
	e.amount(m.Amount)
	e.addr(m.Sender)
	e.either(m.ForwardPayload)
	return e.end()
}

func decodeTransferNotification(d *dec) *TransferNotification {
	m := &TransferNotification{}
	m.QueryID = d.header(OpTransferNotification)
	m.Amount = d.amount()
	m.Sender = d.addr()
	m.ForwardPayload = d.either()
	return m
}

func (m *Burn) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpBurn, m.QueryID)
	e.amount(m.Amount)
	e.addr(m.ResponseDestination)
	e.maybe(m.CustomPayload)
	return e.end()
}

func decodeBurn(d *dec) *Burn {
	m := &Burn{}
	m.QueryID = d.header(OpBurn)
	m.Amount = d.amount()
	m.ResponseDestination = d.addr()
	m.CustomPayload = d.maybe()
	return m
}

func (m *BurnNotification) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpBurnNotification, m.QueryID)
	e.amount(m.Amount)
	e.addr(m.Sender)
	e.addr(m.ResponseDestination)
	return e.end()
}

func decodeBurnNotification(d *dec) *BurnNotification {
	m := &BurnNotification{}
	m.QueryID = d.header(OpBurnNotification)
	m.Amount = d.amount()
	m.Sender = d.addr()
	m.ResponseDestination = d.addr()
	return m
}

func (m *Excesses) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpExcesses, m.QueryID)
	return e.end()
}

func (m *ProvideWalletAddress) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpProvideWalletAddress, m.QueryID)
	e.addr(m.Owner)
	e.bit(m.IncludeAddress)
	return e.end()
}

func decodeProvideWalletAddress(d *dec) *ProvideWalletAddress {
	m := &ProvideWalletAddress{}
	m.QueryID = d.header(OpProvideWalletAddress)
	m.Owner = d.addr()
	m.IncludeAddress = d.bit()
	return m
}

func (m *TakeWalletAddress) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpTakeWalletAddress, m.QueryID)
	e.addr(m.Wallet)
	var owner *cell.Cell
	if m.Owner != nil {
		oe := newEnc()
		oe.addr(m.Owner)
		c, err := oe.end()
		if err != nil {
			return nil, err
		}
		owner = c
	}
	e.maybeRef(owner)
	return e.end()
}

func decodeTakeWalletAddress(d *dec) *TakeWalletAddress {
	m := &TakeWalletAddress{}
	m.QueryID = d.header(OpTakeWalletAddress)
	m.Wallet = d.addr()
	if owner := d.maybeRef(); owner != nil && d.err == nil {
		od := newDec(owner)
		m.Owner = od.addr()
		d.err = od.err
	}
	return m
}

func (m *Mint) Encode() (*cell.Cell, error) {
	if m.Message == nil {
		return nil, errors.New("mint without internal transfer")
	}
	inner, err := m.Message.Encode()
	if err != nil {
		return nil, fmt.Errorf("mint master message: %w", err)
	}
	e := newEnc()
	e.header(OpMint, m.QueryID)
	e.addr(m.Receiver)
	e.ton(m.TonAmount)
	e.ref(inner)
	return e.end()
}

func decodeMint(d *dec) *Mint {
	m := &Mint{}
	m.QueryID = d.header(OpMint)
	m.Receiver = d.addr()
	m.TonAmount = d.ton()
	if inner := d.ref(); inner != nil && d.err == nil {
		id := newDec(inner)
		m.Message = decodeInternalTransfer(id)
		d.err = id.err
	}
	return m
}

func (m *ChangeAdmin) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpChangeAdmin, m.QueryID)
	e.addr(m.NewAdmin)
	return e.end()
}

func (m *ClaimAdmin) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpClaimAdmin, m.QueryID)
	return e.end()
}

func (m *ChangeContent) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpChangeContent, m.QueryID)
	e.ref(m.Content)
	return e.end()
}

func (m *CloseMinting) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpCloseMinting, m.QueryID)
	return e.end()
}

func (m *ClaimTon) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpClaimTon, m.QueryID)
	e.addr(m.Receiver)
	e.ton(m.Amount)
	return e.end()
}

func (m *ProvideWalletBalance) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpProvideWalletBalance, m.QueryID)
	e.addr(m.Receiver)
	e.bit(m.IncludeVerifyInfo)
	return e.end()
}

func (m *TakeWalletBalance) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpTakeWalletBalance, m.QueryID)
	e.amount(m.Balance)
	var info *cell.Cell
	if m.Verify != nil {
		ve := newEnc()
		ve.addr(m.Verify.Owner)
		ve.addr(m.Verify.Minter)
		ve.ref(m.Verify.WalletCode)
		c, err := ve.end()
		if err != nil {
			return nil, err
		}
		info = c
	}
	e.maybeRef(info)
	return e.end()
}

func decodeTakeWalletBalance(d *dec) *TakeWalletBalance {
	m := &TakeWalletBalance{}
	m.QueryID = d.header(OpTakeWalletBalance)
	m.Balance = d.amount()
	if info := d.maybeRef(); info != nil && d.err == nil {
		vd := newDec(info)
		m.Verify = &VerifyInfo{
			Owner:      vd.addr(),
			Minter:     vd.addr(),
			WalletCode: vd.ref(),
		}
		d.err = vd.err
	}
	return m
}

func (m *SetStatus) Encode() (*cell.Cell, error) {
	if m.Status > StatusFullLocked {
		return nil, ErrInvalidStatus
	}
	e := newEnc()
	e.header(OpSetStatus, m.QueryID)
	e.uint(uint64(m.Status), 4)
	return e.end()
}

func (m *CallTo) Encode() (*cell.Cell, error) {
	switch m.Action.(type) {
	case *Transfer, *Burn, *SetStatus:
	default:
		return nil, fmt.Errorf("call_to: unsupported action %T", m.Action)
	}
	action, err := m.Action.Encode()
	if err != nil {
		return nil, fmt.Errorf("call_to action: %w", err)
	}
	e := newEnc()
	e.header(OpCallTo, m.QueryID)
	e.addr(m.Owner)
	e.ton(m.TonAmount)
	e.ref(action)
	return e.end()
}

func decodeCallTo(d *dec) (*CallTo, error) {
	m := &CallTo{}
	m.QueryID = d.header(OpCallTo)
	m.Owner = d.addr()
	m.TonAmount = d.ton()
	action := d.ref()
	if d.err != nil {
		return nil, d.err
	}
	inner, err := Decode(action)
	if err != nil {
		return nil, fmt.Errorf("call_to action: %w", err)
	}
	switch inner.(type) {
	case *Transfer, *Burn, *SetStatus:
	default:
		return nil, fmt.Errorf("call_to action %s: %w", OpName(inner.Op()), ErrUnexpectedOp)
	}
	m.Action = inner
	return m, nil
}

func (m *Upgrade) Encode() (*cell.Cell, error) {
	e := newEnc()
	e.header(OpUpgrade, m.QueryID)
	e.ref(m.NewData)
	e.ref(m.NewCode)
	return e.end()
}

// PeekOp returns the op code and query id of a body without decoding the
// rest. Bodies shorter than 32 bits have no op.
func PeekOp(body *cell.Cell) (op uint32, queryID uint64, ok bool) {
	if body == nil {
		return 0, 0, false
	}
	s := body.BeginParse()
	if s.BitsLeft() < 32 {
		return 0, 0, false
	}
	v, _ := s.LoadUInt(32)
	if s.BitsLeft() >= 64 {
		queryID, _ = s.LoadUInt(64)
	}
	return uint32(v), queryID, true
}

// Decode parses a message body by op code.
func Decode(body *cell.Cell) (Message, error) {
	op, _, ok := PeekOp(body)
	if !ok {
		return nil, fmt.Errorf("decode: body has no op: %w", ErrMalformed)
	}
	d := newDec(body)

	var m Message
	switch op {
	case OpTransfer:
		m = decodeTransfer(d)
	case OpInternalTransfer:
		m = decodeInternalTransfer(d)
	case OpTransferNotification:
		m = decodeTransferNotification(d)
	case OpBurn:
		m = decodeBurn(d)
	case OpBurnNotification:
		m = decodeBurnNotification(d)
	case OpExcesses:
		m = &Excesses{QueryID: d.header(OpExcesses)}
	case OpProvideWalletAddress:
		m = decodeProvideWalletAddress(d)
	case OpTakeWalletAddress:
		m = decodeTakeWalletAddress(d)
	case OpMint:
		m = decodeMint(d)
	case OpChangeAdmin:
		qid := d.header(OpChangeAdmin)
		m = &ChangeAdmin{QueryID: qid, NewAdmin: d.addr()}
	case OpClaimAdmin:
		m = &ClaimAdmin{QueryID: d.header(OpClaimAdmin)}
	case OpChangeContent:
		qid := d.header(OpChangeContent)
		m = &ChangeContent{QueryID: qid, Content: d.ref()}
	case OpCloseMinting:
		m = &CloseMinting{QueryID: d.header(OpCloseMinting)}
	case OpClaimTon:
		qid := d.header(OpClaimTon)
		m = &ClaimTon{QueryID: qid, Receiver: d.addr(), Amount: d.ton()}
	case OpProvideWalletBalance:
		qid := d.header(OpProvideWalletBalance)
		m = &ProvideWalletBalance{QueryID: qid, Receiver: d.addr(), IncludeVerifyInfo: d.bit()}
	case OpTakeWalletBalance:
		m = decodeTakeWalletBalance(d)
	case OpSetStatus:
		qid := d.header(OpSetStatus)
		m = &SetStatus{QueryID: qid, Status: uint8(d.uint(4))}
	case OpCallTo:
		ct, err := decodeCallTo(d)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", OpName(op), err)
		}
		return ct, nil
	case OpUpgrade:
		qid := d.header(OpUpgrade)
		m = &Upgrade{QueryID: qid, NewData: d.ref(), NewCode: d.ref()}
	case BounceSentinel:
		return nil, ErrBounced
	default:
		return nil, fmt.Errorf("decode op 0x%08x: %w", op, ErrUnexpectedOp)
	}
	if d.err != nil {
		return nil, fmt.Errorf("decode %s: %w", OpName(op), d.err)
	}
	return m, nil
}

// MustEncode encodes m and panics on error. It is meant for building fixed messages in tests and tools.
func MustEncode(m Message) *cell.Cell {
	c, err := m.Encode()
	if err != nil {
		panic(fmt.Sprintf("encode %s: %v", OpName(m.Op()), err))
	}
	return c
}

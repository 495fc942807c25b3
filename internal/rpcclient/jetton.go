package rpcclient

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Klingon-tech/klingnet-jetton/internal/contract"
	"github.com/Klingon-tech/klingnet-jetton/internal/rpc"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

var lastQueryID atomic.Uint64

// nextQueryID returns a query id that is unique within this process.
func nextQueryID() uint64 {
	now := uint64(time.Now().UnixNano())
	for {
		last := lastQueryID.Load()
		next := max(now, last+1)
		if lastQueryID.CompareAndSwap(last, next) {
			return next
		}
	}
}

// EncodeBody renders a message body as the hex BOC ledger_send expects.
func EncodeBody(m jetton.Message) (string, error) {
	c, err := m.Encode()
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", jetton.OpName(m.Op()), err)
	}
	return hex.EncodeToString(c.ToBOC()), nil
}

// DecodeBody parses a hex BOC body from a trace.
func DecodeBody(s string) (jetton.Message, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	c, err := cell.FromBOC(raw)
	if err != nil {
		return nil, err
	}
	return jetton.Decode(c)
}

// SendMessage submits a bounceable message carrying m from the plain account
// from to to, with value TON attached.
func (c *Client) SendMessage(from, to, value string, m jetton.Message) (*rpc.SendResult, error) {
	body, err := EncodeBody(m)
	if err != nil {
		return nil, err
	}
	return c.Send(rpc.SendParam{From: from, To: to, Value: value, Bounce: true, Body: body})
}

// MintRequest describes a mint sent by the minter admin.
type MintRequest struct {
	Admin      string
	Minter     string
	Receiver   string
	Amount     *uint256.Int
	ForwardTon *big.Int // attached to the transfer notification
	TonAmount  *big.Int // carried by the internal transfer
	Value      string   // TON attached to the mint request
}

// Mint asks the minter to mint tokens to a receiver.
func (c *Client) Mint(r MintRequest) (*rpc.SendResult, error) {
	addrs, err := parseAddrs(r.Admin, r.Minter, r.Receiver)
	if err != nil {
		return nil, err
	}
	tonAmount := r.TonAmount
	if tonAmount == nil {
		tonAmount = tlb.MustFromTON("0.05").Nano()
	}
	m := contract.NewMint(nextQueryID(), addrs[0], addrs[1], addrs[2], r.Amount, r.ForwardTon, tonAmount, jetton.Payload{})
	return c.SendMessage(r.Admin, r.Minter, r.Value, m)
}

// TransferRequest describes a transfer from the wallet of Owner.
type TransferRequest struct {
	Owner       string
	Minter      string
	Destination string
	Amount      *uint256.Int
	ForwardTon  *big.Int
	Value       string
}

// Transfer moves tokens from the wallet of Owner to the wallet of
// Destination. Excess TON returns to Owner.
func (c *Client) Transfer(r TransferRequest) (*rpc.SendResult, error) {
	addrs, err := parseAddrs(r.Owner, r.Destination)
	if err != nil {
		return nil, err
	}
	wallet, err := c.WalletAddress(r.Minter, r.Owner)
	if err != nil {
		return nil, err
	}
	forward := r.ForwardTon
	if forward == nil {
		forward = new(big.Int)
	}
	return c.SendMessage(r.Owner, wallet.Wallet, r.Value, &jetton.Transfer{
		QueryID:             nextQueryID(),
		Amount:              r.Amount,
		Destination:         addrs[1],
		ResponseDestination: addrs[0],
		ForwardTonAmount:    tlb.FromNanoTON(forward),
	})
}

// Burn destroys tokens held by owner. Excess TON returns to owner.
func (c *Client) Burn(owner, minter string, amount *uint256.Int, value string) (*rpc.SendResult, error) {
	addrs, err := parseAddrs(owner)
	if err != nil {
		return nil, err
	}
	wallet, err := c.WalletAddress(minter, owner)
	if err != nil {
		return nil, err
	}
	return c.SendMessage(owner, wallet.Wallet, value, &jetton.Burn{
		QueryID:             nextQueryID(),
		Amount:              amount,
		ResponseDestination: addrs[0],
	})
}

// Discover asks the minter for the wallet address of owner on behalf of
// from and returns the minter's answer.
func (c *Client) Discover(from, minter, owner string, includeAddress bool, value string) (*jetton.TakeWalletAddress, error) {
	addrs, err := parseAddrs(owner)
	if err != nil {
		return nil, err
	}
	res, err := c.SendMessage(from, minter, value, &jetton.ProvideWalletAddress{
		QueryID:        nextQueryID(),
		Owner:          addrs[0],
		IncludeAddress: includeAddress,
	})
	if err != nil {
		return nil, err
	}
	for _, tx := range res.Transactions {
		if tx.Op != jetton.OpName(jetton.OpTakeWalletAddress) || tx.Bounced {
			continue
		}
		msg, err := DecodeBody(tx.Body)
		if err != nil {
			return nil, fmt.Errorf("decode reply: %w", err)
		}
		if take, ok := msg.(*jetton.TakeWalletAddress); ok {
			return take, nil
		}
	}
	if len(res.Transactions) > 0 && !res.Transactions[0].Success {
		return nil, fmt.Errorf("discovery rejected with exit code %d", res.Transactions[0].ExitCode)
	}
	return nil, fmt.Errorf("no take_wallet_address in trace")
}

func parseAddrs(ss ...string) ([]*address.Address, error) {
	out := make([]*address.Address, len(ss))
	for i, s := range ss {
		a, err := jetton.ParseAddress(s)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

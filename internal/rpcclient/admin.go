package rpcclient

import (
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Klingon-tech/klingnet-jetton/internal/rpc"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// defaultCallTon is carried by a governance call_to to the target wallet.
const defaultCallTon = "0.05"

// ChangeAdmin proposes newAdmin as the next admin of minter.
func (c *Client) ChangeAdmin(admin, minter, newAdmin, value string) (*rpc.SendResult, error) {
	addrs, err := parseAddrs(newAdmin)
	if err != nil {
		return nil, err
	}
	return c.SendMessage(admin, minter, value, &jetton.ChangeAdmin{QueryID: nextQueryID(), NewAdmin: addrs[0]})
}

// ClaimAdmin completes a pending admin handover on behalf of claimer.
func (c *Client) ClaimAdmin(claimer, minter, value string) (*rpc.SendResult, error) {
	return c.SendMessage(claimer, minter, value, &jetton.ClaimAdmin{QueryID: nextQueryID()})
}

// CloseMinting disables minting on minter.
func (c *Client) CloseMinting(admin, minter, value string) (*rpc.SendResult, error) {
	return c.SendMessage(admin, minter, value, &jetton.CloseMinting{QueryID: nextQueryID()})
}

// ChangeContent replaces the metadata cell of minter.
func (c *Client) ChangeContent(admin, minter string, content *cell.Cell, value string) (*rpc.SendResult, error) {
	return c.SendMessage(admin, minter, value, &jetton.ChangeContent{QueryID: nextQueryID(), Content: content})
}

// ClaimTon withdraws amount TON from minter to receiver. An empty amount
// withdraws everything above the storage reserve.
func (c *Client) ClaimTon(admin, minter, receiver, amount, value string) (*rpc.SendResult, error) {
	addrs, err := parseAddrs(receiver)
	if err != nil {
		return nil, err
	}
	coins := tlb.ZeroCoins
	if amount != "" {
		if coins, err = tlb.FromTON(amount); err != nil {
			return nil, err
		}
	}
	return c.SendMessage(admin, minter, value, &jetton.ClaimTon{
		QueryID:  nextQueryID(),
		Receiver: addrs[0],
		Amount:   coins,
	})
}

// SetStatus locks or unlocks the wallet of owner through a governance
// minter.
func (c *Client) SetStatus(admin, minter, owner string, status uint8, value string) (*rpc.SendResult, error) {
	addrs, err := parseAddrs(owner)
	if err != nil {
		return nil, err
	}
	qid := nextQueryID()
	return c.SendMessage(admin, minter, value, &jetton.CallTo{
		QueryID:   qid,
		Owner:     addrs[0],
		TonAmount: tlb.MustFromTON(defaultCallTon),
		Action:    &jetton.SetStatus{QueryID: qid, Status: status},
	})
}

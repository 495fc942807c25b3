package contract

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/address"

	"github.com/Klingon-tech/klingnet-jetton/internal/chain"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// AuditReport compares the supply of a minter with its wallets.
type AuditReport struct {
	Minter      *address.Address
	TotalSupply *uint256.Int
	WalletSum   *uint256.Int
	Wallets     int
	Pending     int // unsettled deltas across the minter and its wallets
	Queued      int // messages still in flight on the ledger
	Balanced    bool
}

// Audit checks conservation for the minter at addr: the total supply must
// equal the sum of balances of every wallet at its derived address. The
// check is only conclusive when Queued is zero; while messages are in
// flight the supply may lead the wallets.
func Audit(c *chain.Chain, addr *address.Address) (*AuditReport, error) {
	jd, err := GetJettonData(c, addr)
	if err != nil {
		return nil, err
	}
	r := &AuditReport{
		Minter:      addr,
		TotalSupply: jd.TotalSupply,
		WalletSum:   new(uint256.Int),
		Queued:      c.QueueLen(),
	}

	var wallets []*address.Address
	err = c.ForEachAccount(func(acct *chain.Account) error {
		ws, err := walletState(acct)
		if err != nil || !jetton.SameAddress(ws.Minter, addr) {
			return nil
		}
		// Wallets away from their derived address are not trusted by the minter.
		want, err := jetton.WalletAddress(ws.Owner, addr, jd.WalletCode)
		if err != nil || !jetton.SameAddress(want, acct.Address) {
			return nil
		}
		sum, overflow := new(uint256.Int).AddOverflow(r.WalletSum, ws.Balance)
		if overflow {
			return fmt.Errorf("wallet sum overflow at %s", acct.Address)
		}
		r.WalletSum = sum
		r.Wallets++
		wallets = append(wallets, acct.Address)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", addr, err)
	}

	for _, a := range append(wallets, addr) {
		deltas, err := PendingDeltas(c, a)
		if err != nil {
			return nil, fmt.Errorf("audit %s: %w", a, err)
		}
		r.Pending += len(deltas)
	}
	r.Balanced = r.TotalSupply.Eq(r.WalletSum)
	return r, nil
}

package token

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xssnick/tonutils-go/address"

	"github.com/Klingon-tech/klingnet-jetton/internal/chain"
	"github.com/Klingon-tech/klingnet-jetton/internal/contract"
	klog "github.com/Klingon-tech/klingnet-jetton/internal/log"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// Index keeps the metadata store in step with minter content on a ledger.
type Index struct {
	chain  *chain.Chain
	store  *Store
	logger zerolog.Logger
}

// NewIndex creates an index over c backed by store.
func NewIndex(c *chain.Chain, store *Store) *Index {
	return &Index{chain: c, store: store, logger: klog.Token}
}

// Store returns the underlying metadata store.
func (x *Index) Store() *Store { return x.store }

// Refresh re-parses the content of the minter at minter and stores it.
func (x *Index) Refresh(minter *address.Address) (*Metadata, error) {
	jd, err := contract.GetJettonData(x.chain, minter)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", minter, err)
	}
	meta, err := Parse(jd.Content)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", minter, err)
	}
	meta.Minter = minter.String()
	if err := x.store.Put(minter, meta); err != nil {
		return nil, err
	}
	x.logger.Debug().Str("minter", meta.Minter).Str("kind", meta.Kind).Msg("Metadata indexed")
	return meta, nil
}

// Observe refreshes every minter whose content a trace may have changed.
func (x *Index) Observe(trace chain.Trace) {
	seen := make(map[string]bool)
	for _, tx := range trace {
		if !tx.Success || !(tx.Deployed || tx.Op == jetton.OpChangeContent || tx.Op == jetton.OpUpgrade) {
			continue
		}
		key := jetton.AddressKey(tx.Dst)
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, err := x.Refresh(tx.Dst); err != nil && !errors.Is(err, contract.ErrNotMinter) {
			x.logger.Warn().Err(err).Str("minter", tx.Dst.String()).Msg("Metadata refresh failed")
		}
	}
}

// Rebuild drops the index and re-indexes every minter on the ledger.
func (x *Index) Rebuild() (int, error) {
	if err := x.store.Clear(); err != nil {
		return 0, err
	}
	var minters []*address.Address
	err := x.chain.ForEachAccount(func(acct *chain.Account) error {
		if !acct.IsContract() {
			return nil
		}
		if kind, _, err := jetton.ParseCode(acct.Code); err == nil && kind == jetton.KindMinter {
			minters = append(minters, acct.Address)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, m := range minters {
		if _, err := x.Refresh(m); err != nil {
			return 0, err
		}
	}
	return len(minters), nil
}

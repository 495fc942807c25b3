package chain

import (
	"fmt"
	"sort"

	"github.com/Klingon-tech/klingnet-jetton/pkg/crypto"
	"github.com/Klingon-tech/klingnet-jetton/pkg/types"
)

// Commitment computes a merkle root over all accounts. Each account is
// hashed deterministically, the hashes are sorted, and a merkle tree is
// built from them. Returns a zero hash when there are no accounts.
func (c *Chain) Commitment() (types.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var hashes []types.Hash
	err := c.store.ForEachAccount(func(a *Account) error {
		h, err := hashAccount(a)
		if err != nil {
			return err
		}
		hashes = append(hashes, h)
		return nil
	})
	if err != nil {
		return types.Hash{}, fmt.Errorf("account commitment: %w", err)
	}
	if len(hashes) == 0 {
		return types.Hash{}, nil
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i].Less(hashes[j]) })
	return crypto.MerkleRoot(hashes), nil
}

// hashAccount produces a BLAKE3 hash of an account.
// Format: workchain(4) | address(32) | account BOC
func hashAccount(a *Account) (types.Hash, error) {
	key, err := addressBytes(a.Address)
	if err != nil {
		return types.Hash{}, err
	}
	raw, err := encodeAccount(a)
	if err != nil {
		return types.Hash{}, err
	}
	return crypto.Hash(append(key, raw...)), nil
}

// Package token indexes jetton metadata.
//
// A minter's content cell follows the token data standard: a leading 0x01
// byte marks an off-chain URI in snake format, a leading 0x00 byte marks an
// on-chain dictionary keyed by the SHA-256 of the attribute name. Anything
// else is kept as raw bytes. Parsed metadata is stored per minter and
// refreshed whenever a minter is deployed or its content changes.
package token

import (
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// Content layouts.
const (
	KindOnchain  = "onchain"
	KindOffchain = "offchain"
	KindRaw      = "raw"
)

// Metadata holds descriptive information about a jetton.
type Metadata struct {
	Minter      string `json:"minter"`
	Kind        string `json:"kind"`
	URI         string `json:"uri,omitempty"`
	Name        string `json:"name,omitempty"`
	Symbol      string `json:"symbol,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Decimals    uint8  `json:"decimals"`
	Raw         []byte `json:"raw,omitempty"`
	ContentHash string `json:"contentHash"`
}

func newMetadata() *Metadata {
	return &Metadata{Decimals: jetton.Decimals}
}

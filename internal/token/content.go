package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/xssnick/tonutils-go/tvm/cell"
)

const (
	tagOnchain  = 0x00
	tagOffchain = 0x01
	tagSnake    = 0x00
)

// Content parsing errors.
var (
	ErrEmptyContent = errors.New("empty content cell")
	ErrBadAttribute = errors.New("malformed on-chain attribute")
	ErrValueTooLong = errors.New("attribute value exceeds 255 bytes")
	ErrBadDecimals  = errors.New("decimals attribute is not a number in 0..255")
)

// Attribute names of on-chain content.
var attributes = []string{"name", "symbol", "description", "image", "decimals", "uri"}

func attributeKey(name string) *big.Int {
	h := sha256.Sum256([]byte(name))
	return new(big.Int).SetBytes(h[:])
}

// OffchainContent builds a content cell pointing at uri.
func OffchainContent(uri string) (*cell.Cell, error) {
	b := cell.BeginCell().MustStoreUInt(tagOffchain, 8)
	if err := b.StoreStringSnake(uri); err != nil {
		return nil, fmt.Errorf("content uri: %w", err)
	}
	return b.EndCell(), nil
}

// OnchainContent builds an on-chain content dictionary from meta. Empty
// fields are omitted; decimals are always stored.
func OnchainContent(meta *Metadata) (*cell.Cell, error) {
	values := map[string]string{
		"name":        meta.Name,
		"symbol":      meta.Symbol,
		"description": meta.Description,
		"image":       meta.Image,
		"uri":         meta.URI,
		"decimals":    strconv.Itoa(int(meta.Decimals)),
	}
	dict := cell.NewDict(256)
	for _, name := range attributes {
		v := values[name]
		if v == "" {
			continue
		}
		if name == "name" || name == "symbol" {
			if len(v) > 255 {
				return nil, fmt.Errorf("%s: %w", name, ErrValueTooLong)
			}
		}
		data := cell.BeginCell().MustStoreUInt(tagSnake, 8)
		if err := data.StoreStringSnake(v); err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		value := cell.BeginCell().MustStoreRef(data.EndCell()).EndCell()
		if err := dict.SetIntKey(attributeKey(name), value); err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
	}
	b := cell.BeginCell().MustStoreUInt(tagOnchain, 8)
	if err := b.StoreDict(dict); err != nil {
		return nil, fmt.Errorf("content dict: %w", err)
	}
	return b.EndCell(), nil
}

// Parse decodes a content cell. Unknown layouts are returned as raw bytes
// rather than rejected.
func Parse(content *cell.Cell) (*Metadata, error) {
	if content == nil {
		return nil, ErrEmptyContent
	}
	meta := newMetadata()
	meta.ContentHash = hex.EncodeToString(content.Hash())

	s := content.BeginParse()
	if s.BitsLeft() < 8 {
		return parseRaw(meta, content)
	}
	tag, err := s.LoadUInt(8)
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagOffchain:
		uri, err := s.LoadStringSnake()
		if err != nil {
			return parseRaw(meta, content)
		}
		meta.Kind = KindOffchain
		meta.URI = uri
		return meta, nil
	case tagOnchain:
		if err := parseOnchain(meta, s); err != nil {
			return nil, err
		}
		return meta, nil
	}
	return parseRaw(meta, content)
}

func parseRaw(meta *Metadata, content *cell.Cell) (*Metadata, error) {
	meta.Kind = KindRaw
	if content.BitsSize() == 0 && content.RefsNum() == 0 {
		return meta, nil
	}
	raw, err := content.BeginParse().LoadBinarySnake()
	if err != nil {
		return nil, fmt.Errorf("raw content: %w", err)
	}
	meta.Raw = raw
	return meta, nil
}

func parseOnchain(meta *Metadata, s *cell.Slice) error {
	meta.Kind = KindOnchain
	dict, err := s.LoadDict(256)
	if err != nil {
		return fmt.Errorf("content dict: %w", err)
	}
	if dict == nil {
		return nil
	}
	for _, name := range attributes {
		v, ok, err := loadAttribute(dict, name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if !ok {
			continue
		}
		switch name {
		case "name":
			meta.Name = v
		case "symbol":
			meta.Symbol = v
		case "description":
			meta.Description = v
		case "image":
			meta.Image = v
		case "uri":
			meta.URI = v
		case "decimals":
			d, err := strconv.ParseUint(v, 10, 8)
			if err != nil {
				return ErrBadDecimals
			}
			meta.Decimals = uint8(d)
		}
	}
	return nil
}

func loadAttribute(dict *cell.Dictionary, name string) (string, bool, error) {
	v, err := dict.LoadValueByIntKey(attributeKey(name))
	if err != nil {
		return "", false, nil
	}
	ref, err := v.LoadRef()
	if err != nil {
		return "", false, ErrBadAttribute
	}
	tag, err := ref.LoadUInt(8)
	if err != nil || tag != tagSnake {
		return "", false, ErrBadAttribute
	}
	str, err := ref.LoadStringSnake()
	if err != nil {
		return "", false, ErrBadAttribute
	}
	return str, true, nil
}

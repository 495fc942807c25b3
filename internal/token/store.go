package token

import (
	"encoding/json"
	"fmt"

	"github.com/xssnick/tonutils-go/address"

	"github.com/Klingon-tech/klingnet-jetton/internal/storage"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

var prefixToken = []byte("t/") // t/<minter raw address> -> Metadata JSON

// Store persists token metadata keyed by minter.
type Store struct {
	db storage.DB
}

// NewStore creates a token metadata store.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// Put stores metadata for the minter at minter.
func (s *Store) Put(minter *address.Address, meta *Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("token marshal: %w", err)
	}
	return s.db.Put(tokenKey(minter), data)
}

// Get retrieves metadata for a minter.
func (s *Store) Get(minter *address.Address) (*Metadata, error) {
	data, err := s.db.Get(tokenKey(minter))
	if err != nil {
		return nil, fmt.Errorf("token get: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("token unmarshal: %w", err)
	}
	return &meta, nil
}

// Has checks if metadata exists for a minter.
func (s *Store) Has(minter *address.Address) (bool, error) {
	return s.db.Has(tokenKey(minter))
}

// ForEach iterates over all stored metadata.
// Return a non-nil error from fn to stop iteration early.
func (s *Store) ForEach(fn func(*Metadata) error) error {
	return s.db.ForEach(prefixToken, func(_, value []byte) error {
		var meta Metadata
		if err := json.Unmarshal(value, &meta); err != nil {
			return nil // Skip corrupt entries.
		}
		return fn(&meta)
	})
}

// List returns all stored metadata.
func (s *Store) List() ([]Metadata, error) {
	var entries []Metadata
	err := s.ForEach(func(meta *Metadata) error {
		entries = append(entries, *meta)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Metadata{}
	}
	return entries, nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	b := storage.NewBatch(s.db)
	err := s.db.ForEach(prefixToken, func(key, _ []byte) error {
		return b.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("token clear: %w", err)
	}
	return b.Commit()
}

func tokenKey(minter *address.Address) []byte {
	return append(append([]byte{}, prefixToken...), jetton.AddressKey(minter)...)
}

package chain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/xssnick/tonutils-go/address"

	"github.com/Klingon-tech/klingnet-jetton/internal/storage"
)

// Key prefixes and state keys for the ledger store.
var (
	prefixAccount = []byte("a/") // a/<wc(4)><hash(32)> -> account BOC
	prefixQueue   = []byte("q/") // q/<lt(8)> -> message BOC
	prefixSide    = []byte("s/") // s/<wc(4)><hash(32)>/<key> -> raw value
	keyNextLT     = []byte("m/lt")
	keyTxCount    = []byte("m/txs")
	keyFees       = []byte("m/fees")
)

// Store persists accounts, the message queue and runtime counters.
type Store struct {
	db storage.DB
}

// NewStore creates a ledger store backed by the given database.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// GetAccount loads an account. It returns (nil, nil) if none exists.
func (s *Store) GetAccount(addr *address.Address) (*Account, error) {
	key, err := accountKey(addr)
	if err != nil {
		return nil, err
	}
	raw, err := s.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("account get: %w", err)
	}
	return decodeAccount(addr, raw)
}

// ForEachAccount calls fn for every stored account in key order.
func (s *Store) ForEachAccount(fn func(*Account) error) error {
	return s.db.ForEach(prefixAccount, func(key, value []byte) error {
		addr, err := addressFromKey(key[len(prefixAccount):])
		if err != nil {
			return err
		}
		a, err := decodeAccount(addr, value)
		if err != nil {
			return fmt.Errorf("account %s: %w", addr, err)
		}
		return fn(a)
	})
}

// GetQueued loads a queued message by LT.
func (s *Store) GetQueued(lt uint64) (*Message, error) {
	raw, err := s.db.Get(queueKey(lt))
	if err != nil {
		return nil, fmt.Errorf("queued message %d: %w", lt, err)
	}
	return decodeMessage(raw)
}

// QueuedLTs returns the LTs of every queued message in ascending order.
func (s *Store) QueuedLTs() ([]uint64, error) {
	var lts []uint64
	err := s.db.ForEach(prefixQueue, func(key, _ []byte) error {
		if len(key) != len(prefixQueue)+8 {
			return fmt.Errorf("malformed queue key %x", key)
		}
		lts = append(lts, binary.BigEndian.Uint64(key[len(prefixQueue):]))
		return nil
	})
	sort.Slice(lts, func(i, j int) bool { return lts[i] < lts[j] })
	return lts, err
}

// GetSide reads a side-storage value of an account.
func (s *Store) GetSide(addr *address.Address, key string) ([]byte, bool, error) {
	k, err := sideKey(addr, key)
	if err != nil {
		return nil, false, err
	}
	v, err := s.db.Get(k)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("side get: %w", err)
	}
	return v, true, nil
}

// ForEachSide iterates the side-storage keys of addr starting with prefix.
func (s *Store) ForEachSide(addr *address.Address, prefix string, fn func(key string, value []byte) error) error {
	base, err := sideKey(addr, "")
	if err != nil {
		return err
	}
	return s.db.ForEach(append(base, prefix...), func(key, value []byte) error {
		return fn(string(key[len(base):]), value)
	})
}

// LoadState reads the runtime counters. A fresh store yields NextLT 1.
func (s *Store) LoadState() (State, error) {
	st := State{NextLT: 1, Fees: new(big.Int)}
	if v, err := s.db.Get(keyNextLT); err == nil {
		if len(v) != 8 {
			return st, fmt.Errorf("malformed next lt")
		}
		st.NextLT = binary.BigEndian.Uint64(v)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return st, fmt.Errorf("next lt get: %w", err)
	}
	if v, err := s.db.Get(keyTxCount); err == nil {
		if len(v) != 8 {
			return st, fmt.Errorf("malformed tx count")
		}
		st.TxCount = binary.BigEndian.Uint64(v)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return st, fmt.Errorf("tx count get: %w", err)
	}
	if v, err := s.db.Get(keyFees); err == nil {
		st.Fees.SetBytes(v)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return st, fmt.Errorf("fees get: %w", err)
	}
	return st, nil
}

// batch stages writes of one transaction.
type batch struct {
	b storage.Batch
}

func (s *Store) newBatch() *batch {
	return &batch{b: storage.NewBatch(s.db)}
}

func (b *batch) putAccount(a *Account) error {
	key, err := accountKey(a.Address)
	if err != nil {
		return err
	}
	raw, err := encodeAccount(a)
	if err != nil {
		return err
	}
	return b.b.Put(key, raw)
}

func (b *batch) putQueued(m *Message) error {
	raw, err := encodeMessage(m)
	if err != nil {
		return fmt.Errorf("message %d: %w", m.LT, err)
	}
	return b.b.Put(queueKey(m.LT), raw)
}

func (b *batch) deleteQueued(lt uint64) error {
	return b.b.Delete(queueKey(lt))
}

func (b *batch) putSide(addr *address.Address, key string, value []byte) error {
	k, err := sideKey(addr, key)
	if err != nil {
		return err
	}
	return b.b.Put(k, value)
}

func (b *batch) deleteSide(addr *address.Address, key string) error {
	k, err := sideKey(addr, key)
	if err != nil {
		return err
	}
	return b.b.Delete(k)
}

func (b *batch) putState(st State) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], st.NextLT)
	if err := b.b.Put(keyNextLT, buf[:]); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(buf[:], st.TxCount)
	if err := b.b.Put(keyTxCount, buf[:]); err != nil {
		return err
	}
	return b.b.Put(keyFees, st.Fees.Bytes())
}

func (b *batch) commit() error {
	return b.b.Commit()
}

// ── Key helpers ─────────────────────────────────────────────────────────

// ErrBadAddress is returned for addresses that cannot own an account.
var ErrBadAddress = errors.New("address cannot hold an account")

func addressBytes(addr *address.Address) ([]byte, error) {
	if addr == nil || addr.Type() != address.StdAddress {
		return nil, ErrBadAddress
	}
	out := make([]byte, 4+32)
	binary.BigEndian.PutUint32(out[:4], uint32(addr.Workchain()))
	copy(out[4:], addr.Data())
	return out, nil
}

func addressFromKey(b []byte) (*address.Address, error) {
	if len(b) != 36 {
		return nil, fmt.Errorf("malformed account key %x", b)
	}
	wc := int32(binary.BigEndian.Uint32(b[:4]))
	data := make([]byte, 32)
	copy(data, b[4:])
	return address.NewAddress(0, byte(wc), data), nil
}

func accountKey(addr *address.Address) ([]byte, error) {
	ab, err := addressBytes(addr)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, prefixAccount...), ab...), nil
}

func queueKey(lt uint64) []byte {
	key := make([]byte, len(prefixQueue)+8)
	copy(key, prefixQueue)
	binary.BigEndian.PutUint64(key[len(prefixQueue):], lt)
	return key
}

func sideKey(addr *address.Address, key string) ([]byte, error) {
	ab, err := addressBytes(addr)
	if err != nil {
		return nil, err
	}
	out := append(append([]byte{}, prefixSide...), ab...)
	out = append(out, '/')
	return append(out, key...), nil
}

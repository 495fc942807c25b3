package storage

import "bytes"

// PrefixDB is a namespace inside another DB. The ledger keeps accounts and
// the message queue under "ledger/" and the token index under "token/" of
// the same database.
type PrefixDB struct {
	inner  DB
	prefix []byte
}

// NewPrefixDB returns a view of inner where every key is stored under prefix.
func NewPrefixDB(inner DB, prefix []byte) *PrefixDB {
	return &PrefixDB{inner: inner, prefix: bytes.Clone(prefix)}
}

func (p *PrefixDB) key(k []byte) []byte {
	return append(bytes.Clone(p.prefix), k...)
}

// Get retrieves a value by key.
func (p *PrefixDB) Get(key []byte) ([]byte, error) {
	return p.inner.Get(p.key(key))
}

// Put stores a key-value pair.
func (p *PrefixDB) Put(key, value []byte) error {
	return p.inner.Put(p.key(key), value)
}

func (p *PrefixDB) Delete(key []byte) error {
	return p.inner.Delete(p.key(key))
}

func (p *PrefixDB) Has(key []byte) (bool, error) {
	return p.inner.Has(p.key(key))
}

// Close leaves the inner DB open.
func (p *PrefixDB) Close() error {
	return nil
}

// NewBatch returns a batch whose keys land in the namespace. It is atomic
// when the inner DB supports batches.
func (p *PrefixDB) NewBatch() Batch {
	return &prefixBatch{inner: NewBatch(p.inner), ns: p}
}

// ForEach visits keys under prefix within the namespace. Keys passed to fn
// have the namespace stripped.
func (p *PrefixDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	return p.inner.ForEach(p.key(prefix), func(key, value []byte) error {
		return fn(key[len(p.prefix):], value)
	})
}

type prefixBatch struct {
	inner Batch
	ns    *PrefixDB
}

func (pb *prefixBatch) Put(key, value []byte) error { return pb.inner.Put(pb.ns.key(key), value) }
func (pb *prefixBatch) Delete(key []byte) error     { return pb.inner.Delete(pb.ns.key(key)) }
func (pb *prefixBatch) Commit() error               { return pb.inner.Commit() }

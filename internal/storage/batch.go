package storage

// NewBatch returns an atomic batch when db implements Batcher. Otherwise the
// writes are buffered and applied one by one on Commit.
func NewBatch(db DB) Batch {
	if b, ok := db.(Batcher); ok {
		return b.NewBatch()
	}
	return &bufferedBatch{db: db}
}

type bufferedOp struct {
	key, value []byte // nil value deletes
}

type bufferedBatch struct {
	db  DB
	ops []bufferedOp
}

func (b *bufferedBatch) Put(key, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	b.ops = append(b.ops, bufferedOp{key: append([]byte(nil), key...), value: v})
	return nil
}

func (b *bufferedBatch) Delete(key []byte) error {
	b.ops = append(b.ops, bufferedOp{key: append([]byte(nil), key...)})
	return nil
}

func (b *bufferedBatch) Commit() error {
	for _, op := range b.ops {
		var err error
		if op.value == nil {
			err = b.db.Delete(op.key)
		} else {
			err = b.db.Put(op.key, op.value)
		}
		if err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}

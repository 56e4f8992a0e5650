package ledger

import (
	"fmt"
	"sync"
)

// MemLedger is an in-memory Ledger for tests and single-process use.
// Each Update runs against a shadow copy of the store; the copy replaces
// the live store only when the transaction function returns nil, giving
// whole-operation rollback on any failing check.
type MemLedger struct {
	mu      sync.RWMutex
	records map[ID][]byte
}

// Compile-time interface check.
var _ Ledger = (*MemLedger)(nil)

// NewMemLedger creates an empty in-memory ledger.
func NewMemLedger() *MemLedger {
	return &MemLedger{records: make(map[ID][]byte)}
}

type memTx struct {
	records  map[ID][]byte
	readOnly bool
}

// Update runs fn against a shadow copy and commits on success.
func (l *MemLedger) Update(fn func(tx Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	shadow := make(map[ID][]byte, len(l.records))
	for k, v := range l.records {
		shadow[k] = v
	}
	tx := &memTx{records: shadow}
	if err := fn(tx); err != nil {
		return err
	}
	l.records = shadow
	return nil
}

// View runs fn against the live store without allowing writes.
func (l *MemLedger) View(fn func(tx Tx) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return fn(&memTx{records: l.records, readOnly: true})
}

func (tx *memTx) Create(id ID, v interface{}) error {
	if tx.readOnly {
		return fmt.Errorf("ledger: create %s in read-only transaction", id)
	}
	if _, ok := tx.records[id]; ok {
		return fmt.Errorf("%w: %s", ErrRecordExists, id)
	}
	return tx.put(id, v)
}

func (tx *memTx) Get(id ID, v interface{}) error {
	data, ok := tx.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if err := decodeGob(data, v); err != nil {
		return fmt.Errorf("ledger: decode record %s: %w", id, err)
	}
	return nil
}

func (tx *memTx) Put(id ID, v interface{}) error {
	if tx.readOnly {
		return fmt.Errorf("ledger: put %s in read-only transaction", id)
	}
	return tx.put(id, v)
}

func (tx *memTx) put(id ID, v interface{}) error {
	data, err := encodeGob(v)
	if err != nil {
		return fmt.Errorf("ledger: encode record %s: %w", id, err)
	}
	tx.records[id] = data
	return nil
}

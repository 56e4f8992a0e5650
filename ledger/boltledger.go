package ledger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var bucketRecords = []byte("records")

// BoltLedger is a bbolt-backed Ledger. Every Update maps to a single
// bbolt write transaction, so a failing operation leaves no partial
// state on disk.
type BoltLedger struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Ledger = (*BoltLedger)(nil)

// OpenBoltLedger opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltLedger(dbPath string) (*BoltLedger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRecords)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: create bucket: %w", err)
	}

	return &BoltLedger{db: db}, nil
}

// Close closes the underlying database.
func (l *BoltLedger) Close() error { return l.db.Close() }

type boltTx struct {
	bucket *bbolt.Bucket
}

// Update runs fn inside one bbolt write transaction.
func (l *BoltLedger) Update(fn func(tx Tx) error) error {
	return l.db.Update(func(btx *bbolt.Tx) error {
		return fn(&boltTx{bucket: btx.Bucket(bucketRecords)})
	})
}

// View runs fn inside one bbolt read transaction.
func (l *BoltLedger) View(fn func(tx Tx) error) error {
	return l.db.View(func(btx *bbolt.Tx) error {
		return fn(&boltTx{bucket: btx.Bucket(bucketRecords)})
	})
}

func (tx *boltTx) Create(id ID, v interface{}) error {
	if tx.bucket.Get(id[:]) != nil {
		return fmt.Errorf("%w: %s", ErrRecordExists, id)
	}
	return tx.Put(id, v)
}

func (tx *boltTx) Get(id ID, v interface{}) error {
	data := tx.bucket.Get(id[:])
	if data == nil {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if err := decodeGob(data, v); err != nil {
		return fmt.Errorf("ledger: decode record %s: %w", id, err)
	}
	return nil
}

func (tx *boltTx) Put(id ID, v interface{}) error {
	data, err := encodeGob(v)
	if err != nil {
		return fmt.Errorf("ledger: encode record %s: %w", id, err)
	}
	if err := tx.bucket.Put(id[:], data); err != nil {
		return fmt.Errorf("ledger: put record %s: %w", id, err)
	}
	return nil
}

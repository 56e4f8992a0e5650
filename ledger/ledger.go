// Package ledger provides the record primitive the structured-product
// core runs on: content-addressed records with atomic all-or-nothing
// mutations, secp256k1 caller identities, and an append-only operation
// journal.
package ledger

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// IDSize is the length of a record identifier in bytes.
const IDSize = 32

// ID identifies a single ledger record.
type ID [IDSize]byte

// String returns the hex encoding of the ID.
func (id ID) String() string { return hex.EncodeToString(id[:]) }

// IsZero reports whether the ID is the zero value.
func (id ID) IsZero() bool { return id == ID{} }

// DeriveID computes a deterministic record ID from a tuple of seeds.
// Seeds are length-prefixed before hashing so that ("ab","c") and
// ("a","bc") derive distinct IDs.
func DeriveID(seeds ...[]byte) ID {
	h, _ := blake2b.New256(nil)
	var lenBuf [4]byte
	for _, seed := range seeds {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(seed)))
		h.Write(lenBuf[:])
		h.Write(seed)
	}
	var id ID
	copy(id[:], h.Sum(nil))
	return id
}

// Ledger applies mutations to named records with all-or-nothing
// semantics: if fn returns an error, no record touched inside fn is
// modified.
type Ledger interface {
	// Update runs fn inside a writable transaction. The transaction
	// commits only if fn returns nil.
	Update(fn func(tx Tx) error) error

	// View runs fn inside a read-only transaction.
	View(fn func(tx Tx) error) error
}

// Tx is a single atomic transaction over the record store.
type Tx interface {
	// Create stores a new record. Fails with ErrRecordExists if a
	// record with the same ID is already present.
	Create(id ID, v interface{}) error

	// Get decodes the record with the given ID into v. Fails with
	// ErrRecordNotFound if absent.
	Get(id ID, v interface{}) error

	// Put overwrites the record with the given ID, creating it if
	// absent.
	Put(id ID, v interface{}) error
}

// encodeGob serializes a record value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded record data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

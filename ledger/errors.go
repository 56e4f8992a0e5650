package ledger

import "errors"

var (
	// ErrRecordExists indicates a record with the same ID already exists.
	ErrRecordExists = errors.New("ledger: record already exists")

	// ErrRecordNotFound indicates no record exists for the given ID.
	ErrRecordNotFound = errors.New("ledger: record not found")

	// ErrInvalidKey indicates a malformed identity key.
	ErrInvalidKey = errors.New("ledger: invalid identity key")

	// ErrInvalidSignature indicates the operation signature does not verify.
	ErrInvalidSignature = errors.New("ledger: invalid operation signature")

	// ErrNilParam indicates a required parameter was nil.
	ErrNilParam = errors.New("ledger: nil parameter")

	// ErrJournalClosed indicates an append to a closed journal.
	ErrJournalClosed = errors.New("ledger: journal is closed")
)

package snapshot

import "errors"

var (
	// ErrNotActive indicates a balance record was requested for a
	// schedule that has not been activated.
	ErrNotActive = errors.New("snapshot: schedule not active")

	// ErrNoActiveSnapshot indicates a transfer before the first snapshot
	// boundary.
	ErrNoActiveSnapshot = errors.New("snapshot: no active snapshot")

	// ErrInsufficientSnapshotBalance indicates the source's reconstructed
	// balance at the current snapshot cannot cover the transfer amount.
	ErrInsufficientSnapshotBalance = errors.New("snapshot: insufficient snapshot balance")

	// ErrOutsideTransfer indicates the hook was invoked without an
	// in-flight transfer marker on both accounts.
	ErrOutsideTransfer = errors.New("snapshot: hook called outside of transfer")

	// ErrIndexOutOfRange indicates a snapshot index outside the record.
	ErrIndexOutOfRange = errors.New("snapshot: index out of range")

	// ErrZeroAmount indicates a transfer of zero units.
	ErrZeroAmount = errors.New("snapshot: zero transfer amount")

	// ErrNilParam indicates a required parameter was nil.
	ErrNilParam = errors.New("snapshot: nil parameter")
)

package token

import "errors"

var (
	// ErrMintExists indicates a mint already derived from the same seed.
	ErrMintExists = errors.New("token: mint exists")

	// ErrMintNotFound indicates no mint with the given ID.
	ErrMintNotFound = errors.New("token: mint not found")

	// ErrAccountExists indicates the owner already holds an account for
	// the mint.
	ErrAccountExists = errors.New("token: account exists")

	// ErrAccountNotFound indicates no account with the given ID.
	ErrAccountNotFound = errors.New("token: account not found")

	// ErrMintMismatch indicates a transfer between accounts of different
	// mints.
	ErrMintMismatch = errors.New("token: mint mismatch")

	// ErrUnauthorized indicates a caller that does not own the account or
	// mint it operates on.
	ErrUnauthorized = errors.New("token: unauthorized")

	// ErrInsufficientBalance indicates a transfer exceeding the source
	// account's balance.
	ErrInsufficientBalance = errors.New("token: insufficient balance")

	// ErrZeroAmount indicates a zero-amount movement.
	ErrZeroAmount = errors.New("token: zero amount")

	// ErrSelfTransfer indicates a transfer with the same source and
	// destination.
	ErrSelfTransfer = errors.New("token: self transfer")

	// ErrSupplyOverflow indicates a mint or credit that would overflow
	// 64 bits.
	ErrSupplyOverflow = errors.New("token: supply overflow")

	// ErrNilParam indicates a required parameter was nil.
	ErrNilParam = errors.New("token: nil parameter")
)

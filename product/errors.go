package product

import "errors"

var (
	// ErrUnauthorized indicates a caller without the right over the
	// product record.
	ErrUnauthorized = errors.New("product: unauthorized")

	// ErrZeroSupply indicates a product created with no units.
	ErrZeroSupply = errors.New("product: zero supply")

	// ErrAlreadyIssued indicates a structural mutation after issuance.
	ErrAlreadyIssued = errors.New("product: already issued")

	// ErrNotIssued indicates a post-issuance operation on a draft
	// product.
	ErrNotIssued = errors.New("product: not issued")

	// ErrAlreadyFunded indicates a second funding transfer.
	ErrAlreadyFunded = errors.New("product: already funded")

	// ErrUnfunded indicates issuance before the investor has paid in.
	ErrUnfunded = errors.New("product: not funded")

	// ErrPrincipalUndefined indicates issuance without a principal
	// payment.
	ErrPrincipalUndefined = errors.New("product: principal payment undefined")

	// ErrProceedsWithdrawn indicates a second proceeds withdrawal.
	ErrProceedsWithdrawn = errors.New("product: proceeds already withdrawn")

	// ErrPaymentNotFunded indicates settlement from a custody account
	// that has not been funded from the treasury.
	ErrPaymentNotFunded = errors.New("product: payment custody not funded")

	// ErrOverflow indicates an obligation that does not fit in 64 bits.
	ErrOverflow = errors.New("product: obligation overflows uint64")

	// ErrHookedFundingMint indicates a funding mint that carries a
	// transfer hook. Funding transfers run inside controller updates,
	// where a hook's nested update would deadlock the store.
	ErrHookedFundingMint = errors.New("product: funding mint carries a transfer hook")

	// ErrUnknownProduct indicates an operation on a product this
	// controller does not hold the signing identity for.
	ErrUnknownProduct = errors.New("product: unknown product")

	// ErrNilParam indicates a required parameter was nil.
	ErrNilParam = errors.New("product: nil parameter")
)

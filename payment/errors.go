package payment

import "errors"

var (
	// ErrUnauthorized indicates the caller is not the payment's bound
	// price authority.
	ErrUnauthorized = errors.New("payment: unauthorized")

	// ErrInvalidPrincipalSnapshot indicates a principal payment not bound
	// to the last defined snapshot.
	ErrInvalidPrincipalSnapshot = errors.New("payment: principal must ride on the last snapshot")

	// ErrPrincipalAlreadyDefined indicates a second principal-flagged
	// payment.
	ErrPrincipalAlreadyDefined = errors.New("payment: principal already defined")

	// ErrNoSnapshots indicates a principal payment on a schedule with no
	// defined snapshots.
	ErrNoSnapshots = errors.New("payment: no snapshots defined")

	// ErrSnapshotAfterPrincipal indicates a coupon that would define a
	// snapshot boundary past the principal's, which must stay last.
	ErrSnapshotAfterPrincipal = errors.New("payment: snapshot past principal")

	// ErrDateNotInPast indicates pricing before the payment's snapshot
	// time.
	ErrDateNotInPast = errors.New("payment: snapshot date not in past")

	// ErrAlreadyPriced indicates the price has already been set.
	ErrAlreadyPriced = errors.New("payment: price already set")

	// ErrPriceNotSet indicates settlement before pricing.
	ErrPriceNotSet = errors.New("payment: price not set")

	// ErrAlreadyPaid indicates the beneficiary has already settled this
	// payment.
	ErrAlreadyPaid = errors.New("payment: already paid")

	// ErrNoEntitlement indicates a zero snapshot balance for the
	// beneficiary.
	ErrNoEntitlement = errors.New("payment: no entitlement")

	// ErrAlreadyPulled indicates the payment's custody has already been
	// funded from the treasury.
	ErrAlreadyPulled = errors.New("payment: custody already funded")

	// ErrNotFound indicates no payment exists with the given ID.
	ErrNotFound = errors.New("payment: not found")

	// ErrDuplicate indicates a payment already registered for the same
	// snapshot and principal flag.
	ErrDuplicate = errors.New("payment: duplicate payment")

	// ErrOverflow indicates a payout amount that does not fit in 64 bits.
	ErrOverflow = errors.New("payment: payout overflows uint64")

	// ErrUnknownKind indicates a payment with an invalid kind tag.
	ErrUnknownKind = errors.New("payment: unknown kind")

	// ErrNilParam indicates a required parameter was nil.
	ErrNilParam = errors.New("payment: nil parameter")
)

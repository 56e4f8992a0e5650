// Package payment implements the payment registry of a structured
// product: the ordered set of coupon and principal payments, their
// pricing, and per-beneficiary settlement.
//
// A payment is either fixed (price per unit known at creation) or
// variable (priced later by a bound price authority, typically after
// the final fixing of the underlying). A beneficiary's payout is their
// balance at the payment's snapshot times the price per unit, and each
// beneficiary settles a payment at most once.
package payment

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/brcfi/libbrc-go/ledger"
)

// Kind tags the pricing mode of a payment.
type Kind uint8

const (
	// KindFixed payments carry their price per unit from creation.
	KindFixed Kind = iota

	// KindVariable payments are priced after creation by their bound
	// price authority.
	KindVariable
)

// String returns the kind's wire name.
func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindVariable:
		return "variable"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Payment is one registered payment of a product.
type Payment struct {
	ID            ledger.ID
	Product       ledger.ID // owning product record
	Kind          Kind
	Principal     bool
	SnapshotIndex int // entitlement snapshot in the product's schedule

	// PricePerUnit is the payout per unit of snapshot balance. Fixed
	// payments carry it from creation; variable payments start nil.
	PricePerUnit *uint64

	// PriceAuthority is the only key allowed to price a variable
	// payment. Zero for fixed payments.
	PriceAuthority ledger.Key

	// Custody is the token account the payment settles from, set when
	// the treasury funds it.
	Custody ledger.ID
	Pulled  bool

	// Paid marks beneficiaries that have already settled.
	Paid map[ledger.Key]bool
}

// Priced reports whether the price per unit has been set.
func (p *Payment) Priced() bool { return p.PricePerUnit != nil }

// SetPrice sets a variable payment's price per unit. Only the bound
// price authority may price, only after the payment's snapshot time has
// passed, and only once.
func (p *Payment) SetPrice(caller ledger.Key, pricePerUnit uint64, snapshotTime, now int64) error {
	switch p.Kind {
	case KindFixed:
		return fmt.Errorf("%w: fixed payments are priced at creation", ErrUnauthorized)
	case KindVariable:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, p.Kind)
	}
	if caller != p.PriceAuthority {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	if now < snapshotTime {
		return fmt.Errorf("%w: snapshot at %d, now %d", ErrDateNotInPast, snapshotTime, now)
	}
	if p.Priced() {
		return fmt.Errorf("%w: %d", ErrAlreadyPriced, *p.PricePerUnit)
	}
	p.PricePerUnit = &pricePerUnit
	return nil
}

// Payout returns the amount due for a beneficiary holding balance units
// at the payment's snapshot. The product is computed in 256 bits and
// must fit back into 64.
func (p *Payment) Payout(balance uint64) (uint64, error) {
	if !p.Priced() {
		return 0, ErrPriceNotSet
	}
	amount := new(uint256.Int).Mul(
		uint256.NewInt(balance),
		uint256.NewInt(*p.PricePerUnit),
	)
	if !amount.IsUint64() {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, balance, *p.PricePerUnit)
	}
	return amount.Uint64(), nil
}

// Settle computes the payout for beneficiary and marks it paid. The
// caller supplies the beneficiary's balance at the payment's snapshot
// and is responsible for moving the funds; a zero balance is rejected
// so a never-funded holder cannot burn their settlement marker.
func (p *Payment) Settle(beneficiary ledger.Key, balance uint64) (uint64, error) {
	if !p.Priced() {
		return 0, ErrPriceNotSet
	}
	if p.Paid[beneficiary] {
		return 0, fmt.Errorf("%w: %s", ErrAlreadyPaid, beneficiary)
	}
	if balance == 0 {
		return 0, fmt.Errorf("%w: %s holds no balance at snapshot %d", ErrNoEntitlement, beneficiary, p.SnapshotIndex)
	}
	amount, err := p.Payout(balance)
	if err != nil {
		return 0, err
	}
	if p.Paid == nil {
		p.Paid = make(map[ledger.Key]bool)
	}
	p.Paid[beneficiary] = true
	return amount, nil
}

// MarkPulled records that the payment's custody has been funded from
// the treasury. Pulling is one-shot.
func (p *Payment) MarkPulled(custody ledger.ID) error {
	if p.Pulled {
		return ErrAlreadyPulled
	}
	p.Custody = custody
	p.Pulled = true
	return nil
}

package barrier

import (
	"fmt"

	"github.com/brcfi/libbrc-go/ledger"
	"github.com/brcfi/libbrc-go/oracle"
)

// PriceSetter is the slice of the payment registry the note needs: the
// ability to set a variable payment's price as its bound authority.
type PriceSetter interface {
	SetPrice(paymentID ledger.ID, caller ledger.Key, pricePerUnit uint64, now int64) error
}

// Note is the barrier reverse convertible's price-authority record. It
// is registered as the price authority of the product's principal
// payment; at maturity Fix reads the oracle and pushes the computed
// final principal into that payment.
type Note struct {
	Authority        ledger.Key // identity the note signs SetPrice with
	Symbol           string     // underlying asset symbol on the feed
	InitialPrincipal uint64     // principal per unit
	InitialPrice     uint64     // initial fixing price of the underlying
	Barrier          uint64     // knock-in level, absolute price
	TargetPayment    ledger.ID  // the product's principal payment

	FinalPrice     *uint64 // set by Fix
	FinalPrincipal *uint64 // set by Fix
	FixedAt        *int64  // unix seconds, set by Fix
}

// NewNote creates a note whose barrier is the initial fixing price
// scaled by barrierBasisPoints (10000 = 100%).
func NewNote(authority ledger.Key, symbol string, initialPrincipal, initialPrice, barrierBasisPoints uint64, targetPayment ledger.ID) (*Note, error) {
	b, err := BarrierFromBasisPoints(initialPrice, barrierBasisPoints)
	if err != nil {
		return nil, err
	}
	return &Note{
		Authority:        authority,
		Symbol:           symbol,
		InitialPrincipal: initialPrincipal,
		InitialPrice:     initialPrice,
		Barrier:          b,
		TargetPayment:    targetPayment,
	}, nil
}

// Fixed reports whether the final fixing has happened.
func (n *Note) Fixed() bool { return n.FixedAt != nil }

// Fix performs the final fixing: reads the current underlying price
// from the feed, computes the final principal per unit, and sets it as
// the target payment's price. Fix is one-shot; a second call fails with
// ErrAlreadyFixed and the setter is not invoked again.
func (n *Note) Fix(feed oracle.Feed, setter PriceSetter, now int64) error {
	if feed == nil {
		return fmt.Errorf("%w: feed", ErrNilParam)
	}
	if setter == nil {
		return fmt.Errorf("%w: setter", ErrNilParam)
	}
	if n.Fixed() {
		return fmt.Errorf("%w: at %d", ErrAlreadyFixed, *n.FixedAt)
	}

	finalPrice, err := feed.CurrentPrice(n.Symbol)
	if err != nil {
		return fmt.Errorf("barrier: read feed: %w", err)
	}

	principal, err := FinalPrincipal(n.InitialPrincipal, n.InitialPrice, n.Barrier, finalPrice)
	if err != nil {
		return err
	}

	if err := setter.SetPrice(n.TargetPayment, n.Authority, principal, now); err != nil {
		return fmt.Errorf("barrier: set payment price: %w", err)
	}

	n.FinalPrice = &finalPrice
	n.FinalPrincipal = &principal
	n.FixedAt = &now
	return nil
}

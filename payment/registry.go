package payment

import (
	"encoding/binary"
	"fmt"

	"github.com/brcfi/libbrc-go/ledger"
	"github.com/brcfi/libbrc-go/schedule"
)

// Registry is the ordered payment set of one product. Payments append
// only; registering a coupon payment defines its snapshot boundary on
// the product's schedule as a side effect.
type Registry struct {
	Product  ledger.ID
	Payments []*Payment
}

// NewRegistry creates an empty registry for the given product record.
func NewRegistry(product ledger.ID) *Registry {
	return &Registry{Product: product}
}

// Len returns the number of registered payments.
func (r *Registry) Len() int { return len(r.Payments) }

// Principal returns the product's principal payment, or nil if none is
// registered yet.
func (r *Registry) Principal() *Payment {
	for _, p := range r.Payments {
		if p.Principal {
			return p
		}
	}
	return nil
}

// Find returns the payment with the given ID.
func (r *Registry) Find(id ledger.ID) (*Payment, error) {
	for _, p := range r.Payments {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// PaymentID derives the deterministic record ID of a payment from its
// owning product, principal flag, and snapshot offset.
func PaymentID(product ledger.ID, principal bool, offset int64) ledger.ID {
	flag := []byte{0}
	if principal {
		flag[0] = 1
	}
	var off [8]byte
	binary.BigEndian.PutUint64(off[:], uint64(offset))
	return ledger.DeriveID([]byte("payment"), product[:], flag, off[:])
}

// AddFixed registers a payment priced at creation.
func (r *Registry) AddFixed(sched *schedule.Schedule, principal bool, offset int64, pricePerUnit uint64) (*Payment, error) {
	p, err := r.add(sched, principal, offset)
	if err != nil {
		return nil, err
	}
	p.Kind = KindFixed
	p.PricePerUnit = &pricePerUnit
	r.Payments = append(r.Payments, p)
	return p, nil
}

// AddVariable registers a payment to be priced later by priceAuthority.
func (r *Registry) AddVariable(sched *schedule.Schedule, principal bool, offset int64, priceAuthority ledger.Key) (*Payment, error) {
	p, err := r.add(sched, principal, offset)
	if err != nil {
		return nil, err
	}
	p.Kind = KindVariable
	p.PriceAuthority = priceAuthority
	r.Payments = append(r.Payments, p)
	return p, nil
}

// add validates the snapshot binding and builds the unpriced payment.
// Principal payments must ride on the last defined snapshot and there
// is at most one; coupon payments define their own boundary, but never
// one past the principal's.
func (r *Registry) add(sched *schedule.Schedule, principal bool, offset int64) (*Payment, error) {
	if sched == nil {
		return nil, fmt.Errorf("%w: schedule", ErrNilParam)
	}

	id := PaymentID(r.Product, principal, offset)
	if _, err := r.Find(id); err == nil {
		return nil, fmt.Errorf("%w: offset %d", ErrDuplicate, offset)
	}

	var idx int
	if principal {
		if r.Principal() != nil {
			return nil, ErrPrincipalAlreadyDefined
		}
		if sched.Len() == 0 {
			return nil, ErrNoSnapshots
		}
		if offset != sched.Last() {
			return nil, fmt.Errorf("%w: offset %d, last snapshot %d", ErrInvalidPrincipalSnapshot, offset, sched.Last())
		}
		idx = sched.Len() - 1
	} else if i, err := sched.FindIndex(offset); err == nil {
		idx = i
	} else {
		if r.Principal() != nil && offset > sched.Last() {
			return nil, fmt.Errorf("%w: offset %d, principal snapshot %d", ErrSnapshotAfterPrincipal, offset, sched.Last())
		}
		if err := sched.Define(offset); err != nil {
			return nil, fmt.Errorf("payment: define snapshot: %w", err)
		}
		idx = sched.Len() - 1
	}

	return &Payment{
		ID:            id,
		Product:       r.Product,
		Principal:     principal,
		SnapshotIndex: idx,
		Paid:          make(map[ledger.Key]bool),
	}, nil
}

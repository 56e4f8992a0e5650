// Package snapshot implements the per-holder snapshot balance store: a
// sparse sequence of balance observations aligned to a product's
// snapshot schedule, mutated by a transfer hook and read back with a
// backward-fill point-in-time reconstruction.
package snapshot

import (
	"fmt"

	"github.com/brcfi/libbrc-go/schedule"
)

// BalanceRecord holds one holder account's balance observations, one
// slot per schedule entry. A nil slot means the balance is unchanged
// since the last observed slot; a record with no observations at all
// reconstructs to zero everywhere.
type BalanceRecord struct {
	Observations []*uint64
}

// NewRecord allocates a record sized to the activated schedule. All
// slots start unobserved. Records are preallocated at issuance; the
// schedule's fixed capacity bounds their size.
func NewRecord(sched *schedule.Schedule) (*BalanceRecord, error) {
	if sched == nil {
		return nil, fmt.Errorf("%w: schedule", ErrNilParam)
	}
	if !sched.Active() {
		return nil, ErrNotActive
	}
	return &BalanceRecord{Observations: make([]*uint64, sched.Len())}, nil
}

// BalanceAt reconstructs the balance at snapshot idx: the slot's own
// observation if set, otherwise the nearest earlier observation, or 0
// when the account was never observed. Worst case O(schedule length),
// which is small and bounded.
func (r *BalanceRecord) BalanceAt(idx int) (uint64, error) {
	if idx < 0 || idx >= len(r.Observations) {
		return 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, idx, len(r.Observations))
	}
	for i := idx; i >= 0; i-- {
		if r.Observations[i] != nil {
			return *r.Observations[i], nil
		}
	}
	return 0, nil
}

// Observe sets the observation for snapshot idx.
func (r *BalanceRecord) Observe(idx int, balance uint64) error {
	if idx < 0 || idx >= len(r.Observations) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, idx, len(r.Observations))
	}
	b := balance
	r.Observations[idx] = &b
	return nil
}

// Observed reports whether slot idx holds an explicit observation.
func (r *BalanceRecord) Observed(idx int) bool {
	return idx >= 0 && idx < len(r.Observations) && r.Observations[idx] != nil
}

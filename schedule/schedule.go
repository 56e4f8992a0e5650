// Package schedule implements the snapshot schedule of a structured
// product: an ordered, append-once list of boundaries at which holder
// balances are captured. Boundaries are defined as offsets in seconds
// relative to the activation instant; once activated the schedule is
// immutable.
package schedule

import (
	"fmt"

	"github.com/brcfi/libbrc-go/ledger"
)

// Schedule is the snapshot schedule record of one product.
//
// Offsets holds the defined snapshot boundaries, strictly increasing and
// positive, relative to ActivatedAt. Capacity is fixed at creation; the
// backing array never grows past MaxSnapshots.
type Schedule struct {
	Authority    ledger.Key
	MaxSnapshots int
	Offsets      []int64
	ActivatedAt  *int64 // unix seconds, nil until activated
}

// New creates an empty schedule with a fixed snapshot capacity.
func New(authority ledger.Key, maxSnapshots int) (*Schedule, error) {
	if maxSnapshots <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, maxSnapshots)
	}
	return &Schedule{
		Authority:    authority,
		MaxSnapshots: maxSnapshots,
		Offsets:      make([]int64, 0, maxSnapshots),
	}, nil
}

// Active reports whether the schedule has been activated.
func (s *Schedule) Active() bool { return s.ActivatedAt != nil }

// Len returns the number of defined snapshots.
func (s *Schedule) Len() int { return len(s.Offsets) }

// Last returns the offset of the last defined snapshot. It must not be
// called on an empty schedule.
func (s *Schedule) Last() int64 { return s.Offsets[len(s.Offsets)-1] }

// Define appends a snapshot boundary at the given offset.
func (s *Schedule) Define(offset int64) error {
	if s.Active() {
		return ErrAlreadyActive
	}
	if offset <= 0 {
		return fmt.Errorf("%w: %d", ErrNonPositiveOffset, offset)
	}
	if len(s.Offsets) > 0 && offset <= s.Last() {
		return fmt.Errorf("%w: %d <= %d", ErrNonIncreasingOffset, offset, s.Last())
	}
	if len(s.Offsets) >= s.MaxSnapshots {
		return fmt.Errorf("%w: max %d", ErrScheduleFull, s.MaxSnapshots)
	}
	s.Offsets = append(s.Offsets, offset)
	return nil
}

// Activate freezes the schedule and records the activation instant.
// All boundaries become absolute times relative to now.
func (s *Schedule) Activate(now int64) error {
	if s.Active() {
		return ErrAlreadyActive
	}
	if len(s.Offsets) == 0 {
		return ErrNoSnapshots
	}
	s.ActivatedAt = &now
	return nil
}

// SnapshotTime returns the absolute unix time of snapshot i.
func (s *Schedule) SnapshotTime(i int) (int64, error) {
	if !s.Active() {
		return 0, ErrNotActive
	}
	if i < 0 || i >= len(s.Offsets) {
		return 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.Offsets))
	}
	return *s.ActivatedAt + s.Offsets[i], nil
}

// CurrentIndex returns the highest snapshot index whose boundary is at
// or before now. Snapshots are retrospective: a transfer after boundary
// i and before boundary i+1 belongs to slot i.
func (s *Schedule) CurrentIndex(now int64) (int, error) {
	if !s.Active() {
		return -1, ErrNotActive
	}
	// Reverse scan; the schedule is small and bounded by MaxSnapshots.
	for i := len(s.Offsets) - 1; i >= 0; i-- {
		if *s.ActivatedAt+s.Offsets[i] <= now {
			return i, nil
		}
	}
	return -1, ErrNoActiveSnapshot
}

// FindIndex returns the index of the snapshot defined at the given
// offset, or ErrIndexOutOfRange if no such snapshot exists.
func (s *Schedule) FindIndex(offset int64) (int, error) {
	for i, o := range s.Offsets {
		if o == offset {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: no snapshot at offset %d", ErrIndexOutOfRange, offset)
}

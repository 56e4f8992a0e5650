package schedule

import "errors"

var (
	// ErrAlreadyActive indicates the schedule has been activated and is
	// immutable.
	ErrAlreadyActive = errors.New("schedule: already active")

	// ErrNotActive indicates the schedule has not been activated yet.
	ErrNotActive = errors.New("schedule: not active")

	// ErrNoSnapshots indicates activation was attempted on an empty
	// schedule.
	ErrNoSnapshots = errors.New("schedule: no snapshots defined")

	// ErrNonPositiveOffset indicates a snapshot offset at or before the
	// activation instant.
	ErrNonPositiveOffset = errors.New("schedule: offset must be positive")

	// ErrNonIncreasingOffset indicates a snapshot offset at or before the
	// previously defined one.
	ErrNonIncreasingOffset = errors.New("schedule: offsets must be strictly increasing")

	// ErrScheduleFull indicates the fixed snapshot capacity is exhausted.
	ErrScheduleFull = errors.New("schedule: snapshot capacity exhausted")

	// ErrNoActiveSnapshot indicates no snapshot boundary has passed yet.
	ErrNoActiveSnapshot = errors.New("schedule: no active snapshot")

	// ErrInvalidCapacity indicates a schedule with a non-positive
	// maximum snapshot count.
	ErrInvalidCapacity = errors.New("schedule: capacity must be positive")

	// ErrIndexOutOfRange indicates a snapshot index outside the defined
	// schedule.
	ErrIndexOutOfRange = errors.New("schedule: snapshot index out of range")
)

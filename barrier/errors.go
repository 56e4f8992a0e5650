package barrier

import "errors"

var (
	// ErrZeroInitialPrice indicates a final-principal calculation that
	// would divide by zero.
	ErrZeroInitialPrice = errors.New("barrier: initial price is zero")

	// ErrOverflow indicates the computed principal does not fit in 64 bits.
	ErrOverflow = errors.New("barrier: principal overflows uint64")

	// ErrAlreadyFixed indicates the note's final fixing has already
	// happened.
	ErrAlreadyFixed = errors.New("barrier: final price already fixed")

	// ErrNilParam indicates a required parameter was nil.
	ErrNilParam = errors.New("barrier: nil parameter")
)

package particle

import (
	"errors"
	"fmt"
)

// Programmer errors. The System panics with one of these wrapped when an API
// precondition is violated; recoverable failures are returned instead.
var (
	// ErrLocked indicates a structural change was attempted during Solve.
	ErrLocked = errors.New("particle: system is locked during solve")

	// ErrInvalidDef indicates a definition with out-of-range parameters.
	ErrInvalidDef = errors.New("particle: invalid definition")

	// ErrIndexOutOfRange indicates a particle index outside [0, Count).
	ErrIndexOutOfRange = errors.New("particle: index out of range")

	// ErrNegativeStep indicates Solve was called with dt < 0 or NaN.
	ErrNegativeStep = errors.New("particle: negative time step")

	// ErrDestroyedGroup indicates use of a group after it was destroyed.
	ErrDestroyedGroup = errors.New("particle: group already destroyed")

	// ErrSelfJoin indicates an attempt to join a group with itself.
	ErrSelfJoin = errors.New("particle: cannot join a group with itself")

	// ErrBufferTooSmall is returned when a caller-supplied buffer cannot hold
	// the live particles.
	ErrBufferTooSmall = errors.New("particle: buffer smaller than particle count")
)

func must(ok bool, err error, format string, args ...any) {
	if !ok {
		panic(fmt.Errorf("%w: "+format, append([]any{err}, args...)...))
	}
}

func (s *System) checkIndex(i int) {
	must(i >= 0 && i < s.count, ErrIndexOutOfRange, "index %d, count %d", i, s.count)
}

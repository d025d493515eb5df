package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates a particle with a NaN or infinite coordinate.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	ErrInvalidConfig = errors.New("sim: invalid config")

	// ErrSolverPanic wraps a panic raised by the particle solver.
	ErrSolverPanic = errors.New("sim: solver panicked")
)

// SimError attaches the step and time at which a run failed.
type SimError struct {
	Step    int
	Time    float64
	Message string
	Wrapped error
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error {
	return e.Wrapped
}

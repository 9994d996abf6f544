package ode

import "errors"

// Domain errors for solver operations.
var (
	// ErrStepUnderflow indicates the adaptive controller could not find a
	// step size large enough to make progress.
	ErrStepUnderflow = errors.New("ode: step size underflow")

	// ErrMaxSteps indicates the accepted+rejected step count exceeded
	// Settings.MaxSteps.
	ErrMaxSteps = errors.New("ode: maximum step count exceeded")

	// ErrNonFinite indicates a stage or accepted state contained NaN or Inf.
	ErrNonFinite = errors.New("ode: non-finite state encountered")

	// ErrOutOfRange indicates an interpolation time outside the integrated
	// span. Recoverable: retry with a time inside the span.
	ErrOutOfRange = errors.New("ode: interpolation time outside integrated span")

	// ErrNoDenseOutput indicates interpolation on a solution produced
	// without Settings.DenseOutput.
	ErrNoDenseOutput = errors.New("ode: solution has no dense output")

	// ErrBadTableau indicates a tableau that fails its structural invariants.
	ErrBadTableau = errors.New("ode: invalid tableau")
)

// SolveError wraps a fatal solver error with the point of failure.
type SolveError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SolveError) Error() string {
	return e.Wrapped.Error()
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}

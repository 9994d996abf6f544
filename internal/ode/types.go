package ode

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// System is the right-hand side of an ODE, dy/dt = f(t, y). Implementations
// must be pure functions of their arguments: the solver calls Derive many
// times per step, including at states that are later discarded.
type System interface {
	Derive(t float64, y State) State
}

// SystemFunc adapts an ordinary function to the System interface.
type SystemFunc func(t float64, y State) State

func (f SystemFunc) Derive(t float64, y State) State { return f(t, y) }

// Settings controls a single Solve call.
type Settings struct {
	// AbsTol is the per-component absolute error tolerance floor.
	AbsTol float64
	// RelTol scales the error tolerance by the state magnitude.
	RelTol float64
	// InitialStep is the first trial step size in units of t. When zero the
	// solver estimates one from the initial derivative.
	InitialStep float64
	// MinStep aborts the run with ErrStepUnderflow when the controller
	// proposes a smaller step. Zero disables the check (underflow is still
	// detected when t+h no longer advances t).
	MinStep float64
	// MaxStep caps the step size. Zero means unlimited.
	MaxStep float64
	// MaxSteps bounds accepted+rejected steps before ErrMaxSteps.
	MaxSteps int
	// DenseOutput retains per-step stage data so the returned Solution can
	// be interpolated at arbitrary times inside the integrated span.
	DenseOutput bool
}

func DefaultSettings() Settings {
	return Settings{
		AbsTol:   1e-8,
		RelTol:   1e-8,
		MaxSteps: 500000,
	}
}

// Solution is the outcome of one Solve call. On a fatal solver error the
// returned Solution still carries the statistics accumulated up to the
// failure, for diagnostics.
type Solution struct {
	TStart, TEnd float64
	// Y is the state at TEnd (at the failure point on error).
	Y State
	// Evals counts right-hand-side evaluations, Accepted and Rejected count
	// steps by outcome.
	Evals, Accepted, Rejected int

	dense *denseOutput
}

// CanInterpolate reports whether the solution retained dense output.
func (s *Solution) CanInterpolate() bool { return s.dense != nil }

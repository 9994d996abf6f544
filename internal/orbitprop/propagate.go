package orbitprop

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"orbitprop/internal/ode"
)

// PVDim is the physical state dimension, [x y z vx vy vz].
// STMDim appends a 6x6 state-transition matrix as six extra columns.
const (
	PVDim  = 6
	STMDim = PVDim + PVDim*PVDim
)

// PropagationResult is the outcome of one Propagate call. It is owned by
// the caller; it carries final state, counters, and (when dense output was
// requested) the data needed to interpolate anywhere inside the span.
type PropagationResult struct {
	TimeStart, TimeEnd time.Time
	// State has PVDim entries for plain propagation, STMDim for augmented.
	State ode.State

	Evals, Accepted, Rejected int

	sol *ode.Solution
}

func (r *PropagationResult) CanInterpolate() bool {
	return r.sol != nil && r.sol.CanInterpolate()
}

// Interpolate evaluates the retained trajectory at t without re-integrating.
// Valid only on results produced with PropSettings.DenseOutput; t must lie
// within [TimeStart, TimeEnd].
func (r *PropagationResult) Interpolate(t time.Time) (ode.State, error) {
	if r.sol == nil {
		return nil, ode.ErrNoDenseOutput
	}
	return r.sol.Interpolate(t.Sub(r.TimeStart).Seconds())
}

func (r *PropagationResult) String() string {
	var b strings.Builder
	b.WriteString("Propagation Results\n")
	fmt.Fprintf(&b, "  Time: %s\n", r.TimeEnd.Format(time.RFC3339))
	fmt.Fprintf(&b, "   Pos: [%.3f, %.3f, %.3f] km\n",
		r.State[0]*1e-3, r.State[1]*1e-3, r.State[2]*1e-3)
	fmt.Fprintf(&b, "   Vel: [%.3f, %.3f, %.3f] m/s\n",
		r.State[3], r.State[4], r.State[5])
	b.WriteString("  Stats:\n")
	fmt.Fprintf(&b, "       Function Evaluations: %d\n", r.Evals)
	fmt.Fprintf(&b, "             Accepted Steps: %d\n", r.Accepted)
	fmt.Fprintf(&b, "             Rejected Steps: %d\n", r.Rejected)
	fmt.Fprintf(&b, "   Can Interp: %v\n", r.CanInterpolate())
	return b.String()
}

// pvSystem is the plain 6-dimensional equation of motion: the required fast
// path when no covariance is carried.
type pvSystem struct {
	fm    ForceModel
	epoch time.Time
}

func (s *pvSystem) Derive(t float64, y ode.State) ode.State {
	a := s.fm.Acceleration(timeAt(s.epoch, t), y)
	return ode.State{y[3], y[4], y[5], a[0], a[1], a[2]}
}

// stmSystem is the augmented 42-dimensional system: the physical state in
// column 0 plus dPhi/dt = J(t,y) * Phi for the six transition-matrix
// columns (Montenbruck & Gill eq. 7.42).
type stmSystem struct {
	fm    ForceModel
	epoch time.Time
}

func (s *stmSystem) Derive(t float64, y ode.State) ode.State {
	tt := timeAt(s.epoch, t)
	a := s.fm.Acceleration(tt, y)

	dy := make(ode.State, STMDim)
	dy[0], dy[1], dy[2] = y[3], y[4], y[5]
	dy[3], dy[4], dy[5] = a[0], a[1], a[2]

	g := accelGradient(s.fm, tt, y)

	// J = [  0   I ]
	//     [ dadr dadv ]
	j := mat.NewDense(6, 6, nil)
	for i := 0; i < 3; i++ {
		j.Set(i, i+3, 1)
		for c := 0; c < 6; c++ {
			j.Set(i+3, c, g.At(i, c))
		}
	}

	phi := phiFromState(y)
	var dphi mat.Dense
	dphi.Mul(j, phi)
	for c := 0; c < 6; c++ {
		for rI := 0; rI < 6; rI++ {
			dy[PVDim+6*c+rI] = dphi.At(rI, c)
		}
	}
	return dy
}

// phiFromState reads the column-major transition block out of an augmented
// state vector.
func phiFromState(y ode.State) *mat.Dense {
	phi := mat.NewDense(6, 6, nil)
	for c := 0; c < 6; c++ {
		for r := 0; r < 6; r++ {
			phi.Set(r, c, y[PVDim+6*c+r])
		}
	}
	return phi
}

func timeAt(epoch time.Time, secs float64) time.Time {
	return epoch.Add(time.Duration(secs * float64(time.Second)))
}

// Propagate advances a state from t0 to t1 under the given force model.
// The state is either a plain PVDim vector or an STMDim augmented vector
// whose transition block should start as the identity (see NewSTMState).
// t1 may precede t0. On a fatal solver error the returned result is still
// populated with the statistics accumulated up to the failure.
func Propagate(state ode.State, t0, t1 time.Time, fm ForceModel, set *PropSettings) (*PropagationResult, error) {
	if set == nil {
		set = DefaultPropSettings()
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if fm == nil {
		fm = NewPointMass()
	}

	var sys ode.System
	switch len(state) {
	case PVDim:
		sys = &pvSystem{fm: fm, epoch: t0}
	case STMDim:
		sys = &stmSystem{fm: fm, epoch: t0}
	default:
		return nil, fmt.Errorf("state dimension must be %d or %d, got %d", PVDim, STMDim, len(state))
	}

	sol, err := ode.Solve(sys, 0, t1.Sub(t0).Seconds(), state, set.tableau(), set.odeSettings())
	res := &PropagationResult{
		TimeStart: t0,
		TimeEnd:   t1,
		State:     sol.Y,
		Evals:     sol.Evals,
		Accepted:  sol.Accepted,
		Rejected:  sol.Rejected,
	}
	if err != nil {
		res.TimeEnd = timeAt(t0, sol.TEnd)
		return res, err
	}
	res.sol = sol
	return res, nil
}

// NewSTMState builds an augmented state from a PVDim vector, with the
// transition block initialized to the identity.
func NewSTMState(pv ode.State) ode.State {
	y := make(ode.State, STMDim)
	copy(y, pv[:PVDim])
	for i := 0; i < 6; i++ {
		y[PVDim+6*i+i] = 1
	}
	return y
}

package orbitprop

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"orbitprop/internal/ode"
)

// SatState is the state of a satellite at an instant: Cartesian
// position/velocity in meters and meters/second, plus an optional 6x6
// covariance in the same frame. A nil Cov means no uncertainty is carried
// and propagation takes the plain fast path.
//
// Covariance propagation evolves Cov as Phi * Cov * Phi^T, which is
// symmetric by construction; small numerical asymmetry from the matrix
// products is left as-is rather than silently corrected.
type SatState struct {
	Time time.Time
	PV   *mat.VecDense
	Cov  *mat.Dense
}

// NewSatState builds a state from 3-element position (m) and velocity
// (m/s) vectors, with no covariance.
func NewSatState(t time.Time, pos, vel []float64) *SatState {
	return &SatState{
		Time: t,
		PV: mat.NewVecDense(6, []float64{
			pos[0], pos[1], pos[2], vel[0], vel[1], vel[2],
		}),
	}
}

func (s *SatState) Pos() [3]float64 {
	return [3]float64{s.PV.AtVec(0), s.PV.AtVec(1), s.PV.AtVec(2)}
}

func (s *SatState) Vel() [3]float64 {
	return [3]float64{s.PV.AtVec(3), s.PV.AtVec(4), s.PV.AtVec(5)}
}

// SetGCRFPosUncertainty sets a diagonal position covariance from 1-sigma
// uncertainties (meters) along the Cartesian axes.
func (s *SatState) SetGCRFPosUncertainty(sigma [3]float64) {
	cov := mat.NewDense(6, 6, nil)
	for i := 0; i < 3; i++ {
		cov.Set(i, i, sigma[i]*sigma[i])
	}
	s.Cov = cov
}

// SetLVLHPosUncertainty sets a position covariance from 1-sigma
// uncertainties (meters) expressed in the local-vertical, local-horizontal
// frame, rotated into the Cartesian frame of PV.
//
// LVLH axes: z = -rhat (nadir), y = -hhat (negative orbit normal), x
// completes the right-handed triad.
func (s *SatState) SetLVLHPosUncertainty(sigma [3]float64) {
	r := lvlhDCM(s.Pos(), s.Vel())

	pcov := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		pcov.Set(i, i, sigma[i]*sigma[i])
	}

	// rotate LVLH covariance into the Cartesian frame: R^T * P * R
	var tmp, cart mat.Dense
	tmp.Mul(r.T(), pcov)
	cart.Mul(&tmp, r)

	cov := mat.NewDense(6, 6, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cov.Set(i, j, cart.At(i, j))
		}
	}
	s.Cov = cov
}

// lvlhDCM builds the direction cosine matrix rotating Cartesian vectors
// into the LVLH frame; rows are the LVLH basis vectors.
func lvlhDCM(pos, vel [3]float64) *mat.Dense {
	z := scale3(pos, -1/norm3(pos))
	h := cross3(pos, vel)
	y := scale3(h, -1/norm3(h))
	x := cross3(y, z)

	return mat.NewDense(3, 3, []float64{
		x[0], x[1], x[2],
		y[0], y[1], y[2],
		z[0], z[1], z[2],
	})
}

// Propagate evolves the state to target. With no covariance set, only the
// six physical components are integrated; with covariance, the state is
// augmented with a transition matrix and the covariance is evolved as
// Phi * Cov * Phi^T. A nil fm defaults to point-mass Earth gravity, a nil
// set to DefaultPropSettings.
func (s *SatState) Propagate(target time.Time, fm ForceModel, set *PropSettings) (*SatState, error) {
	if s.Cov == nil {
		res, err := Propagate(ode.State(s.PV.RawVector().Data).Clone(), s.Time, target, fm, set)
		if err != nil {
			return nil, err
		}
		return &SatState{
			Time: target,
			PV:   mat.NewVecDense(6, res.State[:PVDim]),
		}, nil
	}

	res, err := Propagate(NewSTMState(ode.State(s.PV.RawVector().Data)), s.Time, target, fm, set)
	if err != nil {
		return nil, err
	}

	phi := phiFromState(res.State)
	var tmp, cov mat.Dense
	tmp.Mul(phi, s.Cov)
	cov.Mul(&tmp, phi.T())

	return &SatState{
		Time: target,
		PV:   mat.NewVecDense(6, res.State[:PVDim]),
		Cov:  &cov,
	}, nil
}

func (s *SatState) String() string {
	var b strings.Builder
	b.WriteString("Satellite State\n")
	fmt.Fprintf(&b, "      Time: %s\n", s.Time.Format(time.RFC3339))
	fmt.Fprintf(&b, "  Position: [%+8.0f, %+8.0f, %+8.0f] m\n",
		s.PV.AtVec(0), s.PV.AtVec(1), s.PV.AtVec(2))
	fmt.Fprintf(&b, "  Velocity: [%+8.3f, %+8.3f, %+8.3f] m/s\n",
		s.PV.AtVec(3), s.PV.AtVec(4), s.PV.AtVec(5))
	if s.Cov != nil {
		fmt.Fprintf(&b, "Covariance: %v\n", mat.Formatted(s.Cov, mat.Prefix("            ")))
	}
	return b.String()
}

func norm3(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func scale3(v [3]float64, s float64) [3]float64 {
	return [3]float64{v[0] * s, v[1] * s, v[2] * s}
}

func cross3(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

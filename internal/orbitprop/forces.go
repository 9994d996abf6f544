package orbitprop

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"orbitprop/internal/ode"
)

// Physical constants, SI units.
const (
	// MuEarth is the Earth gravitational parameter, m^3/s^2.
	MuEarth = 3.986004418e14
	// EarthRadius is the WGS-84 equatorial radius, m.
	EarthRadius = 6378137.0
	// J2Earth is the dominant zonal harmonic of the Earth gravity field.
	J2Earth = 1.08262668e-3
	// GeoRadius is the geostationary orbit radius, m.
	GeoRadius = 42164172.0
)

// ForceModel computes the acceleration acting on a satellite from its
// Cartesian position/velocity state. Implementations must be pure functions
// of their arguments.
type ForceModel interface {
	// Acceleration returns d(vel)/dt in m/s^2 given pv = [x y z vx vy vz]
	// in meters and meters/second.
	Acceleration(t time.Time, pv ode.State) [3]float64
}

// Differentiable is implemented by force models that expose the gradient of
// their acceleration with respect to the position/velocity state, required
// for state-transition-matrix (and hence covariance) propagation. Models
// without it fall back to a finite-difference gradient.
type Differentiable interface {
	// AccelGradient returns the 3x6 matrix d(accel)/d(pv).
	AccelGradient(t time.Time, pv ode.State) *mat.Dense
}

// PointMass is two-body gravity about a central body.
type PointMass struct {
	Mu float64
}

func NewPointMass() *PointMass {
	return &PointMass{Mu: MuEarth}
}

func (p *PointMass) Acceleration(t time.Time, pv ode.State) [3]float64 {
	x, y, z := pv[0], pv[1], pv[2]
	r := math.Sqrt(x*x + y*y + z*z)
	s := -p.Mu / (r * r * r)
	return [3]float64{s * x, s * y, s * z}
}

// AccelGradient returns the analytic two-body gradient
// da/dr = -mu/r^3 (I - 3 rhat rhat^T), da/dv = 0.
func (p *PointMass) AccelGradient(t time.Time, pv ode.State) *mat.Dense {
	x, y, z := pv[0], pv[1], pv[2]
	r2 := x*x + y*y + z*z
	r := math.Sqrt(r2)
	s := -p.Mu / (r * r2)

	g := mat.NewDense(3, 6, nil)
	pos := [3]float64{x, y, z}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := -3 * pos[i] * pos[j] / r2
			if i == j {
				v += 1
			}
			g.Set(i, j, s*v)
		}
	}
	return g
}

// J2Gravity is two-body gravity plus the J2 zonal perturbation. It carries
// no analytic gradient; augmented propagation uses the finite-difference
// fallback.
type J2Gravity struct {
	Mu  float64
	J2  float64
	Req float64
}

func NewJ2Gravity() *J2Gravity {
	return &J2Gravity{Mu: MuEarth, J2: J2Earth, Req: EarthRadius}
}

func (g *J2Gravity) Acceleration(t time.Time, pv ode.State) [3]float64 {
	x, y, z := pv[0], pv[1], pv[2]
	r2 := x*x + y*y + z*z
	r := math.Sqrt(r2)
	s := -g.Mu / (r * r2)

	// -3/2 J2 mu Req^2 / r^5, z-dependent per component
	k := -1.5 * g.J2 * g.Mu * g.Req * g.Req / (r2 * r2 * r)
	zr := 5 * z * z / r2

	return [3]float64{
		s*x + k*x*(1-zr),
		s*y + k*y*(1-zr),
		s*z + k*z*(3-zr),
	}
}

// numericalGradient approximates d(accel)/d(pv) with central differences,
// stepping each component proportionally to its magnitude.
func numericalGradient(fm ForceModel, t time.Time, pv ode.State) *mat.Dense {
	g := mat.NewDense(3, 6, nil)
	work := pv.Clone()
	for j := 0; j < 6; j++ {
		d := 1e-6 * math.Max(math.Abs(pv[j]), 1.0)
		work[j] = pv[j] + d
		ap := fm.Acceleration(t, work)
		work[j] = pv[j] - d
		am := fm.Acceleration(t, work)
		work[j] = pv[j]
		for i := 0; i < 3; i++ {
			g.Set(i, j, (ap[i]-am[i])/(2*d))
		}
	}
	return g
}

// accelGradient dispatches to the analytic gradient when the model has one.
func accelGradient(fm ForceModel, t time.Time, pv ode.State) *mat.Dense {
	if d, ok := fm.(Differentiable); ok {
		return d.AccelGradient(t, pv)
	}
	return numericalGradient(fm, t, pv)
}

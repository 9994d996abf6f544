package ode

import (
	"errors"
	"math"
	"testing"
)

// dy/dt = -y, y(t) = y0 * exp(-t)
var decay = SystemFunc(func(t float64, y State) State {
	return State{-y[0]}
})

// simple harmonic oscillator, y = [cos t, -sin t] for y0 = [1, 0]
var oscillator = SystemFunc(func(t float64, y State) State {
	return State{y[1], -y[0]}
})

// undamped pendulum, mildly nonlinear
var pendulum = SystemFunc(func(t float64, y State) State {
	return State{y[1], -math.Sin(y[0])}
})

func tightSettings() Settings {
	set := DefaultSettings()
	set.AbsTol = 1e-10
	set.RelTol = 1e-10
	return set
}

func TestSolveExpDecay(t *testing.T) {
	sol, err := Solve(decay, 0, 2, State{1}, RKF45, tightSettings())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	want := math.Exp(-2)
	if got := sol.Y[0]; math.Abs(got-want) > 1e-8 {
		t.Errorf("y(2) = %v, want %v", got, want)
	}
	if sol.Accepted == 0 {
		t.Error("expected accepted steps")
	}
	if sol.TEnd != 2 {
		t.Errorf("TEnd = %v, want 2", sol.TEnd)
	}
}

func TestSolveLinearExact(t *testing.T) {
	// constant derivative: any consistent method integrates this exactly,
	// so the embedded error estimate is ~0 and nothing is ever rejected
	lin := SystemFunc(func(t float64, y State) State {
		return State{1, 2}
	})
	sol, err := Solve(lin, 0, 3, State{0, 1}, RKF45, tightSettings())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if sol.Rejected != 0 {
		t.Errorf("rejected %d steps on linear dynamics", sol.Rejected)
	}
	if math.Abs(sol.Y[0]-3) > 1e-12 || math.Abs(sol.Y[1]-7) > 1e-12 {
		t.Errorf("y(3) = %v, want [3 7]", sol.Y)
	}
}

func TestSolveZeroSpan(t *testing.T) {
	y0 := State{1, 2, 3}
	sol, err := Solve(oscillator, 5, 5, y0, RKF45, DefaultSettings())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if sol.Accepted != 0 || sol.Rejected != 0 || sol.Evals != 0 {
		t.Errorf("zero-span counters = %d/%d/%d, want 0/0/0", sol.Accepted, sol.Rejected, sol.Evals)
	}
	for i := range y0 {
		if sol.Y[i] != y0[i] {
			t.Errorf("state changed: %v != %v", sol.Y, y0)
		}
	}
}

func TestSolveRoundTrip(t *testing.T) {
	set := tightSettings()
	fwd, err := Solve(oscillator, 0, 5, State{1, 0}, RKF45, set)
	if err != nil {
		t.Fatalf("forward solve failed: %v", err)
	}
	back, err := Solve(oscillator, 5, 0, fwd.Y, RKF45, set)
	if err != nil {
		t.Fatalf("backward solve failed: %v", err)
	}
	if math.Abs(back.Y[0]-1) > 1e-7 || math.Abs(back.Y[1]) > 1e-7 {
		t.Errorf("round trip drifted: %v, want [1 0]", back.Y)
	}
}

func TestSolveBackward(t *testing.T) {
	sol, err := Solve(decay, 2, 0, State{math.Exp(-2)}, RKF45, tightSettings())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if math.Abs(sol.Y[0]-1) > 1e-8 {
		t.Errorf("y(0) = %v, want 1", sol.Y[0])
	}
}

// fixedStepSettings pins the controller to step size h: tolerances so loose
// that every step is accepted, MaxStep so growth is clamped right back.
func fixedStepSettings(h float64) Settings {
	return Settings{
		AbsTol:      1e6,
		RelTol:      1e6,
		InitialStep: h,
		MaxStep:     h,
		MaxSteps:    1000000,
	}
}

func TestSolveOrderScaling(t *testing.T) {
	span := 2 * math.Pi
	globalErr := func(h float64) float64 {
		sol, err := Solve(oscillator, 0, span, State{1, 0}, RKF45, fixedStepSettings(h))
		if err != nil {
			t.Fatalf("solve failed: %v", err)
		}
		return math.Hypot(sol.Y[0]-1, sol.Y[1])
	}

	e1 := globalErr(0.4)
	e2 := globalErr(0.2)
	if e2 == 0 {
		t.Fatal("error vanished, cannot measure order")
	}
	// halving the step must shrink the global error consistent with at
	// least 4th order (allow slack below the theoretical 2^4)
	if ratio := e1 / e2; ratio < 10 {
		t.Errorf("error ratio %v too small for a 4th-order method (e1=%v e2=%v)", ratio, e1, e2)
	}
}

func TestSolveRejection(t *testing.T) {
	set := Settings{
		AbsTol:      1e-12,
		RelTol:      1e-12,
		InitialStep: 1.0, // deliberately too large for this tolerance
		MaxSteps:    500000,
	}
	sol, err := Solve(pendulum, 0, 2, State{2.5, 0}, RKF45, set)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if sol.Rejected == 0 {
		t.Error("expected at least one rejected step at this tolerance")
	}
	if sol.Accepted == 0 {
		t.Error("expected accepted steps")
	}
}

func TestSolveMaxSteps(t *testing.T) {
	set := tightSettings()
	set.MaxSteps = 3
	sol, err := Solve(oscillator, 0, 100, State{1, 0}, RKF45, set)
	if !errors.Is(err, ErrMaxSteps) {
		t.Fatalf("err = %v, want ErrMaxSteps", err)
	}
	if sol == nil {
		t.Fatal("expected partial solution with statistics")
	}
	if sol.Accepted+sol.Rejected != 3 {
		t.Errorf("accepted+rejected = %d, want 3", sol.Accepted+sol.Rejected)
	}

	var se *SolveError
	if !errors.As(err, &se) {
		t.Fatal("error is not a *SolveError")
	}
}

func TestSolveStepUnderflow(t *testing.T) {
	set := tightSettings()
	set.InitialStep = 1e-3
	set.MinStep = 1e-2
	_, err := Solve(oscillator, 0, 10, State{1, 0}, RKF45, set)
	if !errors.Is(err, ErrStepUnderflow) {
		t.Fatalf("err = %v, want ErrStepUnderflow", err)
	}
}

func TestSolveNonFinite(t *testing.T) {
	singular := SystemFunc(func(t float64, y State) State {
		if t > 0.5 {
			return State{math.NaN()}
		}
		return State{-y[0]}
	})
	sol, err := Solve(singular, 0, 1, State{1}, RKF45, DefaultSettings())
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("err = %v, want ErrNonFinite", err)
	}
	if sol.Evals == 0 {
		t.Error("expected evaluation statistics on failure")
	}
}

func TestSolveFSALEvalCount(t *testing.T) {
	set := DefaultSettings()
	set.AbsTol, set.RelTol = 1e-9, 1e-9
	set.InitialStep = 0.1
	sol, err := Solve(oscillator, 0, 10, State{1, 0}, DoPri54, set)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	// FSAL: one evaluation up front, then exactly Stages-1 fresh
	// evaluations per attempted step, accepted or not
	want := 1 + (DoPri54.Stages-1)*(sol.Accepted+sol.Rejected)
	if sol.Evals != want {
		t.Errorf("evals = %d, want %d (accepted %d, rejected %d)", sol.Evals, want, sol.Accepted, sol.Rejected)
	}
}

func TestSolveFSALMatchesAccuracy(t *testing.T) {
	// both methods must land on the analytic solution; FSAL reuse is a
	// performance detail, not a semantic one
	for _, tb := range []*Tableau{RKF45, DoPri54} {
		t.Run(tb.Name, func(t *testing.T) {
			sol, err := Solve(oscillator, 0, 2*math.Pi, State{1, 0}, tb, tightSettings())
			if err != nil {
				t.Fatalf("solve failed: %v", err)
			}
			if math.Abs(sol.Y[0]-1) > 1e-7 || math.Abs(sol.Y[1]) > 1e-7 {
				t.Errorf("y(2pi) = %v, want [1 0]", sol.Y)
			}
		})
	}
}

func TestSolveDeterminism(t *testing.T) {
	run := func() *Solution {
		sol, err := Solve(pendulum, 0, 7, State{1, 0.3}, RKF45, tightSettings())
		if err != nil {
			t.Fatalf("solve failed: %v", err)
		}
		return sol
	}
	a, b := run(), run()
	if a.Evals != b.Evals || a.Accepted != b.Accepted || a.Rejected != b.Rejected {
		t.Errorf("counters differ between identical runs: %+v vs %+v", a, b)
	}
	for i := range a.Y {
		if a.Y[i] != b.Y[i] {
			t.Errorf("states differ between identical runs: %v vs %v", a.Y, b.Y)
		}
	}
}

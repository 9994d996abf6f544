package ode

import "math"

// Step-size controller constants: next step is the current step scaled by
// safety * errNorm^(-1/(order+1)), clamped to [minStepScale, maxStepScale].
const (
	stepSafety   = 0.9
	minStepScale = 0.2
	maxStepScale = 5.0
)

// Solve integrates sys from t0 to t1 starting at y0, using the embedded
// Runge-Kutta method described by tb. t1 may precede t0, in which case the
// step size is negative and the trajectory runs backward. The returned
// Solution always carries the evaluation and step counters accumulated so
// far, including on a fatal error.
//
// Solve is deterministic: identical inputs produce the identical sequence
// of accepted and rejected steps.
func Solve(sys System, t0, t1 float64, y0 State, tb *Tableau, set Settings) (*Solution, error) {
	n := len(y0)
	sol := &Solution{TStart: t0, TEnd: t0, Y: y0.Clone()}

	if t1 == t0 {
		if set.DenseOutput {
			sol.dense = &denseOutput{tb: tb, tStart: t0, tEnd: t0, yEnd: y0.Clone()}
		}
		return sol, nil
	}

	dir := 1.0
	if t1 < t0 {
		dir = -1.0
	}

	ks := make([]State, tb.Stages)
	for i := range ks {
		ks[i] = make(State, n)
	}
	yc := make(State, n)
	yNext := make(State, n)

	t := t0
	y := y0.Clone()

	copy(ks[0], sys.Derive(t, y))
	sol.Evals++
	firstStale := false

	h := math.Abs(set.InitialStep)
	if h == 0 {
		h = estimateInitialStep(sys, t, y, ks[0], dir, tb.Order, set)
		sol.Evals++
	}
	h *= dir
	if set.MaxStep > 0 && math.Abs(h) > set.MaxStep {
		h = dir * set.MaxStep
	}

	var dense *denseOutput
	if set.DenseOutput {
		dense = &denseOutput{tb: tb, tStart: t0}
	}

	fail := func(steps int, cause error) (*Solution, error) {
		sol.TEnd = t
		copy(sol.Y, y)
		return sol, &SolveError{Step: steps, Time: t, Wrapped: cause}
	}

	for steps := 0; ; steps++ {
		if (dir > 0 && t >= t1) || (dir < 0 && t <= t1) {
			break
		}
		if steps >= set.MaxSteps {
			return fail(steps, ErrMaxSteps)
		}
		if set.MinStep > 0 && math.Abs(h) < set.MinStep {
			return fail(steps, ErrStepUnderflow)
		}

		// clamp the trial step so the target is never overshot
		last := false
		if (dir > 0 && t+h >= t1) || (dir < 0 && t+h <= t1) {
			h = t1 - t
			last = true
		}
		if t+h == t {
			return fail(steps, ErrStepUnderflow)
		}

		if firstStale {
			copy(ks[0], sys.Derive(t, y))
			sol.Evals++
			firstStale = false
		}

		for i := 1; i < tb.Stages; i++ {
			for k := 0; k < n; k++ {
				acc := 0.0
				for j := 0; j < i; j++ {
					acc += tb.A[i][j] * ks[j][k]
				}
				yc[k] = y[k] + h*acc
			}
			copy(ks[i], sys.Derive(t+tb.C[i]*h, yc))
			sol.Evals++
		}

		// primary advance and scaled RMS error norm in one pass
		sumSq := 0.0
		for k := 0; k < n; k++ {
			adv, est := 0.0, 0.0
			for i := 0; i < tb.Stages; i++ {
				adv += tb.B[i] * ks[i][k]
				est += tb.BErr[i] * ks[i][k]
			}
			yNext[k] = y[k] + h*adv
			sc := set.AbsTol + set.RelTol*math.Max(math.Abs(y[k]), math.Abs(yNext[k]))
			q := h * est / sc
			sumSq += q * q
		}
		errNorm := math.Sqrt(sumSq / float64(n))

		if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) || !yNext.IsValid() {
			return fail(steps, ErrNonFinite)
		}

		scale := stepSafety * math.Pow(errNorm, -1.0/float64(tb.Order+1))
		scale = math.Max(minStepScale, math.Min(scale, maxStepScale))
		hNext := h * scale
		if set.MaxStep > 0 && math.Abs(hNext) > set.MaxStep {
			hNext = dir * set.MaxStep
		}

		if errNorm <= 1.0 {
			if dense != nil {
				dense.append(t, h, y, ks)
			}
			if last {
				t = t1
			} else {
				t += h
			}
			copy(y, yNext)
			sol.Accepted++
			if tb.FSAL {
				// the final stage of this step is f(t, y) for the next one
				copy(ks[0], ks[tb.Stages-1])
			} else {
				firstStale = true
			}
		} else {
			sol.Rejected++
		}

		h = hNext
	}

	sol.TEnd = t
	copy(sol.Y, y)
	if dense != nil {
		dense.tEnd = t
		dense.yEnd = y.Clone()
		sol.dense = dense
	}
	return sol, nil
}

// estimateInitialStep derives a starting step magnitude from the scaled
// norms of the state and its derivative, refined by one explicit Euler
// trial step probing the second derivative. The caller accounts for the
// single extra evaluation.
func estimateInitialStep(sys System, t float64, y, f0 State, dir float64, order int, set Settings) float64 {
	n := len(y)

	dnf, dny := 0.0, 0.0
	for k := 0; k < n; k++ {
		sc := set.AbsTol + set.RelTol*math.Abs(y[k])
		dnf += (f0[k] / sc) * (f0[k] / sc)
		dny += (y[k] / sc) * (y[k] / sc)
	}

	h := 1e-6
	if math.Min(dnf, dny) >= 1e-10 {
		h = 1e-2 * math.Sqrt(dny/dnf)
	}
	if set.MaxStep > 0 {
		h = math.Min(h, set.MaxStep)
	}

	y2 := make(State, n)
	for k := 0; k < n; k++ {
		y2[k] = y[k] + dir*h*f0[k]
	}
	f2 := sys.Derive(t+dir*h, y2)

	der2 := 0.0
	for k := 0; k < n; k++ {
		sc := set.AbsTol + set.RelTol*math.Abs(y[k])
		d := (f2[k] - f0[k]) / sc
		der2 += d * d
	}
	der2 = math.Sqrt(der2) / h
	der12 := math.Max(der2, math.Sqrt(dnf))

	var h1 float64
	if der12 <= 1e-15 {
		h1 = math.Max(1e-6, h*1e-3)
	} else {
		h1 = math.Pow(1e-2/der12, 1.0/float64(order))
	}
	h = math.Min(1e2*h, h1)
	if set.MaxStep > 0 {
		h = math.Min(h, set.MaxStep)
	}
	return h
}

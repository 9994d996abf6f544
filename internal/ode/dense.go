package ode

import "sort"

// denseStep retains the stage derivatives of one accepted step, enough to
// evaluate the tableau's interpolant anywhere inside [t, t+h].
type denseStep struct {
	t, h float64
	y0   State
	ks   []State
}

// denseOutput is the ordered, non-overlapping sequence of retained steps
// covering exactly the integrated span.
type denseOutput struct {
	tb           *Tableau
	tStart, tEnd float64
	yEnd         State
	steps        []denseStep
}

func (d *denseOutput) append(t, h float64, y State, ks []State) {
	kc := make([]State, len(ks))
	for i := range ks {
		kc[i] = ks[i].Clone()
	}
	d.steps = append(d.steps, denseStep{t: t, h: h, y0: y.Clone(), ks: kc})
}

// Interpolate evaluates the retained solution at time t, which must lie
// inside the integrated span. It returns ErrNoDenseOutput when the solution
// was produced without Settings.DenseOutput, and ErrOutOfRange when t falls
// outside [TStart, TEnd] (in either direction of travel).
func (s *Solution) Interpolate(t float64) (State, error) {
	d := s.dense
	if d == nil {
		return nil, ErrNoDenseOutput
	}

	lo, hi := d.tStart, d.tEnd
	if lo > hi {
		lo, hi = hi, lo
	}
	if t < lo || t > hi {
		return nil, ErrOutOfRange
	}
	if t == d.tEnd || len(d.steps) == 0 {
		return d.yEnd.Clone(), nil
	}

	forward := d.tEnd >= d.tStart
	idx := sort.Search(len(d.steps), func(i int) bool {
		end := d.steps[i].t + d.steps[i].h
		if forward {
			return end >= t
		}
		return end <= t
	})
	if idx == len(d.steps) {
		idx = len(d.steps) - 1
	}
	st := &d.steps[idx]

	sigma := (t - st.t) / st.h
	y := st.y0.Clone()
	for i, k := range st.ks {
		w := st.h * d.tb.interpWeight(i, sigma)
		for c := range y {
			y[c] += w * k[c]
		}
	}
	return y, nil
}

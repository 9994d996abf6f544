package ode

import (
	"fmt"
	"math"
)

// Tableau holds the Butcher coefficients of an explicit embedded
// Runge-Kutta method. One Tableau serves any number of concurrent Solve
// calls; the solver never mutates it.
type Tableau struct {
	Name   string
	Stages int

	// A is the strictly lower triangular stage-coupling matrix.
	A [][]float64
	// B holds the primary-solution weights.
	B []float64
	// BErr holds embedded minus primary weights; h * BErr . k is the local
	// error estimate.
	BErr []float64
	// C holds the stage time fractions, C[0] = 0.
	C []float64
	// Interp holds per-stage polynomial coefficients for dense output:
	// b_i(sigma) = sum_j Interp[i][j] * sigma^(j+1). Row sums must equal B
	// so sigma=1 reproduces the accepted endpoint.
	Interp [][]float64

	// Order of the primary method, used in the step-size control exponent.
	Order int
	// FSAL marks methods whose last stage derivative equals the first stage
	// of the following step.
	FSAL bool
}

// Validate checks the structural invariants: strict lower triangularity,
// row-sum consistency with C, unit weight sum, and dense-output endpoint
// consistency. Tableaus shipped with this package are validated in tests,
// not at startup.
func (tb *Tableau) Validate() error {
	s := tb.Stages
	if s == 0 || len(tb.A) != s || len(tb.B) != s || len(tb.BErr) != s || len(tb.C) != s {
		return fmt.Errorf("%w: %s: inconsistent dimensions", ErrBadTableau, tb.Name)
	}
	const eps = 1e-12
	for i := 0; i < s; i++ {
		if len(tb.A[i]) != s {
			return fmt.Errorf("%w: %s: A row %d has %d columns", ErrBadTableau, tb.Name, i, len(tb.A[i]))
		}
		rowSum := 0.0
		for j := 0; j < s; j++ {
			if j >= i && tb.A[i][j] != 0 {
				return fmt.Errorf("%w: %s: A[%d][%d] nonzero above diagonal", ErrBadTableau, tb.Name, i, j)
			}
			rowSum += tb.A[i][j]
		}
		if math.Abs(rowSum-tb.C[i]) > eps {
			return fmt.Errorf("%w: %s: sum(A[%d]) = %g, want C[%d] = %g", ErrBadTableau, tb.Name, i, rowSum, i, tb.C[i])
		}
	}
	bSum := 0.0
	for _, b := range tb.B {
		bSum += b
	}
	if math.Abs(bSum-1.0) > eps {
		return fmt.Errorf("%w: %s: sum(B) = %g, want 1", ErrBadTableau, tb.Name, bSum)
	}
	if tb.Interp != nil {
		if len(tb.Interp) != s {
			return fmt.Errorf("%w: %s: Interp has %d rows, want %d", ErrBadTableau, tb.Name, len(tb.Interp), s)
		}
		for i := 0; i < s; i++ {
			rowSum := 0.0
			for _, v := range tb.Interp[i] {
				rowSum += v
			}
			if math.Abs(rowSum-tb.B[i]) > eps {
				return fmt.Errorf("%w: %s: Interp row %d sums to %g, want B[%d] = %g", ErrBadTableau, tb.Name, i, rowSum, i, tb.B[i])
			}
		}
	}
	return nil
}

// interpWeight evaluates b_i(sigma) for dense output.
func (tb *Tableau) interpWeight(i int, sigma float64) float64 {
	w := 0.0
	sp := sigma
	for _, c := range tb.Interp[i] {
		w += c * sp
		sp *= sigma
	}
	return w
}

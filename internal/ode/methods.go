package ode

import "fmt"

// RKF45 is the Runge-Kutta-Fehlberg 4(5) method: 6 stages, 4th-order
// primary with a 5th-order embedded error estimate, no FSAL reuse. The
// primary advance uses the higher-order weights (local extrapolation) while
// the controller exponent follows the 4th-order label. Dense output is the
// linear interpolant between accepted endpoints.
var RKF45 = &Tableau{
	Name:   "rkf45",
	Stages: 6,
	A: [][]float64{
		{0, 0, 0, 0, 0, 0},
		{1.0 / 4.0, 0, 0, 0, 0, 0},
		{3.0 / 32.0, 9.0 / 32.0, 0, 0, 0, 0},
		{1932.0 / 2197.0, -7200.0 / 2197.0, 7296.0 / 2197.0, 0, 0, 0},
		{439.0 / 216.0, -8.0, 3680.0 / 513.0, -845.0 / 4104.0, 0, 0},
		{-8.0 / 27.0, 2.0, -3544.0 / 2565.0, 1859.0 / 4104.0, -11.0 / 40.0, 0},
	},
	B: []float64{
		16.0 / 135.0, 0, 6656.0 / 12825.0, 28561.0 / 56430.0, -9.0 / 50.0, 2.0 / 55.0,
	},
	BErr: []float64{
		25.0/216.0 - 16.0/135.0,
		0,
		1408.0/2565.0 - 6656.0/12825.0,
		2197.0/4104.0 - 28561.0/56430.0,
		-1.0/5.0 + 9.0/50.0,
		-2.0 / 55.0,
	},
	C: []float64{0, 1.0 / 4.0, 3.0 / 8.0, 12.0 / 13.0, 1.0, 1.0 / 2.0},
	Interp: [][]float64{
		{16.0 / 135.0}, {0}, {6656.0 / 12825.0}, {28561.0 / 56430.0}, {-9.0 / 50.0}, {2.0 / 55.0},
	},
	Order: 4,
	FSAL:  false,
}

// DoPri54 is the Dormand-Prince 5(4) method: 7 stages, 5th-order primary
// with a 4th-order embedded error estimate, FSAL.
var DoPri54 = &Tableau{
	Name:   "dopri54",
	Stages: 7,
	A: [][]float64{
		{0, 0, 0, 0, 0, 0, 0},
		{1.0 / 5.0, 0, 0, 0, 0, 0, 0},
		{3.0 / 40.0, 9.0 / 40.0, 0, 0, 0, 0, 0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0, 0, 0, 0, 0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0, 0, 0, 0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0, 0, 0},
		{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0},
	},
	B: []float64{
		35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0,
	},
	BErr: []float64{
		-71.0 / 57600.0, 0, 71.0 / 16695.0, -71.0 / 1920.0, 17253.0 / 339200.0, -22.0 / 525.0, 1.0 / 40.0,
	},
	C: []float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1.0, 1.0},
	Interp: [][]float64{
		{35.0 / 384.0}, {0}, {500.0 / 1113.0}, {125.0 / 192.0}, {-2187.0 / 6784.0}, {11.0 / 84.0}, {0},
	},
	Order: 5,
	FSAL:  true,
}

// MethodByName resolves a tableau from its configuration name.
func MethodByName(name string) (*Tableau, error) {
	switch name {
	case "", "rkf45":
		return RKF45, nil
	case "dopri54":
		return DoPri54, nil
	default:
		return nil, fmt.Errorf("unknown integration method: %q", name)
	}
}

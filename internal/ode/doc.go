// Package ode implements adaptive embedded Runge-Kutta integration of
// ordinary differential equations.
//
// The package separates the method from the machinery:
//
//   - [Tableau]: the Butcher coefficients of one embedded method
//   - [System]: the right-hand side dy/dt = f(t, y)
//   - [Solve]: the stepper and adaptive step-size controller
//   - [Solution]: final state, counters, and optional dense output
//
// # Example
//
//	sys := ode.SystemFunc(func(t float64, y ode.State) ode.State {
//		return ode.State{y[1], -y[0]}
//	})
//	sol, err := ode.Solve(sys, 0, 10, ode.State{1, 0}, ode.RKF45, ode.DefaultSettings())
//
// # Thread Safety
//
// Tableaus are immutable and shared freely. Each Solve call is independent;
// concurrent calls require no coordination as long as the System is a pure
// function of its arguments.
package ode

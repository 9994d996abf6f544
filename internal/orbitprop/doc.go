// Package orbitprop propagates satellite states by numerically integrating
// the equations of motion with the adaptive Runge-Kutta engine in
// internal/ode.
//
//   - [ForceModel]: acceleration from Cartesian state and time
//   - [Propagate]: plain (6) or augmented (42) state propagation
//   - [SatState]: position/velocity plus optional covariance, evolved as
//     Phi * P * Phi^T through the state-transition matrix
//
// Times are stdlib time.Time instants; the integration axis is seconds
// since the initial epoch.
//
// Propagation calls share no mutable state and may run concurrently.
package orbitprop

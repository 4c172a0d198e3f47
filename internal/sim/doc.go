// Package sim provides the time-stepping primitives shared by every
// mechanism:
//
//   - [State]: the state vector, joint coordinates followed by rates
//   - [Dynamics]: an ODE dX/dt = f(X, u, t)
//   - [Integrator]: a numerical stepper
//   - [Controller]: feedback producing generalized forces
//   - [Simulator]: runs a dynamics forward and records the trajectory
//
// # Example
//
//	mech, _ := mechanism.New(w)
//	s := sim.New(mech, integrators.NewRK4(), controllers.NewNone())
//	result, _ := s.Run(ctx, mech.InitialState(), sim.DefaultConfig())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe, and neither are the mechanisms
// they drive. For parallel runs use [Ensemble], which builds one simulator
// per run from a factory.
package sim

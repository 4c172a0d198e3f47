package integrators

import "github.com/san-kum/featherstone/internal/sim"

// Euler is the explicit first order scheme. It drifts quickly on
// mechanisms and is kept for comparison.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t float64, dt float64) sim.State {
	result := make(sim.State, len(x))
	axpy(result, x, dt, dyn.Derivative(x, u, t))
	return result
}

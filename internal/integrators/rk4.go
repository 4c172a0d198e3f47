package integrators

import "github.com/san-kum/featherstone/internal/sim"

type RK4 struct {
	k1, k2, k3, k4 sim.State
	scratch        sim.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	r.k1 = grow(r.k1, n)
	r.k2 = grow(r.k2, n)
	r.k3 = grow(r.k3, n)
	r.k4 = grow(r.k4, n)
	r.scratch = grow(r.scratch, n)
}

func (r *RK4) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t, dt float64) sim.State {
	n := len(x)
	r.ensureScratch(n)

	// Derivative results may alias dynamics scratch, so copy each stage.
	copy(r.k1, dyn.Derivative(x, u, t))

	axpy(r.scratch, x, 0.5*dt, r.k1)
	copy(r.k2, dyn.Derivative(r.scratch, u, t+0.5*dt))

	axpy(r.scratch, x, 0.5*dt, r.k2)
	copy(r.k3, dyn.Derivative(r.scratch, u, t+0.5*dt))

	axpy(r.scratch, x, dt, r.k3)
	copy(r.k4, dyn.Derivative(r.scratch, u, t+dt))

	result := make(sim.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}

// Package integrators advances a sim.Dynamics by one step. The symplectic
// schemes (Verlet, Leapfrog) expect a mechanism state laid out as
// coordinates followed by rates.
package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/featherstone/internal/sim"
)

var registry = map[string]func() sim.Integrator{
	"euler":    func() sim.Integrator { return NewEuler() },
	"rk4":      func() sim.Integrator { return NewRK4() },
	"rk45":     func() sim.Integrator { return NewRK45() },
	"verlet":   func() sim.Integrator { return NewVerlet() },
	"leapfrog": func() sim.Integrator { return NewLeapfrog() },
}

// New returns a fresh integrator by name. Integrators keep scratch space,
// so each simulator needs its own.
func New(name string) (sim.Integrator, error) {
	mk, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("integrators: unknown integrator %q", name)
	}
	return mk(), nil
}

// Names lists the registered integrators.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// axpy stores x + a·y in dst.
func axpy(dst, x sim.State, a float64, y sim.State) {
	for i := range dst {
		dst[i] = x[i] + a*y[i]
	}
}

func grow(s sim.State, n int) sim.State {
	if len(s) != n {
		return make(sim.State, n)
	}
	return s
}

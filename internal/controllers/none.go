// Package controllers computes joint-space generalized forces for a
// mechanism state [q, qp].
package controllers

import "github.com/san-kum/featherstone/internal/sim"

// None applies no force beyond the joint motors.
type None struct {
	dim int
}

func NewNone(dim int) *None {
	return &None{
		dim: dim,
	}
}

func (n *None) Compute(x sim.State, t float64) sim.Control {
	return make(sim.Control, n.dim)
}

package controllers

import (
	"math"

	"github.com/san-kum/featherstone/internal/sim"
)

// PID drives every joint toward its target coordinate with shared gains.
// The derivative term acts on the measured rate, so target changes never
// kick it.
type PID struct {
	Kp, Ki, Kd float64
	Targets    []float64
	// Limit clamps each output when positive.
	Limit float64

	integral []float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd float64, targets []float64) *PID {
	return &PID{
		Kp:       kp,
		Ki:       ki,
		Kd:       kd,
		Targets:  targets,
		integral: make([]float64, len(targets)),
		first:    true,
	}
}

func (p *PID) Compute(x sim.State, t float64) sim.Control {
	q, qp := x.Split()
	n := len(q)
	if len(p.integral) != n {
		p.integral = make([]float64, n)
	}

	dt := 0.0
	if !p.first {
		dt = t - p.prevT
	}
	p.first = false
	p.prevT = t

	u := make(sim.Control, n)
	for i := 0; i < n; i++ {
		target := 0.0
		if i < len(p.Targets) {
			target = p.Targets[i]
		}
		err := target - q[i]
		if dt > 0 {
			p.integral[i] += err * dt
		}
		u[i] = p.Kp*err + p.Ki*p.integral[i] - p.Kd*qp[i]
		if p.Limit > 0 {
			u[i] = math.Max(-p.Limit, math.Min(p.Limit, u[i]))
		}
	}
	return u
}

// Reset clears the integral so the controller can be reused for a new run.
func (p *PID) Reset() {
	for i := range p.integral {
		p.integral[i] = 0
	}
	p.first = true
}

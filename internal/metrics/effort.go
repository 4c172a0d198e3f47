package metrics

import (
	"math"

	"github.com/san-kum/featherstone/internal/sim"
)

// ForceSource evaluates the generalized joint forces applied at a state,
// motor laws and control combined.
type ForceSource interface {
	Forces(t float64, x sim.State, u sim.Control) ([]float64, error)
}

// Effort is the mean of Σ|τ| per step over the applied joint forces.
type Effort struct {
	name    string
	src     ForceSource
	sum     float64
	samples int
}

func NewEffort(src ForceSource) *Effort {
	return &Effort{
		name: "effort",
		src:  src,
	}
}

func (e *Effort) Name() string { return e.name }

func (e *Effort) Observe(x sim.State, u sim.Control, t float64) {
	tau, err := e.src.Forces(t, x, u)
	if err != nil {
		return
	}
	for _, f := range tau {
		e.sum += math.Abs(f)
	}
	e.samples++
}

func (e *Effort) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *Effort) Reset() {
	e.sum = 0
	e.samples = 0
}

// Power is the mean absolute joint power |τ·qp|.
type Power struct {
	name    string
	src     ForceSource
	sum     float64
	samples int
}

func NewPower(src ForceSource) *Power {
	return &Power{
		name: "power",
		src:  src,
	}
}

func (p *Power) Name() string { return p.name }

func (p *Power) Observe(x sim.State, u sim.Control, t float64) {
	tau, err := p.src.Forces(t, x, u)
	if err != nil {
		return
	}
	_, qp := x.Split()
	if len(qp) != len(tau) {
		return
	}
	var w float64
	for i, f := range tau {
		w += f * qp[i]
	}
	p.sum += math.Abs(w)
	p.samples++
}

func (p *Power) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.sum / float64(p.samples)
}

func (p *Power) Reset() {
	p.sum = 0
	p.samples = 0
}

// Package metrics summarizes a run while it is being simulated.
package metrics

import (
	"math"

	"github.com/san-kum/featherstone/internal/sim"
)

// Energy is the mean mechanical energy over the run.
type Energy struct {
	name    string
	ec      sim.EnergyComputer
	samples int
	total   float64
}

func NewEnergy(ec sim.EnergyComputer) *Energy {
	return &Energy{
		name: "energy",
		ec:   ec,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x sim.State, u sim.Control, t float64) {
	v := e.ec.Energy(x)
	if math.IsNaN(v) {
		return
	}
	e.total += v
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift is the largest departure from the first observed energy.
// It is relative when the initial energy is at least Scale in magnitude
// and absolute otherwise, since the potential has an arbitrary zero.
type EnergyDrift struct {
	Scale float64

	name          string
	ec            sim.EnergyComputer
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(ec sim.EnergyComputer) *EnergyDrift {
	return &EnergyDrift{
		Scale: 1e-9,
		name:  "energy_drift",
		ec:    ec,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x sim.State, u sim.Control, t float64) {
	energy := e.ec.Energy(x)
	if math.IsNaN(energy) {
		return
	}
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	drift := math.Abs(energy - e.initialEnergy)
	if math.Abs(e.initialEnergy) >= e.Scale {
		drift /= math.Abs(e.initialEnergy)
	}
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

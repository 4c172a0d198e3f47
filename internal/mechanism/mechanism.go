// Package mechanism turns a world into sim.Dynamics. The state of a
// mechanism with n joints is [q_0..q_n-1, qp_0..qp_n-1] and its control
// vector adds n generalized forces on top of the joint motors.
package mechanism

import (
	"fmt"
	"math"

	"github.com/san-kum/featherstone/internal/articulated"
	"github.com/san-kum/featherstone/internal/kinematics"
	"github.com/san-kum/featherstone/internal/sim"
	"github.com/san-kum/featherstone/internal/world"
	"k8s.io/klog/v2"
)

type Mechanism struct {
	sim *world.Simulation
	kin *kinematics.Kinematics
	art *articulated.Articulated

	tau []float64
	qpp []float64
	err error
}

// New flattens w. Later changes to w are not seen by the mechanism.
func New(w *world.World) (*Mechanism, error) {
	s, err := w.Flatten()
	if err != nil {
		return nil, err
	}
	return FromSimulation(s), nil
}

func FromSimulation(s *world.Simulation) *Mechanism {
	n := s.Dof()
	return &Mechanism{
		sim: s,
		kin: kinematics.New(n),
		art: articulated.New(n),
		tau: make([]float64, n),
		qpp: make([]float64, n),
	}
}

func (m *Mechanism) Simulation() *world.Simulation         { return m.sim }
func (m *Mechanism) Kinematics() *kinematics.Kinematics    { return m.kin }
func (m *Mechanism) Articulated() *articulated.Articulated { return m.art }
func (m *Mechanism) Dof() int                              { return m.sim.Dof() }
func (m *Mechanism) StateDim() int                         { return 2 * m.sim.Dof() }
func (m *Mechanism) ControlDim() int                       { return m.sim.Dof() }

// Err returns the first failure since the last Reset.
func (m *Mechanism) Err() error { return m.err }

func (m *Mechanism) Reset() { m.err = nil }

// InitialState collects each joint's initial conditions.
func (m *Mechanism) InitialState() sim.State {
	n := m.sim.Dof()
	x := make(sim.State, 2*n)
	for i := range m.sim.Joints {
		ic := m.sim.Joints[i].InitialConditions
		x[i], x[n+i] = ic.Q, ic.QP
	}
	return x
}

// Forces returns the generalized joint forces at time t: every motor law
// plus the control, which may be empty.
func (m *Mechanism) Forces(t float64, x sim.State, u sim.Control) ([]float64, error) {
	tau := make([]float64, m.sim.Dof())
	if err := m.forces(tau, t, x, u); err != nil {
		return nil, err
	}
	return tau, nil
}

func (m *Mechanism) forces(tau []float64, t float64, x sim.State, u sim.Control) error {
	n := m.sim.Dof()
	if len(x) != 2*n {
		return fmt.Errorf("%w: state has %d components, want %d", sim.ErrDimensionMismatch, len(x), 2*n)
	}
	if len(u) != 0 && len(u) != n {
		return fmt.Errorf("%w: control has %d components, want %d", sim.ErrDimensionMismatch, len(u), n)
	}
	q, qp := x.Split()
	for i := range tau {
		tau[i] = 0
		if mot := m.sim.Joints[i].Motor; mot != nil {
			tau[i] = mot.Force(t, q[i], qp[i])
		}
		if len(u) != 0 {
			tau[i] += u[i]
		}
	}
	return nil
}

// Update brings the kinematics and the articulated quantities to state x
// with forces tau, without resolving accelerations.
func (m *Mechanism) Update(x sim.State, tau []float64) error {
	if len(x) != m.StateDim() {
		return fmt.Errorf("%w: state has %d components, want %d", sim.ErrDimensionMismatch, len(x), m.StateDim())
	}
	q, qp := x.Split()
	if err := m.kin.Update(m.sim, q, qp); err != nil {
		return err
	}
	return m.art.Calculate(m.sim, m.kin, tau)
}

// Derivative returns [qp, qpp]. A failure is kept for Err and yields a
// state full of NaN.
func (m *Mechanism) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	dx := make(sim.State, m.StateDim())
	if err := m.derive(dx, x, u, t); err != nil {
		if m.err == nil {
			m.err = fmt.Errorf("mechanism: t=%g: %w", t, err)
			klog.V(2).Infof("%v", m.err)
		}
		for i := range dx {
			dx[i] = math.NaN()
		}
	}
	return dx
}

func (m *Mechanism) derive(dx, x sim.State, u sim.Control, t float64) error {
	if err := m.forces(m.tau, t, x, u); err != nil {
		return err
	}
	if err := m.Update(x, m.tau); err != nil {
		return err
	}
	if err := m.art.Accelerations(m.sim, m.kin, m.tau, m.qpp); err != nil {
		return err
	}
	n := m.sim.Dof()
	copy(dx[:n], x[n:])
	copy(dx[n:], m.qpp)
	return nil
}

// Energy is the kinetic plus gravitational energy at x. It returns NaN
// when x cannot be evaluated.
func (m *Mechanism) Energy(x sim.State) float64 {
	if len(x) != m.StateDim() {
		return math.NaN()
	}
	q, qp := x.Split()
	if err := m.kin.Update(m.sim, q, qp); err != nil {
		return math.NaN()
	}
	return m.kin.KineticEnergy() + m.kin.PotentialEnergy(m.sim.Gravity)
}

package mechanism

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/featherstone/internal/articulated"
	"github.com/san-kum/featherstone/internal/integrators"
	"github.com/san-kum/featherstone/internal/joint"
	"github.com/san-kum/featherstone/internal/mass"
	"github.com/san-kum/featherstone/internal/sim"
	"github.com/san-kum/featherstone/internal/spatial"
	"github.com/san-kum/featherstone/internal/units"
	"github.com/san-kum/featherstone/internal/world"
)

const g = units.StandardGravity

func pendulum(t *testing.T, n int, length, radius float64) *Mechanism {
	t.Helper()
	bob := mass.Sphere(units.MKS, 1, radius, mgl64.Vec3{length, 0, 0})
	w, err := world.BuildSerialChain(units.MKS, n, length, bob)
	if err != nil {
		t.Fatal(err)
	}
	m, err := New(w)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// doublePendulum is the planar point-mass double pendulum with angles
// measured from the downward vertical.
func doublePendulum(th1, th2, w1, w2, m1, m2, l1, l2 float64) (float64, float64) {
	delta := th2 - th1
	sinD, cosD := math.Sin(delta), math.Cos(delta)

	den1 := (m1+m2)*l1 - m2*l1*cosD*cosD
	den2 := (l2 / l1) * den1

	a1 := (m2*l1*w1*w1*sinD*cosD +
		m2*g*math.Sin(th2)*cosD +
		m2*l2*w2*w2*sinD -
		(m1+m2)*g*math.Sin(th1)) / den1

	a2 := (-m2*l2*w2*w2*sinD*cosD +
		(m1+m2)*g*math.Sin(th1)*cosD -
		(m1+m2)*l1*w1*w1*sinD -
		(m1+m2)*g*math.Sin(th2)) / den2

	return a1, a2
}

func TestDimensions(t *testing.T) {
	m := pendulum(t, 3, 0.5, 0.05)

	if m.StateDim() != 6 || m.ControlDim() != 3 || m.Dof() != 3 {
		t.Errorf("dims = %d/%d/%d, want 6/3/3", m.StateDim(), m.ControlDim(), m.Dof())
	}
}

func TestSinglePendulum(t *testing.T) {
	const d, r = 0.8, 0.1
	m := pendulum(t, 1, d, r)

	tests := []struct {
		q, qp float64
	}{
		{0, 0},
		{math.Pi / 3, 0},
		{-math.Pi / 2, 0},
		{1.1, 2.5},
	}
	for _, tt := range tests {
		dx := m.Derivative(sim.State{tt.q, tt.qp}, nil, 0)
		if err := m.Err(); err != nil {
			t.Fatal(err)
		}
		want := -g * d * math.Cos(tt.q) / (d*d + 0.4*r*r)
		if dx[0] != tt.qp {
			t.Errorf("q=%v: rate %v, want %v", tt.q, dx[0], tt.qp)
		}
		if math.Abs(dx[1]-want) > 1e-9 {
			t.Errorf("q=%v: acceleration %v, want %v", tt.q, dx[1], want)
		}
	}
}

func TestDoublePendulumMatchesClosedForm(t *testing.T) {
	const l = 1.0
	m := pendulum(t, 2, l, 1e-3)

	states := []sim.State{
		{0.3, -0.4, 0, 0},
		{-1.2, 0.7, 0.5, -1.5},
		{2.0, 1.0, -2.0, 3.0},
	}
	for _, x := range states {
		dx := m.Derivative(x, nil, 0)
		if err := m.Err(); err != nil {
			t.Fatal(err)
		}

		th1 := x[0] + math.Pi/2
		th2 := x[0] + x[1] + math.Pi/2
		a1, a2 := doublePendulum(th1, th2, x[2], x[2]+x[3], 1, 1, l, l)

		if math.Abs(dx[2]-a1) > 1e-4*(1+math.Abs(a1)) {
			t.Errorf("%v: qpp0 = %v, want %v", x, dx[2], a1)
		}
		if math.Abs(dx[2]+dx[3]-a2) > 1e-4*(1+math.Abs(a2)) {
			t.Errorf("%v: absolute qpp1 = %v, want %v", x, dx[2]+dx[3], a2)
		}
	}
}

func TestSpringDamperMotor(t *testing.T) {
	w := world.New(units.MKS)
	id := w.NewPrismatic(spatial.Origin(), mgl64.Vec3{1, 0, 0})
	j, _ := w.Joint(id)
	j.AddMassProperties(mass.Sphere(units.MKS, 2, 0.1, mgl64.Vec3{}))
	j.Motor = joint.SpringDamper{K: 8, C: 0.5}

	m, err := New(w)
	if err != nil {
		t.Fatal(err)
	}

	dx := m.Derivative(sim.State{0.25, -1}, sim.Control{1.5}, 0)
	want := (-8*0.25 - 0.5*-1 + 1.5) / 2
	if math.Abs(dx[1]-want) > 1e-12 {
		t.Errorf("acceleration %v, want %v", dx[1], want)
	}

	tau, err := m.Forces(0, sim.State{0.25, -1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(tau[0]-(-1.5)) > 1e-12 {
		t.Errorf("force %v, want -1.5", tau[0])
	}
}

func TestInitialState(t *testing.T) {
	w, _ := world.BuildSerialChain(units.MKS, 2, 1, mass.Sphere(units.MKS, 1, 0.1, mgl64.Vec3{1, 0, 0}))
	j, _ := w.Joint(1)
	j.InitialConditions = joint.InitialConditions{Q: 0.5, QP: -2}

	m, err := New(w)
	if err != nil {
		t.Fatal(err)
	}
	x := m.InitialState()
	want := sim.State{0, 0.5, 0, -2}
	for i := range want {
		if x[i] != want[i] {
			t.Fatalf("InitialState() = %v, want %v", x, want)
		}
	}
}

func TestFailureIsRecorded(t *testing.T) {
	w := world.New(units.MKS)
	w.NewRevolute(spatial.Origin(), mgl64.Vec3{0, 0, 1})
	m, err := New(w)
	if err != nil {
		t.Fatal(err)
	}

	dx := m.Derivative(sim.State{0, 0}, nil, 0.5)
	if dx.IsValid() {
		t.Errorf("expected a NaN derivative for a massless body, got %v", dx)
	}
	if !errors.Is(m.Err(), articulated.ErrDegenerateJoint) {
		t.Fatalf("Err() = %v, want ErrDegenerateJoint", m.Err())
	}
	var je *articulated.JointError
	if !errors.As(m.Err(), &je) || je.Joint != 0 {
		t.Errorf("expected a JointError on joint 0, got %v", m.Err())
	}

	m.Reset()
	if m.Err() != nil {
		t.Error("Reset should clear the error")
	}

	m.Derivative(sim.State{0}, nil, 0)
	if !errors.Is(m.Err(), sim.ErrDimensionMismatch) {
		t.Errorf("Err() = %v, want ErrDimensionMismatch", m.Err())
	}
}

func TestEnergyConservedByRK4(t *testing.T) {
	m := pendulum(t, 3, 0.5, 0.05)

	s := sim.New(m, integrators.NewRK4(), noControl{})
	x0 := sim.State{-0.3, 0.8, -0.5, 0, 0, 0}
	result, err := s.Run(context.Background(), x0, sim.Config{Dt: 1e-3, Duration: 2, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := result.Err(); err != nil {
		t.Fatal(err)
	}

	e0 := m.Energy(x0)
	for i, x := range result.States {
		if e := m.Energy(x); math.Abs(e-e0) > 1e-5 {
			t.Fatalf("energy %v at t=%v, started at %v", e, result.Times[i], e0)
		}
	}
}

func TestSmallOscillationPeriod(t *testing.T) {
	const d, r = 1.0, 0.1
	m := pendulum(t, 1, d, r)

	period := 2 * math.Pi * math.Sqrt((d*d+0.4*r*r)/(g*d))
	s := sim.New(m, integrators.NewRK4(), noControl{})

	// Hanging straight down is q = -π/2.
	x0 := sim.State{-math.Pi/2 + 1e-3, 0}
	cfg := sim.Config{Dt: period / 2000, Duration: period}
	result, err := s.Run(context.Background(), x0, cfg)
	if err != nil {
		t.Fatal(err)
	}
	final := result.Final()
	if math.Abs(final[0]-x0[0]) > 1e-8 {
		t.Errorf("after one period q = %v, want %v", final[0], x0[0])
	}
}

type noControl struct{}

func (noControl) Compute(x sim.State, t float64) sim.Control { return nil }

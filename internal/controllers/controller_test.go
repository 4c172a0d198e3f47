package controllers

import (
	"math"
	"testing"

	"github.com/san-kum/featherstone/internal/sim"
)

func TestNone(t *testing.T) {
	ctrl := NewNone(2)
	u := ctrl.Compute(sim.State{1.0, 2.0, 0, 0}, 0.0)

	if len(u) != 2 {
		t.Errorf("expected 2 controls, got %d", len(u))
	}
	for i, v := range u {
		if v != 0 {
			t.Errorf("control[%d] should be 0, got %f", i, v)
		}
	}
}

func TestPID(t *testing.T) {
	ctrl := NewPID(10.0, 1.0, 2.0, []float64{0, 0.5})

	u := ctrl.Compute(sim.State{1.0, 0.5, 0.0, 3.0}, 0.0)
	if len(u) != 2 {
		t.Fatalf("expected 2 controls, got %d", len(u))
	}
	if u[0] != -10 {
		t.Errorf("joint 0: expected proportional term -10, got %f", u[0])
	}
	if u[1] != -6 {
		t.Errorf("joint 1: expected damping term -6, got %f", u[1])
	}

	u = ctrl.Compute(sim.State{1.0, 0.5, 0.0, 0.0}, 0.5)
	if math.Abs(u[0]-(-10-0.5)) > 1e-12 {
		t.Errorf("joint 0: expected integral to accumulate, got %f", u[0])
	}

	ctrl.Reset()
	u = ctrl.Compute(sim.State{1.0, 0.5, 0.0, 0.0}, 1.0)
	if u[0] != -10 {
		t.Errorf("after Reset expected -10, got %f", u[0])
	}
}

func TestPIDLimit(t *testing.T) {
	ctrl := NewPID(100, 0, 0, []float64{1})
	ctrl.Limit = 5

	if u := ctrl.Compute(sim.State{0, 0}, 0); u[0] != 5 {
		t.Errorf("expected clamped output 5, got %f", u[0])
	}
}

func TestFeedback(t *testing.T) {
	ctrl, err := NewFeedback([][]float64{{1.0, 0, 2.0, 0}, {0, 3.0, 0, 1.0}}, sim.State{0.5, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}

	u := ctrl.Compute(sim.State{0.5, 0, 0, 0}, 0.0)
	if u[0] != 0 || u[1] != 0 {
		t.Errorf("expected zero control at target, got %v", u)
	}

	u = ctrl.Compute(sim.State{1.5, 1.0, 1.0, -1.0}, 0.0)
	if u[0] != -3 || u[1] != -2 {
		t.Errorf("expected [-3 -2], got %v", u)
	}
}

func TestFeedbackRaggedGain(t *testing.T) {
	if _, err := NewFeedback([][]float64{{1, 2}, {3}}, nil); err == nil {
		t.Error("expected an error for a ragged gain matrix")
	}
	if _, err := NewFeedback(nil, nil); err == nil {
		t.Error("expected an error for an empty gain matrix")
	}
}

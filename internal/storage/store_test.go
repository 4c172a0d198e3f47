package storage

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/san-kum/featherstone/internal/sim"
)

func result() *sim.Result {
	return &sim.Result{
		States:     []sim.State{{0.5, -1, 0, 0}, {0.5, -1, 0.1, 0.25}},
		Controls:   []sim.Control{{2, 0}},
		Times:      []float64{0, 0.001},
		Metrics:    map[string]float64{"energy": -9.5},
		StepsTaken: 1,
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	id, err := s.Save(RunMetadata{Mechanism: "pendulum/double", Joints: []string{"link0", "link1"}, Dt: 0.001}, result())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(id, "pendulum-double_") {
		t.Errorf("unexpected run id %q", id)
	}

	meta, err := s.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Steps != 1 || meta.Metrics["energy"] != -9.5 || meta.Error != "" {
		t.Errorf("unexpected metadata %+v", meta)
	}

	data, err := os.ReadFile(s.StatesPath(id))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "time,q_link0,q_link1,qp_link0,qp_link1,u_link0,u_link1" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[2] != "0.001,0.5,-1,0.1,0.25,0,0" {
		t.Errorf("unexpected final row %q", lines[2])
	}

	states, times, err := s.LoadStates(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 2 || times[1] != 0.001 || states[1][3] != 0.25 || len(states[0]) != 4 {
		t.Errorf("unexpected states %v at %v", states, times)
	}
}

func TestSaveRecordsFailure(t *testing.T) {
	s := New(t.TempDir())
	r := result()
	r.Controls = nil
	r.Errors = []error{sim.SimError{Step: 1, Time: 0.001, Message: "dynamics failed", Wrapped: errors.New("degenerate joint")}}

	id, err := s.Save(RunMetadata{Mechanism: "chain", Joints: []string{"a", "b"}}, r)
	if err != nil {
		t.Fatal(err)
	}
	meta, _ := s.Load(id)
	if !strings.Contains(meta.Error, "degenerate joint") {
		t.Errorf("expected the failure in metadata, got %q", meta.Error)
	}

	data, _ := os.ReadFile(s.StatesPath(id))
	if !strings.HasPrefix(string(data), "time,q_a,q_b,qp_a,qp_b\n") {
		t.Errorf("controls column should be omitted, got %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestList(t *testing.T) {
	s := New(t.TempDir())

	runs, err := s.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("expected an empty list, got %v %v", runs, err)
	}

	for _, name := range []string{"first", "second"} {
		if _, err := s.Save(RunMetadata{Mechanism: name, Joints: []string{"j0", "j1"}}, result()); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(s.StatesPath("junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].Mechanism != "first" {
		t.Errorf("unexpected runs %+v", runs)
	}
}

func TestLoadMissing(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Load("nope"); !os.IsNotExist(err) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

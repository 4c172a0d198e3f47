package kinematics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/featherstone/internal/mass"
	"github.com/san-kum/featherstone/internal/spatial"
	"github.com/san-kum/featherstone/internal/units"
	"github.com/san-kum/featherstone/internal/world"
)

const g = units.StandardGravity

func chain(t *testing.T) *world.Simulation {
	t.Helper()
	w, err := world.BuildSerialChain(units.MKS, 2, 1, mass.Sphere(units.MKS, 1, 0.1, mgl64.Vec3{1, 0, 0}))
	if err != nil {
		t.Fatal(err)
	}
	s, err := w.Flatten()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestUpdatePosesAndScrews(t *testing.T) {
	s := chain(t)
	k := New(0)
	if err := k.Update(s, []float64{math.Pi / 2, -math.Pi / 2}, []float64{1, 0}); err != nil {
		t.Fatal(err)
	}
	if k.Len() != 2 {
		t.Fatalf("Len() = %d", k.Len())
	}

	tests := []struct {
		name string
		got  mgl64.Vec3
		want mgl64.Vec3
	}{
		{"pose 1 position", k.Pose[1].Position, mgl64.Vec3{0, 1, 0}},
		{"com 0", k.CenterOfMass(0), mgl64.Vec3{0, 1, 0}},
		{"com 1", k.CenterOfMass(1), mgl64.Vec3{1, 1, 0}},
		{"screw 0 linear", k.S[0].Linear, mgl64.Vec3{}},
		{"screw 1 linear", k.S[1].Linear, mgl64.Vec3{1, 0, 0}},
		{"screw 1 angular", k.S[1].Angular, mgl64.Vec3{0, 0, 1}},
		{"twist 1", k.V[1].Angular, mgl64.Vec3{0, 0, 1}},
		{"weight 1 force", k.W[1].Linear, mgl64.Vec3{0, -g, 0}},
		{"weight 1 moment", k.W[1].Angular, mgl64.Vec3{0, 0, -g}},
		{"bias 1", k.K[1].Linear, mgl64.Vec3{}},
	}
	for _, tt := range tests {
		if !spatial.NearVec3(tt.got, tt.want, 1e-12) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if !spatial.NearQuat(k.Pose[1].Orientation, mgl64.QuatIdent(), 1e-12) {
		t.Errorf("pose 1 orientation = %v, want identity", k.Pose[1].Orientation)
	}
}

func TestEnergies(t *testing.T) {
	s := chain(t)
	k := New(2)
	if err := k.Update(s, []float64{math.Pi / 2, -math.Pi / 2}, []float64{1, 0}); err != nil {
		t.Fatal(err)
	}

	// Both bodies spin rigidly about the origin at 1 rad/s.
	wantKE := 0.5 * ((1 + 0.004) + (2 + 0.004))
	if ke := k.KineticEnergy(); math.Abs(ke-wantKE) > 1e-12 {
		t.Errorf("KineticEnergy() = %v, want %v", ke, wantKE)
	}
	if pe := k.PotentialEnergy(s.Gravity); math.Abs(pe-2*g) > 1e-12 {
		t.Errorf("PotentialEnergy() = %v, want %v", pe, 2*g)
	}
}

func TestPrismaticVelocity(t *testing.T) {
	w := world.New(units.MKS)
	root := w.NewRevolute(spatial.Origin(), mgl64.Vec3{0, 0, 1})
	slider, err := w.AddPrismatic(root, spatial.Translation(0, 2, 0), mgl64.Vec3{1, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	j, _ := w.Joint(slider)
	j.AddMassProperties(mass.Sphere(units.MKS, 1, 0.1, mgl64.Vec3{}))
	s, err := w.Flatten()
	if err != nil {
		t.Fatal(err)
	}

	k := New(2)
	if err := k.Update(s, []float64{0, 0.5}, []float64{0, 2}); err != nil {
		t.Fatal(err)
	}
	if !spatial.NearVec3(k.V[1].Linear, mgl64.Vec3{2, 0, 0}, 1e-12) || !spatial.NearVec3(k.V[1].Angular, mgl64.Vec3{}, 1e-12) {
		t.Errorf("slider twist = %v", k.V[1])
	}
	if !spatial.NearVec3(k.CenterOfMass(1), mgl64.Vec3{0.5, 2, 0}, 1e-12) {
		t.Errorf("slider position = %v", k.CenterOfMass(1))
	}
	if ke := k.KineticEnergy(); math.Abs(ke-2) > 1e-12 {
		t.Errorf("KineticEnergy() = %v, want 2", ke)
	}

	// Spinning the root carries the slider: its bias is ω × v.
	if err := k.Update(s, []float64{0, 0.5}, []float64{1, 2}); err != nil {
		t.Fatal(err)
	}
	if !spatial.NearVec3(k.K[1].Linear, mgl64.Vec3{0, 2, 0}, 1e-12) {
		t.Errorf("slider bias = %v, want (0, 2, 0)", k.K[1].Linear)
	}
}

func TestUpdateRejectsBadLengths(t *testing.T) {
	s := chain(t)
	if err := New(2).Update(s, []float64{0}, []float64{0, 0}); err == nil {
		t.Error("expected an error for a short coordinate vector")
	}
}

func TestResizeReusesStorage(t *testing.T) {
	k := New(4)
	first := &k.S[0]
	k.Resize(2)
	if k.Len() != 2 || &k.S[0] != first {
		t.Error("shrinking should keep the backing arrays")
	}
}

package config

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/gomega"
	"github.com/san-kum/featherstone/internal/joint"
	"github.com/san-kum/featherstone/internal/units"
	"github.com/san-kum/featherstone/internal/world"
)

func TestDefaultConfig(t *testing.T) {
	g := NewWithT(t)
	cfg := DefaultConfig()

	g.Expect(cfg.Validate()).To(Succeed())
	g.Expect(cfg.Run.Integrator).To(Equal("rk4"))
	g.Expect(cfg.GravityVector()).To(Equal(mgl64.Vec3{0, -units.StandardGravity, 0}))

	w, err := cfg.Build()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(w.Len()).To(Equal(1))
	g.Expect(w.TotalMass()).To(BeNumerically("~", 1, 1e-12))
}

const doc = `
name: crane
units: MMKS
gravity: [0, 0, -9806.65]
joints:
  - name: base
    kind: revolute
    axis: [0, 0, 1]
    body: {mass: 10, radius: 100}
  - name: boom
    parent: base
    kind: prismatic
    position: [0, 0, 500]
    rotation: {axis: [0, 1, 0], angle: 1.5707963267948966}
    axis: [1, 0, 0]
    body: {mass: 2, cg: [250, 0, 0], inertia: [100, 2000, 2000]}
    q0: 50
    motor: {type: spring, k: 3, c: 0.5}
  - name: hook
    parent: boom
    kind: screw
    axis: [0, 0, 1]
    pitch: 1.5
    body: {mass: 0.5, radius: 20}
    qp0: -1
contacts:
  - action: hook
    point: [0, 0, 0]
    direction: [0, 0, 1]
    cor: 0.3
run:
  integrator: rk45
  adaptive: true
  duration: 3
`

func TestParseAndBuild(t *testing.T) {
	g := NewWithT(t)

	cfg, err := Parse([]byte(doc))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Units).To(Equal(units.MMKS))
	g.Expect(cfg.Run.Dt).To(Equal(DefaultDt), "unset run fields keep their defaults")
	g.Expect(cfg.Run.Integrator).To(Equal("rk45"))
	g.Expect(cfg.JointNames()).To(Equal([]string{"base", "boom", "hook"}))

	w, err := cfg.Build()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(w.Units).To(Equal(units.MMKS))
	g.Expect(w.Gravity).To(Equal(mgl64.Vec3{0, 0, -9806.65}))
	g.Expect(w.Roots()).To(Equal([]world.ID{0}))
	g.Expect(w.Contacts()).To(HaveLen(1))
	g.Expect(w.Contacts()[0].IsWithGround()).To(BeTrue())

	boom, err := w.Joint(1)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(boom.Kind()).To(Equal(joint.Prismatic))
	g.Expect(boom.Parent()).To(Equal(world.ID(0)))
	g.Expect(boom.InitialConditions.Q).To(Equal(50.0))
	g.Expect(boom.Motor).To(Equal(joint.SpringDamper{K: 3, C: 0.5}))
	g.Expect(boom.LocalPosition.Position).To(Equal(mgl64.Vec3{0, 0, 500}))

	hook, _ := w.Joint(2)
	g.Expect(hook.Pitch).To(Equal(1.5))
	g.Expect(hook.InitialConditions.QP).To(Equal(-1.0))
	g.Expect(w.TotalMass()).To(BeNumerically("~", 12.5, 1e-12))

	sc := cfg.SimConfig()
	g.Expect(sc.Adaptive).To(BeTrue())
	g.Expect(sc.Duration).To(Equal(3.0))
	g.Expect(sc.Tolerance).To(Equal(DefaultTolerance))
}

func TestEmptyGravityMeansDefault(t *testing.T) {
	g := NewWithT(t)

	cfg, err := Parse([]byte(strings.Replace(doc, "gravity: [0, 0, -9806.65]", "gravity: []", 1)))
	g.Expect(err).NotTo(HaveOccurred())
	down := mgl64.Vec3{0, -units.MMKS.EarthGravity(), 0}
	g.Expect(cfg.GravityVector()).To(Equal(down))
	g.Expect(down.Y()).To(BeNumerically("~", -9806.65, 1e-9))

	w, err := cfg.Build()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(w.Gravity).To(Equal(down))

	cfg.Gravity = []float64{0, 0, 0}
	g.Expect(cfg.GravityVector()).To(Equal(mgl64.Vec3{}), "explicit zero gravity is kept")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Run.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Run.Duration = -1 }},
		{"no joints", func(c *Config) { c.Joints = nil }},
		{"short gravity", func(c *Config) { c.Gravity = []float64{0, 1} }},
		{"zero axis", func(c *Config) { c.Joints[0].Axis = []float64{0, 0, 0} }},
		{"point mass", func(c *Config) { c.Joints[0].Body.Radius = 0 }},
		{"massless", func(c *Config) { c.Joints[0].Body.Mass = 0 }},
		{"bad inertia", func(c *Config) { c.Joints[0].Body.Inertia = []float64{1, 2} }},
		{"unknown parent", func(c *Config) { c.Joints[0].Parent = "elbow" }},
		{"duplicate name", func(c *Config) { c.Joints = append(c.Joints, c.Joints[0]) }},
		{"unknown motor", func(c *Config) { c.Joints[0].Motor = &MotorConfig{Type: "hydraulic"} }},
		{"contact on unknown joint", func(c *Config) {
			c.Contacts = []ContactConfig{{Action: "wrist", Point: []float64{0, 0, 0}, Direction: []float64{0, 1, 0}}}
		}},
		{"zero contact direction", func(c *Config) {
			c.Contacts = []ContactConfig{{Action: "shoulder", Direction: []float64{0, 0, 0}}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			cfg := DefaultConfig()
			tt.modify(cfg)

			g.Expect(cfg.Validate()).To(MatchError(ErrInvalid))
			_, err := cfg.Build()
			g.Expect(err).To(MatchError(ErrInvalid))
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "mechanism.yaml")

	cfg := GetPreset("tree", "branch")
	g.Expect(Save(path, cfg)).To(Succeed())

	loaded, err := Load(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(loaded).To(Equal(cfg))
}

func TestPresetsBuild(t *testing.T) {
	for _, family := range Families() {
		for _, name := range ListPresets(family) {
			t.Run(family+"/"+name, func(t *testing.T) {
				g := NewWithT(t)
				cfg := Lookup(family + "/" + name)
				g.Expect(cfg).NotTo(BeNil())

				w, err := cfg.Build()
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(w.Len()).To(Equal(len(cfg.Joints)))
			})
		}
	}
}

func TestGetPreset(t *testing.T) {
	g := NewWithT(t)

	cfg := GetPreset("chain", "five")
	g.Expect(cfg).NotTo(BeNil())
	g.Expect(cfg.Joints).To(HaveLen(5))
	g.Expect(cfg.Joints[4].Parent).To(Equal("link3"))

	// Each call builds a fresh config.
	cfg.Joints[0].Q0 = 1
	g.Expect(GetPreset("chain", "five").Joints[0].Q0).To(BeZero())

	screw := Lookup("screw/lead")
	g.Expect(screw.Units).To(Equal(units.MMKS))
	g.Expect(screw.Joints[0].Pitch).To(BeNumerically("~", 1/math.Pi, 1e-15))
}

func TestGetPreset_NotFound(t *testing.T) {
	g := NewWithT(t)

	g.Expect(GetPreset("pendulum", "nonexistent")).To(BeNil())
	g.Expect(GetPreset("nonexistent", "single")).To(BeNil())
	g.Expect(Lookup("pendulum")).To(BeNil())
	g.Expect(ListPresets("nonexistent")).To(BeNil())
	g.Expect(ListPresets("pendulum")).To(Equal([]string{"double", "held", "single"}))
}

// Package config describes a mechanism and a run in YAML and builds the
// corresponding world.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/featherstone/internal/joint"
	"github.com/san-kum/featherstone/internal/mass"
	"github.com/san-kum/featherstone/internal/sim"
	"github.com/san-kum/featherstone/internal/spatial"
	"github.com/san-kum/featherstone/internal/units"
	"github.com/san-kum/featherstone/internal/world"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt        = 0.001
	DefaultDuration  = 10.0
	DefaultTolerance = 1e-8
	DefaultKp        = 10.0
	DefaultKi        = 0.1
	DefaultKd        = 5.0
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Name  string       `yaml:"name,omitempty"`
	Units units.System `yaml:"units"`
	// Gravity defaults to standard gravity along -Y when omitted or empty.
	Gravity  []float64       `yaml:"gravity,omitempty"`
	Joints   []JointConfig   `yaml:"joints"`
	Contacts []ContactConfig `yaml:"contacts,omitempty"`
	Run      RunConfig       `yaml:"run"`
}

type JointConfig struct {
	Name string `yaml:"name"`
	// Parent names an earlier joint; empty makes a root.
	Parent   string          `yaml:"parent,omitempty"`
	Kind     joint.Kind      `yaml:"kind"`
	Position []float64       `yaml:"position,omitempty"`
	Rotation *RotationConfig `yaml:"rotation,omitempty"`
	Axis     []float64       `yaml:"axis"`
	Pitch    float64         `yaml:"pitch,omitempty"`
	Body     BodyConfig      `yaml:"body"`
	Q0       float64         `yaml:"q0,omitempty"`
	QP0      float64         `yaml:"qp0,omitempty"`
	Motor    *MotorConfig    `yaml:"motor,omitempty"`
}

type RotationConfig struct {
	Axis  []float64 `yaml:"axis"`
	Angle float64   `yaml:"angle"`
}

// BodyConfig is the body a joint carries, in the joint frame. A body
// needs rotational inertia: either a sphere radius or an inertia about the
// center of mass (3 diagonal or 9 row-major entries).
type BodyConfig struct {
	Mass    float64   `yaml:"mass"`
	CG      []float64 `yaml:"cg,omitempty"`
	Radius  float64   `yaml:"radius,omitempty"`
	Inertia []float64 `yaml:"inertia,omitempty"`
}

type MotorConfig struct {
	// Type is "const" or "spring".
	Type  string  `yaml:"type"`
	Force float64 `yaml:"force,omitempty"`
	K     float64 `yaml:"k,omitempty"`
	C     float64 `yaml:"c,omitempty"`
	Q0    float64 `yaml:"q0,omitempty"`
}

type ContactConfig struct {
	Action string `yaml:"action"`
	// Reaction is empty for a contact with the ground.
	Reaction  string    `yaml:"reaction,omitempty"`
	Point     []float64 `yaml:"point"`
	Direction []float64 `yaml:"direction"`
	COR       float64   `yaml:"cor"`
}

type RunConfig struct {
	Integrator string           `yaml:"integrator"`
	Controller string           `yaml:"controller"`
	Dt         float64          `yaml:"dt"`
	Duration   float64          `yaml:"duration"`
	Seed       int64            `yaml:"seed,omitempty"`
	Adaptive   bool             `yaml:"adaptive,omitempty"`
	Tolerance  float64          `yaml:"tolerance,omitempty"`
	Params     ControllerConfig `yaml:"controller_params,omitempty"`
}

type ControllerConfig struct {
	Kp      float64     `yaml:"kp,omitempty"`
	Ki      float64     `yaml:"ki,omitempty"`
	Kd      float64     `yaml:"kd,omitempty"`
	Targets []float64   `yaml:"targets,omitempty"`
	Limit   float64     `yaml:"limit,omitempty"`
	Gain    [][]float64 `yaml:"gain,omitempty"`
}

// DefaultConfig is a single sphere pendulum released from horizontal.
func DefaultConfig() *Config {
	return &Config{
		Name:  "pendulum",
		Units: units.MKS,
		Joints: []JointConfig{{
			Name: "shoulder",
			Kind: joint.Revolute,
			Axis: []float64{0, 0, 1},
			Body: BodyConfig{Mass: 1, CG: []float64{1, 0, 0}, Radius: 0.05},
		}},
		Run: DefaultRun(),
	}
}

func DefaultRun() RunConfig {
	return RunConfig{
		Integrator: "rk4",
		Controller: "none",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Tolerance:  DefaultTolerance,
		Params: ControllerConfig{
			Kp: DefaultKp,
			Ki: DefaultKi,
			Kd: DefaultKd,
		},
	}
}

// Load reads a YAML file on top of the default run settings.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := &Config{Run: DefaultRun()}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func vec3(v []float64, what string) (mgl64.Vec3, error) {
	switch len(v) {
	case 0:
		return mgl64.Vec3{}, nil
	case 3:
		return mgl64.Vec3{v[0], v[1], v[2]}, nil
	default:
		return mgl64.Vec3{}, invalid("%s needs 3 components, got %d", what, len(v))
	}
}

// Validate checks everything Build needs except integrator and controller
// names, which belong to the experiment registry.
func (c *Config) Validate() error {
	if c.Run.Dt <= 0 {
		return invalid("dt must be positive, got %g", c.Run.Dt)
	}
	if c.Run.Duration <= 0 {
		return invalid("duration must be positive, got %g", c.Run.Duration)
	}
	if c.Run.Adaptive && c.Run.Tolerance <= 0 {
		return invalid("adaptive runs need a positive tolerance")
	}
	if _, err := vec3(c.Gravity, "gravity"); err != nil {
		return err
	}
	if len(c.Joints) == 0 {
		return invalid("no joints")
	}

	seen := make(map[string]bool, len(c.Joints))
	for _, j := range c.Joints {
		if err := j.validate(seen); err != nil {
			return err
		}
		seen[j.Name] = true
	}
	for i, ct := range c.Contacts {
		if !seen[ct.Action] {
			return invalid("contact %d: unknown action joint %q", i, ct.Action)
		}
		if ct.Reaction != "" && !seen[ct.Reaction] {
			return invalid("contact %d: unknown reaction joint %q", i, ct.Reaction)
		}
		if _, err := vec3(ct.Point, "contact point"); err != nil {
			return err
		}
		d, err := vec3(ct.Direction, "contact direction")
		if err != nil {
			return err
		}
		if d.Len() == 0 {
			return invalid("contact %d: zero direction", i)
		}
	}
	return nil
}

func (j *JointConfig) validate(seen map[string]bool) error {
	if j.Name == "" {
		return invalid("joint without a name")
	}
	if seen[j.Name] {
		return invalid("duplicate joint %q", j.Name)
	}
	if j.Parent != "" && !seen[j.Parent] {
		return invalid("joint %q: parent %q must be declared before it", j.Name, j.Parent)
	}
	axis, err := vec3(j.Axis, "joint axis")
	if err != nil {
		return err
	}
	if axis.Len() == 0 {
		return invalid("joint %q: zero axis", j.Name)
	}
	if _, err := vec3(j.Position, "joint position"); err != nil {
		return err
	}
	if j.Rotation != nil {
		if _, err := vec3(j.Rotation.Axis, "rotation axis"); err != nil {
			return err
		}
	}
	b := j.Body
	if b.Mass <= 0 {
		return invalid("joint %q: body mass must be positive", j.Name)
	}
	if _, err := vec3(b.CG, "center of mass"); err != nil {
		return err
	}
	if b.Radius < 0 {
		return invalid("joint %q: negative radius", j.Name)
	}
	if b.Radius == 0 && len(b.Inertia) == 0 {
		return invalid("joint %q: body needs a radius or an inertia", j.Name)
	}
	if n := len(b.Inertia); n != 0 && n != 3 && n != 9 {
		return invalid("joint %q: inertia needs 3 or 9 entries, got %d", j.Name, n)
	}
	if j.Motor != nil && j.Motor.Type != "const" && j.Motor.Type != "spring" {
		return invalid("joint %q: unknown motor %q", j.Name, j.Motor.Type)
	}
	return nil
}

// GravityVector is the configured gravity in the config units.
func (c *Config) GravityVector() mgl64.Vec3 {
	if len(c.Gravity) == 0 {
		return mgl64.Vec3{0, -c.Units.EarthGravity(), 0}
	}
	g, _ := vec3(c.Gravity, "gravity")
	return g
}

// JointNames lists joint names by world id.
func (c *Config) JointNames() []string {
	names := make([]string, len(c.Joints))
	for i, j := range c.Joints {
		names[i] = j.Name
	}
	return names
}

// Build validates the config and creates its world. Joint i of the config
// becomes world joint ID(i).
func (c *Config) Build() (*world.World, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	w := world.New(c.Units)
	w.Gravity = c.GravityVector()

	ids := make(map[string]world.ID, len(c.Joints))
	for _, jc := range c.Joints {
		id, err := c.addJoint(w, jc, ids)
		if err != nil {
			return nil, fmt.Errorf("config: joint %q: %w", jc.Name, err)
		}
		ids[jc.Name] = id
	}

	for i, cc := range c.Contacts {
		point, _ := vec3(cc.Point, "")
		dir, _ := vec3(cc.Direction, "")
		var err error
		if cc.Reaction == "" {
			_, err = w.NewContact(ids[cc.Action], point, dir, cc.COR)
		} else {
			_, err = w.NewContactBetween(ids[cc.Action], ids[cc.Reaction], point, dir, cc.COR)
		}
		if err != nil {
			return nil, fmt.Errorf("config: contact %d: %w", i, err)
		}
	}
	return w, nil
}

func (c *Config) addJoint(w *world.World, jc JointConfig, ids map[string]world.ID) (world.ID, error) {
	pos, _ := vec3(jc.Position, "")
	axis, _ := vec3(jc.Axis, "")
	local := spatial.NewPose(pos, mgl64.Vec3{}, 0)
	if jc.Rotation != nil {
		ra, _ := vec3(jc.Rotation.Axis, "")
		local = spatial.NewPose(pos, ra, jc.Rotation.Angle)
	}

	var id world.ID
	var err error
	if jc.Parent == "" {
		id, err = w.NewJoint(c.Units, jc.Kind, local, axis, jc.Pitch)
	} else {
		id, err = w.AddJoint(ids[jc.Parent], jc.Kind, local, axis, jc.Pitch)
	}
	if err != nil {
		return world.NoParent, err
	}

	j, err := w.Joint(id)
	if err != nil {
		return world.NoParent, err
	}
	j.AddMassProperties(jc.Body.properties(c.Units))
	j.InitialConditions = joint.InitialConditions{Q: jc.Q0, QP: jc.QP0}
	if jc.Motor != nil {
		j.Motor = jc.Motor.motor()
	}
	return id, nil
}

func (b BodyConfig) properties(u units.System) mass.Properties {
	cg, _ := vec3(b.CG, "")
	if len(b.Inertia) == 0 {
		return mass.Sphere(u, b.Mass, b.Radius, cg)
	}
	var ic mgl64.Mat3
	if len(b.Inertia) == 3 {
		ic = mgl64.Diag3(mgl64.Vec3{b.Inertia[0], b.Inertia[1], b.Inertia[2]})
	} else {
		for r := 0; r < 3; r++ {
			for col := 0; col < 3; col++ {
				ic.Set(r, col, b.Inertia[3*r+col])
			}
		}
	}
	return mass.FromCenter(u, b.Mass, cg, ic)
}

func (m *MotorConfig) motor() joint.Motor {
	if m.Type == "spring" {
		return joint.SpringDamper{K: m.K, C: m.C, Q0: m.Q0}
	}
	return joint.ConstForcing(m.Force)
}

// SimConfig turns the run section into simulator settings.
func (c *Config) SimConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Dt = c.Run.Dt
	cfg.Duration = c.Run.Duration
	cfg.Seed = c.Run.Seed
	cfg.Adaptive = c.Run.Adaptive
	if c.Run.Tolerance > 0 {
		cfg.Tolerance = c.Run.Tolerance
	}
	if cfg.MaxDt < c.Run.Dt {
		cfg.MaxDt = c.Run.Dt
	}
	return cfg
}

package config

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/featherstone/internal/joint"
	"github.com/san-kum/featherstone/internal/units"
)

// Presets builds a fresh config per call, grouped by family.
var Presets = map[string]map[string]func() *Config{
	"pendulum": {
		"single": func() *Config {
			c := DefaultConfig()
			c.Name = "pendulum/single"
			c.Run.Duration = 10
			return c
		},
		"double": func() *Config {
			return chain("pendulum/double", 2, 1.0, 1.0, 0.05, 0.01, 20)
		},
		"held": func() *Config {
			c := DefaultConfig()
			c.Name = "pendulum/held"
			c.Joints[0].Q0 = -math.Pi / 2
			c.Run.Controller = "pid"
			c.Run.Params = ControllerConfig{Kp: 60, Ki: 60, Kd: 12, Targets: []float64{0}}
			return c
		},
	},
	"chain": {
		"five": func() *Config {
			return chain("chain/five", 5, 0.4, 0.5, 0.04, 0.001, 10)
		},
		"ten": func() *Config {
			return chain("chain/ten", 10, 0.2, 0.25, 0.03, 0.0005, 5)
		},
	},
	"screw": {
		"lead": func() *Config {
			return &Config{
				Name:  "screw/lead",
				Units: units.MMKS,
				Joints: []JointConfig{{
					Name:  "nut",
					Kind:  joint.Screw,
					Axis:  []float64{0, 1, 0},
					Pitch: 2 / (2 * math.Pi),
					Body:  BodyConfig{Mass: 0.5, Inertia: []float64{200, 400, 200}},
				}},
				Run: RunConfig{Integrator: "rk4", Controller: "none", Dt: 0.001, Duration: 2},
			}
		},
	},
	"slider": {
		"spring": func() *Config {
			return &Config{
				Name:    "slider/spring",
				Units:   units.MKS,
				Gravity: []float64{0, 0, 0},
				Joints: []JointConfig{{
					Name:  "carriage",
					Kind:  joint.Prismatic,
					Axis:  []float64{1, 0, 0},
					Body:  BodyConfig{Mass: 2, Radius: 0.1},
					Q0:    0.2,
					Motor: &MotorConfig{Type: "spring", K: 50, C: 0.4},
				}},
				Run: RunConfig{Integrator: "verlet", Controller: "none", Dt: 0.001, Duration: 5},
			}
		},
	},
	"tree": {
		"branch": func() *Config {
			c := chain("tree/branch", 2, 0.5, 0.5, 0.05, 0.001, 5)
			c.Joints = append(c.Joints,
				JointConfig{
					Name: "left", Parent: "link1", Kind: joint.Revolute,
					Position: []float64{0.5, 0, 0}, Axis: []float64{0, 0, 1},
					Body: BodyConfig{Mass: 0.5, CG: []float64{0.3, 0, 0}, Radius: 0.05},
					Q0:   0.4,
				},
				JointConfig{
					Name: "right", Parent: "link1", Kind: joint.Revolute,
					Position: []float64{0.5, 0, 0}, Axis: []float64{0, 1, 0},
					Body: BodyConfig{Mass: 0.5, CG: []float64{0.3, 0, 0}, Radius: 0.05},
					QP0:  2,
				})
			return c
		},
	},
}

// chain is a serial planar chain of spheres released from horizontal.
func chain(name string, n int, spacing, m, r, dt, duration float64) *Config {
	c := &Config{Name: name, Units: units.MKS, Run: DefaultRun()}
	c.Run.Dt = dt
	c.Run.Duration = duration
	parent := ""
	for i := 0; i < n; i++ {
		jc := JointConfig{
			Name:   fmt.Sprintf("link%d", i),
			Parent: parent,
			Kind:   joint.Revolute,
			Axis:   []float64{0, 0, 1},
			Body:   BodyConfig{Mass: m, CG: []float64{spacing, 0, 0}, Radius: r},
		}
		if i > 0 {
			jc.Position = []float64{spacing, 0, 0}
		}
		c.Joints = append(c.Joints, jc)
		parent = jc.Name
	}
	return c
}

func GetPreset(family, preset string) *Config {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	mk, ok := familyPresets[preset]
	if !ok {
		return nil
	}
	return mk()
}

// Lookup resolves a "family/preset" name.
func Lookup(name string) *Config {
	family, preset, ok := strings.Cut(name, "/")
	if !ok {
		return nil
	}
	return GetPreset(family, preset)
}

func ListPresets(family string) []string {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(familyPresets))
	for name := range familyPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Families lists preset families in order.
func Families() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

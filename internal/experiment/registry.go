package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/featherstone/internal/config"
	"github.com/san-kum/featherstone/internal/controllers"
	"github.com/san-kum/featherstone/internal/integrators"
	"github.com/san-kum/featherstone/internal/mechanism"
	"github.com/san-kum/featherstone/internal/metrics"
	"github.com/san-kum/featherstone/internal/sim"
)

type ControllerFactory func(params config.ControllerConfig, dof int) (sim.Controller, error)

type Registry struct {
	controllers map[string]ControllerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]ControllerFactory),
	}

	r.controllers["none"] = func(_ config.ControllerConfig, dof int) (sim.Controller, error) {
		return controllers.NewNone(dof), nil
	}
	r.controllers["pid"] = func(p config.ControllerConfig, dof int) (sim.Controller, error) {
		targets := make([]float64, dof)
		copy(targets, p.Targets)
		pid := controllers.NewPID(p.Kp, p.Ki, p.Kd, targets)
		pid.Limit = p.Limit
		return pid, nil
	}
	r.controllers["feedback"] = func(p config.ControllerConfig, dof int) (sim.Controller, error) {
		if len(p.Gain) != dof {
			return nil, fmt.Errorf("feedback gain has %d rows for %d joints", len(p.Gain), dof)
		}
		var target sim.State
		if len(p.Targets) > 0 {
			target = make(sim.State, 2*dof)
			copy(target, p.Targets)
		}
		return controllers.NewFeedback(p.Gain, target)
	}

	return r
}

// Register adds or replaces a controller.
func (r *Registry) Register(name string, f ControllerFactory) {
	r.controllers[name] = f
}

func (r *Registry) GetIntegrator(name string) (sim.Integrator, error) {
	return integrators.New(name)
}

func (r *Registry) GetController(name string, params config.ControllerConfig, dof int) (sim.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	c, err := fn(params, dof)
	if err != nil {
		return nil, fmt.Errorf("controller %s: %w", name, err)
	}
	return c, nil
}

func (r *Registry) ListIntegrators() []string {
	return integrators.Names()
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics are attached to every run of m.
func (r *Registry) DefaultMetrics(m *mechanism.Mechanism) []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergy(m),
		metrics.NewEnergyDrift(m),
		metrics.NewStability(100.0),
		metrics.NewEffort(m),
		metrics.NewPower(m),
	}
}

// Package experiment wires a mechanism config to a simulator and runs it.
package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/featherstone/internal/config"
	"github.com/san-kum/featherstone/internal/mechanism"
	"github.com/san-kum/featherstone/internal/sim"
	"github.com/san-kum/featherstone/internal/world"
	"k8s.io/klog/v2"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	world     *world.World
	mech      *mechanism.Mechanism
	simulator *sim.Simulator
}

// New builds the world, the mechanism and a simulator for cfg.
func New(cfg *config.Config, registry *Registry) (*Experiment, error) {
	w, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	mech, err := mechanism.New(w)
	if err != nil {
		return nil, err
	}
	integ, err := registry.GetIntegrator(cfg.Run.Integrator)
	if err != nil {
		return nil, err
	}
	ctrl, err := registry.GetController(cfg.Run.Controller, cfg.Run.Params, mech.Dof())
	if err != nil {
		return nil, err
	}

	s := sim.New(mech, integ, ctrl)
	for _, m := range registry.DefaultMetrics(mech) {
		s.AddMetric(m)
	}
	klog.V(2).Infof("experiment: %s with %d joints, integrator %s, controller %s",
		cfg.Name, mech.Dof(), cfg.Run.Integrator, cfg.Run.Controller)

	return &Experiment{
		cfg:       cfg,
		registry:  registry,
		world:     w,
		mech:      mech,
		simulator: s,
	}, nil
}

func (e *Experiment) Config() *config.Config          { return e.cfg }
func (e *Experiment) World() *world.World             { return e.world }
func (e *Experiment) Mechanism() *mechanism.Mechanism { return e.mech }
func (e *Experiment) Simulator() *sim.Simulator       { return e.simulator }

// Run simulates from the configured initial conditions.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.RunFrom(ctx, e.mech.InitialState())
}

func (e *Experiment) RunFrom(ctx context.Context, x0 sim.State) (*sim.Result, error) {
	return e.simulator.Run(ctx, x0, e.cfg.SimConfig())
}

// Perturb returns n initial states scattered uniformly within ±scale of
// the configured ones, reproducible through the run seed.
func (e *Experiment) Perturb(n int, scale float64) []sim.State {
	rng := rand.New(rand.NewSource(e.cfg.Run.Seed))
	base := e.mech.InitialState()
	out := make([]sim.State, n)
	for i := range out {
		x := base.Clone()
		for j := range x {
			x[j] += scale * (2*rng.Float64() - 1)
		}
		out[i] = x
	}
	return out
}

// Sweep runs every initial state on its own mechanism, workers at a time.
func (e *Experiment) Sweep(ctx context.Context, x0s []sim.State, workers int) ([]*sim.Result, error) {
	factory := func() (*sim.Simulator, error) {
		other, err := New(e.cfg, e.registry)
		if err != nil {
			return nil, fmt.Errorf("experiment: sweep: %w", err)
		}
		return other.simulator, nil
	}
	return sim.NewEnsemble(factory, workers).Run(ctx, x0s, e.cfg.SimConfig())
}

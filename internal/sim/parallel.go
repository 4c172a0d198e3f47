package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Factory builds a fresh simulator for one ensemble member. Members never
// share dynamics, since mechanisms keep per-call scratch space.
type Factory func() (*Simulator, error)

type Ensemble struct {
	factory Factory
	workers int
}

// NewEnsemble runs members on at most workers goroutines.
func NewEnsemble(factory Factory, workers int) *Ensemble {
	if workers < 1 {
		workers = 1
	}
	return &Ensemble{factory: factory, workers: workers}
}

// Run simulates every initial state, returning results in input order.
// The first failing member cancels the ones still running.
func (e *Ensemble) Run(ctx context.Context, x0s []State, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(x0s))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for idx := range x0s {
		g.Go(func() error {
			s, err := e.factory()
			if err != nil {
				return err
			}
			member := cfg
			member.Seed = cfg.Seed + int64(idx)
			results[idx], err = s.Run(gctx, x0s[idx], member)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

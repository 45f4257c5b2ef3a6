package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent replicas concurrently. Each replica owns its
// host and reporter, built by the factory from its index.
type Ensemble struct {
	build    func(replica int) (*Loop, error)
	replicas int
}

func NewEnsemble(replicas int, build func(replica int) (*Loop, error)) *Ensemble {
	return &Ensemble{build: build, replicas: replicas}
}

// Run stops all replicas on the first error.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.replicas)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.replicas; i++ {
		g.Go(func() error {
			loop, err := e.build(i)
			if err != nil {
				return err
			}
			results[i], err = loop.Run(ctx, cfg)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

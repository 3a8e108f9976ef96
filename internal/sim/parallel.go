package sim

import (
	"context"
	"runtime"

	"github.com/san-kum/inertia/internal/dynamo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Ensemble pregenerates several independent models concurrently. Each
// model is sampled by exactly one goroutine.
type Ensemble struct {
	models  []dynamo.Model
	workers int
	logger  *zap.Logger
}

func NewEnsemble(models []dynamo.Model, workers int, logger *zap.Logger) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{models: models, workers: workers, logger: logger}
}

// Run returns one timeline per model, in input order.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Timeline, error) {
	results := make([]*Timeline, len(e.models))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, model := range e.models {
		g.Go(func() error {
			tl, err := New(model, e.logger).Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[i] = tl
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

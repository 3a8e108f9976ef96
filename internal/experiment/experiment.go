package experiment

import (
	"context"

	"go.uber.org/zap"

	"github.com/san-kum/inertia/internal/config"
	"github.com/san-kum/inertia/internal/dynamo"
	"github.com/san-kum/inertia/internal/metrics"
	"github.com/san-kum/inertia/internal/physics"
	"github.com/san-kum/inertia/internal/sim"
)

// Experiment is one configured run: the generator built from a config,
// and a runner carrying the default metrics.
type Experiment struct {
	cfg    *config.Config
	model  *physics.Inertia
	runner *sim.Runner
}

func New(cfg *config.Config, logger *zap.Logger) (*Experiment, error) {
	ic, err := cfg.Inertia()
	if err != nil {
		return nil, err
	}
	model := physics.NewInertia(ic)

	runner := sim.New(model, logger)
	for _, m := range metrics.Defaults(model.Target(), model.GetParams()["rest_delta"]) {
		runner.AddMetric(m)
	}

	return &Experiment{cfg: cfg, model: model, runner: runner}, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Timeline, error) {
	return e.runner.Run(ctx, e.cfg.SimConfig())
}

func (e *Experiment) AddObserver(o dynamo.Observer) { e.runner.AddObserver(o) }

func (e *Experiment) Config() *config.Config  { return e.cfg }
func (e *Experiment) Model() *physics.Inertia { return e.model }

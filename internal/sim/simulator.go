package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/inertia/internal/dynamo"
	"go.uber.org/zap"
)

// Runner samples a model on a fixed grid, feeding metrics and observers.
type Runner struct {
	model     dynamo.Model
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	logger    *zap.Logger
}

func New(model dynamo.Model, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		model:     model,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
		logger:    logger,
	}
}

func (r *Runner) AddMetric(m dynamo.Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o dynamo.Observer) { r.observers = append(r.observers, o) }

// Pregenerate samples model at 0, Step, 2*Step, ... until a sample after
// t=0 is done or MaxDuration is reached.
func Pregenerate(ctx context.Context, model dynamo.Model, cfg Config) (*Timeline, error) {
	return New(model, nil).Run(ctx, cfg)
}

// maxPrealloc bounds the up-front buffer size; longer timelines grow by append.
const maxPrealloc = 1 << 16

func (r *Runner) Run(ctx context.Context, cfg Config) (*Timeline, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	n := cfg.MaxDuration / cfg.Step
	if rest := r.model.Duration(); rest >= 0 && rest < cfg.MaxDuration {
		n = rest / cfg.Step
	}
	capacity := maxPrealloc
	if n < maxPrealloc {
		capacity = int(n) + 2
	}
	tl := &Timeline{
		Times:      make([]float64, 0, capacity),
		Values:     make([]float64, 0, capacity),
		Velocities: make([]float64, 0, capacity),
		Metrics:    make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	if p, ok := r.model.(dynamo.Phased); ok {
		if at, crossed := p.CrossingTime(); crossed {
			r.logger.Debug("boundary handoff scheduled",
				zap.Float64("at_ms", at),
				zap.Float64("duration_ms", r.model.Duration()))
		}
	}

	var t float64
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return tl, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		// Multiplying keeps grid times free of accumulated rounding.
		t = float64(i) * cfg.Step
		s := r.model.Next(t)

		if cfg.ValidateSamples && !s.IsValid() {
			return tl, &dynamo.SimulationError{Step: i, Time: t, Sample: s, Wrapped: dynamo.ErrInvalidSample}
		}

		for _, m := range r.metrics {
			m.Observe(s, t)
		}
		for _, obs := range r.observers {
			obs.OnSample(s, t)
		}

		tl.Times = append(tl.Times, t)
		tl.Values = append(tl.Values, s.Value)
		tl.Velocities = append(tl.Velocities, s.Velocity)

		if i > 0 && s.Done {
			tl.Done = true
			break
		}
		if t >= cfg.MaxDuration {
			r.logger.Warn("model did not come to rest",
				zap.Float64("max_duration_ms", cfg.MaxDuration),
				zap.Float64("last_value", s.Value))
			break
		}
	}
	tl.Duration = t

	for _, m := range r.metrics {
		tl.Metrics[m.Name()] = m.Value()
	}

	r.logger.Debug("timeline pregenerated",
		zap.Int("samples", tl.Len()),
		zap.Float64("seconds", tl.Seconds()),
		zap.Bool("done", tl.Done))

	return tl, nil
}

func validateConfig(cfg Config) error {
	if !(cfg.Step > 0) {
		return dynamo.ParamError("step", cfg.Step, "must be positive")
	}
	if !(cfg.MaxDuration > 0) {
		return dynamo.ParamError("max_duration", cfg.MaxDuration, "must be positive")
	}
	return nil
}

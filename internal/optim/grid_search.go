package optim

import (
	"context"
	"fmt"
	"maps"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/inertia/internal/config"
	"github.com/san-kum/inertia/internal/experiment"
)

// DurationMetric scores a candidate by its sampled time to rest.
const DurationMetric = "duration_ms"

// Candidate is one evaluated grid point.
type Candidate struct {
	Params map[string]float64
	Value  float64
	Done   bool
}

// GridSearch tries every combination of the given parameter values and
// keeps the one minimising a run metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
	logger     *zap.Logger
}

func NewGridSearch(params []string, ranges [][]float64, workers int, logger *zap.Logger) *GridSearch {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GridSearch{paramNames: params, ranges: ranges, workers: workers, logger: logger}
}

// Search evaluates the grid on top of base. Grid points that fail
// validation are skipped; runs that never come to rest score +Inf.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (Candidate, []Candidate, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Candidate{}, nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	var points []map[string]float64
	g.searchRecursive(0, make(map[string]float64), &points)

	results := make([]*Candidate, len(points))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i, params := range points {
		cfg := base.Clone()
		for k, v := range params {
			if err := cfg.Set(k, v); err != nil {
				return Candidate{}, nil, err
			}
		}
		if err := cfg.Validate(); err != nil {
			g.logger.Debug("skipping grid point", zap.Any("params", params), zap.Error(err))
			continue
		}

		eg.Go(func() error {
			exp, err := experiment.New(cfg, g.logger)
			if err != nil {
				return err
			}
			tl, err := exp.Run(ctx)
			if err != nil {
				return err
			}

			val, ok := tl.Metrics[metricName]
			if metricName == DurationMetric {
				val, ok = tl.Duration, true
			}
			if !ok {
				return fmt.Errorf("optim: unknown metric %q", metricName)
			}
			if !tl.Done {
				val = math.Inf(1)
			}

			results[i] = &Candidate{Params: params, Value: val, Done: tl.Done}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return Candidate{}, nil, err
	}

	// Grid order, so ties go to the earlier point.
	candidates := make([]Candidate, 0, len(points))
	for _, c := range results {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}
	if len(candidates) == 0 {
		return Candidate{}, nil, fmt.Errorf("optim: no valid grid points")
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Value < best.Value {
			best = c
		}
	}
	return best, candidates, nil
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, points *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*points = append(*points, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := maps.Clone(current)
		newParams[paramName] = val

		g.searchRecursive(depth+1, newParams, points)
	}
}

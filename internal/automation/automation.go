package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/inertia/internal/config"
	"github.com/san-kum/inertia/internal/dynamo"
	"github.com/san-kum/inertia/internal/experiment"
	"github.com/san-kum/inertia/internal/physics"
	"github.com/san-kum/inertia/internal/sim"
	"github.com/san-kum/inertia/internal/storage"
)

// Scenario defines a scripted batch of stored runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	dir string
}

// ScenarioStep is one run: a preset or config file, then overrides.
type ScenarioStep struct {
	Preset string             `yaml:"preset"`
	Config string             `yaml:"config"`
	Set    map[string]float64 `yaml:"set"`
	SaveAs string             `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file. Step config paths are
// relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}
	scenario.dir = filepath.Dir(path)

	return &scenario, nil
}

func (sc *Scenario) resolve(i int) (*config.Config, string, error) {
	step := sc.Steps[i]
	cfg, name := config.DefaultConfig(), fmt.Sprintf("%s-%d", sc.Name, i+1)

	switch {
	case step.Preset != "" && step.Config != "":
		return nil, "", fmt.Errorf("step %d: preset and config are exclusive", i+1)
	case step.Preset != "":
		p, err := config.LookupPreset(step.Preset)
		if err != nil {
			return nil, "", fmt.Errorf("step %d: %w", i+1, err)
		}
		cfg, name = p, step.Preset
	case step.Config != "":
		path := step.Config
		if !filepath.IsAbs(path) {
			path = filepath.Join(sc.dir, path)
		}
		c, err := config.Load(path)
		if err != nil {
			return nil, "", fmt.Errorf("step %d: %w", i+1, err)
		}
		cfg = c
	}

	for k, v := range step.Set {
		if err := cfg.Set(k, v); err != nil {
			return nil, "", fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("step %d: %w", i+1, err)
	}
	if step.SaveAs != "" {
		name = step.SaveAs
	}
	return cfg, name, nil
}

// RunScenario executes all steps in order and stores each run. It
// returns the IDs of the runs stored before any failure.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ids := make([]string, 0, len(scenario.Steps))

	for i := range scenario.Steps {
		cfg, name, err := scenario.resolve(i)
		if err != nil {
			return ids, err
		}

		logger.Info("scenario step",
			zap.String("scenario", scenario.Name),
			zap.Int("step", i+1),
			zap.Int("of", len(scenario.Steps)),
			zap.String("name", name))

		exp, err := experiment.New(cfg, logger)
		if err != nil {
			return ids, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		tl, err := exp.Run(ctx)
		if err != nil {
			return ids, fmt.Errorf("step %d run: %w", i+1, err)
		}

		id, err := st.Save(name, cfg, exp.Model().GetParams(), tl)
		if err != nil {
			return ids, fmt.Errorf("step %d save: %w", i+1, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// Outcome summarises one generated trajectory of a sweep or trial.
type Outcome struct {
	ParamValue float64
	Target     float64
	HandoffMs  float64
	Bounced    bool
	Seconds    float64
	Samples    int
	Final      float64
	Done       bool
}

// evaluate pregenerates every config concurrently, in input order.
func evaluate(ctx context.Context, cfgs []*config.Config, values []float64, workers int, logger *zap.Logger) ([]Outcome, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}
	simCfg := cfgs[0].SimConfig()
	for _, c := range cfgs[1:] {
		if c.SimConfig() != simCfg {
			return nil, fmt.Errorf("automation: step and max_duration must match across runs")
		}
	}

	gens := make([]*physics.Inertia, len(cfgs))
	models := make([]dynamo.Model, len(cfgs))
	for i, c := range cfgs {
		ic, err := c.Inertia()
		if err != nil {
			return nil, err
		}
		gens[i] = physics.NewInertia(ic)
		models[i] = gens[i]
	}

	tls, err := sim.NewEnsemble(models, workers, logger).Run(ctx, simCfg)
	if err != nil {
		return nil, err
	}

	out := make([]Outcome, len(tls))
	for i, tl := range tls {
		at, bounced := gens[i].CrossingTime()
		out[i] = Outcome{
			ParamValue: values[i],
			Target:     gens[i].Target(),
			HandoffMs:  at,
			Bounced:    bounced,
			Seconds:    tl.Seconds(),
			Samples:    tl.Len(),
			Final:      tl.Final(),
			Done:       tl.Done,
		}
	}
	return out, nil
}

// ParameterSweep runs one base config across evenly spaced values of a
// single parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Workers   int
}

func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps == 1 {
		return []float64{s.ParamMin}
	}
	values := make([]float64, s.NumSteps)
	for i := range values {
		values[i] = s.ParamMin + (s.ParamMax-s.ParamMin)*float64(i)/float64(s.NumSteps-1)
	}
	return values
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *zap.Logger) ([]Outcome, error) {
	if sweep.NumSteps < 1 {
		return nil, dynamo.ParamError("steps", float64(sweep.NumSteps), "must be at least 1")
	}

	values := sweep.Values()
	cfgs := make([]*config.Config, len(values))
	for i, v := range values {
		c := sweep.Base.Clone()
		if err := c.Set(sweep.ParamName, v); err != nil {
			return nil, err
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}
		cfgs[i] = c
	}

	return evaluate(ctx, cfgs, values, sweep.Workers, logger)
}

// MonteCarloConfig jitters one parameter uniformly around its base value.
type MonteCarloConfig struct {
	Base         *config.Config
	ParamName    string
	Perturbation float64
	NumTrials    int
	Seed         int64
	Workers      int
}

// RunMonteCarlo executes NumTrials perturbed runs. Trials whose
// perturbed config is invalid are dropped.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, logger *zap.Logger) ([]Outcome, error) {
	if cfg.NumTrials < 1 {
		return nil, dynamo.ParamError("trials", float64(cfg.NumTrials), "must be at least 1")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	base, err := cfg.Base.Get(cfg.ParamName)
	if err != nil {
		return nil, err
	}

	cfgs := make([]*config.Config, 0, cfg.NumTrials)
	values := make([]float64, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		v := base + (rng.Float64()-0.5)*2*cfg.Perturbation
		c := cfg.Base.Clone()
		if err := c.Set(cfg.ParamName, v); err != nil {
			return nil, err
		}
		if err := c.Validate(); err != nil {
			logger.Debug("dropping trial", zap.Int("trial", trial), zap.Float64(cfg.ParamName, v), zap.Error(err))
			continue
		}
		cfgs = append(cfgs, c)
		values = append(values, v)
	}

	return evaluate(ctx, cfgs, values, cfg.Workers, logger)
}

// MonteCarloStats counts trials that hit a bound and trials that never
// came to rest.
func MonteCarloStats(results []Outcome) (bounced int, unsettled int) {
	for _, r := range results {
		if r.Bounced {
			bounced++
		}
		if !r.Done {
			unsettled++
		}
	}
	return
}

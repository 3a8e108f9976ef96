package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/inertia/internal/config"
	"github.com/san-kum/inertia/internal/dynamo"
	"github.com/san-kum/inertia/internal/storage"
)

const scenarioYAML = `
name: bounces
description: both bounds, then a custom fling
steps:
  - preset: min-bounce
  - preset: max-bounce
    save_as: ceiling
  - config: fling.yaml
    set:
      velocity: 300
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fling.yaml"), []byte("keyframe: 10\nvelocity: 50\n"), 0644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)
	assert.Equal(t, "bounces", sc.Name)
	require.Len(t, sc.Steps, 3)

	st := storage.New(t.TempDir(), nil)
	require.NoError(t, st.Init())

	ids, err := RunScenario(context.Background(), sc, st, nil)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	meta, err := st.Load(ids[1])
	require.NoError(t, err)
	assert.Equal(t, "ceiling", meta.Name)
	assert.Equal(t, 200.0, meta.Final)
	assert.Equal(t, 1.42, meta.Seconds)

	meta, err = st.Load(ids[2])
	require.NoError(t, err)
	assert.Equal(t, "bounces-3", meta.Name)
	assert.Equal(t, 300.0, meta.Config.Velocity)
	assert.Equal(t, 10.0, meta.Config.Keyframe)
}

func TestRunScenarioStopsAtBadStep(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, `
name: broken
steps:
  - preset: flick
  - preset: nope
  - preset: rest
`))
	require.NoError(t, err)

	st := storage.New(t.TempDir(), nil)
	require.NoError(t, st.Init())

	ids, err := RunScenario(context.Background(), sc, st, nil)
	assert.ErrorIs(t, err, dynamo.ErrUnknownPreset)
	assert.Len(t, ids, 1)
}

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{
		Base:      config.GetPreset("min-bounce"),
		ParamName: "velocity",
		ParamMin:  -200,
		ParamMax:  200,
		NumSteps:  3,
		Workers:   2,
	}
	assert.Equal(t, []float64{-200, 0, 200}, sweep.Values())

	out, err := RunSweep(context.Background(), sweep, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.True(t, out[0].Bounced)
	assert.Equal(t, 0.0, out[0].Final)
	assert.Equal(t, 1.42, out[0].Seconds)
	assert.False(t, out[2].Bounced)
	assert.Equal(t, 300.0, out[2].Final)
	assert.Equal(t, 3.0, out[2].Seconds)

	// zero velocity rests where it starts
	assert.Equal(t, 100.0, out[1].Final)
	assert.Equal(t, 2, out[1].Samples)
}

func TestRunSweepRejectsSamplingChanges(t *testing.T) {
	_, err := RunSweep(context.Background(), &ParameterSweep{
		Base: config.GetPreset("flick"), ParamName: "step", ParamMin: 5, ParamMax: 10, NumSteps: 2,
	}, nil)
	assert.Error(t, err)

	_, err = RunSweep(context.Background(), &ParameterSweep{
		Base: config.GetPreset("flick"), ParamName: "velocity", NumSteps: 0,
	}, nil)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}

func TestRunMonteCarlo(t *testing.T) {
	mc := &MonteCarloConfig{
		Base:         config.GetPreset("min-bounce"),
		ParamName:    "velocity",
		Perturbation: 150,
		NumTrials:    20,
		Seed:         7,
	}

	out, err := RunMonteCarlo(context.Background(), mc, nil)
	require.NoError(t, err)
	require.Len(t, out, 20)

	bounced, unsettled := MonteCarloStats(out)
	assert.Zero(t, unsettled)
	for _, o := range out {
		assert.InDelta(t, -200, o.ParamValue, 150)
		// velocity below -100 projects past the bound at 0
		assert.Equal(t, o.ParamValue < -100, o.Bounced, "velocity %v", o.ParamValue)
	}
	assert.Positive(t, bounced)

	again, err := RunMonteCarlo(context.Background(), mc, nil)
	require.NoError(t, err)
	assert.Equal(t, out, again)

	_, err = RunMonteCarlo(context.Background(), &MonteCarloConfig{Base: mc.Base, ParamName: "mass", NumTrials: 1}, nil)
	assert.Error(t, err)
}

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/inertia/internal/config"
	"github.com/san-kum/inertia/internal/dynamo"
	"github.com/san-kum/inertia/internal/storage"
)

func motionCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	addMotionFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, name, err := resolveConfig(motionCmd(t))
	require.NoError(t, err)
	assert.Equal(t, "inertia", name)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestResolveConfigPresetWithOverride(t *testing.T) {
	cfg, name, err := resolveConfig(motionCmd(t, "--preset", "min-bounce", "--velocity", "-300"))
	require.NoError(t, err)
	assert.Equal(t, "min-bounce", name)
	assert.Equal(t, -300.0, cfg.Velocity)
	require.NotNil(t, cfg.Min)
	assert.Equal(t, 0.0, *cfg.Min)
	assert.Equal(t, 500.0, cfg.TimeConstant)

	// the preset table itself is untouched
	assert.Equal(t, -200.0, config.Presets["min-bounce"].Velocity)
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fling.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keyframe: 10\nvelocity: 400\nmax: 50\n"), 0644))

	cfg, name, err := resolveConfig(motionCmd(t, "--config", path, "--min", "-5"))
	require.NoError(t, err)
	assert.Equal(t, "fling", name)
	assert.Equal(t, 10.0, cfg.Keyframe)
	require.NotNil(t, cfg.Max)
	require.NotNil(t, cfg.Min)
	assert.Equal(t, 50.0, *cfg.Max)
	assert.Equal(t, -5.0, *cfg.Min)
}

func TestResolveConfigErrors(t *testing.T) {
	_, _, err := resolveConfig(motionCmd(t, "--preset", "nope"))
	assert.ErrorIs(t, err, dynamo.ErrUnknownPreset)

	_, _, err = resolveConfig(motionCmd(t, "--min", "10", "--max", "0"))
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)

	_, _, err = resolveConfig(motionCmd(t, "--modify-target", "round"))
	assert.Error(t, err)
}

func TestGenerateAndStore(t *testing.T) {
	cfg, _, err := resolveConfig(motionCmd(t, "--preset", "max-bounce"))
	require.NoError(t, err)

	model, tl, err := generate(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.42, tl.Seconds())
	assert.Equal(t, 200.0, tl.Final())
	assert.Equal(t, 200.0, model.Target())
	assert.Contains(t, tl.Metrics, "settle_ms")

	st := storage.New(t.TempDir(), nil)
	require.NoError(t, st.Init())
	runID, err := st.Save("max-bounce", cfg, model.GetParams(), tl)
	require.NoError(t, err)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, []float64{200, 200}, guides(meta.Config, meta.Final))
	assert.Contains(t, summary(runID, model, tl), "handoff")
}

func TestParseGrid(t *testing.T) {
	name, values, err := parseGrid("time_constant=100:300:3")
	require.NoError(t, err)
	assert.Equal(t, "time_constant", name)
	assert.Equal(t, []float64{100, 200, 300}, values)

	for _, bad := range []string{"power", "power=1:2", "power=a:2:3", "power=1:2:0"} {
		_, _, err := parseGrid(bad)
		assert.Error(t, err, bad)
	}
}

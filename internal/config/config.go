package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/inertia/internal/dynamo"
	"github.com/san-kum/inertia/internal/physics"
	"github.com/san-kum/inertia/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultKeyframe    = 0.0
	DefaultVelocity    = 0.0
	DefaultStep        = sim.DefaultStep
	DefaultMaxDuration = sim.DefaultMaxDuration
)

// Config is one inertia run as stored on disk.
type Config struct {
	Keyframe     float64  `yaml:"keyframe"`
	Velocity     float64  `yaml:"velocity"`
	Power        float64  `yaml:"power"`
	TimeConstant float64  `yaml:"time_constant"`
	RestDelta    float64  `yaml:"rest_delta"`
	RestSpeed    float64  `yaml:"rest_speed"`
	Min          *float64 `yaml:"min,omitempty"`
	Max          *float64 `yaml:"max,omitempty"`
	ModifyTarget string   `yaml:"modify_target,omitempty"`
	Step         float64  `yaml:"step"`
	MaxDuration  float64  `yaml:"max_duration"`
}

func DefaultConfig() *Config {
	return &Config{
		Keyframe:     DefaultKeyframe,
		Velocity:     DefaultVelocity,
		Power:        physics.DefaultPower,
		TimeConstant: physics.DefaultTimeConstant,
		RestDelta:    physics.DefaultRestDelta,
		RestSpeed:    physics.DefaultRestSpeed,
		Step:         DefaultStep,
		MaxDuration:  DefaultMaxDuration,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy; bounds are not shared.
func (c *Config) Clone() *Config {
	out := *c
	if c.Min != nil {
		v := *c.Min
		out.Min = &v
	}
	if c.Max != nil {
		v := *c.Max
		out.Max = &v
	}
	return &out
}

func (c *Config) Validate() error {
	inertia, err := c.Inertia()
	if err != nil {
		return err
	}
	if err := inertia.Validate(); err != nil {
		return err
	}
	if !(c.Step > 0) {
		return dynamo.ParamError("step", c.Step, "must be positive")
	}
	if !(c.MaxDuration >= c.Step) {
		return dynamo.ParamError("max_duration", c.MaxDuration, "must be at least one step")
	}
	return nil
}

// Inertia converts the stored form into generator input.
func (c *Config) Inertia() (physics.InertiaConfig, error) {
	modify, err := ParseModifyTarget(c.ModifyTarget)
	if err != nil {
		return physics.InertiaConfig{}, err
	}
	return physics.InertiaConfig{
		Keyframe:     c.Keyframe,
		Velocity:     c.Velocity,
		Power:        c.Power,
		TimeConstant: c.TimeConstant,
		RestDelta:    c.RestDelta,
		RestSpeed:    c.RestSpeed,
		ModifyTarget: modify,
		Min:          c.Min,
		Max:          c.Max,
	}, nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Step:        c.Step,
		MaxDuration: c.MaxDuration,
	}
}

// ParseModifyTarget builds a target transform from its config spelling:
//
//	none         keep the projected target
//	snap:<grid>  round to the nearest multiple of grid
//	scale:<k>    multiply the projected target by k
func ParseModifyTarget(spec string) (func(float64) float64, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(spec), ":")
	switch kind {
	case "", "none":
		return nil, nil
	case "snap", "scale":
	default:
		return nil, fmt.Errorf("config: unknown modify_target %q", spec)
	}

	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return nil, fmt.Errorf("config: modify_target %q: %w", spec, err)
	}

	if kind == "scale" {
		return func(target float64) float64 { return target * v }, nil
	}
	if !(v > 0) {
		return nil, dynamo.ParamError("snap", v, "grid must be positive")
	}
	return func(target float64) float64 { return math.Round(target/v) * v }, nil
}

// Set assigns one numeric parameter by its YAML name.
func (c *Config) Set(name string, v float64) error {
	switch name {
	case "keyframe":
		c.Keyframe = v
	case "velocity":
		c.Velocity = v
	case "power":
		c.Power = v
	case "time_constant":
		c.TimeConstant = v
	case "rest_delta":
		c.RestDelta = v
	case "rest_speed":
		c.RestSpeed = v
	case "min":
		c.Min = &v
	case "max":
		c.Max = &v
	case "step":
		c.Step = v
	case "max_duration":
		c.MaxDuration = v
	default:
		return fmt.Errorf("config: unknown parameter %q", name)
	}
	return nil
}

// Get reads one numeric parameter by its YAML name. Unset bounds read
// as zero.
func (c *Config) Get(name string) (float64, error) {
	switch name {
	case "keyframe":
		return c.Keyframe, nil
	case "velocity":
		return c.Velocity, nil
	case "power":
		return c.Power, nil
	case "time_constant":
		return c.TimeConstant, nil
	case "rest_delta":
		return c.RestDelta, nil
	case "rest_speed":
		return c.RestSpeed, nil
	case "min":
		return deref(c.Min), nil
	case "max":
		return deref(c.Max), nil
	case "step":
		return c.Step, nil
	case "max_duration":
		return c.MaxDuration, nil
	}
	return 0, fmt.Errorf("config: unknown parameter %q", name)
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

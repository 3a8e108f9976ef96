package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/inertia/internal/dynamo"
)

func ptr(v float64) *float64 { return &v }

var Presets = map[string]*Config{
	"rest": {
		Keyframe: 0, Power: 0.8, TimeConstant: 350, RestDelta: 0.5, RestSpeed: 1,
		Step: 10, MaxDuration: 20000,
	},
	"flick": {
		Keyframe: 100, Velocity: 200, Power: 1, TimeConstant: 500, RestDelta: 0.5, RestSpeed: 1,
		Step: 10, MaxDuration: 20000,
	},
	"min-bounce": {
		Keyframe: 100, Velocity: -200, Power: 1, TimeConstant: 500, RestDelta: 0.5, RestSpeed: 1,
		Min: ptr(0), Step: 10, MaxDuration: 20000,
	},
	"max-bounce": {
		Keyframe: 100, Velocity: 200, Power: 1, TimeConstant: 500, RestDelta: 0.5, RestSpeed: 1,
		Max: ptr(200), Step: 10, MaxDuration: 20000,
	},
	"snap-grid": {
		Keyframe: 0, Velocity: 650, Power: 0.8, TimeConstant: 350, RestDelta: 0.5, RestSpeed: 1,
		ModifyTarget: "snap:100", Step: 10, MaxDuration: 20000,
	},
	"scroll": {
		Keyframe: 0, Velocity: -2400, Power: 0.8, TimeConstant: 700, RestDelta: 0.5, RestSpeed: 1,
		Min: ptr(-1200), Max: ptr(0), Step: 16, MaxDuration: 20000,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

// LookupPreset is GetPreset with an error for unknown names.
func LookupPreset(name string) (*Config, error) {
	if cfg := GetPreset(name); cfg != nil {
		return cfg, nil
	}
	return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownPreset, name)
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

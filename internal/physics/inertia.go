package physics

import (
	"math"

	"github.com/san-kum/inertia/internal/dynamo"
)

const (
	DefaultPower        = 0.8
	DefaultTimeConstant = 350.0
	DefaultRestDelta    = 0.5
	DefaultRestSpeed    = 1.0
)

// InertiaConfig describes a decaying launch, optionally bounded.
// Zero Power, TimeConstant, RestDelta and RestSpeed select the defaults.
type InertiaConfig struct {
	Keyframe     float64
	Velocity     float64 // units per second
	Power        float64
	TimeConstant float64 // ms
	RestDelta    float64
	RestSpeed    float64 // units per second, boundary spring only
	ModifyTarget func(float64) float64
	Min          *float64
	Max          *float64
}

func DefaultInertiaConfig(keyframe float64) InertiaConfig {
	return InertiaConfig{
		Keyframe:     keyframe,
		Power:        DefaultPower,
		TimeConstant: DefaultTimeConstant,
		RestDelta:    DefaultRestDelta,
		RestSpeed:    DefaultRestSpeed,
	}
}

func (c InertiaConfig) withDefaults() InertiaConfig {
	if c.Power == 0 {
		c.Power = DefaultPower
	}
	if c.TimeConstant == 0 {
		c.TimeConstant = DefaultTimeConstant
	}
	if c.RestDelta == 0 {
		c.RestDelta = DefaultRestDelta
	}
	if c.RestSpeed == 0 {
		c.RestSpeed = DefaultRestSpeed
	}
	return c
}

// Validate reports parameters the generator cannot give a meaningful
// trajectory for. NewInertia does not call it.
func (c InertiaConfig) Validate() error {
	c = c.withDefaults()
	checks := []struct {
		name  string
		value float64
	}{
		{"power", c.Power},
		{"time_constant", c.TimeConstant},
		{"rest_delta", c.RestDelta},
		{"rest_speed", c.RestSpeed},
	}
	for _, p := range checks {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return dynamo.ParamError(p.name, p.value, "must be positive and finite")
		}
	}
	for _, p := range []struct {
		name  string
		value float64
	}{{"keyframe", c.Keyframe}, {"velocity", c.Velocity}} {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return dynamo.ParamError(p.name, p.value, "must be finite")
		}
	}
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		return dynamo.ParamError("min", *c.Min, "must not exceed max")
	}
	return nil
}

type phase int

const (
	phaseDecaying phase = iota
	phaseSpringBound
)

func (p phase) String() string {
	if p == phaseSpringBound {
		return "spring"
	}
	return "decay"
}

// handoff is the one boundary crossing of a trajectory, resolved at
// construction.
type handoff struct {
	at     float64
	bound  float64
	spring *Spring
}

// Inertia decays toward a projected target and, if that target lies past
// Min or Max, hands off to a spring at the instant the bound is reached.
// Only the first crossing is modelled.
type Inertia struct {
	cfg      InertiaConfig
	decay    *Decay
	handoff  *handoff
	duration float64
}

func NewInertia(cfg InertiaConfig) *Inertia {
	cfg = cfg.withDefaults()
	in := &Inertia{
		cfg:   cfg,
		decay: NewDecay(cfg.Keyframe, cfg.Velocity, cfg.Power, cfg.TimeConstant, cfg.RestDelta, cfg.ModifyTarget),
	}
	in.handoff = in.resolveHandoff()

	in.duration = in.decay.Duration()
	if in.handoff != nil {
		in.duration = in.handoff.at + in.handoff.spring.Duration()
	}
	return in
}

func (in *Inertia) isOutOfBounds(v float64) bool {
	return (in.cfg.Min != nil && v < *in.cfg.Min) || (in.cfg.Max != nil && v > *in.cfg.Max)
}

func (in *Inertia) nearestBoundary(v float64) float64 {
	if in.cfg.Min == nil {
		return *in.cfg.Max
	}
	if in.cfg.Max == nil {
		return *in.cfg.Min
	}
	if math.Abs(*in.cfg.Min-v) < math.Abs(*in.cfg.Max-v) {
		return *in.cfg.Min
	}
	return *in.cfg.Max
}

func (in *Inertia) resolveHandoff() *handoff {
	if in.cfg.Min == nil && in.cfg.Max == nil {
		return nil
	}

	d := in.decay
	if in.isOutOfBounds(d.Origin) {
		bound := in.nearestBoundary(d.Origin)
		return &handoff{
			at:     0,
			bound:  bound,
			spring: NewBounceSpring(d.Origin, bound, d.Speed(0), in.cfg.RestDelta, in.cfg.RestSpeed),
		}
	}

	var bound float64
	switch {
	case in.cfg.Min != nil && d.Target < *in.cfg.Min:
		bound = *in.cfg.Min
	case in.cfg.Max != nil && d.Target > *in.cfg.Max:
		bound = *in.cfg.Max
	default:
		return nil
	}

	at, ok := d.CrossingTime(bound)
	if !ok {
		return nil
	}
	return &handoff{
		at:     at,
		bound:  bound,
		spring: NewBounceSpring(bound, bound, d.Speed(at), in.cfg.RestDelta, in.cfg.RestSpeed),
	}
}

func (in *Inertia) phaseAt(t float64) phase {
	if in.handoff != nil && t >= in.handoff.at {
		return phaseSpringBound
	}
	return phaseDecaying
}

// Next samples the trajectory at t milliseconds after launch. Once at
// rest (t > 0) the value is exactly Target.
func (in *Inertia) Next(t float64) dynamo.Sample {
	done := in.AtRest(t)
	if t > 0 && done {
		return dynamo.Sample{Value: in.Target(), Velocity: 0, Done: true}
	}

	if in.phaseAt(t) == phaseSpringBound {
		pos, vel := in.handoff.spring.state(t - in.handoff.at)
		return dynamo.Sample{Value: pos, Velocity: vel, Done: done}
	}
	// Before a pending crossing the decay is never snapped to its own target.
	return dynamo.Sample{Value: in.decay.Position(t), Velocity: in.decay.Speed(t), Done: done}
}

func (in *Inertia) Duration() float64 {
	return in.duration
}

func (in *Inertia) AtRest(t float64) bool {
	return t >= in.duration
}

// Target is the value the trajectory comes to rest at.
func (in *Inertia) Target() float64 {
	if in.handoff != nil {
		return in.handoff.bound
	}
	return in.decay.Target
}

// ProjectedTarget is the decay asymptote after ModifyTarget, ignoring
// bounds.
func (in *Inertia) ProjectedTarget() float64 {
	return in.decay.Target
}

// CrossingTime reports when the trajectory switches to the boundary
// spring.
func (in *Inertia) CrossingTime() (float64, bool) {
	if in.handoff == nil {
		return 0, false
	}
	return in.handoff.at, true
}

// Phase names the motion law active at t.
func (in *Inertia) Phase(t float64) string {
	return in.phaseAt(t).String()
}

func (in *Inertia) GetParams() map[string]float64 {
	params := map[string]float64{
		"keyframe":      in.cfg.Keyframe,
		"velocity":      in.cfg.Velocity,
		"power":         in.cfg.Power,
		"time_constant": in.cfg.TimeConstant,
		"rest_delta":    in.cfg.RestDelta,
		"rest_speed":    in.cfg.RestSpeed,
		"target":        in.Target(),
		"duration_ms":   in.duration,
	}
	if in.cfg.Min != nil {
		params["min"] = *in.cfg.Min
	}
	if in.cfg.Max != nil {
		params["max"] = *in.cfg.Max
	}
	if in.handoff != nil {
		params["crossing_ms"] = in.handoff.at
		params["crossing_velocity"] = in.handoff.spring.Velocity
	}
	return params
}

package physics

import (
	"math"

	"github.com/san-kum/inertia/internal/dynamo"
)

// Decay is exponential, friction-like motion from Origin toward Target:
//
//	x(t) = Target - Amplitude * exp(-t/TimeConstant)
//
// Time is in milliseconds, velocity in units per second.
type Decay struct {
	Origin       float64
	Target       float64
	Amplitude    float64
	TimeConstant float64
	RestDelta    float64

	restTime float64
}

// NewDecay projects the resting target from the launch velocity. When
// modifyTarget changes the projection the amplitude is recomputed so the
// trajectory still starts at origin.
func NewDecay(origin, velocity, power, timeConstant, restDelta float64, modifyTarget func(float64) float64) *Decay {
	amplitude := power * velocity
	ideal := origin + amplitude
	target := ideal
	if modifyTarget != nil {
		target = modifyTarget(ideal)
	}
	if target != ideal {
		amplitude = target - origin
	}

	d := &Decay{
		Origin:       origin,
		Target:       target,
		Amplitude:    amplitude,
		TimeConstant: timeConstant,
		RestDelta:    restDelta,
	}
	d.restTime = d.solveRestTime()
	return d
}

// solveRestTime inverts |Amplitude * exp(-t/tau)| = RestDelta.
func (d *Decay) solveRestTime() float64 {
	t := d.TimeConstant * math.Log(math.Abs(d.Amplitude)/d.RestDelta)
	if t < 0 || math.IsInf(t, -1) {
		return 0
	}
	return t
}

// Delta is the signed distance still to travel at t.
func (d *Decay) Delta(t float64) float64 {
	return -d.Amplitude * math.Exp(-t/d.TimeConstant)
}

// Position is the unsnapped decay curve.
func (d *Decay) Position(t float64) float64 {
	if t <= 0 {
		return d.Origin
	}
	return d.Target + d.Delta(t)
}

// Speed is dx/dt in units per second.
func (d *Decay) Speed(t float64) float64 {
	return d.Amplitude / d.TimeConstant * math.Exp(-math.Max(t, 0)/d.TimeConstant) * 1000
}

// CrossingTime solves x(t) = bound. It reports false when the curve never
// reaches bound, which is the case unless bound lies between Origin and
// Target.
func (d *Decay) CrossingTime(bound float64) (float64, bool) {
	if d.Amplitude == 0 {
		return 0, false
	}
	ratio := (d.Target - bound) / d.Amplitude
	if !(ratio > 0 && ratio <= 1) {
		return 0, false
	}
	return -d.TimeConstant * math.Log(ratio), true
}

func (d *Decay) Duration() float64 {
	return d.restTime
}

func (d *Decay) AtRest(t float64) bool {
	return t >= d.restTime
}

// Next samples the decay. Once at rest (t > 0) the value is exactly Target.
func (d *Decay) Next(t float64) dynamo.Sample {
	done := d.AtRest(t)
	if t <= 0 {
		return dynamo.Sample{Value: d.Origin, Velocity: d.Speed(0), Done: done}
	}
	if done {
		return dynamo.Sample{Value: d.Target, Velocity: 0, Done: true}
	}
	return dynamo.Sample{Value: d.Position(t), Velocity: d.Speed(t)}
}

func (d *Decay) GetParams() map[string]float64 {
	return map[string]float64{
		"origin":        d.Origin,
		"target":        d.Target,
		"amplitude":     d.Amplitude,
		"time_constant": d.TimeConstant,
		"rest_delta":    d.RestDelta,
		"rest_time":     d.restTime,
	}
}

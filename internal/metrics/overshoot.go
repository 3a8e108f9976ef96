package metrics

import (
	"math"

	"github.com/san-kum/inertia/internal/dynamo"
)

// Overshoot is the furthest a trajectory travels past its resting value,
// measured in the direction of travel from the first sample.
type Overshoot struct {
	name    string
	target  float64
	origin  float64
	peak    float64
	samples int
}

func NewOvershoot(target float64) *Overshoot {
	return &Overshoot{
		name:   "overshoot",
		target: target,
	}
}

func (o *Overshoot) Name() string { return o.name }

func (o *Overshoot) Observe(s dynamo.Sample, t float64) {
	if o.samples == 0 {
		o.origin = s.Value
	}
	o.samples++

	dir := math.Copysign(1, o.target-o.origin)
	if past := (s.Value - o.target) * dir; past > o.peak {
		o.peak = past
	}
}

func (o *Overshoot) Value() float64 {
	return o.peak
}

func (o *Overshoot) Reset() {
	o.origin = 0
	o.peak = 0
	o.samples = 0
}

type PeakSpeed struct {
	name string
	peak float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) Observe(s dynamo.Sample, t float64) {
	p.peak = math.Max(p.peak, math.Abs(s.Velocity))
}

func (p *PeakSpeed) Value() float64 { return p.peak }

func (p *PeakSpeed) Reset() { p.peak = 0 }

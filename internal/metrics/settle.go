package metrics

import (
	"math"

	"github.com/san-kum/inertia/internal/dynamo"
)

// Settle is the last sampled time (ms) at which the value was outside
// tolerance of the target. Zero means the trajectory never left the band.
type Settle struct {
	name      string
	target    float64
	tolerance float64
	last      float64
}

func NewSettle(target, tolerance float64) *Settle {
	return &Settle{
		name:      "settle_ms",
		target:    target,
		tolerance: tolerance,
	}
}

func (s *Settle) Name() string {
	return s.name
}

func (s *Settle) Observe(sample dynamo.Sample, t float64) {
	if math.Abs(sample.Value-s.target) > s.tolerance {
		s.last = t
	}
}

func (s *Settle) Value() float64 {
	return s.last
}

func (s *Settle) Reset() {
	s.last = 0
}

// Defaults returns the metrics recorded for every stored run.
func Defaults(target, tolerance float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewOvershoot(target),
		NewPeakSpeed(),
		NewTravel(),
		NewSettle(target, tolerance),
	}
}

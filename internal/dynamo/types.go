package dynamo

import "math"

// Sample is the state of a motion model at one instant.
type Sample struct {
	Value    float64
	Velocity float64
	Done     bool
}

// IsValid reports whether value and velocity are finite.
func (s Sample) IsValid() bool {
	for _, v := range [...]float64{s.Value, s.Velocity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Model is an analytic motion model sampled at elapsed time t (ms).
type Model interface {
	// Next samples the model at t. It has no side effects.
	Next(t float64) Sample
	// Duration is the earliest t at which the model is at rest.
	Duration() float64
	// AtRest reports whether t is at or past Duration.
	AtRest(t float64) bool
}

// Targeted models expose the value they come to rest at.
type Targeted interface {
	Target() float64
}

// Phased models switch from one motion law to another at a fixed instant.
type Phased interface {
	CrossingTime() (float64, bool)
}

type Observer interface {
	OnSample(s Sample, t float64)
}

type Metric interface {
	Name() string
	Observe(s Sample, t float64)
	Value() float64
	Reset()
}

// MsToSeconds converts a millisecond time to seconds.
func MsToSeconds(ms float64) float64 {
	return ms / 1000
}

// RoundSeconds rounds a millisecond duration to seconds with two decimals,
// the precision durations are reported at.
func RoundSeconds(ms float64) float64 {
	return math.Round(ms/10) / 100
}

// Parameterized models report their resolved parameters, used for run
// metadata.
type Parameterized interface {
	GetParams() map[string]float64
}

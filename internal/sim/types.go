package sim

import "github.com/san-kum/inertia/internal/dynamo"

const (
	DefaultStep        = 10.0     // ms
	DefaultMaxDuration = 20_000.0 // ms
)

type Config struct {
	Step            float64 // ms between samples
	MaxDuration     float64 // ms; sampling stops here even if the model never rests
	ValidateSamples bool
}

func DefaultConfig() Config {
	return Config{
		Step:        DefaultStep,
		MaxDuration: DefaultMaxDuration,
	}
}

// Timeline is a pregenerated, fixed-step rendering of a model. The first
// value is the sample at t=0 and, when Done, the last value is the exact
// resting value.
type Timeline struct {
	Times      []float64
	Values     []float64
	Velocities []float64
	Duration   float64 // ms, time of the last sample
	Done       bool
	Metrics    map[string]float64
}

// Seconds is the duration as reported externally: seconds, two decimals.
func (tl *Timeline) Seconds() float64 {
	return dynamo.RoundSeconds(tl.Duration)
}

func (tl *Timeline) Len() int { return len(tl.Values) }

// Final is the last sampled value.
func (tl *Timeline) Final() float64 {
	if len(tl.Values) == 0 {
		return 0
	}
	return tl.Values[len(tl.Values)-1]
}

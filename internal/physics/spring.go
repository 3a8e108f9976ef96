package physics

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/san-kum/inertia/internal/dynamo"
)

const (
	// BounceStiffness and BounceDamping give the snap back to a crossed bound.
	BounceStiffness = 500.0
	BounceDamping   = 10.0

	DefaultSpringMass = 1.0

	// Upper limit for the envelope search of non-oscillating springs (ms).
	maxSpringRestTime = 20_000.0
)

// Spring is a damped harmonic oscillator released from Origin with
// Velocity (units/s) and settling at Target. Time is in milliseconds.
type Spring struct {
	Stiffness float64
	Damping   float64
	Mass      float64
	Origin    float64
	Target    float64
	Velocity  float64
	RestDelta float64
	RestSpeed float64

	omega    float64 // undamped angular frequency, rad/s
	zeta     float64 // damping ratio
	restTime float64
}

func NewSpring(stiffness, damping, mass, origin, target, velocity, restDelta, restSpeed float64) *Spring {
	s := &Spring{
		Stiffness: stiffness,
		Damping:   damping,
		Mass:      mass,
		Origin:    origin,
		Target:    target,
		Velocity:  velocity,
		RestDelta: restDelta,
		RestSpeed: restSpeed,
	}
	s.omega = math.Sqrt(stiffness / mass)
	s.zeta = damping / (2 * math.Sqrt(stiffness*mass))
	s.restTime = s.solveRestTime()
	return s
}

// NewBounceSpring builds the spring used when an inertia trajectory hits
// a bound.
func NewBounceSpring(origin, bound, velocity, restDelta, restSpeed float64) *Spring {
	return NewSpring(BounceStiffness, BounceDamping, DefaultSpringMass, origin, bound, velocity, restDelta, restSpeed)
}

// DampingRatio is zeta; below 1 the spring oscillates around Target.
func (s *Spring) DampingRatio() float64 {
	return s.zeta
}

// state solves the oscillator exactly over t milliseconds from the
// initial conditions.
func (s *Spring) state(t float64) (pos, vel float64) {
	if t <= 0 {
		return s.Origin, s.Velocity
	}
	step := harmonica.NewSpring(t/1000, s.omega, s.zeta)
	return step.Update(s.Origin, s.Velocity, s.Target)
}

// envelope returns, for elapsed seconds t, upper bounds on |x - Target|
// and |v|.
type envelope func(t float64) (disp, speed float64)

func (s *Spring) solveRestTime() float64 {
	x0 := s.Origin - s.Target
	v0 := s.Velocity
	w, z := s.omega, s.zeta

	if x0 == 0 && v0 == 0 {
		return 0
	}

	switch {
	case z < 1:
		// x(t) = e^(-z w t) (x0 cos(wd t) + (v0 + z w x0)/wd sin(wd t))
		wd := w * math.Sqrt(1-z*z)
		b := (v0 + z*w*x0) / wd
		d := (w*w*x0 + z*w*v0) / wd
		dispAmp := math.Hypot(x0, b)
		speedAmp := math.Hypot(v0, d)
		decay := z * w
		t := math.Max(
			math.Log(dispAmp/s.RestDelta)/decay,
			math.Log(speedAmp/s.RestSpeed)/decay,
		)
		if t < 0 || math.IsInf(t, -1) {
			return 0
		}
		return t * 1000

	case z == 1:
		// x(t) = (x0 + c t) e^(-w t), v(t) = (v0 - w c t) e^(-w t)
		c := v0 + w*x0
		env := func(t float64) (float64, float64) {
			e := math.Exp(-w * t)
			return (math.Abs(x0) + math.Abs(c)*t) * e, (math.Abs(v0) + w*math.Abs(c)*t) * e
		}
		// Both bounds are decreasing once t >= 1/w.
		return s.searchRestTime(env, 1/w)

	default:
		r := w * math.Sqrt(z*z-1)
		r1, r2 := -z*w+r, -z*w-r
		c1 := (v0 - r2*x0) / (r1 - r2)
		c2 := x0 - c1
		env := func(t float64) (float64, float64) {
			e1, e2 := math.Exp(r1*t), math.Exp(r2*t)
			return math.Abs(c1)*e1 + math.Abs(c2)*e2, math.Abs(r1*c1)*e1 + math.Abs(r2*c2)*e2
		}
		return s.searchRestTime(env, 0)
	}
}

// searchRestTime finds the earliest t >= from (seconds) at which env is
// within tolerance, assuming env is non-increasing past from, and returns
// it in milliseconds.
func (s *Spring) searchRestTime(env envelope, from float64) float64 {
	within := func(t float64) bool {
		disp, speed := env(t)
		return disp <= s.RestDelta && speed <= s.RestSpeed
	}

	lo := 0.0
	if within(lo) {
		return 0
	}
	lo = from
	if within(lo) {
		// The envelope may still rise before from; settling there is conservative.
		return lo * 1000
	}

	hi := math.Max(lo*2, 0.01)
	for !within(hi) {
		lo = hi
		hi *= 2
		if hi*1000 > maxSpringRestTime {
			return maxSpringRestTime
		}
	}

	for i := 0; i < 60 && hi-lo > 1e-9; i++ {
		mid := (lo + hi) / 2
		if within(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi * 1000
}

func (s *Spring) Duration() float64 {
	return s.restTime
}

func (s *Spring) AtRest(t float64) bool {
	return t >= s.restTime
}

// Next samples the spring. Once at rest the value is exactly Target.
func (s *Spring) Next(t float64) dynamo.Sample {
	if t > 0 && s.AtRest(t) {
		return dynamo.Sample{Value: s.Target, Velocity: 0, Done: true}
	}
	pos, vel := s.state(t)
	return dynamo.Sample{Value: pos, Velocity: vel, Done: s.AtRest(t)}
}

func (s *Spring) GetParams() map[string]float64 {
	return map[string]float64{
		"stiffness":     s.Stiffness,
		"damping":       s.Damping,
		"mass":          s.Mass,
		"damping_ratio": s.zeta,
		"origin":        s.Origin,
		"target":        s.Target,
		"velocity":      s.Velocity,
		"rest_time":     s.restTime,
	}
}

// Package physics provides the closed-form motion laws behind inertial
// scrolling and flicks.
//
//   - [Decay]: exponential approach to a projected resting value
//   - [Spring]: damped oscillator, sampled with harmonica
//   - [Inertia]: decay that hands off to a [Spring] when it crosses a bound
//
// All three implement [dynamo.Model]. Every quantity is derived at
// construction, so samples may be taken at any t, in any order, from
// any goroutine.
//
//	in := physics.NewInertia(physics.InertiaConfig{
//	    Keyframe: 100, Velocity: -200, Power: 1, TimeConstant: 500,
//	    Min: &zero,
//	})
//	s := in.Next(400) // spring phase, pulling back to 0
package physics

// Package dynamo provides the core primitives shared by the motion models.
//
// The package defines the contract every analytic motion model satisfies:
//
//   - [Sample]: value, velocity and completion at one instant
//   - [Model]: time-indexed sampling with an analytic rest time
//   - [Observer]: receives samples as a timeline is pregenerated
//   - [Metric]: accumulates a scalar over a pregenerated timeline
//
// Time is expressed in milliseconds as float64 so that analytically
// computed instants (boundary crossings, rest times) keep full precision.
// Velocities are expressed in value units per second.
//
// # Example
//
//	gen := physics.NewInertia(physics.DefaultInertiaConfig(100))
//	s := gen.Next(16)
//	fmt.Println(s.Value, s.Velocity, s.Done)
//
// # Thread Safety
//
// Models are immutable once constructed and may be sampled from any
// goroutine, in any order.
package dynamo

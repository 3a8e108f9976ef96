// Package analysis inspects pregenerated timelines.
//
//   - [NewPhasePortrait]: value against velocity, where a boundary bounce
//     shows up as a spiral into the bound
//   - [Crossings]: interpolated times a trajectory passes through a level
package analysis

// Package viz renders pregenerated motion timelines in the terminal.
//
// [Player] is a Bubble Tea model that plays a [sim.Timeline] back in
// real time: a Braille [Canvas] track shows the value moving between
// its guides, an asciigraph chart shows the trajectory so far.
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	R     - Restart from t = 0
//	[ ]   - Step one sample back/forward
//	+ -   - Playback speed
//	T     - Cycle color themes
//	Q     - Quit
package viz

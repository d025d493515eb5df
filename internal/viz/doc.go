// Package viz draws particle simulations in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one running scene
//   - [Canvas]: Braille-based pixel canvas, one dot per particle
//   - [Recorder]: GIF capture of canvas frames
//   - Theme selection with 4 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Single step while paused
//	R     - Rebuild the scene
//	+/-   - Steps per frame
//	K     - Kick every particle upward
//	V     - Reverse gravity
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz

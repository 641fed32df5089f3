// Package viz provides terminal-based visualization of single-candidate
// trajectories.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view stepping one candidate through its transport modules
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - [Camera]: perspective projection of the 3D trail onto the canvas
//
// # Key Bindings
//
//	Space - Pause/Resume propagation
//	R     - Restart from the source state (same seed)
//	X/Y/Z - Rotate the camera (shift reverses)
//	+/-   - Zoom
//	Q     - Quit
package viz

// Package viz provides the terminal renderer for gravitational simulations.
//
// The package implements a live view using the Bubble Tea framework:
//
//   - [Model]: steps a [dynamo.System] and draws it on a braille canvas
//   - [Picker]: scenario menu that opens the chosen scenario in a [Model]
//   - [Canvas]: braille pixel grid with per-cell colors
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	+/-   - Double or halve ticks per frame
//	O     - Toggle orbit trails
//	C     - Clear trails
//	T     - Cycle color themes
//	Q     - Quit
package viz

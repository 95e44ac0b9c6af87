// Package viz draws telemetry frames in the terminal.
//
//   - [Terminal]: writes asciigraph plots to any io.Writer on every redraw
//   - [Program]: a Bubble Tea TUI fed with frames from the plotter
//
// # Key Bindings
//
//	p - Pause/Resume drawing (capture continues)
//	s - Toggle compact sparkline view
//	t - Cycle color themes
//	q - Stop the capture and quit
package viz

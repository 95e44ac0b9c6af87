// Package telemetry renders streamed servo channels live.
//
// A [Plotter] consumes a [Source] on a single goroutine. Each sample is
// pushed into a fixed-capacity [Ring] and, when the refresh policy asks
// for it, an immutable [Frame] is handed to a [Surface]. The plotter owns
// one [Session] per Start/Stop pair.
//
// Redraws are driven by the Y range: with RefreshYLim set, a frame is only
// drawn when some auto-scaled channel has moved its min or max by more
// than Tolerance of the span seen at the previous draw.
package telemetry

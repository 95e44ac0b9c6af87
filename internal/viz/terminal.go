package viz

import (
	"fmt"
	"io"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/stabctl/internal/telemetry"
)

const clearScreen = "\033[H\033[2J"

var traceColors = []asciigraph.AnsiColor{
	asciigraph.DeepSkyBlue,
	asciigraph.Magenta,
	asciigraph.Gold,
	asciigraph.SpringGreen,
}

// Terminal redraws every channel with asciigraph on each frame.
type Terminal struct {
	w      io.Writer
	Height int
	Width  int
	// Clear repaints in place instead of scrolling.
	Clear bool
	Color bool
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, Height: 8, Width: 72}
}

func (t *Terminal) Draw(f telemetry.Frame) error {
	var b strings.Builder
	if t.Clear {
		b.WriteString(clearScreen)
	}
	fmt.Fprintf(&b, "seq %d  skipped: %d\n", f.Seq, f.Skipped)
	for i, s := range f.Series {
		b.WriteString(t.plot(i, s, f.Axis))
		b.WriteString("\n\n")
	}
	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *Terminal) plot(i int, s telemetry.Series, axis telemetry.AxisMode) string {
	if len(s.Y) == 0 {
		return string(s.Channel) + ": no data"
	}
	opts := []asciigraph.Option{
		asciigraph.Height(t.Height),
		asciigraph.Width(max(t.Width, 2)),
		asciigraph.LowerBound(s.YLim.Min),
		asciigraph.UpperBound(s.YLim.Max),
		asciigraph.Caption(seriesCaption(s, axis)),
	}
	if t.Color {
		opts = append(opts, asciigraph.SeriesColors(traceColors[i%len(traceColors)]))
	}
	return asciigraph.Plot(clampSeries(s.Y, s.YLim), opts...)
}

func (t *Terminal) Close() error {
	_, err := fmt.Fprintln(t.w)
	return err
}

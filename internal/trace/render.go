package trace

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/stabctl/internal/servo"
)

const (
	Title  = "Transfer Function"
	XLabel = "Frequency (Hz)"
	YLabel = "Power (dB)"
)

// Labels annotate a chart.
type Labels struct {
	Title, X, Y string
	Grid        bool
}

// DefaultLabels matches the transfer-function plots of the stabilizer.
func DefaultLabels() Labels {
	return Labels{Title: Title, X: XLabel, Y: YLabel, Grid: true}
}

// Chart draws one XY line to out.
type Chart interface {
	Draw(out string, xs, ys []float64, labels Labels) error
}

// Renderer turns a saved trace into a single chart.
type Renderer struct {
	Chart   Chart
	Labels  Labels
	FreqMin float64
	FreqMax float64

	// Preview, when set, also receives a terminal sketch of the trace.
	Preview io.Writer
}

func NewRenderer() *Renderer {
	return &Renderer{
		Chart:   NewPlotChart(),
		Labels:  DefaultLabels(),
		FreqMin: DefaultFreqMin,
		FreqMax: DefaultFreqMax,
	}
}

// Render loads path and draws it to out. An empty out only previews.
func (r *Renderer) Render(path, out string) (Trace, error) {
	tr, err := Load(path)
	if err != nil {
		return Trace{}, err
	}
	if r.FreqMin >= r.FreqMax {
		return Trace{}, servo.Configf("freq_min", "frequency range [%g, %g] is empty", r.FreqMin, r.FreqMax)
	}
	xs := FrequencyAxis(r.FreqMin, r.FreqMax, tr.Len())

	if out != "" && r.Chart != nil {
		if err := r.Chart.Draw(out, xs, tr.Values, r.Labels); err != nil {
			return Trace{}, fmt.Errorf("trace: draw %s: %w", out, err)
		}
	}
	if r.Preview != nil {
		if err := WritePreview(r.Preview, tr, r.Labels.Title); err != nil {
			return Trace{}, err
		}
	}
	return tr, nil
}

// WritePreview sketches the trace with asciigraph.
func WritePreview(w io.Writer, tr Trace, caption string) error {
	width := min(max(len(tr.Values), 2), 72)
	graph := asciigraph.Plot(tr.Values,
		asciigraph.Height(12),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
	_, err := fmt.Fprintln(w, graph)
	return err
}

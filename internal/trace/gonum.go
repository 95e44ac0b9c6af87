package trace

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotChart draws with gonum/plot. The output format follows the file
// extension (png, svg, pdf, ...).
type PlotChart struct {
	Width, Height vg.Length
	LineWidth     vg.Length
}

func NewPlotChart() *PlotChart {
	return &PlotChart{Width: 8 * vg.Inch, Height: 5 * vg.Inch, LineWidth: vg.Points(1.5)}
}

func (c *PlotChart) Draw(out string, xs, ys []float64, labels Labels) error {
	if len(xs) != len(ys) || len(xs) == 0 {
		return fmt.Errorf("plot data invalid: %d x values, %d y values", len(xs), len(ys))
	}
	p := plot.New()
	p.Title.Text = labels.Title
	p.X.Label.Text = labels.X
	p.Y.Label.Text = labels.Y
	if labels.Grid {
		p.Add(plotter.NewGrid())
	}

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = c.LineWidth
	p.Add(line)

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create directory: %w", err)
		}
	}
	return p.Save(c.Width, c.Height, out)
}

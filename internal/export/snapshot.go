// Package export writes telemetry frames to image files.
package export

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/san-kum/stabctl/internal/telemetry"
)

var seriesColors = []drawing.Color{
	chart.ColorBlue,
	chart.ColorRed,
	chart.ColorGreen,
	chart.ColorOrange,
}

// Snapshot rewrites one image of the latest frame on every redraw. A
// ".svg" path produces SVG, anything else PNG.
type Snapshot struct {
	Path          string
	Width, Height int

	frames int
}

func NewSnapshot(path string) *Snapshot {
	return &Snapshot{Path: path, Width: 1024, Height: 480}
}

// Frames is how many frames have been written.
func (s *Snapshot) Frames() int { return s.frames }

func (s *Snapshot) Draw(f telemetry.Frame) error {
	ch, ok := buildChart(f)
	if !ok {
		return nil
	}
	ch.Width, ch.Height = s.Width, s.Height

	provider := chart.PNG
	if strings.EqualFold(filepath.Ext(s.Path), ".svg") {
		provider = chart.SVG
	}
	var buf bytes.Buffer
	if err := ch.Render(provider, &buf); err != nil {
		return fmt.Errorf("export: render snapshot: %w", err)
	}
	if err := writeAtomic(s.Path, buf.Bytes()); err != nil {
		return err
	}
	s.frames++
	return nil
}

func (s *Snapshot) Close() error { return nil }

// buildChart lays every series of f onto one chart. It reports false
// while there are not yet two distinct X values to span.
func buildChart(f telemetry.Frame) (chart.Chart, bool) {
	xr := telemetry.Limits{Min: math.Inf(1), Max: math.Inf(-1)}
	yr := xr
	series := make([]chart.Series, 0, len(f.Series))
	for i, s := range f.Series {
		if len(s.X) < 2 {
			continue
		}
		xr.Min, xr.Max = math.Min(xr.Min, s.XLim.Min), math.Max(xr.Max, s.XLim.Max)
		yr.Min, yr.Max = math.Min(yr.Min, s.YLim.Min), math.Max(yr.Max, s.YLim.Max)
		col := seriesColors[i%len(seriesColors)]
		series = append(series, chart.ContinuousSeries{
			Name:    string(s.Channel),
			XValues: s.X,
			YValues: s.Y,
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 1.5},
		})
	}
	if len(series) == 0 || !(xr.Max > xr.Min) {
		return chart.Chart{}, false
	}
	if yr.Max <= yr.Min {
		yr.Min, yr.Max = yr.Min-1, yr.Max+1
	}

	ch := chart.Chart{
		Title:      fmt.Sprintf("seq %d  skipped %d", f.Seq, f.Skipped),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  f.Axis.String(),
			Range: &chart.ContinuousRange{Min: xr.Min, Max: xr.Max},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: yr.Min, Max: yr.Max},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch, true
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("export: write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("export: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

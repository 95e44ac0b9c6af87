package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/stabctl/internal/telemetry"
)

type styles struct {
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	warning lipgloss.Style
	help    lipgloss.Style
	panel   lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		value:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		running: lipgloss.NewStyle().Bold(true).Foreground(t.Running),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Paused),
		warning: lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		help:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
	}
}

// SparklineChart renders a one-line sketch of values scaled to lim.
func SparklineChart(values []float64, lim telemetry.Limits, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	rng := lim.Span()
	if rng <= 0 {
		rng = 1
	}
	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lim.Min) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)
		b.WriteRune(chars[idx])
	}
	return b.String()
}

// seriesCaption describes one channel for the plot caption.
func seriesCaption(s telemetry.Series, axis telemetry.AxisMode) string {
	last := 0.0
	if len(s.Y) > 0 {
		last = s.Y[len(s.Y)-1]
	}
	return fmt.Sprintf("%s  last=%.4g  y=[%.4g, %.4g]  %s=[%.4g, %.4g]",
		s.Channel, last, s.YLim.Min, s.YLim.Max, axis, s.XLim.Min, s.XLim.Max)
}

// clampSeries pins y into lim on a copy. asciigraph bounds only widen the
// axis, so out of range samples would otherwise stretch a fixed ylim.
func clampSeries(y []float64, lim telemetry.Limits) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = min(max(v, lim.Min), lim.Max)
	}
	return out
}

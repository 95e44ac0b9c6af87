package telemetry

import "math"

const spanEpsilon = 1e-9

// LimitChange is the larger of the min and max shifts from last to cur,
// relative to the span of last. A degenerate span is floored so a flat
// trace that starts moving still registers.
func LimitChange(last, cur Limits) float64 {
	scale := math.Max(math.Abs(last.Min), math.Abs(last.Max))
	span := math.Max(last.Max-last.Min, spanEpsilon*math.Max(1, scale))
	d := math.Max(math.Abs(cur.Min-last.Min), math.Abs(cur.Max-last.Max))
	return d / span
}

// refresher decides when a frame is worth drawing.
type refresher struct {
	enabled   bool
	tolerance float64
	drawn     bool
	last      []Limits
}

func newRefresher(cfg PlotConfig) *refresher {
	return &refresher{
		enabled:   cfg.RefreshYLim,
		tolerance: cfg.Tolerance,
		last:      make([]Limits, len(cfg.Channels)),
	}
}

// due reports whether cur warrants a redraw. auto marks the channels
// whose Y range follows the data.
func (r *refresher) due(cur []Limits, auto []bool) bool {
	if !r.drawn || !r.enabled {
		return true
	}
	for i, l := range cur {
		if !auto[i] {
			continue
		}
		if LimitChange(r.last[i], l) > r.tolerance {
			return true
		}
	}
	return false
}

func (r *refresher) drew(cur []Limits) {
	r.drawn = true
	copy(r.last, cur)
}

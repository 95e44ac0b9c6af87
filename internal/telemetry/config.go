package telemetry

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/stabctl/internal/servo"
)

// AxisMode selects what the X axis shows.
type AxisMode int

const (
	TimeMS AxisMode = iota
	SampleIndex
	Frequency
)

func (m AxisMode) String() string {
	switch m {
	case TimeMS:
		return "time_ms"
	case SampleIndex:
		return "index"
	case Frequency:
		return "frequency"
	default:
		return fmt.Sprintf("axis(%d)", int(m))
	}
}

// ParseAxisMode accepts time_ms, index and frequency, plus a few aliases.
func ParseAxisMode(s string) (AxisMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "time_ms", "time", "ms":
		return TimeMS, nil
	case "index", "sample", "samples", "sample_index":
		return SampleIndex, nil
	case "frequency", "freq", "hz":
		return Frequency, nil
	}
	return 0, servo.Configf("xtype", "unknown axis %q", s)
}

// Limits is an axis range. Auto limits are recomputed from the data.
type Limits struct {
	Min, Max float64
	Auto     bool
}

func AutoLimits() Limits { return Limits{Auto: true} }

func Fixed(min, max float64) Limits { return Limits{Min: min, Max: max} }

func (l Limits) Span() float64 { return l.Max - l.Min }

func (l Limits) String() string {
	if l.Auto {
		return "auto"
	}
	return fmt.Sprintf("[%g, %g]", l.Min, l.Max)
}

func (l Limits) validate(key string) error {
	if l.Auto {
		return nil
	}
	if math.IsNaN(l.Min) || math.IsNaN(l.Max) {
		return servo.Configf(key, "limits must be numbers, got %v", l)
	}
	if l.Min > l.Max {
		return servo.Configf(key, "min %g > max %g", l.Min, l.Max)
	}
	return nil
}

// LimitSet holds axis limits for the configured channels. An empty set is
// auto everywhere, a single entry applies to every channel, otherwise
// there is one entry per channel.
type LimitSet []Limits

// For returns the limits of the i-th channel.
func (s LimitSet) For(i int) Limits {
	switch len(s) {
	case 0:
		return AutoLimits()
	case 1:
		return s[0]
	}
	if i < 0 || i >= len(s) {
		return AutoLimits()
	}
	return s[i]
}

func (s LimitSet) validate(key string, channels int) error {
	if len(s) > 1 && len(s) != channels {
		return servo.Configf(key, "got %d limit pairs for %d channels", len(s), channels)
	}
	for _, l := range s {
		if err := l.validate(key); err != nil {
			return err
		}
	}
	return nil
}

// FrequencyRange is the span mapped onto the X axis in Frequency mode.
type FrequencyRange struct {
	Lo, Hi float64
}

const (
	DefaultFreqMin = 10.0
	DefaultFreqMax = 20000.0
)

func DefaultFrequencyRange() FrequencyRange {
	return FrequencyRange{Lo: DefaultFreqMin, Hi: DefaultFreqMax}
}

// PlotConfig is everything the plotter needs for one session.
type PlotConfig struct {
	Channels []servo.Channel
	XAxis    AxisMode
	XLim     LimitSet
	YLim     LimitSet

	// Tolerance is the fractional Y-range change, in [0,1], that
	// triggers a redraw when RefreshYLim is set.
	Tolerance   float64
	RefreshYLim bool

	// Window is the ring capacity in samples, normally the resolved
	// frame count.
	Window     int
	Decimation int
	Frequency  FrequencyRange
}

// Validate checks the configuration on its own, before any source is
// consulted.
func (c PlotConfig) Validate() error {
	if len(c.Channels) == 0 {
		return servo.Configf("plots", "no channels selected")
	}
	seen := make(map[servo.Channel]bool, len(c.Channels))
	for _, ch := range c.Channels {
		if seen[ch] {
			return servo.Configf("plots", "channel %s listed twice", ch)
		}
		seen[ch] = true
	}
	if math.IsNaN(c.Tolerance) || c.Tolerance < 0 || c.Tolerance > 1 {
		return servo.Configf("tolerance", "must be within [0, 1], got %g", c.Tolerance)
	}
	if c.Window <= 0 {
		return servo.Configf("stream_request_length", "plot window must hold at least one sample")
	}
	if c.Decimation < 0 {
		return servo.Configf("stream_decimation", "must be >= 0, got %d", c.Decimation)
	}
	if c.XAxis < TimeMS || c.XAxis > Frequency {
		return servo.Configf("xtype", "unknown axis %v", c.XAxis)
	}
	if c.XAxis == Frequency {
		f := c.Frequency
		if math.IsNaN(f.Lo) || math.IsNaN(f.Hi) || math.IsInf(f.Lo, 0) || math.IsInf(f.Hi, 0) || f.Lo >= f.Hi {
			return servo.Configf("freq_min", "frequency range [%g, %g] is empty", f.Lo, f.Hi)
		}
	}
	if err := c.XLim.validate("xlim", len(c.Channels)); err != nil {
		return err
	}
	return c.YLim.validate("ylim", len(c.Channels))
}

func (c PlotConfig) decimation() int {
	if c.Decimation < 1 {
		return 1
	}
	return c.Decimation
}

// requireChannels reports the first configured channel missing from have.
func (c PlotConfig) requireChannels(have []servo.Channel) error {
	set := make(map[servo.Channel]bool, len(have))
	for _, ch := range have {
		set[ch] = true
	}
	for _, ch := range c.Channels {
		if !set[ch] {
			return servo.Configf("plots", "source does not provide channel %s", ch)
		}
	}
	return nil
}

package telemetry

import (
	"errors"

	"github.com/san-kum/stabctl/internal/servo"
)

// Series is one channel of a Frame. Limits are always resolved, never auto.
type Series struct {
	Channel servo.Channel
	X, Y    []float64
	XLim    Limits
	YLim    Limits
}

// Frame is an immutable snapshot handed to surfaces.
type Frame struct {
	Session string
	Seq     uint64
	Axis    AxisMode
	Series  []Series
	Skipped uint64
}

// Surface draws frames. Draw is only ever called from the plotter's
// goroutine.
type Surface interface {
	Draw(Frame) error
	Close() error
}

// Multi fans frames out to several surfaces.
type Multi []Surface

func (m Multi) Draw(f Frame) error {
	var errs []error
	for _, s := range m {
		if err := s.Draw(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every frame.
type Discard struct{}

func (Discard) Draw(Frame) error { return nil }
func (Discard) Close() error     { return nil }

// buildFrame copies the plotted part of the ring into a new Frame.
func buildFrame(cfg PlotConfig, r *Ring, yLims []Limits) Frame {
	idx := r.plotted(cfg.decimation())
	xs := xAxis(cfg, r, idx)

	f := Frame{Axis: cfg.XAxis, Series: make([]Series, len(cfg.Channels))}
	if r.n > 0 {
		f.Seq = r.seq[r.slot(r.n-1)]
	}
	for c, ch := range cfg.Channels {
		col := r.column(ch)
		ys := make([]float64, len(idx))
		for k, i := range idx {
			ys[k] = r.values[col][r.slot(i)]
		}
		x := make([]float64, len(xs))
		copy(x, xs)

		xl := cfg.XLim.For(c)
		if xl.Auto && len(x) > 0 {
			xl = Fixed(x[0], x[len(x)-1])
		}
		f.Series[c] = Series{Channel: ch, X: x, Y: ys, XLim: xl, YLim: yLims[c]}
	}
	return f
}

func xAxis(cfg PlotConfig, r *Ring, idx []int) []float64 {
	switch cfg.XAxis {
	case SampleIndex:
		xs := make([]float64, len(idx))
		for k, i := range idx {
			xs[k] = float64(r.seq[r.slot(i)])
		}
		return xs
	case Frequency:
		return servo.Linspace(cfg.Frequency.Lo, cfg.Frequency.Hi, len(idx))
	default:
		xs := make([]float64, len(idx))
		if r.n == 0 {
			return xs
		}
		t0 := r.at[r.slot(0)]
		for k, i := range idx {
			xs[k] = float64(r.at[r.slot(i)]-t0) / 1e6
		}
		return xs
	}
}

// Package metrics scores a stream of samples: how hard the controller
// works and how well the loop holds lock.
package metrics

import (
	"math"

	"github.com/san-kum/stabctl/internal/servo"
)

// Metric accumulates over samples. Samples without the watched channel
// are ignored.
type Metric interface {
	Name() string
	Observe(s servo.Sample)
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded with every capture.
func Defaults(lo, hi float64) []Metric {
	return []Metric{
		NewRMS(servo.ErrDemod),
		NewControlEffort(servo.CtrlDac),
		NewSaturation(servo.CtrlDac, lo, hi),
	}
}

// Collect evaluates ms into a name -> value map.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// RMS is the root mean square of one channel, typically the error.
type RMS struct {
	name    string
	channel servo.Channel
	sumSq   float64
	samples int
}

func NewRMS(ch servo.Channel) *RMS {
	return &RMS{name: "rms_" + string(ch), channel: ch}
}

func (r *RMS) Name() string { return r.name }

func (r *RMS) Observe(s servo.Sample) {
	v, ok := s.Value(r.channel)
	if !ok {
		return
	}
	r.sumSq += v * v
	r.samples++
}

func (r *RMS) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return math.Sqrt(r.sumSq / float64(r.samples))
}

func (r *RMS) Reset() {
	r.sumSq = 0
	r.samples = 0
}

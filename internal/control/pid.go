package control

import (
	"math"

	"github.com/san-kum/stabctl/internal/servo"
)

// Bounds is the execution-time output stage: y = clamp(filter + Offset, Min, Max).
// The zero value clamps every output to 0; use Unbounded for pass-through.
type Bounds struct {
	Offset float64
	Min    float64
	Max    float64
}

// Unbounded passes every output through.
func Unbounded() Bounds {
	return Bounds{Min: math.Inf(-1), Max: math.Inf(1)}
}

// Spec describes a PID controller running once per SampleInterval seconds.
type Spec struct {
	Kp             float64
	Ki             float64
	Kd             float64
	SampleInterval float64
	Output         Bounds
}

// Coefficients of one second-order section. A[0] is always 1.
type Coefficients struct {
	B [3]float64
	A [3]float64
}

// Identity returns pass-through coefficients.
func Identity() Coefficients {
	return Coefficients{B: [3]float64{1, 0, 0}, A: [3]float64{1, 0, 0}}
}

// Taps returns the five-tap device layout [b0 b1 b2 -a1 -a2].
func (c Coefficients) Taps() [5]float64 {
	return [5]float64{c.B[0], c.B[1], c.B[2], -c.A[1], -c.A[2]}
}

// IsIdentity reports whether c passes its input through unchanged.
func (c Coefficients) IsIdentity() bool {
	return c == Identity()
}

// HasIntegrator reports whether c carries the integral pole at z = 1.
func (c Coefficients) HasIntegrator() bool {
	return c.A[1] == -1
}

// UpdateInterval is the controller period when one update runs per batch.
func UpdateInterval(samplingFreq float64, batchSize int) float64 {
	if samplingFreq <= 0 || batchSize <= 0 {
		return 0
	}
	return float64(batchSize) / samplingFreq
}

// Derive maps spec onto IIR coefficients. It is a pure function: identical
// specs yield bit-identical coefficients.
func Derive(spec Spec) (Coefficients, error) {
	if err := spec.Validate(); err != nil {
		return Coefficients{}, err
	}

	kp, ki, kd := spec.Kp, spec.Ki, spec.Kd
	if kp == 0 && ki == 0 && kd == 0 {
		return Identity(), nil
	}

	t := spec.SampleInterval
	d := kd / t

	var c Coefficients
	c.A[0] = 1
	if ki == 0 {
		c.B[0] = kp + d
		c.B[1] = -d
		return c, nil
	}

	c.B[0] = kp + ki*t + d
	c.B[1] = -(kp + 2*d)
	c.B[2] = d
	c.A[1] = -1
	return c, nil
}

// Validate checks the spec without deriving anything.
func (s Spec) Validate() error {
	if math.IsNaN(s.SampleInterval) || math.IsInf(s.SampleInterval, 0) || s.SampleInterval <= 0 {
		return servo.InvalidParameter("sample_interval", s.SampleInterval, "must be a finite value > 0")
	}
	finite := []struct {
		name string
		v    float64
	}{{"kp", s.Kp}, {"ki", s.Ki}, {"kd", s.Kd}, {"y_offset", s.Output.Offset}}
	for _, p := range finite {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) {
			return servo.InvalidParameter(p.name, p.v, "must be finite")
		}
	}
	if math.IsNaN(s.Output.Min) || math.IsNaN(s.Output.Max) {
		return servo.InvalidParameter("y_min", s.Output.Min, "bounds must not be NaN")
	}
	if s.Output.Min > s.Output.Max {
		return servo.InvalidParameter("y_min", s.Output.Min, "must not exceed y_max")
	}
	return nil
}

// Params returns the tunable parameters by name.
func (s Spec) Params() map[string]float64 {
	return map[string]float64{
		"Kp":       s.Kp,
		"Ki":       s.Ki,
		"Kd":       s.Kd,
		"y_offset": s.Output.Offset,
		"y_min":    s.Output.Min,
		"y_max":    s.Output.Max,
	}
}

// With returns a copy of s with one parameter changed. The copy must be
// derived again before use.
func (s Spec) With(name string, value float64) (Spec, error) {
	switch name {
	case "Kp":
		s.Kp = value
	case "Ki":
		s.Ki = value
	case "Kd":
		s.Kd = value
	case "y_offset":
		s.Output.Offset = value
	case "y_min":
		s.Output.Min = value
	case "y_max":
		s.Output.Max = value
	default:
		return s, servo.InvalidParameter(name, value, "unknown controller parameter")
	}
	return s, nil
}

package control

import "math"

// Filter evaluates Coefficients sample by sample. Not safe for concurrent use.
type Filter struct {
	ba     Coefficients
	bounds Bounds
	x      [2]float64
	y      [2]float64
}

func NewFilter(ba Coefficients, bounds Bounds) *Filter {
	return &Filter{ba: ba, bounds: bounds}
}

// Update feeds one input and returns the clamped output. The clamped value,
// less the offset, is what enters the feedback history, so the integrator
// cannot wind up past the rails and the offset is not integrated.
func (f *Filter) Update(x float64) float64 {
	b, a := f.ba.B, f.ba.A
	y := b[0]*x + b[1]*f.x[0] + b[2]*f.x[1] - a[1]*f.y[0] - a[2]*f.y[1]
	out := clamp(y+f.bounds.Offset, f.bounds.Min, f.bounds.Max)

	f.x[1], f.x[0] = f.x[0], x
	f.y[1], f.y[0] = f.y[0], out-f.bounds.Offset
	return out
}

// SetBounds swaps the output stage without touching the coefficients.
func (f *Filter) SetBounds(b Bounds) {
	f.bounds = b
}

func (f *Filter) Coefficients() Coefficients { return f.ba }

func (f *Filter) Reset() {
	f.x = [2]float64{}
	f.y = [2]float64{}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

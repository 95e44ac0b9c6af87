// Package control synthesizes and executes the stabilizer's loop filter.
//
// A PID controller is described by a [Spec] (gains, update interval and
// output bounds). [Derive] maps it onto a second-order IIR section:
//
//   - [Coefficients]: numerator/denominator taps, device layout via Taps
//   - [Filter]: direct-form-I evaluation with offset and output clamp
//
// # Discretization
//
// Derive uses the backward-difference rule s = (1 - z^-1)/T. The integral
// pole sits at z = 1 and is omitted entirely when Ki is zero; the
// derivative is a first difference scaled by 1/T.
//
// # Usage
//
//	spec := control.Spec{Kp: -0.1, Ki: -100, Kd: -2e-5, SampleInterval: control.UpdateInterval(fs, 8)}
//	ba, err := control.Derive(spec)
//	f := control.NewFilter(ba, spec.Output)
//	y := f.Update(x)
//
// Output bounds are applied by the Filter after each evaluation and are
// never folded into the taps.
package control

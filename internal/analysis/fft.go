package analysis

import (
	"errors"
	"io"
	"math"
	"math/cmplx"
	"strconv"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// powerFloor keeps silent bins finite in dB.
const powerFloor = 1e-20

var ErrTooShort = errors.New("analysis: need at least two samples")

// Spectrum is a one-sided power spectrum.
type Spectrum struct {
	Freqs []float64
	DB    []float64
}

// PowerSpectrumDB removes the mean, applies a Hann window and returns
// |X|^2/N in dB for bins 0..N/2. fs is the sample rate in Hz.
func PowerSpectrumDB(data []float64, fs float64) (Spectrum, error) {
	n := len(data)
	if n < 2 {
		return Spectrum{}, ErrTooShort
	}
	if fs <= 0 || math.IsNaN(fs) || math.IsInf(fs, 0) {
		return Spectrum{}, errors.New("analysis: sample rate must be > 0")
	}

	x := make([]float64, n)
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)
	for i, v := range data {
		x[i] = v - mean
	}
	window.Apply(x, window.Hann)

	bins := fft.FFTReal(x)
	half := n/2 + 1
	spec := Spectrum{Freqs: make([]float64, half), DB: make([]float64, half)}
	for k := 0; k < half; k++ {
		p := math.Pow(cmplx.Abs(bins[k]), 2) / float64(n)
		spec.Freqs[k] = float64(k) * fs / float64(n)
		spec.DB[k] = 10 * math.Log10(math.Max(p, powerFloor))
	}
	return spec, nil
}

// Peak returns the index of the strongest bin, skipping DC.
func (s Spectrum) Peak() int {
	best := -1
	for k := 1; k < len(s.DB); k++ {
		if best < 0 || s.DB[k] > s.DB[best] {
			best = k
		}
	}
	return best
}

// Band returns the part of s within [lo, hi] Hz.
func (s Spectrum) Band(lo, hi float64) Spectrum {
	var out Spectrum
	for k, f := range s.Freqs {
		if f >= lo && f <= hi {
			out.Freqs = append(out.Freqs, f)
			out.DB = append(out.DB, s.DB[k])
		}
	}
	return out
}

// WriteColumn writes one value per line.
func WriteColumn(w io.Writer, values []float64) error {
	buf := make([]byte, 0, 32)
	for _, v := range values {
		buf = strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

package analysis

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func tone(n int, fs, f float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2*math.Pi*f*float64(i)/fs) + 3
	}
	return x
}

func TestPowerSpectrumPeak(t *testing.T) {
	const fs, n = 1000.0, 1000
	spec, err := PowerSpectrumDB(tone(n, fs, 50), fs)
	if err != nil {
		t.Fatal(err)
	}
	if len(spec.DB) != n/2+1 {
		t.Fatalf("expected %d bins, got %d", n/2+1, len(spec.DB))
	}
	if k := spec.Peak(); spec.Freqs[k] != 50 {
		t.Errorf("expected peak at 50 Hz, got %v Hz", spec.Freqs[k])
	}
	if spec.DB[0] > spec.DB[spec.Peak()]-20 {
		t.Errorf("DC should be removed, got %v dB", spec.DB[0])
	}
}

func TestPowerSpectrumNonPowerOfTwo(t *testing.T) {
	spec, err := PowerSpectrumDB(tone(300, 300, 30), 300)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Freqs[spec.Peak()] != 30 {
		t.Errorf("expected peak at 30 Hz, got %v", spec.Freqs[spec.Peak()])
	}
}

func TestPowerSpectrumSilence(t *testing.T) {
	spec, err := PowerSpectrumDB(make([]float64, 16), 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range spec.DB {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			t.Fatalf("silent input should stay finite, got %v", v)
		}
	}
}

func TestPowerSpectrumErrors(t *testing.T) {
	if _, err := PowerSpectrumDB([]float64{1}, 10); err != ErrTooShort {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
	if _, err := PowerSpectrumDB([]float64{1, 2}, 0); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func TestBand(t *testing.T) {
	s := Spectrum{Freqs: []float64{0, 10, 20, 30}, DB: []float64{1, 2, 3, 4}}
	b := s.Band(10, 20)
	if len(b.DB) != 2 || b.DB[0] != 2 || b.DB[1] != 3 {
		t.Errorf("unexpected band %+v", b)
	}
}

func TestWriteColumn(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteColumn(&buf, []float64{-10, -5.5, 0}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Split(strings.TrimSpace(buf.String()), "\n"); len(got) != 3 || got[1] != "-5.5" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

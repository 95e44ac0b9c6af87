package device

import (
	"math"
	"strings"

	"github.com/san-kum/stabctl/internal/servo"
)

type Waveform int

const (
	None Waveform = iota
	Triangle
	Sine
	Square
)

func (w Waveform) String() string {
	switch w {
	case Triangle:
		return "triangle"
	case Sine:
		return "sine"
	case Square:
		return "square"
	default:
		return "none"
	}
}

func ParseWaveform(s string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "triangle":
		return Triangle, nil
	case "sine":
		return Sine, nil
	case "square":
		return Square, nil
	}
	return None, servo.Configf("sig_ctrl_signal", "unknown waveform %q", s)
}

// Signal is the modulation generator.
type Signal struct {
	Waveform  Waveform
	Frequency float64
	Amplitude float64
	Offset    float64
}

// At evaluates the signal t seconds after start.
func (s Signal) At(t float64) float64 {
	if s.Waveform == None || s.Frequency <= 0 {
		return s.Offset
	}
	phase := 2 * math.Pi * s.Frequency * t
	var v float64
	switch s.Waveform {
	case Triangle:
		v = 2 / math.Pi * math.Asin(math.Sin(phase))
	case Sine:
		v = math.Sin(phase)
	case Square:
		v = 1
		if math.Sin(phase) < 0 {
			v = -1
		}
	}
	return s.Offset + s.Amplitude*v
}

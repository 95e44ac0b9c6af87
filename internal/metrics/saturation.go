package metrics

import "github.com/san-kum/stabctl/internal/servo"

// Saturation is the fraction of samples where the output sits on a rail.
type Saturation struct {
	name    string
	channel servo.Channel
	lo, hi  float64
	railed  int
	samples int
}

func NewSaturation(ch servo.Channel, lo, hi float64) *Saturation {
	return &Saturation{
		name:    "saturation",
		channel: ch,
		lo:      lo,
		hi:      hi,
	}
}

func (s *Saturation) Name() string {
	return s.name
}

func (s *Saturation) Observe(smp servo.Sample) {
	v, ok := smp.Value(s.channel)
	if !ok {
		return
	}
	s.samples++
	if v <= s.lo || v >= s.hi {
		s.railed++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.railed) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.railed = 0
	s.samples = 0
}

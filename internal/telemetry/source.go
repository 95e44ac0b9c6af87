package telemetry

import (
	"context"
	"io"

	"github.com/san-kum/stabctl/internal/servo"
)

// Source delivers samples in order. Next blocks until a sample is
// available, ctx is done, or the stream ends with io.EOF.
type Source interface {
	Channels() []servo.Channel
	Next(ctx context.Context) (servo.Sample, error)
}

// SliceSource replays a fixed list of samples and then reports io.EOF.
type SliceSource struct {
	channels []servo.Channel
	samples  []servo.Sample
	pos      int
}

func NewSliceSource(channels []servo.Channel, samples []servo.Sample) *SliceSource {
	return &SliceSource{channels: channels, samples: samples}
}

func (s *SliceSource) Channels() []servo.Channel { return s.channels }

func (s *SliceSource) Next(ctx context.Context) (servo.Sample, error) {
	if err := ctx.Err(); err != nil {
		return servo.Sample{}, err
	}
	if s.pos >= len(s.samples) {
		return servo.Sample{}, io.EOF
	}
	smp := s.samples[s.pos]
	s.pos++
	return smp, nil
}

// ChanSource reads samples from a channel. A closed channel ends the
// stream.
type ChanSource struct {
	channels []servo.Channel
	in       <-chan servo.Sample
}

func NewChanSource(channels []servo.Channel, in <-chan servo.Sample) *ChanSource {
	return &ChanSource{channels: channels, in: in}
}

func (s *ChanSource) Channels() []servo.Channel { return s.channels }

func (s *ChanSource) Next(ctx context.Context) (servo.Sample, error) {
	select {
	case <-ctx.Done():
		return servo.Sample{}, ctx.Err()
	case smp, ok := <-s.in:
		if !ok {
			return servo.Sample{}, io.EOF
		}
		return smp, nil
	}
}

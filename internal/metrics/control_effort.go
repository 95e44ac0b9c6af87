package metrics

import (
	"math"

	"github.com/san-kum/stabctl/internal/servo"
)

type ControlEffort struct {
	name    string
	channel servo.Channel
	sum     float64
	samples int
}

func NewControlEffort(ch servo.Channel) *ControlEffort {
	return &ControlEffort{
		name:    "control_effort",
		channel: ch,
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(s servo.Sample) {
	v, ok := s.Value(c.channel)
	if !ok {
		return
	}
	c.sum += math.Abs(v)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

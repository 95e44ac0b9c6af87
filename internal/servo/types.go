package servo

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Channel identifies one telemetry stream of the stabilizer.
type Channel string

const (
	ErrMod   Channel = "ErrMod"
	Mod      Channel = "Mod"
	ErrDemod Channel = "ErrDemod"
	CtrlDac  Channel = "CtrlDac"
	Demod    Channel = "Demod"
	AdcIn0   Channel = "AdcIn0"
	AdcIn1   Channel = "AdcIn1"
	DacOut0  Channel = "DacOut0"
	DacOut1  Channel = "DacOut1"
)

var knownChannels = []Channel{ErrMod, Mod, ErrDemod, CtrlDac, Demod, AdcIn0, AdcIn1, DacOut0, DacOut1}

// KnownChannels returns every channel the console understands.
func KnownChannels() []Channel {
	out := make([]Channel, len(knownChannels))
	copy(out, knownChannels)
	return out
}

// ParseChannel resolves a channel name, case-insensitively.
func ParseChannel(name string) (Channel, error) {
	for _, c := range knownChannels {
		if strings.EqualFold(string(c), strings.TrimSpace(name)) {
			return c, nil
		}
	}
	return "", Configf("plots", "unknown channel %q (known: %v)", name, knownChannels)
}

func (c Channel) String() string { return string(c) }

// Sample is one timestamped vector of channel readings.
type Sample struct {
	Seq    uint64
	Time   time.Duration
	Values map[Channel]float64
}

// Value returns the reading for c and whether it is present and finite.
func (s Sample) Value(c Channel) (float64, bool) {
	v, ok := s.Values[c]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (s Sample) String() string {
	return fmt.Sprintf("sample{seq=%d t=%s n=%d}", s.Seq, s.Time, len(s.Values))
}

package telemetry

import (
	"math"
	"time"

	"github.com/san-kum/stabctl/internal/servo"
)

// Ring keeps the most recent samples for a fixed channel list. Once full,
// each push evicts the oldest entry.
type Ring struct {
	channels []servo.Channel
	seq      []uint64
	at       []time.Duration
	values   [][]float64 // per channel
	head     int         // next write slot
	n        int
}

func NewRing(channels []servo.Channel, capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	r := &Ring{
		channels: append([]servo.Channel(nil), channels...),
		seq:      make([]uint64, capacity),
		at:       make([]time.Duration, capacity),
		values:   make([][]float64, len(channels)),
	}
	for i := range r.values {
		r.values[i] = make([]float64, capacity)
	}
	return r
}

func (r *Ring) Cap() int { return len(r.seq) }

func (r *Ring) Len() int { return r.n }

// Push stores s. Channels missing from s are stored as NaN.
func (r *Ring) Push(s servo.Sample) {
	r.seq[r.head] = s.Seq
	r.at[r.head] = s.Time
	for i, ch := range r.channels {
		v, ok := s.Value(ch)
		if !ok {
			v = math.NaN()
		}
		r.values[i][r.head] = v
	}
	r.head = (r.head + 1) % len(r.seq)
	if r.n < len(r.seq) {
		r.n++
	}
}

// slot maps a logical index, 0 being the oldest entry, to storage.
func (r *Ring) slot(i int) int {
	start := r.head - r.n
	if start < 0 {
		start += len(r.seq)
	}
	return (start + i) % len(r.seq)
}

// Values returns the buffered readings of c, oldest first.
func (r *Ring) Values(c servo.Channel) []float64 {
	col := r.column(c)
	if col < 0 {
		return nil
	}
	out := make([]float64, r.n)
	for i := range out {
		out[i] = r.values[col][r.slot(i)]
	}
	return out
}

// Seqs returns the buffered sequence numbers, oldest first.
func (r *Ring) Seqs() []uint64 {
	out := make([]uint64, r.n)
	for i := range out {
		out[i] = r.seq[r.slot(i)]
	}
	return out
}

func (r *Ring) Reset() {
	r.head, r.n = 0, 0
}

func (r *Ring) column(c servo.Channel) int {
	for i, ch := range r.channels {
		if ch == c {
			return i
		}
	}
	return -1
}

// plotted returns the logical indices drawn at decimation d, counted back
// from the newest entry and returned oldest first.
func (r *Ring) plotted(d int) []int {
	if r.n == 0 {
		return nil
	}
	if d < 1 {
		d = 1
	}
	idx := make([]int, (r.n+d-1)/d)
	for k := range idx {
		idx[len(idx)-1-k] = r.n - 1 - k*d
	}
	return idx
}

package telemetry

import (
	"math"
	"testing"

	"github.com/san-kum/stabctl/internal/servo"
)

func TestRingEviction(t *testing.T) {
	r := NewRing([]servo.Channel{servo.ErrMod}, 3)
	for i := 0; i < 7; i++ {
		r.Push(servo.Sample{Seq: uint64(i), Values: map[servo.Channel]float64{servo.ErrMod: float64(i)}})
		if r.Len() > r.Cap() {
			t.Fatalf("len %d exceeds cap %d", r.Len(), r.Cap())
		}
	}
	got := r.Values(servo.ErrMod)
	want := []float64{4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if seqs := r.Seqs(); seqs[0] != 4 || seqs[2] != 6 {
		t.Errorf("unexpected seqs %v", seqs)
	}
}

func TestRingMissingValueIsNaN(t *testing.T) {
	r := NewRing([]servo.Channel{servo.ErrMod, servo.Mod}, 2)
	r.Push(servo.Sample{Values: map[servo.Channel]float64{servo.ErrMod: 1}})
	if v := r.Values(servo.Mod); !math.IsNaN(v[0]) {
		t.Errorf("expected NaN for missing channel, got %v", v[0])
	}
	if r.Values(servo.CtrlDac) != nil {
		t.Error("unknown channel should give nil")
	}
}

func TestRingPlottedIndices(t *testing.T) {
	r := NewRing([]servo.Channel{servo.ErrMod}, 10)
	for i := 0; i < 10; i++ {
		r.Push(servo.Sample{Values: map[servo.Channel]float64{servo.ErrMod: 0}})
	}
	got := r.plotted(3)
	want := []int{0, 3, 6, 9}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
	if n := len(r.plotted(1)); n != 10 {
		t.Errorf("decimation 1 should plot all entries, got %d", n)
	}
}

func TestLimitChange(t *testing.T) {
	tests := []struct {
		name      string
		last, cur Limits
		want      float64
	}{
		{"unchanged", Fixed(0, 1), Fixed(0, 1), 0},
		{"max grows", Fixed(0, 1), Fixed(0, 1.5), 0.5},
		{"min drops", Fixed(-2, 2), Fixed(-3, 2), 0.25},
		{"both move takes larger", Fixed(0, 10), Fixed(1, 13), 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LimitChange(tt.last, tt.cur); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	if got := LimitChange(Fixed(5, 5), Fixed(5, 6)); got < 1 {
		t.Errorf("flat trace starting to move should exceed any tolerance, got %v", got)
	}
}

func TestRefresherFirstAlwaysDraws(t *testing.T) {
	r := newRefresher(PlotConfig{Channels: []servo.Channel{servo.ErrMod}, RefreshYLim: true, Tolerance: 1})
	cur := []Limits{Fixed(0, 1)}
	if !r.due(cur, []bool{false}) {
		t.Error("first sample must draw")
	}
	r.drew(cur)
	if r.due([]Limits{Fixed(0, 100)}, []bool{false}) {
		t.Error("explicit limits must not trigger a redraw")
	}
}

func TestParseAxisMode(t *testing.T) {
	for in, want := range map[string]AxisMode{"time_ms": TimeMS, "": TimeMS, "index": SampleIndex, "Frequency": Frequency} {
		got, err := ParseAxisMode(in)
		if err != nil || got != want {
			t.Errorf("%q: expected %v, got %v (%v)", in, want, got, err)
		}
	}
	if _, err := ParseAxisMode("log"); err == nil {
		t.Error("expected error for unknown axis")
	}
}

package device

import (
	"context"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/stabctl/internal/control"
	"github.com/san-kum/stabctl/internal/servo"
	"github.com/san-kum/stabctl/internal/stream"
	"github.com/san-kum/stabctl/internal/telemetry"
)

// PlantConfig is a first-order plant x' = (G*u + d - x)/tau driven by the
// controller output u and a constant disturbance d.
type PlantConfig struct {
	Gain        float64
	TimeConst   float64
	Disturbance float64
	Setpoint    float64
	Noise       float64
}

func DefaultPlant() PlantConfig {
	return PlantConfig{Gain: -1, TimeConst: 1e-3, Disturbance: 0.5, Noise: 1e-3}
}

type SimConfig struct {
	SamplingFreq float64
	BatchSize    int
	Plant        PlantConfig
	Signal       Signal
	Seed         uint64
	// Limit stops the stream after this many frames; 0 streams until
	// the context ends.
	Limit int
	// Pace delays every batch by this much to mimic a live link.
	Pace time.Duration
}

var simChannels = []servo.Channel{
	servo.ErrMod, servo.Mod, servo.ErrDemod, servo.CtrlDac,
	servo.Demod, servo.AdcIn0, servo.DacOut0,
}

// Simulator closes the loop in software around the configured filter.
type Simulator struct {
	cfg    SimConfig
	logger zerolog.Logger

	mu     sync.Mutex
	filter *control.Filter
	res    stream.Resolved
}

func NewSimulator(cfg SimConfig, logger zerolog.Logger) *Simulator {
	if cfg.Plant.TimeConst <= 0 {
		cfg.Plant.TimeConst = DefaultPlant().TimeConst
	}
	return &Simulator{cfg: cfg, logger: logger}
}

func (s *Simulator) Name() string { return "sim" }

func (s *Simulator) Channels() []servo.Channel {
	return append([]servo.Channel(nil), simChannels...)
}

func (s *Simulator) Configure(ctx context.Context, ba control.Coefficients, out control.Bounds, res stream.Resolved) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.SamplingFreq <= 0 {
		return servo.InvalidParameter("sampling_freq", s.cfg.SamplingFreq, "must be > 0")
	}
	if s.cfg.BatchSize <= 0 {
		return servo.InvalidParameter("batch_size", s.cfg.BatchSize, "must be > 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = control.NewFilter(ba, out)
	s.res = res
	s.logger.Info().
		Floats64("taps", taps(ba)).
		Int("frames", res.Frames).
		Int("decimation", res.Decimation).
		Msg("filter configured")
	return nil
}

func (s *Simulator) OpenStream(ctx context.Context) (telemetry.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter == nil {
		return nil, ErrNotConfigured
	}
	s.filter.Reset()
	return &simStream{
		sim:    s,
		filter: s.filter,
		rng:    rand.New(rand.NewPCG(s.cfg.Seed, s.cfg.Seed^0x9e3779b97f4a7c15)),
		dt:     1 / s.cfg.SamplingFreq,
	}, nil
}

type simStream struct {
	sim    *Simulator
	filter *control.Filter
	rng    *rand.Rand
	dt     float64

	n int
	x float64
	u float64
}

func (st *simStream) Channels() []servo.Channel { return st.sim.Channels() }

func (st *simStream) Next(ctx context.Context) (servo.Sample, error) {
	if err := ctx.Err(); err != nil {
		return servo.Sample{}, err
	}
	cfg := st.sim.cfg
	if cfg.Limit > 0 && st.n >= cfg.Limit {
		return servo.Sample{}, io.EOF
	}
	if cfg.Pace > 0 && st.n%cfg.BatchSize == 0 && st.n > 0 {
		select {
		case <-ctx.Done():
			return servo.Sample{}, ctx.Err()
		case <-time.After(cfg.Pace):
		}
	}

	p := cfg.Plant
	t := float64(st.n) * st.dt
	mod := cfg.Signal.At(t)

	e := st.x - p.Setpoint + mod + p.Noise*st.rng.NormFloat64()
	if st.n%cfg.BatchSize == 0 {
		st.u = st.filter.Update(-e)
	}
	st.x += st.dt / p.TimeConst * (p.Gain*st.u + p.Disturbance - st.x)

	demod := e * mod
	smp := servo.Sample{
		Seq:  uint64(st.n),
		Time: time.Duration(t * float64(time.Second)),
		Values: map[servo.Channel]float64{
			servo.ErrMod:   e,
			servo.Mod:      mod,
			servo.ErrDemod: e - mod,
			servo.CtrlDac:  st.u,
			servo.Demod:    demod,
			servo.AdcIn0:   e,
			servo.DacOut0:  st.u,
		},
	}
	st.n++
	return smp, nil
}

func taps(ba control.Coefficients) []float64 {
	t := ba.Taps()
	return t[:]
}

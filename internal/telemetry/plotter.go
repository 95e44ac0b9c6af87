package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/san-kum/stabctl/internal/servo"
)

// State is the plotter lifecycle position.
type State int32

const (
	Idle State = iota
	Streaming
	Refreshing
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Refreshing:
		return "refreshing"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var (
	ErrStarted    = errors.New("telemetry: plotter already started")
	ErrNotStarted = errors.New("telemetry: plotter not started")
	ErrBusy       = errors.New("telemetry: plotter in use by another goroutine")
)

// Plotter streams samples from a Source onto a Surface. It is single use:
// once stopped it stays stopped.
//
// Start, Run and Ingest must not be called concurrently with each other.
// Stop may be called from any goroutine at any time.
type Plotter struct {
	surface Surface
	log     zerolog.Logger

	state   atomic.Int32
	active  atomic.Bool
	skipped atomic.Uint64

	halt    context.Context
	stop    context.CancelFunc
	release sync.Once

	src     Source
	session *Session
	yLims   []Limits
	auto    []bool
}

type Option func(*Plotter)

func WithLogger(l zerolog.Logger) Option {
	return func(p *Plotter) { p.log = l }
}

func NewPlotter(surface Surface, opts ...Option) *Plotter {
	if surface == nil {
		surface = Discard{}
	}
	p := &Plotter{surface: surface, log: zerolog.Nop()}
	p.halt, p.stop = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Plotter) State() State { return State(p.state.Load()) }

// Skipped is the number of malformed samples dropped so far.
func (p *Plotter) Skipped() uint64 { return p.skipped.Load() }

// Session is nil until Start has validated its configuration.
func (p *Plotter) Session() *Session {
	if p.State() == Idle {
		return nil
	}
	return p.session
}

// Start validates cfg against src, reads the first sample and draws it.
func (p *Plotter) Start(ctx context.Context, cfg PlotConfig, src Source) error {
	if !p.enter() {
		return ErrBusy
	}
	if p.State() != Idle {
		p.exit()
		return ErrStarted
	}
	if err := cfg.Validate(); err != nil {
		p.exit()
		return err
	}
	if err := cfg.requireChannels(src.Channels()); err != nil {
		p.exit()
		return err
	}

	p.src = src
	p.session = newSession(cfg, p.surface)
	p.yLims = make([]Limits, len(cfg.Channels))
	p.auto = make([]bool, len(cfg.Channels))
	for i := range cfg.Channels {
		p.auto[i] = cfg.YLim.For(i).Auto
	}
	p.log = p.log.With().Str("session", p.session.ID).Logger()
	p.state.Store(int32(Streaming))
	defer p.exit()

	ctx, cancel := p.bind(ctx)
	defer cancel()

	first, err := src.Next(ctx)
	if err != nil {
		p.Stop()
		if errors.Is(err, io.EOF) {
			return servo.Configf("plots", "source ended before the first sample")
		}
		return fmt.Errorf("telemetry: first sample: %w", err)
	}
	for _, ch := range cfg.Channels {
		if _, ok := first.Value(ch); !ok {
			p.Stop()
			return servo.Configf("plots", "first sample has no value for channel %s", ch)
		}
	}
	if err := p.ingest(first); err != nil {
		p.Stop()
		return err
	}
	p.log.Info().Strs("channels", channelNames(cfg.Channels)).Int("window", cfg.Window).
		Int("decimation", cfg.decimation()).Msg("plot session started")
	return nil
}

// Run consumes the source until it ends, ctx is cancelled or Stop is
// called. The source reaching io.EOF stops the plotter and returns nil.
func (p *Plotter) Run(ctx context.Context) error {
	if p.State() == Idle {
		return ErrNotStarted
	}
	if !p.enter() {
		return ErrBusy
	}
	defer p.exit()
	if p.State() == Stopped {
		return nil
	}

	ctx, cancel := p.bind(ctx)
	defer cancel()

	for {
		smp, err := p.src.Next(ctx)
		if err != nil {
			switch {
			case p.State() == Stopped:
				return nil
			case errors.Is(err, io.EOF):
				p.log.Info().Uint64("skipped", p.Skipped()).Msg("source exhausted")
				p.Stop()
				return nil
			case ctx.Err() != nil:
				p.Stop()
				return ctx.Err()
			}
			p.Stop()
			return fmt.Errorf("telemetry: read sample: %w", err)
		}
		if err := p.ingest(smp); err != nil && !errors.Is(err, servo.ErrSample) {
			p.Stop()
			return err
		}
	}
}

// Ingest pushes one sample outside of Run. A sample missing a configured
// channel is skipped and returned as a *servo.SampleError. After Stop it
// does nothing.
func (p *Plotter) Ingest(s servo.Sample) error {
	if p.State() == Idle {
		return ErrNotStarted
	}
	if !p.enter() {
		return ErrBusy
	}
	defer p.exit()
	return p.ingest(s)
}

// Stop ends the session. It never blocks and is safe to call repeatedly
// or from a signal handler.
func (p *Plotter) Stop() {
	for {
		s := State(p.state.Load())
		if s == Idle || s == Stopped {
			return
		}
		if p.state.CompareAndSwap(int32(s), int32(Stopped)) {
			break
		}
	}
	p.stop()
	if !p.active.Load() {
		p.close()
	}
}

func (p *Plotter) ingest(s servo.Sample) error {
	if p.State() == Stopped {
		return nil
	}
	sess := p.session
	cfg := sess.cfg
	for _, ch := range cfg.Channels {
		if _, ok := s.Value(ch); !ok {
			n := p.skipped.Add(1)
			err := &servo.SampleError{Seq: s.Seq, Channel: ch}
			p.log.Warn().Err(err).Uint64("skipped", n).Msg("dropping sample")
			return err
		}
	}

	sess.ring.Push(s)
	p.resolveYLimits(cfg, sess.ring)
	if !sess.refresh.due(p.yLims, p.auto) {
		return nil
	}

	if !p.state.CompareAndSwap(int32(Streaming), int32(Refreshing)) {
		return nil
	}
	frame := buildFrame(cfg, sess.ring, p.yLims)
	frame.Session = sess.ID
	frame.Skipped = p.Skipped()
	err := sess.surface.Draw(frame)
	p.state.CompareAndSwap(int32(Refreshing), int32(Streaming))
	if err != nil {
		return fmt.Errorf("telemetry: draw: %w", err)
	}
	sess.refresh.drew(p.yLims)
	return nil
}

// resolveYLimits fills p.yLims from every buffered entry, plotted or not,
// so a spike between decimated points still moves the auto limits.
func (p *Plotter) resolveYLimits(cfg PlotConfig, r *Ring) {
	for c, ch := range cfg.Channels {
		if l := cfg.YLim.For(c); !l.Auto {
			p.yLims[c] = l
			continue
		}
		col := r.column(ch)
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := range r.n {
			v := r.values[col][r.slot(i)]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		p.yLims[c] = Fixed(lo, hi)
	}
}

func (p *Plotter) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	unhook := context.AfterFunc(p.halt, cancel)
	return ctx, func() {
		unhook()
		cancel()
	}
}

func (p *Plotter) enter() bool { return p.active.CompareAndSwap(false, true) }

// exit hands the session to Stop, or releases it if Stop already ran.
func (p *Plotter) exit() {
	p.active.Store(false)
	if p.State() == Stopped {
		p.close()
	}
}

func (p *Plotter) close() {
	p.release.Do(func() {
		if p.session == nil {
			return
		}
		if err := p.session.close(); err != nil {
			p.log.Warn().Err(err).Msg("closing surface")
		}
		p.log.Info().Uint64("skipped", p.Skipped()).Msg("plot session stopped")
	})
}

func channelNames(chs []servo.Channel) []string {
	out := make([]string, len(chs))
	for i, c := range chs {
		out[i] = string(c)
	}
	return out
}

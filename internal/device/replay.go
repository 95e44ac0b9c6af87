package device

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/stabctl/internal/control"
	"github.com/san-kum/stabctl/internal/servo"
	"github.com/san-kum/stabctl/internal/storage"
	"github.com/san-kum/stabctl/internal/stream"
	"github.com/san-kum/stabctl/internal/telemetry"
)

// Replay streams a stored capture back. It accepts any configuration and
// ignores it; the recorded samples already carry the loop's response.
type Replay struct {
	store  *storage.Store
	runID  string
	pace   time.Duration
	logger zerolog.Logger

	meta       *storage.CaptureMetadata
	channels   []servo.Channel
	configured bool
}

func NewReplay(store *storage.Store, runID string, pace time.Duration, logger zerolog.Logger) (*Replay, error) {
	meta, err := store.Load(runID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}
	channels, err := meta.ChannelSet()
	if err != nil {
		return nil, err
	}
	return &Replay{store: store, runID: runID, pace: pace, logger: logger, meta: meta, channels: channels}, nil
}

func (r *Replay) Name() string { return "replay" }

func (r *Replay) Channels() []servo.Channel {
	return append([]servo.Channel(nil), r.channels...)
}

func (r *Replay) Metadata() storage.CaptureMetadata { return *r.meta }

func (r *Replay) Configure(ctx context.Context, ba control.Coefficients, _ control.Bounds, res stream.Resolved) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ba.Taps() != r.meta.Taps {
		r.logger.Warn().
			Str("run", r.runID).
			Floats64("recorded", r.meta.Taps[:]).
			Floats64("requested", taps(ba)).
			Msg("replay ignores requested coefficients")
	}
	r.configured = true
	return nil
}

func (r *Replay) OpenStream(ctx context.Context) (telemetry.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.configured {
		return nil, ErrNotConfigured
	}
	samples, err := r.store.LoadSamples(r.runID)
	if err != nil {
		return nil, err
	}
	src := telemetry.NewSliceSource(r.channels, samples)
	if r.pace <= 0 {
		return src, nil
	}
	return &pacedSource{Source: src, pace: r.pace}, nil
}

type pacedSource struct {
	telemetry.Source
	pace  time.Duration
	count int
}

func (p *pacedSource) Next(ctx context.Context) (servo.Sample, error) {
	if p.count > 0 {
		select {
		case <-ctx.Done():
			return servo.Sample{}, ctx.Err()
		case <-time.After(p.pace):
		}
	}
	p.count++
	return p.Source.Next(ctx)
}

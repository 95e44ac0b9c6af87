// Package experiment turns a configuration into a validated plan and
// runs it against a device.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/stabctl/internal/config"
	"github.com/san-kum/stabctl/internal/control"
	"github.com/san-kum/stabctl/internal/device"
	"github.com/san-kum/stabctl/internal/metrics"
	"github.com/san-kum/stabctl/internal/servo"
	"github.com/san-kum/stabctl/internal/storage"
	"github.com/san-kum/stabctl/internal/stream"
	"github.com/san-kum/stabctl/internal/telemetry"
)

// Plan is everything the device and plotter need, checked up front.
type Plan struct {
	Spec         control.Spec
	Coefficients control.Coefficients
	Request      stream.Request
	Stream       stream.Resolved
	Plot         telemetry.PlotConfig
	Signal       device.Signal
}

// Setup synthesizes the coefficients and negotiates the stream. Any error
// here means the device is never touched.
func Setup(cfg *config.Config) (Plan, error) {
	if err := cfg.Validate(); err != nil {
		return Plan{}, err
	}

	spec := cfg.ControllerSpec()
	ba, err := control.Derive(spec)
	if err != nil {
		return Plan{}, fmt.Errorf("synthesize: %w", err)
	}

	req, err := cfg.StreamRequest()
	if err != nil {
		return Plan{}, err
	}
	res, err := stream.Resolve(req)
	if err != nil {
		return Plan{}, fmt.Errorf("negotiate: %w", err)
	}

	plot, err := cfg.PlotConfig(res)
	if err != nil {
		return Plan{}, err
	}
	if err := plot.Validate(); err != nil {
		return Plan{}, err
	}

	wave, err := device.ParseWaveform(cfg.SigCtrlSignal)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Spec:         spec,
		Coefficients: ba,
		Request:      req,
		Stream:       res,
		Plot:         plot,
		Signal: device.Signal{
			Waveform:  wave,
			Frequency: cfg.SigCtrlFrequency,
			Amplitude: cfg.SigCtrlAmplitude,
			Offset:    cfg.SigCtrlOffset,
		},
	}, nil
}

type Experiment struct {
	plan   Plan
	dev    device.Device
	logger zerolog.Logger
}

func New(plan Plan, dev device.Device, logger zerolog.Logger) *Experiment {
	return &Experiment{plan: plan, dev: dev, logger: logger}
}

func (e *Experiment) Plan() Plan { return e.plan }

// Configure pushes the coefficients, output stage and frame count.
func (e *Experiment) Configure(ctx context.Context) error {
	if err := e.dev.Configure(ctx, e.plan.Coefficients, e.plan.Spec.Output, e.plan.Stream); err != nil {
		return fmt.Errorf("configure %s: %w", e.dev.Name(), err)
	}
	e.logger.Info().
		Str("device", e.dev.Name()).
		Int("frames", e.plan.Stream.Frames).
		Bool("integrator", e.plan.Coefficients.HasIntegrator()).
		Msg("device configured")
	return nil
}

// Run configures the device and plots its stream until the stream ends,
// ctx is cancelled or p is stopped.
func (e *Experiment) Run(ctx context.Context, p *telemetry.Plotter) error {
	if err := e.Configure(ctx); err != nil {
		return err
	}
	src, err := e.dev.OpenStream(ctx)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	if err := p.Start(ctx, e.plan.Plot, src); err != nil {
		return err
	}
	return p.Run(ctx)
}

// Capture configures the device and reads one resolved window, feeding
// every sample to ms. A stream shorter than the window is returned as is.
func (e *Experiment) Capture(ctx context.Context, ms ...metrics.Metric) (Capture, error) {
	if err := e.Configure(ctx); err != nil {
		return Capture{}, err
	}
	src, err := e.dev.OpenStream(ctx)
	if err != nil {
		return Capture{}, fmt.Errorf("open stream: %w", err)
	}

	c := Capture{
		Channels: src.Channels(),
		Samples:  make([]servo.Sample, 0, e.plan.Stream.Frames),
	}
	for len(c.Samples) < e.plan.Stream.Frames {
		smp, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Capture{}, fmt.Errorf("capture: %w", err)
		}
		for _, ch := range e.plan.Plot.Channels {
			if _, ok := smp.Value(ch); !ok {
				c.Skipped++
				break
			}
		}
		for _, m := range ms {
			m.Observe(smp)
		}
		c.Samples = append(c.Samples, smp)
	}
	return c, nil
}

// Capture is one window read from the device.
type Capture struct {
	Channels []servo.Channel
	Samples  []servo.Sample
	Skipped  uint64
}

// Evaluate captures one window and scores it.
func (e *Experiment) Evaluate(ctx context.Context, ms []metrics.Metric) (map[string]float64, error) {
	if _, err := e.Capture(ctx, ms...); err != nil {
		return nil, err
	}
	return metrics.Collect(ms), nil
}

// Record captures one window into st, scored with the default metrics,
// and returns the capture ID.
func (e *Experiment) Record(ctx context.Context, st *storage.Store) (string, error) {
	start := time.Now()
	out := e.plan.Spec.Output
	ms := metrics.Defaults(out.Min, out.Max)
	c, err := e.Capture(ctx, ms...)
	if err != nil {
		return "", err
	}

	meta := storage.CaptureMetadata{
		Device:       e.dev.Name(),
		Timestamp:    start,
		SamplingFreq: e.plan.Request.SamplingFreq,
		BatchSize:    e.plan.Request.BatchSize,
		Channels:     channelNames(c.Channels),
		Kp:           e.plan.Spec.Kp,
		Ki:           e.plan.Spec.Ki,
		Kd:           e.plan.Spec.Kd,
		Taps:         e.plan.Coefficients.Taps(),
		Skipped:      c.Skipped,
		Duration:     time.Since(start),
		Metrics:      metrics.Collect(ms),
	}
	id, err := st.Save(meta, c.Samples)
	if err != nil {
		return "", err
	}
	e.logger.Info().Str("run", id).Int("frames", len(c.Samples)).Uint64("skipped", c.Skipped).Msg("capture saved")
	return id, nil
}

func channelNames(chs []servo.Channel) []string {
	out := make([]string, len(chs))
	for i, c := range chs {
		out[i] = string(c)
	}
	return out
}

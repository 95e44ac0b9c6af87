package telemetry_test

import (
	"context"
	"math"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/stabctl/internal/servo"
	"github.com/san-kum/stabctl/internal/telemetry"
)

type recorder struct {
	mu     sync.Mutex
	frames []telemetry.Frame
	closed int
}

func (r *recorder) Draw(f telemetry.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return nil
}

func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

func (r *recorder) Draws() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recorder) Closed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *recorder) Last() telemetry.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

var channels = []servo.Channel{servo.ErrMod, servo.Mod}

func sample(seq uint64, errMod, mod float64) servo.Sample {
	return servo.Sample{
		Seq:    seq,
		Time:   time.Duration(seq) * time.Millisecond,
		Values: map[servo.Channel]float64{servo.ErrMod: errMod, servo.Mod: mod},
	}
}

func ramp(n int) []servo.Sample {
	out := make([]servo.Sample, n)
	for i := range out {
		out[i] = sample(uint64(i), float64(i), -float64(i))
	}
	return out
}

func baseConfig() telemetry.PlotConfig {
	return telemetry.PlotConfig{
		Channels:    channels,
		XAxis:       telemetry.SampleIndex,
		Tolerance:   0.2,
		RefreshYLim: true,
		Window:      16,
		Decimation:  1,
	}
}

var _ = Describe("Plotter", func() {
	var (
		ctx     context.Context
		surface *recorder
		plotter *telemetry.Plotter
	)

	BeforeEach(func() {
		ctx = context.Background()
		surface = &recorder{}
		plotter = telemetry.NewPlotter(surface)
	})

	Describe("Start", func() {
		DescribeTable("rejects bad configuration before reading",
			func(mutate func(*telemetry.PlotConfig), key string) {
				cfg := baseConfig()
				mutate(&cfg)
				src := telemetry.NewSliceSource(channels, ramp(3))

				err := plotter.Start(ctx, cfg, src)
				Expect(err).To(MatchError(servo.ErrConfig))
				var cerr *servo.ConfigError
				Expect(err).To(BeAssignableToTypeOf(cerr))
				Expect(err.(*servo.ConfigError).Key).To(Equal(key))
				Expect(plotter.State()).To(Equal(telemetry.Idle))
				Expect(surface.Draws()).To(BeZero())
			},
			Entry("no channels", func(c *telemetry.PlotConfig) { c.Channels = nil }, "plots"),
			Entry("duplicate channel", func(c *telemetry.PlotConfig) {
				c.Channels = []servo.Channel{servo.Mod, servo.Mod}
			}, "plots"),
			Entry("tolerance above one", func(c *telemetry.PlotConfig) { c.Tolerance = 1.5 }, "tolerance"),
			Entry("negative tolerance", func(c *telemetry.PlotConfig) { c.Tolerance = -0.1 }, "tolerance"),
			Entry("inverted ylim", func(c *telemetry.PlotConfig) {
				c.YLim = telemetry.LimitSet{telemetry.Fixed(2, -2)}
			}, "ylim"),
			Entry("inverted xlim", func(c *telemetry.PlotConfig) {
				c.XLim = telemetry.LimitSet{telemetry.AutoLimits(), telemetry.Fixed(5, 1)}
			}, "xlim"),
			Entry("wrong number of limit pairs", func(c *telemetry.PlotConfig) {
				c.YLim = telemetry.LimitSet{telemetry.Fixed(0, 1), telemetry.Fixed(0, 1), telemetry.Fixed(0, 1)}
			}, "ylim"),
			Entry("channel not offered by source", func(c *telemetry.PlotConfig) {
				c.Channels = []servo.Channel{servo.ErrMod, servo.CtrlDac}
			}, "plots"),
		)

		It("rejects a first sample missing a channel", func() {
			first := servo.Sample{Seq: 0, Values: map[servo.Channel]float64{servo.ErrMod: 1}}
			src := telemetry.NewSliceSource(channels, []servo.Sample{first})

			err := plotter.Start(ctx, baseConfig(), src)
			Expect(err).To(MatchError(servo.ErrConfig))
			Expect(plotter.State()).To(Equal(telemetry.Stopped))
			Expect(surface.Draws()).To(BeZero())
			Expect(surface.Closed()).To(Equal(1))
		})

		It("draws the first sample and opens a session", func() {
			src := telemetry.NewSliceSource(channels, ramp(1))
			Expect(plotter.Start(ctx, baseConfig(), src)).To(Succeed())

			Expect(plotter.State()).To(Equal(telemetry.Streaming))
			Expect(surface.Draws()).To(Equal(1))
			Expect(plotter.Session()).NotTo(BeNil())
			Expect(plotter.Session().ID).NotTo(BeEmpty())
			Expect(surface.Last().Session).To(Equal(plotter.Session().ID))
		})

		It("cannot be started twice", func() {
			Expect(plotter.Start(ctx, baseConfig(), telemetry.NewSliceSource(channels, ramp(2)))).To(Succeed())
			err := plotter.Start(ctx, baseConfig(), telemetry.NewSliceSource(channels, ramp(2)))
			Expect(err).To(MatchError(telemetry.ErrStarted))
		})
	})

	Describe("refresh policy", func() {
		start := func(cfg telemetry.PlotConfig) {
			src := telemetry.NewSliceSource(channels, []servo.Sample{sample(0, 0, 0)})
			Expect(plotter.Start(ctx, cfg, src)).To(Succeed())
		}

		It("redraws every sample when ylim refresh is off", func() {
			cfg := baseConfig()
			cfg.RefreshYLim = false
			start(cfg)
			for i := 1; i <= 5; i++ {
				Expect(plotter.Ingest(sample(uint64(i), 0, 0))).To(Succeed())
			}
			Expect(surface.Draws()).To(Equal(6))
		})

		It("redraws only when the range moves past the tolerance", func() {
			start(baseConfig())

			Expect(plotter.Ingest(sample(1, 1, 0))).To(Succeed())
			Expect(surface.Draws()).To(Equal(2), "range grew from a single point")

			Expect(plotter.Ingest(sample(2, 1.05, 0))).To(Succeed())
			Expect(surface.Draws()).To(Equal(2), "5% change is under tolerance")

			Expect(plotter.Ingest(sample(3, 1.5, 0))).To(Succeed())
			Expect(surface.Draws()).To(Equal(3), "50% change is over tolerance")

			Expect(surface.Last().Series[0].YLim).To(Equal(telemetry.Fixed(0, 1.5)))
		})

		It("ignores channels with explicit limits", func() {
			cfg := baseConfig()
			cfg.YLim = telemetry.LimitSet{telemetry.Fixed(-2, 2)}
			start(cfg)

			for i := 1; i <= 5; i++ {
				Expect(plotter.Ingest(sample(uint64(i), float64(i*100), -float64(i*100)))).To(Succeed())
			}
			Expect(surface.Draws()).To(Equal(1))
			Expect(surface.Last().Series[1].YLim).To(Equal(telemetry.Fixed(-2, 2)))
		})

		It("measures the range over samples skipped by decimation", func() {
			cfg := baseConfig()
			cfg.Decimation = 2
			start(cfg)

			Expect(plotter.Ingest(sample(1, 10, 0))).To(Succeed())
			Expect(surface.Draws()).To(Equal(2))
			Expect(surface.Last().Series[0].YLim).To(Equal(telemetry.Fixed(0, 10)))

			// sample 1 is no longer plotted but still bounds the range
			Expect(plotter.Ingest(sample(2, 0, 0))).To(Succeed())
			Expect(surface.Draws()).To(Equal(2))
		})
	})

	Describe("frames", func() {
		It("keeps only the window and evicts the oldest", func() {
			cfg := baseConfig()
			cfg.Window = 3
			cfg.RefreshYLim = false
			Expect(plotter.Start(ctx, cfg, telemetry.NewSliceSource(channels, ramp(1)))).To(Succeed())
			for _, s := range ramp(6)[1:] {
				Expect(plotter.Ingest(s)).To(Succeed())
			}

			last := surface.Last()
			Expect(last.Seq).To(Equal(uint64(5)))
			Expect(last.Series[0].Y).To(Equal([]float64{3, 4, 5}))
			Expect(last.Series[0].X).To(Equal([]float64{3, 4, 5}))
			Expect(last.Series[0].XLim).To(Equal(telemetry.Fixed(3, 5)))
		})

		It("decimates counting back from the newest sample", func() {
			cfg := baseConfig()
			cfg.Decimation = 2
			cfg.RefreshYLim = false
			Expect(plotter.Start(ctx, cfg, telemetry.NewSliceSource(channels, ramp(1)))).To(Succeed())
			for _, s := range ramp(5)[1:] {
				Expect(plotter.Ingest(s)).To(Succeed())
			}
			Expect(surface.Last().Series[0].Y).To(Equal([]float64{0, 2, 4}))
		})

		It("maps time to milliseconds since the oldest buffered sample", func() {
			cfg := baseConfig()
			cfg.XAxis = telemetry.TimeMS
			cfg.Window = 2
			cfg.RefreshYLim = false
			Expect(plotter.Start(ctx, cfg, telemetry.NewSliceSource(channels, ramp(1)))).To(Succeed())
			Expect(plotter.Ingest(sample(4, 0, 0))).To(Succeed())
			Expect(plotter.Ingest(sample(7, 0, 0))).To(Succeed())

			Expect(surface.Last().Series[0].X).To(Equal([]float64{0, 3}))
		})

		It("spreads the frequency range over the plotted points", func() {
			cfg := baseConfig()
			cfg.XAxis = telemetry.Frequency
			cfg.Frequency = telemetry.FrequencyRange{Lo: 10, Hi: 30}
			cfg.RefreshYLim = false
			Expect(plotter.Start(ctx, cfg, telemetry.NewSliceSource(channels, ramp(1)))).To(Succeed())
			Expect(plotter.Ingest(sample(1, 0, 0))).To(Succeed())
			Expect(plotter.Ingest(sample(2, 0, 0))).To(Succeed())

			Expect(surface.Last().Series[1].X).To(Equal([]float64{10, 20, 30}))
		})
	})

	Describe("malformed samples", func() {
		It("skips them and keeps streaming", func() {
			cfg := baseConfig()
			cfg.RefreshYLim = false
			Expect(plotter.Start(ctx, cfg, telemetry.NewSliceSource(channels, ramp(1)))).To(Succeed())

			bad := servo.Sample{Seq: 1, Values: map[servo.Channel]float64{servo.Mod: 1}}
			err := plotter.Ingest(bad)
			Expect(err).To(MatchError(servo.ErrSample))
			Expect(plotter.Skipped()).To(Equal(uint64(1)))
			Expect(surface.Draws()).To(Equal(1))

			Expect(plotter.Ingest(sample(2, 2, 2))).To(Succeed())
			Expect(surface.Draws()).To(Equal(2))
			Expect(surface.Last().Skipped).To(Equal(uint64(1)))
			Expect(plotter.State()).To(Equal(telemetry.Streaming))
		})

		It("treats NaN readings as missing", func() {
			Expect(plotter.Start(ctx, baseConfig(), telemetry.NewSliceSource(channels, ramp(1)))).To(Succeed())
			Expect(plotter.Ingest(sample(1, 0, math.NaN()))).To(MatchError(servo.ErrSample))
			Expect(plotter.Skipped()).To(Equal(uint64(1)))
		})
	})

	Describe("lifecycle", func() {
		It("stops at the end of the source", func() {
			src := telemetry.NewSliceSource(channels, ramp(10))
			Expect(plotter.Start(ctx, baseConfig(), src)).To(Succeed())
			Expect(plotter.Run(ctx)).To(Succeed())

			Expect(plotter.State()).To(Equal(telemetry.Stopped))
			Expect(surface.Closed()).To(Equal(1))
		})

		It("is unblocked by Stop from another goroutine", func() {
			in := make(chan servo.Sample, 1)
			in <- sample(0, 0, 0)
			src := telemetry.NewChanSource(channels, in)
			Expect(plotter.Start(ctx, baseConfig(), src)).To(Succeed())

			done := make(chan error, 1)
			go func() { done <- plotter.Run(ctx) }()

			in <- sample(1, 1, 1)
			Eventually(surface.Draws).Should(Equal(2))

			plotter.Stop()
			Eventually(done).Should(Receive(BeNil()))
			Expect(plotter.State()).To(Equal(telemetry.Stopped))
			Expect(surface.Closed()).To(Equal(1))

			plotter.Stop()
			Expect(surface.Closed()).To(Equal(1))
		})

		It("returns the context error on cancellation", func() {
			in := make(chan servo.Sample, 1)
			in <- sample(0, 0, 0)
			Expect(plotter.Start(ctx, baseConfig(), telemetry.NewChanSource(channels, in))).To(Succeed())

			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() { done <- plotter.Run(runCtx) }()
			cancel()

			Eventually(done).Should(Receive(MatchError(context.Canceled)))
			Expect(plotter.State()).To(Equal(telemetry.Stopped))
			Expect(surface.Closed()).To(Equal(1))
		})

		It("releases immediately when stopped outside Run", func() {
			Expect(plotter.Start(ctx, baseConfig(), telemetry.NewSliceSource(channels, ramp(3)))).To(Succeed())
			plotter.Stop()
			Expect(surface.Closed()).To(Equal(1))

			Expect(plotter.Ingest(sample(9, 9, 9))).To(Succeed())
			Expect(surface.Draws()).To(Equal(1))
			Expect(plotter.Run(ctx)).To(Succeed())
		})

		It("ignores Stop while idle", func() {
			plotter.Stop()
			Expect(plotter.State()).To(Equal(telemetry.Idle))
			Expect(surface.Closed()).To(BeZero())
			Expect(plotter.Run(ctx)).To(MatchError(telemetry.ErrNotStarted))
		})
	})
})

var _ = Describe("Multi", func() {
	It("fans frames out and closes every surface", func() {
		a, b := &recorder{}, &recorder{}
		m := telemetry.Multi{a, b}
		Expect(m.Draw(telemetry.Frame{Seq: 3})).To(Succeed())
		Expect(m.Close()).To(Succeed())
		Expect(a.Draws()).To(Equal(1))
		Expect(b.Last().Seq).To(Equal(uint64(3)))
		Expect(a.Closed() + b.Closed()).To(Equal(2))
	})
})

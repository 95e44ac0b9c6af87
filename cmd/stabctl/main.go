package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/stabctl/internal/analysis"
	"github.com/san-kum/stabctl/internal/automation"
	"github.com/san-kum/stabctl/internal/config"
	"github.com/san-kum/stabctl/internal/control"
	"github.com/san-kum/stabctl/internal/experiment"
	"github.com/san-kum/stabctl/internal/export"
	"github.com/san-kum/stabctl/internal/logging"
	"github.com/san-kum/stabctl/internal/metrics"
	"github.com/san-kum/stabctl/internal/optim"
	"github.com/san-kum/stabctl/internal/servo"
	"github.com/san-kum/stabctl/internal/storage"
	"github.com/san-kum/stabctl/internal/stream"
	"github.com/san-kum/stabctl/internal/telemetry"
	"github.com/san-kum/stabctl/internal/trace"
	"github.com/san-kum/stabctl/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string

	kp, ki, kd   float64
	yOffset      float64
	yMin, yMax   float64
	samplingFreq float64
	batchSize    int
	length       float64
	unit         string
	decimation   int
	targetPoints int
	plots        []string
	xType        string
	tolerance    float64

	deviceName string
	runID      string
	seed       uint64
	limit      int
	pace       time.Duration
	useTUI     bool
	snapshot   string

	filename string
	outFile  string
	specOut  string
	ascii    bool
	freqMin  float64
	freqMax  float64
	channel  string

	kpValues   []float64
	kiValues   []float64
	kdValues   []float64
	metricName string
	workers    int

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "stabctl",
		Short:         "stabilizer servo console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".stabctl", "capture directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "render a saved transfer function trace",
		Args:  cobra.NoArgs,
		RunE:  plotTrace,
	}
	plotCmd.Flags().StringVar(&filename, "filename", trace.DefaultFile, "trace file (one value per row)")
	plotCmd.Flags().StringVar(&outFile, "out", "transfer_function.png", "output image (.png, .svg, .pdf)")
	plotCmd.Flags().BoolVar(&ascii, "ascii", false, "also print a terminal preview")
	plotCmd.Flags().Float64Var(&freqMin, "freq-min", trace.DefaultFreqMin, "lowest frequency (Hz)")
	plotCmd.Flags().Float64Var(&freqMax, "freq-max", trace.DefaultFreqMax, "highest frequency (Hz)")

	coeffCmd := &cobra.Command{
		Use:   "coeff",
		Short: "synthesize IIR coefficients from PID gains",
		Args:  cobra.NoArgs,
		RunE:  printCoefficients,
	}
	addConfigFlags(coeffCmd)

	streamCmd := &cobra.Command{
		Use:   "stream",
		Short: "negotiate a capture length",
		Args:  cobra.NoArgs,
		RunE:  printStream,
	}
	addConfigFlags(streamCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "configure the device and plot its telemetry",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	addDeviceFlags(liveCmd)
	liveCmd.Flags().BoolVar(&useTUI, "tui", false, "interactive terminal UI")
	liveCmd.Flags().StringVar(&snapshot, "snapshot", "", "also keep the latest frame as an image")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "capture one window from the device",
		Args:  cobra.NoArgs,
		RunE:  recordCapture,
	}
	addConfigFlags(recordCmd)
	addDeviceFlags(recordCmd)

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list captures",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "write the power spectrum of a captured channel",
		Args:  cobra.ExactArgs(1),
		RunE:  writeSpectrum,
	}
	spectrumCmd.Flags().StringVar(&channel, "channel", string(servo.ErrDemod), "channel to analyze")
	spectrumCmd.Flags().StringVar(&specOut, "out", trace.DefaultFile, "output trace file")
	spectrumCmd.Flags().Float64Var(&freqMin, "freq-min", trace.DefaultFreqMin, "lowest frequency kept (Hz)")
	spectrumCmd.Flags().Float64Var(&freqMax, "freq-max", trace.DefaultFreqMax, "highest frequency kept (Hz)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search PID gains on the simulator",
		Args:  cobra.NoArgs,
		RunE:  tuneGains,
	}
	addConfigFlags(tuneCmd)
	tuneCmd.Flags().Uint64Var(&seed, "seed", 1, "simulator noise seed")
	tuneCmd.Flags().Float64SliceVar(&kpValues, "kp-values", []float64{-0.2, -0.1, -0.05}, "kp candidates")
	tuneCmd.Flags().Float64SliceVar(&kiValues, "ki-values", []float64{-200, -100, -50}, "ki candidates")
	tuneCmd.Flags().Float64SliceVar(&kdValues, "kd-values", []float64{0}, "kd candidates")
	tuneCmd.Flags().StringVar(&metricName, "metric", "rms_ErrDemod", "metric to minimize")
	tuneCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "candidates evaluated in parallel")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "record every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addConfigFlags(scenarioCmd)
	addDeviceFlags(scenarioCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "score one parameter across a range",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	addDeviceFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "ki", "config key to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", -200, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of points")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a capture as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %s: %s\n", name, config.GetPreset(name))
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "stabctl.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			cfg := config.DefaultConfig()
			if preset != "" {
				if cfg = config.GetPreset(preset); cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
				}
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	configInitCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(plotCmd, coeffCmd, streamCmd, liveCmd, recordCmd, runsCmd, spectrumCmd, tuneCmd, scenarioCmd, sweepCmd, exportJSONCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&kp, "kp", d.Kp, "proportional gain")
	f.Float64Var(&ki, "ki", d.Ki, "integral gain")
	f.Float64Var(&kd, "kd", d.Kd, "derivative gain")
	f.Float64Var(&yOffset, "y-offset", d.YOffset, "output offset")
	f.Float64Var(&yMin, "y-min", d.YMin, "lower output rail")
	f.Float64Var(&yMax, "y-max", d.YMax, "upper output rail")
	f.Float64Var(&samplingFreq, "sampling-freq", d.SamplingFreq, "ADC sampling frequency (Hz)")
	f.IntVar(&batchSize, "batch", d.BatchSize, "samples per batch")
	f.Float64Var(&length, "length", d.StreamLength, "capture length")
	f.StringVar(&unit, "unit", d.StreamUnit, "length unit (frames, seconds, ms)")
	f.IntVar(&decimation, "decimation", d.StreamDecimation, "plot every n-th frame")
	f.IntVar(&targetPoints, "target-points", d.StreamTargetPoints, "plotted point budget (overrides decimation)")
	f.StringSliceVar(&plots, "plots", d.Plots, "channels to plot")
	f.StringVar(&xType, "xtype", d.XType, "x axis (time_ms, index, frequency)")
	f.Float64Var(&tolerance, "tolerance", d.Tolerance, "y limit change that triggers a redraw")
}

func addDeviceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&deviceName, "device", "sim", "device (sim, replay)")
	f.StringVar(&runID, "run", "", "capture id for the replay device")
	f.Uint64Var(&seed, "seed", 1, "simulator noise seed")
	f.IntVar(&limit, "limit", 0, "stop after this many frames (0 streams until interrupted)")
	f.DurationVar(&pace, "pace", 0, "delay between batches")
}

// loadConfig layers preset, config file and changed flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("kp") {
		cfg.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.Kd = kd
	}
	if flags.Changed("y-offset") {
		cfg.YOffset = yOffset
	}
	if flags.Changed("y-min") {
		cfg.YMin = yMin
	}
	if flags.Changed("y-max") {
		cfg.YMax = yMax
	}
	if flags.Changed("sampling-freq") {
		cfg.SamplingFreq = samplingFreq
	}
	if flags.Changed("batch") {
		cfg.BatchSize = batchSize
	}
	if flags.Changed("length") {
		cfg.StreamLength = length
	}
	if flags.Changed("unit") {
		cfg.StreamUnit = unit
	}
	if flags.Changed("decimation") {
		cfg.StreamDecimation = decimation
	}
	if flags.Changed("target-points") {
		cfg.StreamTargetPoints = targetPoints
	}
	if flags.Changed("plots") {
		cfg.Plots = plots
	}
	if flags.Changed("xtype") {
		cfg.XType = xType
	}
	if flags.Changed("tolerance") {
		cfg.Tolerance = tolerance
	}
	return cfg, cfg.Validate()
}

func newLogger() zerolog.Logger {
	return logging.New(os.Stderr, logLevel)
}

func plotTrace(cmd *cobra.Command, args []string) error {
	r := trace.NewRenderer()
	r.FreqMin, r.FreqMax = freqMin, freqMax
	if ascii {
		r.Preview = os.Stdout
	}

	tr, err := r.Render(filename, outFile)
	if err != nil {
		return err
	}
	fmt.Printf("rendered %d points from %s to %s\n", tr.Len(), tr.Path, outFile)
	return nil
}

func printCoefficients(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	spec := cfg.ControllerSpec()
	ba, err := control.Derive(spec)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "kp\t%g\n", spec.Kp)
	fmt.Fprintf(w, "ki\t%g\n", spec.Ki)
	fmt.Fprintf(w, "kd\t%g\n", spec.Kd)
	fmt.Fprintf(w, "sample interval\t%gs\n", spec.SampleInterval)
	fmt.Fprintf(w, "b\t%v\n", ba.B)
	fmt.Fprintf(w, "a\t%v\n", ba.A)
	fmt.Fprintf(w, "taps\t%v\n", ba.Taps())
	fmt.Fprintf(w, "identity\t%t\n", ba.IsIdentity())
	fmt.Fprintf(w, "output\toffset=%g min=%g max=%g\n", spec.Output.Offset, spec.Output.Min, spec.Output.Max)
	return w.Flush()
}

func printStream(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	req, err := cfg.StreamRequest()
	if err != nil {
		return err
	}
	res, err := stream.Resolve(req)
	if err != nil {
		return err
	}
	raw, _ := stream.RawFrames(req)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "requested\t%g %s (%.3f frames)\n", req.Length, req.Unit, raw)
	fmt.Fprintf(w, "frames\t%d\n", res.Frames)
	fmt.Fprintf(w, "batches\t%d\n", res.Frames/req.BatchSize)
	fmt.Fprintf(w, "duration\t%.6gs\n", res.Duration(req.SamplingFreq))
	fmt.Fprintf(w, "decimation\t%d\n", res.Decimation)
	fmt.Fprintf(w, "plotted points\t%d\n", res.PlottedPoints())
	return w.Flush()
}

func openDevice(plan experiment.Plan, logger zerolog.Logger) (*experiment.Experiment, error) {
	st := storage.New(dataDir)
	dev, err := experiment.NewRegistry().GetDevice(deviceName, plan, experiment.DeviceOptions{
		Store:  st,
		RunID:  runID,
		Seed:   seed,
		Limit:  limit,
		Pace:   pace,
		Logger: logging.Component(logger, deviceName),
	})
	if err != nil {
		return nil, err
	}
	return experiment.New(plan, dev, logging.Component(logger, "experiment")), nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	plan, err := experiment.Setup(cfg)
	if err != nil {
		return err
	}
	logger := newLogger()
	exp, err := openDevice(plan, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var plotter *telemetry.Plotter
	var surfaces telemetry.Multi
	var prog *viz.Program
	if useTUI {
		// Stop may close the program, which must not happen on its own event loop.
		prog = viz.NewProgram("stabctl "+deviceName, func() { go plotter.Stop() }, tea.WithAltScreen())
		surfaces = append(surfaces, prog)
	} else {
		surfaces = append(surfaces, viz.NewTerminal(os.Stdout))
	}
	if snapshot != "" {
		surfaces = append(surfaces, export.NewSnapshot(snapshot))
	}
	plotter = telemetry.NewPlotter(surfaces, telemetry.WithLogger(logging.Component(logger, "plotter")))
	defer context.AfterFunc(ctx, plotter.Stop)()

	if prog != nil {
		prog.Start()
	}
	runErr := exp.Run(ctx, plotter)
	plotter.Stop()
	if prog != nil {
		runErr = prog.Finish(runErr)
	}
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	if runErr != nil {
		return runErr
	}
	fmt.Printf("skipped samples: %d\n", plotter.Skipped())
	return nil
}

func recordCapture(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	plan, err := experiment.Setup(cfg)
	if err != nil {
		return err
	}
	if limit == 0 {
		limit = plan.Stream.Frames
	}
	exp, err := openDevice(plan, newLogger())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	id, err := exp.Record(ctx, st)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", id)
	fmt.Printf("frames: %d\n", plan.Stream.Frames)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDEVICE\tTIME\tFRAMES\tFS\tKP\tKI\tKD\tSKIPPED\tRMS\tCHANNELS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%g\t%g\t%g\t%d\t%.4g\t%s\n",
			run.ID,
			run.Device,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.SamplingFreq,
			run.Kp,
			run.Ki,
			run.Kd,
			run.Skipped,
			run.Metrics["rms_ErrDemod"],
			strings.Join(run.Channels, ","),
		)
	}

	return w.Flush()
}

func writeSpectrum(cmd *cobra.Command, args []string) error {
	ch, err := servo.ParseChannel(channel)
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		if v, ok := s.Value(ch); ok {
			values = append(values, v)
		}
	}
	spec, err := analysis.PowerSpectrumDB(values, meta.SamplingFreq)
	if err != nil {
		return fmt.Errorf("%s: %w", ch, err)
	}
	band := spec.Band(freqMin, freqMax)
	if len(band.DB) == 0 {
		return fmt.Errorf("no spectrum bins between %g and %g Hz", freqMin, freqMax)
	}

	f, err := os.Create(specOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := analysis.WriteColumn(f, band.DB); err != nil {
		return err
	}

	if peak := spec.Peak(); peak >= 0 {
		fmt.Printf("peak: %.3f Hz at %.2f dB\n", spec.Freqs[peak], spec.DB[peak])
	}
	fmt.Printf("wrote %d bins to %s\n", len(band.DB), specOut)
	return f.Close()
}

func tuneGains(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()
	registry := experiment.NewRegistry()

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		cfg.Kp, cfg.Ki, cfg.Kd = params["kp"], params["ki"], params["kd"]
		plan, err := experiment.Setup(cfg)
		if err != nil {
			return nil, err
		}
		dev, err := registry.GetDevice("sim", plan, experiment.DeviceOptions{
			Seed:   seed,
			Limit:  plan.Stream.Frames,
			Logger: zerolog.Nop(),
		})
		if err != nil {
			return nil, err
		}
		return experiment.New(plan, dev, zerolog.Nop()), nil
	}
	newMetrics := func() []metrics.Metric {
		return metrics.Defaults(base.YMin, base.YMax)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := optim.NewGridSearch([]string{"kp", "ki", "kd"}, [][]float64{kpValues, kiValues, kdValues})
	g.Workers = workers
	start := time.Now()
	res, err := g.Search(ctx, build, newMetrics, metricName)
	if err != nil {
		return err
	}
	logger.Info().Int("evaluated", res.Evaluated).Int("failed", res.Failed).Dur("elapsed", time.Since(start)).Msg("search done")
	if res.Params == nil {
		return fmt.Errorf("no candidate could be evaluated for %s", metricName)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "kp\t%g\n", res.Params["kp"])
	fmt.Fprintf(w, "ki\t%g\n", res.Params["ki"])
	fmt.Fprintf(w, "kd\t%g\n", res.Params["kd"])
	fmt.Fprintf(w, "%s\t%.6g\n", metricName, res.Value)
	return w.Flush()
}

func newRunner(cmd *cobra.Command) (*automation.Runner, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	logger := newLogger()
	return &automation.Runner{
		Base:     cfg,
		Registry: experiment.NewRegistry(),
		Store:    st,
		Options: experiment.DeviceOptions{
			Store:  st,
			RunID:  runID,
			Seed:   seed,
			Limit:  limit,
			Pace:   pace,
			Logger: logging.Component(logger, "device"),
		},
		Logger: logging.Component(logger, "automation"),
	}, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := r.RunScenario(ctx, sc)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN\tRMS\tEFFORT\tSATURATION")
	for _, res := range results {
		fmt.Fprintf(w, "%s\t%s\t%.4g\t%.4g\t%.2f\n",
			res.Name,
			res.RunID,
			res.Metrics["rms_ErrDemod"],
			res.Metrics["control_effort"],
			res.Metrics["saturation"],
		)
	}
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := r.RunSweep(ctx, &automation.ParameterSweep{
		Device:    deviceName,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	})
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tRMS\tEFFORT\tSATURATION\n", strings.ToUpper(sweepParam))
	for _, res := range results {
		fmt.Fprintf(w, "%g\t%.4g\t%.4g\t%.2f\n",
			res.ParamValue,
			res.Metrics["rms_ErrDemod"],
			res.Metrics["control_effort"],
			res.Metrics["saturation"],
		)
	}
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return err
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, samples)
}

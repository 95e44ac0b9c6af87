package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/stabctl/internal/control"
	"github.com/san-kum/stabctl/internal/servo"
	"github.com/san-kum/stabctl/internal/stream"
	"github.com/san-kum/stabctl/internal/telemetry"
)

const (
	// 100 MHz ADC clock divided by 128.
	DefaultSamplingFreq    = 781250.0
	DefaultBatchSize       = 8
	DefaultStreamLength    = 500.0
	DefaultStreamUnit      = "frames"
	DefaultTolerance       = 0.2
	DefaultTelemetryPeriod = 1.0
	DefaultSignal          = "triangle"
	DefaultSignalFrequency = 7.335956280048077
	DefaultSignalAmplitude = 0.1
	DefaultYMin            = -2.0
	DefaultYMax            = 2.0
	DefaultXType           = "time_ms"
)

// DefaultPlots is the channel selection used when none is configured.
var DefaultPlots = []string{"ErrMod", "Mod", "ErrDemod", "CtrlDac"}

// Config is the flat parameter document of one stabilizer run.
type Config struct {
	Kp      float64 `yaml:"kp"`
	Ki      float64 `yaml:"ki"`
	Kd      float64 `yaml:"kd"`
	YOffset float64 `yaml:"y_offset"`
	YMin    float64 `yaml:"y_min"`
	YMax    float64 `yaml:"y_max"`

	SamplingFreq       float64 `yaml:"sampling_freq"`
	BatchSize          int     `yaml:"batch_size"`
	StreamLength       float64 `yaml:"stream_request_length"`
	StreamUnit         string  `yaml:"stream_request_unit"`
	StreamDecimation   int     `yaml:"stream_decimation"`
	StreamTargetPoints int     `yaml:"stream_target_points"`

	Plots       []string `yaml:"plots"`
	XType       string   `yaml:"xtype"`
	XLim        Limits   `yaml:"xlim"`
	YLim        Limits   `yaml:"ylim"`
	Tolerance   float64  `yaml:"tolerance"`
	RefreshYLim bool     `yaml:"refresh_ylim"`
	FreqMin     float64  `yaml:"freq_min"`
	FreqMax     float64  `yaml:"freq_max"`

	SigCtrlSignal    string  `yaml:"sig_ctrl_signal"`
	SigCtrlFrequency float64 `yaml:"sig_ctrl_frequency"`
	SigCtrlAmplitude float64 `yaml:"sig_ctrl_amplitude"`
	SigCtrlOffset    float64 `yaml:"sig_ctrl_offset"`

	// TelemetryPeriod is the device status report interval in seconds.
	TelemetryPeriod float64 `yaml:"telemetry_period"`
}

func DefaultConfig() *Config {
	return &Config{
		YMin:             DefaultYMin,
		YMax:             DefaultYMax,
		SamplingFreq:     DefaultSamplingFreq,
		BatchSize:        DefaultBatchSize,
		StreamLength:     DefaultStreamLength,
		StreamUnit:       DefaultStreamUnit,
		StreamDecimation: 1,
		Plots:            append([]string(nil), DefaultPlots...),
		XType:            DefaultXType,
		Tolerance:        DefaultTolerance,
		RefreshYLim:      true,
		FreqMin:          telemetry.DefaultFreqMin,
		FreqMax:          telemetry.DefaultFreqMax,
		SigCtrlSignal:    DefaultSignal,
		SigCtrlFrequency: DefaultSignalFrequency,
		SigCtrlAmplitude: DefaultSignalAmplitude,
		TelemetryPeriod:  DefaultTelemetryPeriod,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Plots = append([]string(nil), c.Plots...)
	cp.XLim = append(Limits(nil), c.XLim...)
	cp.YLim = append(Limits(nil), c.YLim...)
	return &cp
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML document over the defaults. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, decodeError(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

var unknownField = regexp.MustCompile(`field (\S+) not found`)

func decodeError(err error) error {
	var te *yaml.TypeError
	if errors.As(err, &te) && len(te.Errors) > 0 {
		if m := unknownField.FindStringSubmatch(te.Errors[0]); m != nil {
			return servo.Configf(m[1], "unknown parameter (%s)", te.Errors[0])
		}
		return servo.Configf("", "%s", strings.Join(te.Errors, "; "))
	}
	var ce *servo.ConfigError
	if errors.As(err, &ce) {
		return ce
	}
	return servo.Configf("", "%v", err)
}

// Validate checks the named, non-numeric parameters. Numeric ranges are
// enforced where they are consumed.
func (c *Config) Validate() error {
	if _, err := c.Channels(); err != nil {
		return err
	}
	if _, err := telemetry.ParseAxisMode(c.XType); err != nil {
		return err
	}
	if _, err := stream.ParseUnit(c.StreamUnit); err != nil {
		return servo.Configf("stream_request_unit", "%v", err)
	}
	if c.TelemetryPeriod <= 0 {
		return servo.Configf("telemetry_period", "must be > 0, got %g", c.TelemetryPeriod)
	}
	switch strings.ToLower(c.SigCtrlSignal) {
	case "", "none", "triangle", "sine", "square":
	default:
		return servo.Configf("sig_ctrl_signal", "unknown waveform %q", c.SigCtrlSignal)
	}
	return nil
}

// Channels resolves Plots to the closed channel set.
func (c *Config) Channels() ([]servo.Channel, error) {
	out := make([]servo.Channel, 0, len(c.Plots))
	for _, name := range c.Plots {
		ch, err := servo.ParseChannel(name)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

// ControllerSpec is the controller as configured, updated once per batch.
func (c *Config) ControllerSpec() control.Spec {
	return control.Spec{
		Kp:             c.Kp,
		Ki:             c.Ki,
		Kd:             c.Kd,
		SampleInterval: control.UpdateInterval(c.SamplingFreq, c.BatchSize),
		Output:         control.Bounds{Offset: c.YOffset, Min: c.YMin, Max: c.YMax},
	}
}

func (c *Config) StreamRequest() (stream.Request, error) {
	unit, err := stream.ParseUnit(c.StreamUnit)
	if err != nil {
		return stream.Request{}, err
	}
	return stream.Request{
		Length:       c.StreamLength,
		Unit:         unit,
		SamplingFreq: c.SamplingFreq,
		BatchSize:    c.BatchSize,
		Decimation:   c.StreamDecimation,
		TargetPoints: c.StreamTargetPoints,
	}, nil
}

// PlotConfig sizes the plot to a negotiated capture.
func (c *Config) PlotConfig(res stream.Resolved) (telemetry.PlotConfig, error) {
	channels, err := c.Channels()
	if err != nil {
		return telemetry.PlotConfig{}, err
	}
	axis, err := telemetry.ParseAxisMode(c.XType)
	if err != nil {
		return telemetry.PlotConfig{}, err
	}
	return telemetry.PlotConfig{
		Channels:    channels,
		XAxis:       axis,
		XLim:        telemetry.LimitSet(c.XLim),
		YLim:        telemetry.LimitSet(c.YLim),
		Tolerance:   c.Tolerance,
		RefreshYLim: c.RefreshYLim,
		Window:      res.Frames,
		Decimation:  res.Decimation,
		Frequency:   telemetry.FrequencyRange{Lo: c.FreqMin, Hi: c.FreqMax},
	}, nil
}

func (c *Config) String() string {
	return fmt.Sprintf("kp=%g ki=%g kd=%g fs=%g batch=%d length=%g %s plots=%v",
		c.Kp, c.Ki, c.Kd, c.SamplingFreq, c.BatchSize, c.StreamLength, c.StreamUnit, c.Plots)
}

// Apply returns a copy of c with params layered on top, using the same
// key names and checks as a config file.
func (c *Config) Apply(params map[string]any) (*Config, error) {
	out := c.Clone()
	if len(params) == 0 {
		return out, nil
	}
	data, err := yaml.Marshal(params)
	if err != nil {
		return nil, servo.Configf("", "%v", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return nil, decodeError(err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Package automation runs scripted capture sequences and parameter
// sweeps.
package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/stabctl/internal/config"
	"github.com/san-kum/stabctl/internal/experiment"
	"github.com/san-kum/stabctl/internal/metrics"
	"github.com/san-kum/stabctl/internal/servo"
	"github.com/san-kum/stabctl/internal/storage"
)

// Scenario defines a scripted capture sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single capture. Params use the config file keys and
// are layered over Preset, or over the base configuration.
type ScenarioStep struct {
	Name   string         `yaml:"name"`
	Preset string         `yaml:"preset"`
	Device string         `yaml:"device"`
	Params map[string]any `yaml:"params"`
}

type StepResult struct {
	Name    string
	RunID   string
	Metrics map[string]float64
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Runner carries what every step shares.
type Runner struct {
	Base     *config.Config
	Registry *experiment.Registry
	Store    *storage.Store
	Options  experiment.DeviceOptions
	Logger   zerolog.Logger
}

// RunScenario records every step in order and stops at the first failure.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		r.Logger.Info().Int("step", i+1).Int("of", len(scenario.Steps)).Str("name", step.Name).Msg("running step")

		cfg, err := r.stepConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		plan, err := experiment.Setup(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		exp, err := r.experiment(step.Device, plan)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		id, err := exp.Record(ctx, r.Store)
		if err != nil {
			return results, fmt.Errorf("step %d record: %w", i+1, err)
		}
		meta, err := r.Store.Load(id)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		results = append(results, StepResult{Name: step.Name, RunID: id, Metrics: meta.Metrics})
	}

	return results, nil
}

func (r *Runner) stepConfig(step ScenarioStep) (*config.Config, error) {
	base := r.Base
	if base == nil {
		base = config.DefaultConfig()
	}
	if step.Preset != "" {
		if base = config.GetPreset(step.Preset); base == nil {
			return nil, fmt.Errorf("unknown preset: %s", step.Preset)
		}
	}
	return base.Apply(step.Params)
}

func (r *Runner) experiment(device string, plan experiment.Plan) (*experiment.Experiment, error) {
	if device == "" {
		device = "sim"
	}
	opts := r.Options
	if opts.Limit == 0 {
		opts.Limit = plan.Stream.Frames
	}
	dev, err := r.Registry.GetDevice(device, plan, opts)
	if err != nil {
		return nil, err
	}
	return experiment.New(plan, dev, r.Logger), nil
}

// ParameterSweep evaluates one config parameter across a linear range
type ParameterSweep struct {
	Device    string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds the metrics for one parameter value
type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
}

// RunSweep scores every point with the default metrics. Nothing is
// stored.
func (r *Runner) RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, servo.InvalidParameter("steps", sweep.NumSteps, "must be >= 1")
	}
	base := r.Base
	if base == nil {
		base = config.DefaultConfig()
	}

	values := servo.Linspace(sweep.ParamMin, sweep.ParamMax, sweep.NumSteps)
	results := make([]SweepResult, 0, len(values))

	for i, v := range values {
		cfg, err := base.Apply(map[string]any{sweep.ParamName: v})
		if err != nil {
			return results, err
		}
		plan, err := experiment.Setup(cfg)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}
		exp, err := r.experiment(sweep.Device, plan)
		if err != nil {
			return results, err
		}
		scores, err := exp.Evaluate(ctx, metrics.Defaults(cfg.YMin, cfg.YMax))
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}

		results = append(results, SweepResult{ParamValue: v, Metrics: scores})
		r.Logger.Info().Int("point", i+1).Int("of", len(values)).Float64(sweep.ParamName, v).Msg("sweep point done")
	}

	return results, nil
}

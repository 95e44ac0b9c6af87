package optim

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/san-kum/stabctl/internal/config"
	"github.com/san-kum/stabctl/internal/device"
	"github.com/san-kum/stabctl/internal/experiment"
	"github.com/san-kum/stabctl/internal/metrics"
	"github.com/san-kum/stabctl/internal/servo"
)

func simBuilder(t *testing.T) func(map[string]float64) (*experiment.Experiment, error) {
	t.Helper()
	return func(p map[string]float64) (*experiment.Experiment, error) {
		cfg := config.DefaultConfig()
		cfg.SigCtrlSignal = "none"
		cfg.StreamLength = 4000
		cfg.Kp, cfg.Ki = p["kp"], p["ki"]
		plan, err := experiment.Setup(cfg)
		if err != nil {
			return nil, err
		}
		dev := device.NewSimulator(device.SimConfig{
			SamplingFreq: plan.Request.SamplingFreq,
			BatchSize:    plan.Request.BatchSize,
			Plant:        device.PlantConfig{Gain: 1, TimeConst: 1e-3, Disturbance: 0.5},
			Limit:        plan.Stream.Frames,
		}, zerolog.Nop())
		return experiment.New(plan, dev, zerolog.Nop()), nil
	}
}

func rmsOnly() []metrics.Metric {
	return []metrics.Metric{metrics.NewRMS(servo.ErrDemod)}
}

func TestGridSearchPrefersIntegralAction(t *testing.T) {
	g := NewGridSearch([]string{"kp", "ki"}, [][]float64{{0, 0.5}, {0, 1000}})

	res, err := g.Search(context.Background(), simBuilder(t), rmsOnly, "rms_ErrDemod")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.Evaluated != 4 {
		t.Errorf("expected 4 evaluations, got %d", res.Evaluated)
	}
	if res.Params["ki"] != 1000 {
		t.Errorf("expected ki=1000 to win, got %v (rms %g)", res.Params, res.Value)
	}
}

func TestGridSearchParallelMatchesSerial(t *testing.T) {
	ranges := [][]float64{{0, 0.5}, {0, 500, 1000}}

	serial, err := NewGridSearch([]string{"kp", "ki"}, ranges).Search(context.Background(), simBuilder(t), rmsOnly, "rms_ErrDemod")
	if err != nil {
		t.Fatalf("serial search failed: %v", err)
	}

	g := NewGridSearch([]string{"kp", "ki"}, ranges)
	g.Workers = 4
	parallel, err := g.Search(context.Background(), simBuilder(t), rmsOnly, "rms_ErrDemod")
	if err != nil {
		t.Fatalf("parallel search failed: %v", err)
	}

	if parallel.Value != serial.Value || parallel.Params["ki"] != serial.Params["ki"] || parallel.Params["kp"] != serial.Params["kp"] {
		t.Errorf("parallel %+v differs from serial %+v", parallel, serial)
	}
	if parallel.Evaluated != 6 {
		t.Errorf("expected 6 evaluations, got %d", parallel.Evaluated)
	}
}

func TestGridSearchSkipsInvalidCandidates(t *testing.T) {
	g := NewGridSearch([]string{"kp", "ki"}, [][]float64{{0.5}, {0}})
	build := func(map[string]float64) (*experiment.Experiment, error) {
		cfg := config.DefaultConfig()
		cfg.SamplingFreq = 0
		plan, err := experiment.Setup(cfg)
		if err != nil {
			return nil, err
		}
		return experiment.New(plan, nil, zerolog.Nop()), nil
	}

	res, err := g.Search(context.Background(), build, rmsOnly, "rms_ErrDemod")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.Failed != 1 || res.Params != nil {
		t.Errorf("expected one failure and no winner, got %+v", res)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGridSearch([]string{"kp"}, [][]float64{{1, 2}})
	if _, err := g.Search(ctx, simBuilder(t), rmsOnly, "rms_ErrDemod"); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// Package optim searches controller gains against a device, usually the
// simulator.
package optim

import (
	"context"
	"math"
	"sync"

	"github.com/san-kum/stabctl/internal/experiment"
	"github.com/san-kum/stabctl/internal/metrics"
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64

	// Workers bounds how many candidates run at once; 0 or 1 runs them
	// one after another.
	Workers int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Result is the best point found. Params is nil when no candidate could
// be evaluated.
type Result struct {
	Params    map[string]float64
	Value     float64
	Evaluated int
	Failed    int
}

type outcome struct {
	value float64
	ok    bool
}

// Search tries every combination and keeps the one with the lowest value
// of metricName; ties go to the earlier combination. Candidates whose
// experiment cannot be built or run are counted and skipped. Each
// candidate gets its own experiment, so they may run concurrently.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	newMetrics func() []metrics.Metric,
	metricName string,
) (Result, error) {
	var combos []map[string]float64
	g.combinations(0, make(map[string]float64), &combos)

	outcomes := make([]outcome, len(combos))
	workers := max(g.Workers, 1)
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, params := range combos {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int, params map[string]float64) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[idx] = evaluate(ctx, params, buildExperiment, newMetrics, metricName)
		}(i, params)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Result{Value: math.Inf(1)}, err
	}

	res := Result{Value: math.Inf(1)}
	for i, o := range outcomes {
		if !o.ok {
			res.Failed++
			continue
		}
		res.Evaluated++
		if !math.IsNaN(o.value) && o.value < res.Value {
			res.Value = o.value
			res.Params = combos[i]
		}
	}
	return res, nil
}

func evaluate(
	ctx context.Context,
	params map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	newMetrics func() []metrics.Metric,
	metricName string,
) outcome {
	exp, err := buildExperiment(params)
	if err != nil {
		return outcome{}
	}
	scores, err := exp.Evaluate(ctx, newMetrics())
	if err != nil {
		return outcome{}
	}
	val, ok := scores[metricName]
	if !ok {
		val = math.NaN()
	}
	return outcome{value: val, ok: true}
}

func (g *GridSearch) combinations(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.combinations(depth+1, newParams, out)
	}
}

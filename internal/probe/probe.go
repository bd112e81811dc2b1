// Package probe measures how finely each clock source ticks and how much a
// single reading costs.
package probe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/psantana5/elapsed/pkg/elapsed"
)

// DefaultSamples is the number of readings taken when none is given
const DefaultSamples = 10000

// ErrNoSamples is returned when fewer than two readings are requested
var ErrNoSamples = errors.New("probe needs at least two samples")

// Result summarizes successive readings of one source
type Result struct {
	Source     string  `json:"source" yaml:"source"`
	Active     bool    `json:"active" yaml:"active"`
	Samples    int     `json:"samples" yaml:"samples"`
	Distinct   int     `json:"distinct" yaml:"distinct"`
	Resolution float64 `json:"resolution_seconds" yaml:"resolution_seconds"`
	MeanCost   float64 `json:"mean_cost_seconds" yaml:"mean_cost_seconds"`
	Monotonic  bool    `json:"monotonic" yaml:"monotonic"`
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// reader is swapped in tests
var reader = elapsed.Read

// Run takes samples successive readings of src. Resolution is the smallest
// positive step observed, or 0 if the source never advanced. Distinct counts
// readings that differ from the one before, in either direction.
func Run(ctx context.Context, src elapsed.Source, samples int) (Result, error) {
	if samples < 2 {
		return Result{}, ErrNoSamples
	}

	res := Result{
		Source:    src.String(),
		Active:    src == elapsed.Active(),
		Samples:   samples,
		Monotonic: true,
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	minStep := math.Inf(1)
	start := time.Now()

	prev, err := reader(src)
	if err != nil {
		return res, fmt.Errorf("probe %v: %w", src, err)
	}
	res.Distinct = 1

	for i := 1; i < samples; i++ {
		// checking every reading would dominate the cost of fast sources
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		cur, err := reader(src)
		if err != nil {
			return res, fmt.Errorf("probe %v: sample %d: %w", src, i, err)
		}

		step := cur - prev
		switch {
		case step < 0:
			res.Monotonic = false
			res.Distinct++
		case step > 0:
			res.Distinct++
			if step < minStep {
				minStep = step
			}
		}
		prev = cur
	}

	res.MeanCost = time.Since(start).Seconds() / float64(samples)
	if !math.IsInf(minStep, 1) {
		res.Resolution = minStep
	}
	return res, nil
}

// RunAll probes every known source. Unavailable sources are reported with
// their error instead of failing the whole run.
func RunAll(ctx context.Context, samples int) ([]Result, error) {
	results := make([]Result, 0, len(elapsed.Sources()))
	for _, src := range elapsed.Sources() {
		res, err := Run(ctx, src, samples)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrNoSamples) {
				return results, err
			}
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

package ensemble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/stats"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/synth"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/worker"
)

const MaxDraws = 1000

var ErrInvalidDraws = errors.New("draws must be between 1 and 1000")

type Summary struct {
	Draws         int     `json:"draws"`
	Seed          int64   `json:"seed"`
	MeanResidual  float64 `json:"mean_residual"`
	MeanSlope     float64 `json:"mean_slope"`
	MeanIntercept float64 `json:"mean_intercept"`
	MeanR         float64 `json:"mean_r"`
}

type drawResult struct {
	residual, slope, intercept, r float64
	ok                            bool
}

// Run draws independent series seeded seed, seed+1, ... on a worker pool and
// averages their residuals against the generating model and their OLS fits.
func Run(ctx context.Context, params synth.Params, seed int64, draws, workers int) (Summary, error) {
	if draws < 1 || draws > MaxDraws {
		return Summary{}, ErrInvalidDraws
	}
	if err := params.Validate(); err != nil {
		return Summary{}, err
	}

	results := make([]drawResult, draws)
	process := func(ctx context.Context, i int) error {
		g, err := synth.NewGenerator(params, synth.NewSeeded(seed+int64(i)))
		if err != nil {
			return err
		}
		series := g.Generate()

		fit, err := stats.Fit(series)
		if err != nil {
			return fmt.Errorf("draw %d: %w", i, err)
		}
		results[i] = drawResult{
			residual:  stats.MeanResidual(series, params.Baseline, params.Sensitivity),
			slope:     fit.Slope,
			intercept: fit.Intercept,
			r:         fit.R,
			ok:        true,
		}
		return nil
	}

	pool := worker.NewWorkerPool[int](workers, draws, process)
	pool.Start(ctx)
	for i := 0; i < draws; i++ {
		pool.Submit(i)
	}
	pool.Stop()

	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	sum := Summary{Seed: seed}
	for _, r := range results {
		if !r.ok {
			continue
		}
		sum.Draws++
		sum.MeanResidual += r.residual
		sum.MeanSlope += r.slope
		sum.MeanIntercept += r.intercept
		sum.MeanR += r.r
	}
	if sum.Draws == 0 {
		return Summary{}, stats.ErrInsufficientData
	}
	n := float64(sum.Draws)
	sum.MeanResidual /= n
	sum.MeanSlope /= n
	sum.MeanIntercept /= n
	sum.MeanR /= n

	slog.Debug("ensemble complete", "draws", sum.Draws, "failed", pool.Failed(), "mean_residual", sum.MeanResidual)
	return sum, nil
}

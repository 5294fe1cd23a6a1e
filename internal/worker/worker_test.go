package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/synth"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// drawAll runs one seeded draw per index and records the first temperature
// of each generated series at its index.
func drawAll(t *testing.T, workers, draws int, seed int64) []float64 {
	t.Helper()
	results := make([]float64, draws)
	pool := NewWorkerPool[int](workers, draws, func(ctx context.Context, i int) error {
		series := synth.GenerateSeries(synth.NewSeeded(seed + int64(i)))
		results[i] = series[0].TemperatureDeviation
		return nil
	})
	pool.Start(context.Background())
	for i := 0; i < draws; i++ {
		pool.Submit(i)
	}
	pool.Stop()

	if pool.Failed() != 0 {
		t.Fatalf("expected no failed draws, got %d", pool.Failed())
	}
	return results
}

func TestWorkerPool_DrawsDoNotDependOnWorkerCount(t *testing.T) {
	serial := drawAll(t, 1, 40, 7)
	parallel := drawAll(t, 6, 40, 7)

	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("draw %d: %v with one worker, %v with six", i, serial[i], parallel[i])
		}
	}
	if serial[0] == serial[1] {
		t.Error("expected different seeds to give different draws")
	}
}

func TestWorkerPool_FailedCountsErroredDraws(t *testing.T) {
	var ok atomic.Int64
	pool := NewWorkerPool[int](3, 12, func(ctx context.Context, i int) error {
		if i%3 == 0 {
			return fmt.Errorf("draw %d: %w", i, errors.New("no variance"))
		}
		ok.Add(1)
		return nil
	})
	pool.Start(context.Background())
	for i := 0; i < 12; i++ {
		pool.Submit(i)
	}
	pool.Stop()

	if pool.Failed() != 4 {
		t.Errorf("expected 4 failed draws, got %d", pool.Failed())
	}
	if ok.Load() != 8 {
		t.Errorf("expected 8 successful draws, got %d", ok.Load())
	}
}

func TestWorkerPool_StopDrainsQueuedJobs(t *testing.T) {
	var done atomic.Int64
	pool := NewWorkerPool[int](1, 25, func(ctx context.Context, i int) error {
		time.Sleep(time.Millisecond)
		done.Add(1)
		return nil
	})
	pool.Start(context.Background())
	for i := 0; i < 25; i++ {
		pool.Submit(i)
	}
	pool.Stop()

	if done.Load() != 25 {
		t.Errorf("expected all 25 queued jobs to finish before Stop returned, got %d", done.Load())
	}
}

func TestWorkerPool_CancelledJobsCountAsFailed(t *testing.T) {
	var ran atomic.Int64
	pool := NewWorkerPool[int](2, 4, func(ctx context.Context, i int) error {
		ran.Add(1)
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	for i := 0; i < 4; i++ {
		pool.Submit(i)
	}
	cancel()

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after cancellation")
	}

	if pool.Failed() != ran.Load() {
		t.Errorf("expected every started job to fail, started %d failed %d", ran.Load(), pool.Failed())
	}
}

func TestWorkerPool_ZeroWorkersStillRuns(t *testing.T) {
	var processed atomic.Int64
	pool := NewWorkerPool[int](0, 4, func(ctx context.Context, job int) error {
		processed.Add(1)
		return nil
	})
	pool.Start(context.Background())

	for i := 0; i < 4; i++ {
		pool.Submit(i)
	}
	pool.Stop()

	if processed.Load() != 4 {
		t.Errorf("expected 4 jobs processed, got %d", processed.Load())
	}
}

package dynamo

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Factory builds a fresh system for the given time step.
type Factory func(dt float64) (System, error)

// Sweep runs the same scenario at several time steps over an equal span of
// simulated time. Every run gets its own system, so runs share no state.
type Sweep struct {
	build     Factory
	timeSteps []float64
	metrics   func() []Metric
}

func NewSweep(build Factory, timeSteps []float64) *Sweep {
	return &Sweep{build: build, timeSteps: timeSteps}
}

// WithMetrics sets a constructor for per-run metrics; metrics hold state, so
// each run needs its own set.
func (sw *Sweep) WithMetrics(fn func() []Metric) *Sweep {
	sw.metrics = fn
	return sw
}

// Run simulates duration seconds for every time step. Results are in the
// order the time steps were given.
func (sw *Sweep) Run(ctx context.Context, duration float64, cfg Config) ([]*Result, error) {
	for _, dt := range sw.timeSteps {
		if duration < dt {
			return nil, fmt.Errorf("%w: span %gs is shorter than time step %gs", ErrInvalidTimeStep, duration, dt)
		}
	}

	results := make([]*Result, len(sw.timeSteps))

	g, ctx := errgroup.WithContext(ctx)
	for i, dt := range sw.timeSteps {
		g.Go(func() error {
			sys, err := sw.build(dt)
			if err != nil {
				return err
			}

			s := New(sys)
			if sw.metrics != nil {
				for _, m := range sw.metrics() {
					s.AddMetric(m)
				}
			}

			runCfg := cfg
			runCfg.Iterations = int(math.Round(duration / dt))
			results[i], err = s.Run(ctx, runCfg)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParallelFor executes fn over [0, n) split into contiguous chunks. Ranges
// smaller than minChunk run on the calling goroutine.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	numWorkers := runtime.GOMAXPROCS(0)
	if n <= minChunk || numWorkers <= 1 {
		fn(0, n)
		return
	}

	workers := numWorkers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

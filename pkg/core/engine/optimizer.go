package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrNoSchedule is returned when no run produced a single assignment
var ErrNoSchedule = errors.New("could not generate a schedule")

const (
	DefaultIterations  = 100
	DefaultParallelism = 4
)

// SearchOptions controls the randomized restart search
type SearchOptions struct {
	// Iterations is the number of independent greedy runs (default 100)
	Iterations int

	// Parallelism is the maximum number of runs executing at once (default 4)
	Parallelism int

	// Seed is the base seed. Run i uses Seed+i so results are reproducible.
	Seed int64

	// Force fills every slot by sacrificing workers when no valid candidate exists
	Force bool

	// TimeBudget stops starting new runs once elapsed. Zero means no budget.
	TimeBudget time.Duration

	// OnRun is called after each run completes. It may be called concurrently.
	OnRun func(run *Run)
}

// SearchResult is the best run found by Search
type SearchResult struct {
	Best          *Run
	RunsEvaluated int
}

// Search runs RunOnce Iterations times, each with its own random source, and keeps the
// run with the highest score. Ties are broken by the lowest run index so the result for a
// given seed does not depend on scheduling.
//
// Cancelling ctx or exhausting the time budget stops new runs from starting. The best run
// completed so far is returned, or the context error if none completed.
func Search(ctx context.Context, in *Input, opts SearchOptions) (*SearchResult, error) {
	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	if opts.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeBudget)
		defer cancel()
	}

	var (
		mu          sync.Mutex
		best        *Run
		evaluated   int
		anyAssigned bool
	)

	g := new(errgroup.Group)
	g.SetLimit(parallelism)

	for i := 0; i < iterations; i++ {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			seed := opts.Seed + int64(i)
			run := RunOnce(in, opts.Force, rand.New(rand.NewSource(seed)))
			run.Index = i
			run.Seed = seed

			if opts.OnRun != nil {
				opts.OnRun(run)
			}

			mu.Lock()
			defer mu.Unlock()
			evaluated++
			if len(run.Placements) > 0 {
				anyAssigned = true
			}
			if best == nil || run.Score > best.Score || (run.Score == best.Score && run.Index < best.Index) {
				best = run
			}
			return nil
		})
	}

	// Runs never return errors
	_ = g.Wait()

	if best == nil {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search stopped before any run completed: %w", err)
		}
		return nil, ErrNoSchedule
	}

	if !anyAssigned {
		return nil, ErrNoSchedule
	}

	return &SearchResult{Best: best, RunsEvaluated: evaluated}, nil
}

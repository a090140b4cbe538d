// Package batch executes independent simulation runs concurrently.
// A single run is strictly sequential by design (the in-place update is
// order sensitive), but separate runs over the same frozen chamber share
// only immutable topology, so they parallelize freely.
package batch

import (
	"context"
	"fmt"
	"runtime"

	"github.com/nvandessel/polisim/internal/chamber"
	"github.com/nvandessel/polisim/internal/sim"
	"github.com/nvandessel/polisim/internal/vecmath"
	"golang.org/x/sync/errgroup"
)

// Job is one independent run: a proposal plus its configuration. Jobs in
// one batch may differ in proposal, seed, or any other config field.
type Job struct {
	Proposal vecmath.Vector
	Config   sim.Config
}

// Result pairs a job with its outcome, preserving job order.
type Result struct {
	Job     Job
	Outcome *sim.Outcome
}

// Run executes all jobs against one frozen chamber with at most workers
// goroutines (<= 0 means GOMAXPROCS). Results are returned in job order.
// The first job error cancels the remaining jobs.
func Run(ctx context.Context, c *chamber.Chamber, jobs []Job, workers int) ([]Result, error) {
	if len(jobs) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	// Freeze once up front so concurrent engine construction only ever
	// sees an already-frozen chamber.
	if err := c.Freeze(); err != nil {
		return nil, fmt.Errorf("freezing chamber: %w", err)
	}

	results := make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			eng, err := sim.NewEngine(c, job.Config)
			if err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			out, err := eng.Run(ctx, job.Proposal)
			if err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			results[i] = Result{Job: job, Outcome: out}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

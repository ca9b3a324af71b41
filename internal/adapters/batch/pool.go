// Package batch provides an order-preserving worker pool for
// independent per-race jobs.
//
// Each job reads immutable input and produces an isolated result, so
// no locking is needed beyond the fan-out plumbing. Results come back
// in submission order regardless of completion order, and a failed job
// carries its error in place instead of aborting the batch.
package batch

import (
	"context"
	"runtime"
	"sync"

	"github.com/abhishekneerr/apexrank/pkg/metrics"
)

// Job is one unit of work.
type Job[T any] func(ctx context.Context) (T, error)

// Result pairs a job's value with its error, at the job's
// submission index.
type Result[T any] struct {
	Value T
	Err   error
}

// Pool runs jobs over a fixed set of workers.
type Pool[T any] struct {
	workers int
}

// Option applies a configuration option to the Pool.
type Option[T any] func(*Pool[T])

// WithWorkers sets the worker count.
func WithWorkers[T any](count int) Option[T] {
	return func(p *Pool[T]) {
		if count > 0 {
			p.workers = count
		}
	}
}

// NewPool creates a pool defaulting to one worker per CPU.
func NewPool[T any](opts ...Option[T]) *Pool[T] {
	p := &Pool[T]{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(p)
	}
	metrics.UpdatePoolWorkers(p.workers)
	return p
}

// Run executes all jobs and returns their results in submission order.
// A canceled context marks unstarted jobs with the context error.
func (p *Pool[T]) Run(ctx context.Context, jobs []Job[T]) []Result[T] {
	results := make([]Result[T], len(jobs))
	if len(jobs) == 0 {
		return results
	}

	indexes := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				metrics.RecordPoolJob()
				value, err := jobs[i](ctx)
				if err != nil {
					metrics.RecordPoolJobError()
				}
				results[i] = Result[T]{Value: value, Err: err}
			}
		}()
	}

	for i := range jobs {
		select {
		case indexes <- i:
		case <-ctx.Done():
			results[i] = Result[T]{Err: ctx.Err()}
		}
	}
	close(indexes)
	wg.Wait()

	return results
}

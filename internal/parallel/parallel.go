// Package parallel runs index loops across a bounded number of goroutines.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Workers      int // Upper bound on concurrently running goroutines.
	MinChunkSize int // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig uses one worker per CPU.
func DefaultConfig() Config {
	return New(runtime.NumCPU())
}

// New returns a Config bounded to workers goroutines. Values below 1 mean
// sequential execution.
func New(workers int) Config {
	return Config{
		Workers:      max(workers, 1),
		MinChunkSize: 64,
	}
}

// Enabled reports whether loops may run on more than one goroutine.
func (c Config) Enabled() bool { return c.Workers > 1 }

// For executes f(i) for i in [0, n). Loops shorter than MinChunkSize, or
// any loop when parallelism is disabled, run on the calling goroutine.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled() || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunk := max((n+cfg.Workers-1)/cfg.Workers, cfg.MinChunkSize)
	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				f(i)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Each runs task(i) for every i in [0, n), one goroutine per task and at most
// cfg.Workers at a time, and returns the first error.
func Each(n int, task func(i int) error, cfg Config) error {
	var g errgroup.Group
	g.SetLimit(max(cfg.Workers, 1))
	for i := 0; i < n; i++ {
		g.Go(func() error { return task(i) })
	}
	return g.Wait()
}

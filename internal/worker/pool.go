package worker

import (
	"context"
	"sync"
)

// Pool runs indexed tasks over a fixed number of workers. Callers
// write each task's output into their own slot of a pre-sized slice,
// so output order never depends on completion order.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given worker count.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int { return p.workers }

// Run executes fn for every index in [0,n) across the pool's workers
// and blocks until all complete or the context is cancelled. When the
// context is cancelled, indexes not yet started are skipped and the
// context error is returned; tasks already running finish normally.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	if n <= 0 {
		return nil
	}

	indexes := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > n {
		workers = n
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				fn(ctx, i)
			}
		}()
	}

	var err error
feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()
	return err
}

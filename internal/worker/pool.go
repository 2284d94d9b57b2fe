// Package worker bounds how many render jobs run at once.
package worker

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool runs jobs on at most size goroutines.
type Pool struct {
	sem  *semaphore.Weighted
	size int
	wg   sync.WaitGroup
}

func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size}
}

func (p *Pool) Size() int {
	return p.size
}

// Do waits for a free slot and runs fn on a worker goroutine. If ctx ends
// first, Do returns ctx.Err() right away and fn's context is cancelled; the
// worker keeps its slot until fn actually returns.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for worker: %w", err)
	}

	jobCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		defer cancel()
		done <- fn(jobCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

// Wait blocks until every started job has returned, abandoned ones included.
func (p *Pool) Wait() {
	p.wg.Wait()
}

package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/baharkarakas/catalog-backend/internal/metrics"
)

var ErrStopped = errors.New("worker pool stopped")

type task func()

// Pool runs CPU-heavy jobs (password hashing) on a fixed set of goroutines so
// request handlers only wait on a channel.
type Pool struct {
	wg      sync.WaitGroup
	jobs    chan task
	mu      sync.RWMutex
	stopped bool
}

func NewPool(n int) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
				job()
			}
		}()
	}
	return p
}

// Do queues f and blocks until it has run or ctx is done. When ctx ends first
// Do returns ctx.Err(); f is skipped if it had not started yet.
func (p *Pool) Do(ctx context.Context, f func()) error {
	done := make(chan struct{})
	var ran bool
	job := func() {
		defer close(done)
		if ctx.Err() != nil {
			return
		}
		ran = true
		f()
	}

	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		return ErrStopped
	}
	select {
	case p.jobs <- job:
		metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
		p.mu.RUnlock()
	case <-ctx.Done():
		p.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case <-done:
		if !ran {
			return ctx.Err()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains queued jobs and waits for the workers. Safe to call twice.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// Package workerpool provides a persistent pool of goroutines that runs
// submitted tasks and hands their results back to the submitter. Workers are
// spawned once in New and reused until Close.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	err := pool.Run(ctx, func(ctx context.Context) error {
//	    return work(ctx)
//	})
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

var (
	// ErrClosed is returned by Run after Close.
	ErrClosed = errors.New("worker pool is closed")
	// ErrPanic wraps a value recovered from a panicking task.
	ErrPanic = errors.New("task panicked")
)

// Task is one unit of work. It should return promptly once ctx is done.
type Task func(ctx context.Context) error

// Pool is a fixed set of worker goroutines fed from a shared queue.
type Pool struct {
	numWorkers int
	workC      chan workItem

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type workItem struct {
	ctx  context.Context
	fn   Task
	done chan<- error
}

// New creates a pool with numWorkers workers. If numWorkers <= 0, it uses
// GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}
	p.wg.Add(numWorkers)
	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for item := range p.workC {
		item.done <- runTask(item.ctx, item.fn)
	}
}

func runTask(ctx context.Context, fn Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Run queues fn and blocks until it finishes or ctx is done. If ctx ends
// first, Run returns ctx.Err() and the task is left to observe the same
// context and wind down on its own.
func (p *Pool) Run(ctx context.Context, fn Task) error {
	done := make(chan error, 1)

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrClosed
	}
	select {
	case p.workC <- workItem{ctx: ctx, fn: fn, done: done}:
		p.mu.RUnlock()
	case <-ctx.Done():
		p.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work, lets queued tasks finish and waits for the
// workers to exit. Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.workC)
	p.mu.Unlock()
	p.wg.Wait()
}

package workerpool

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Close()
	assert.Equal(t, 4, pool.NumWorkers())
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Close()
	assert.Equal(t, runtime.GOMAXPROCS(0), pool.NumWorkers())
}

func TestRunReturnsTaskResult(t *testing.T) {
	pool := New(2)
	defer pool.Close()

	ran := false
	require.NoError(t, pool.Run(context.Background(), func(context.Context) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)

	boom := errors.New("boom")
	err := pool.Run(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRunRecoversPanic(t *testing.T) {
	pool := New(1)
	defer pool.Close()

	err := pool.Run(context.Background(), func(context.Context) error { panic("index out of range") })
	require.ErrorIs(t, err, ErrPanic)
	assert.Contains(t, err.Error(), "index out of range")

	// the worker survives
	assert.NoError(t, pool.Run(context.Background(), func(context.Context) error { return nil }))
}

func TestRunConcurrentCallers(t *testing.T) {
	pool := New(3)
	defer pool.Close()

	var count atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, pool.Run(context.Background(), func(context.Context) error {
				count.Add(1)
				return nil
			}))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(50), count.Load())
}

func TestRunCanceledContext(t *testing.T) {
	pool := New(1)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := pool.Run(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRunStopsWaitingOnCancel(t *testing.T) {
	pool := New(1)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Run(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunAfterClose(t *testing.T) {
	pool := New(2)
	pool.Close()
	pool.Close()
	err := pool.Run(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
}

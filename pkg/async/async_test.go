package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cyphervault/pkg/async"
)

func TestRunAndAwait(t *testing.T) {
	t.Parallel()

	f := async.Run(context.Background(), 21, func(ctx context.Context, n int) (int, error) {
		return n * 2, nil
	})

	got, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.True(t, f.IsComplete())
}

func TestRunPropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	f := async.Run(context.Background(), struct{}{}, func(ctx context.Context, _ struct{}) (int, error) {
		return 0, boom
	})

	_, err := f.Await()
	assert.ErrorIs(t, err, boom)
}

func TestRunCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := async.Run(ctx, 0, func(ctx context.Context, _ int) (int, error) {
		t.Error("should not run with canceled context")
		return 0, nil
	})

	_, err := f.Await()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAwaitWithTimeout(t *testing.T) {
	t.Parallel()

	f := async.Run(context.Background(), 0, func(ctx context.Context, _ int) (int, error) {
		time.Sleep(time.Second)
		return 1, nil
	})

	_, err := f.AwaitWithTimeout(10 * time.Millisecond)
	assert.ErrorIs(t, err, async.ErrTimeout)
}

func TestWaitAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	double := func(ctx context.Context, n int) (int, error) { return n * 2, nil }
	futures := []*async.Future[int]{
		async.Run(ctx, 1, double),
		async.Run(ctx, 2, double),
		async.Run(ctx, 3, double),
	}

	results, err := async.WaitAll(futures...)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, results)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	t.Parallel()

	pool, err := async.NewPool(2)
	require.NoError(t, err)

	var running, peak atomic.Int32
	job := func(ctx context.Context, _ int) (int, error) {
		now := running.Add(1)
		for {
			p := peak.Load()
			if now <= p || peak.CompareAndSwap(p, now) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		running.Add(-1)
		return 0, nil
	}

	futures := make([]*async.Future[int], 8)
	for i := range futures {
		futures[i] = async.Submit(context.Background(), pool, i, job)
	}
	_, err = async.WaitAll(futures...)
	require.NoError(t, err)

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestPoolCanceledWhileQueued(t *testing.T) {
	t.Parallel()

	pool, err := async.NewPool(1)
	require.NoError(t, err)

	block := make(chan struct{})
	first := async.Submit(context.Background(), pool, 0, func(ctx context.Context, _ int) (int, error) {
		<-block
		return 0, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	queued := async.Submit(ctx, pool, 0, func(ctx context.Context, _ int) (int, error) {
		return 1, nil
	})
	cancel()

	_, err = queued.Await()
	assert.ErrorIs(t, err, context.Canceled)

	close(block)
	_, err = first.Await()
	assert.NoError(t, err)
}

func TestNewPoolRejectsInvalidSize(t *testing.T) {
	t.Parallel()

	_, err := async.NewPool(0)
	assert.ErrorIs(t, err, async.ErrInvalidSize)
}

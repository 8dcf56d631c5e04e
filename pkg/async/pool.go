package async

import "context"

// Pool bounds the number of concurrently running jobs.
type Pool struct {
	slots chan struct{}
}

// NewPool creates a pool allowing up to size concurrent jobs.
func NewPool(size int) (*Pool, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	return &Pool{slots: make(chan struct{}, size)}, nil
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return cap(p.slots)
}

// Submit schedules fn on the pool and returns a Future. The call returns
// immediately; the job waits for a free slot in its own goroutine and fails
// with the context error if ctx is canceled before a slot opens.
func Submit[T, U any](ctx context.Context, p *Pool, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case p.slots <- struct{}{}:
			defer func() { <-p.slots }()
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		}

		f.result, f.err = fn(ctx, param)
	}()

	return f
}

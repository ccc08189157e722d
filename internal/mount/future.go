package mount

import "context"

// Future is the pending result of an orchestrator request.
type Future[T any] struct {
	done chan struct{}
	val  T
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a Future that already holds v.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.resolve(v)
	return f
}

func (f *Future[T]) resolve(v T) {
	f.val = v
	close(f.done)
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Get blocks until the result is available.
func (f *Future[T]) Get() T {
	<-f.done
	return f.val
}

// Wait blocks until the result is available or ctx is done. Giving up on the
// wait does not cancel the request.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

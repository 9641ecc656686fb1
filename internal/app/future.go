package app

import (
	"context"
	"errors"
	"sync"
)

// ErrHandlerRegistered is returned when a second completion handler is attached to a Future.
var ErrHandlerRegistered = errors.New("completion handler already registered")

// Future is the result of an operation running on its own goroutine.
type Future[T any] struct {
	done chan struct{}

	mu         sync.Mutex
	value      T
	err        error
	finished   bool
	handler    func(T, error)
	registered bool
}

// Go starts fn in the background and returns its Future.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		value, err := fn()

		f.mu.Lock()
		f.value, f.err = value, err
		f.finished = true
		handler := f.handler
		f.mu.Unlock()

		if handler != nil {
			handler(value, err)
		}
		close(f.done)
	}()
	return f
}

// Done is closed once the operation has finished and a handler registered
// before that has returned.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the operation finishes or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete attaches the single completion handler. It runs exactly once:
// on the worker goroutine, or immediately if the Future already finished.
func (f *Future[T]) OnComplete(fn func(T, error)) error {
	f.mu.Lock()
	if f.registered {
		f.mu.Unlock()
		return ErrHandlerRegistered
	}
	f.registered = true

	if f.finished {
		value, err := f.value, f.err
		f.mu.Unlock()
		fn(value, err)
		return nil
	}

	f.handler = fn
	f.mu.Unlock()
	return nil
}

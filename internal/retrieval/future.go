package retrieval

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrCancelled is returned by a Future cancelled before mapping began.
var ErrCancelled = errors.New("retrieval cancelled")

const (
	statePending int32 = iota
	stateMapping
	stateCancelled
)

// Future is the handle of an asynchronous retrieval.
type Future[T any] struct {
	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	val T
	err error
}

func newFuture[T any](cancel context.CancelFunc) *Future[T] {
	return &Future[T]{cancel: cancel, done: make(chan struct{})}
}

// Done is closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get waits for the result or for ctx to end. A ctx ending does not cancel
// the retrieval.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel aborts the retrieval if mapping has not begun and reports whether
// it did. Once mapping has begun the retrieval runs to its end and Cancel
// is a no-op.
func (f *Future[T]) Cancel() bool {
	if !f.state.CompareAndSwap(statePending, stateCancelled) {
		return false
	}
	f.cancel()
	var zero T
	f.complete(zero, ErrCancelled)
	return true
}

// beginMapping claims the unit of work for mapping. It fails if the future
// was cancelled first.
func (f *Future[T]) beginMapping() bool {
	return f.state.CompareAndSwap(statePending, stateMapping)
}

func (f *Future[T]) complete(val T, err error) {
	f.once.Do(func() {
		f.val, f.err = val, err
		close(f.done)
	})
}

package retrieval

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool runs submitted tasks on worker goroutines.
type Pool interface {
	Submit(task func())
}

// BoundedPool runs at most size tasks at once. Submit never blocks; tasks
// beyond the bound wait for a free slot.
type BoundedPool struct {
	sem *semaphore.Weighted
}

// NewBoundedPool returns a pool of the given size, or GOMAXPROCS workers if
// size is not positive.
func NewBoundedPool(size int) *BoundedPool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &BoundedPool{sem: semaphore.NewWeighted(int64(size))}
}

func (p *BoundedPool) Submit(task func()) {
	go func() {
		// Acquire only fails on a cancelled context.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)
		task()
	}()
}

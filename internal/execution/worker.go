package execution

import "context"

// WorkerPool bounds how many external processes run at the same time
type WorkerPool struct {
	slots chan struct{}
}

// NewWorkerPool creates a WorkerPool with the given number of slots
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{slots: make(chan struct{}, workerCount)}
}

// Acquire blocks until a slot is free or ctx is done
func (wp *WorkerPool) Acquire(ctx context.Context) error {
	select {
	case wp.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire
func (wp *WorkerPool) Release() {
	<-wp.slots
}

// Size returns the number of slots
func (wp *WorkerPool) Size() int {
	return cap(wp.slots)
}

// Package eventloop provides the single control thread on which test tree
// state is mutated. Asynchronous work (external processes) posts its
// completion back to the loop instead of touching the tree directly.
package eventloop

import (
	"context"
	"sync"
)

// Poster schedules fn to run on the control thread after the current event
type Poster interface {
	Post(fn func())
}

// Loop runs posted functions one at a time, in posting order
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stop    chan struct{}
	stopped sync.Once
}

// New creates a Loop. Call Run to start processing.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
}

// Post queues fn. It never blocks, so it is safe to call from inside a posted function.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run processes events until ctx is done or Stop is called
func (l *Loop) Run(ctx context.Context) error {
	for {
		for {
			fn := l.next()
			if fn == nil {
				break
			}
			fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return nil
		case <-l.wake:
		}
	}
}

// Stop makes Run return after the event currently being processed
func (l *Loop) Stop() {
	l.stopped.Do(func() { close(l.stop) })
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn
}

// Manual is a Poster that only runs events when drained. Tests use it to
// step the control thread deterministically.
type Manual struct {
	mu    sync.Mutex
	queue []func()
}

// Post queues fn until the next Drain
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

// Drain runs queued events, including ones posted while draining, and
// returns how many ran
func (m *Manual) Drain() int {
	n := 0
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return n
		}
		fn := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		fn()
		n++
	}
}

// Pending returns the number of queued events
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

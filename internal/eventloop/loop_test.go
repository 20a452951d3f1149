package eventloop

import (
	"context"
	"testing"
	"time"
)

func TestLoop_RunsInOrder(t *testing.T) {
	l := New()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var got []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Post(func() {
		// Posting from inside an event must not deadlock
		l.Post(func() {
			close(done)
			l.Stop()
		})
	})

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for events")
	}
	if err := <-errCh; err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("events ran out of order: %v", got)
		}
	}
}

func TestLoop_ContextCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Run(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestManual_Drain(t *testing.T) {
	var m Manual
	count := 0
	m.Post(func() {
		count++
		m.Post(func() { count++ })
	})

	if m.Pending() != 1 {
		t.Fatalf("expected 1 pending event, got %d", m.Pending())
	}
	if n := m.Drain(); n != 2 {
		t.Errorf("expected 2 events drained, got %d", n)
	}
	if count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
}

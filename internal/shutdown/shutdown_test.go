package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestShutdownLIFO(t *testing.T) {
	m := New(time.Second)

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		m.Register(func(ctx context.Context) error {
			order = append(order, i)
			return nil
		})
	}

	m.Shutdown()

	if len(order) != 3 || order[0] != 2 || order[1] != 1 || order[2] != 0 {
		t.Errorf("Shutdown should run LIFO, got %v", order)
	}
}

func TestShutdownContinuesPastErrors(t *testing.T) {
	m := New(time.Second)

	ran := false
	m.Register(func(ctx context.Context) error {
		ran = true
		return nil
	})
	m.Register(func(ctx context.Context) error {
		return errors.New("boom")
	})

	m.Shutdown()

	if !ran {
		t.Error("An error in one step must not skip the remaining steps")
	}
}

func TestWaitWithContextCancellation(t *testing.T) {
	m := New(time.Second)

	done := false
	m.Register(func(ctx context.Context) error {
		done = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.WaitWithContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if !done {
		t.Error("Shutdown functions should run on context cancellation")
	}

	select {
	case <-m.Done():
	default:
		t.Error("Done channel should be closed after shutdown")
	}
}

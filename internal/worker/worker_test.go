package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPool_StartStop(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, job Job) error {
		processed.Add(1)
		return nil
	}

	pool := NewPool(2, 10, processor)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	for i := 0; i < 5; i++ {
		if !pool.TrySubmit(i) {
			t.Errorf("TrySubmit(%d) dropped with buffer space available", i)
		}
	}

	time.Sleep(50 * time.Millisecond)

	cancel()
	pool.Stop()

	if processed.Load() != 5 {
		t.Errorf("expected 5 jobs processed, got %d", processed.Load())
	}
}

func TestPool_TrySubmitFullBuffer(t *testing.T) {
	block := make(chan struct{})
	processor := func(ctx context.Context, job Job) error {
		<-block
		return nil
	}

	pool := NewPool(1, 1, processor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	// First job occupies the worker, second fills the buffer.
	pool.TrySubmit(1)
	pool.TrySubmit(2)

	dropped := false
	for i := 0; i < 10; i++ {
		if !pool.TrySubmit(i) {
			dropped = true
			break
		}
		time.Sleep(time.Millisecond)
	}
	if !dropped {
		t.Error("expected TrySubmit to report a drop once the buffer filled")
	}

	close(block)
	pool.Stop()
}

package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunAllIndexes(t *testing.T) {
	pool := NewPool(4)
	n := 100
	out := make([]int, n)

	err := pool.Run(context.Background(), n, func(ctx context.Context, i int) {
		out[i] = i * 2
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for i, v := range out {
		if v != i*2 {
			t.Errorf("out[%d] = %d, expected %d", i, v, i*2)
		}
	}
}

func TestPool_ZeroTasks(t *testing.T) {
	if err := NewPool(4).Run(context.Background(), 0, func(ctx context.Context, i int) {
		t.Error("Expected fn never to run")
	}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestPool_ClampsWorkerCount(t *testing.T) {
	if w := NewPool(0).Workers(); w != 1 {
		t.Errorf("Workers() = %d, expected 1", w)
	}
	if w := NewPool(-5).Workers(); w != 1 {
		t.Errorf("Workers() = %d, expected 1", w)
	}
}

func TestPool_Cancellation(t *testing.T) {
	pool := NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())

	var ran int32
	err := pool.Run(ctx, 1000, func(ctx context.Context, i int) {
		atomic.AddInt32(&ran, 1)
		cancel()
		time.Sleep(time.Millisecond)
	})
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if atomic.LoadInt32(&ran) == 1000 {
		t.Error("Expected cancellation to skip remaining tasks")
	}
}

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow("openai") {
		t.Error("Expected the first request to be allowed")
	}
	if l.Allow("openai") {
		t.Error("Expected the second immediate request to be throttled")
	}
	// Separate keys have separate buckets.
	if !l.Allow("local") {
		t.Error("Expected a different key to have its own bucket")
	}
}

func TestLimiter_SetKeyRate(t *testing.T) {
	l := NewLimiter(1, 1)
	l.SetKeyRate("burst", 1000, 5)

	for i := 0; i < 5; i++ {
		if !l.Allow("burst") {
			t.Fatalf("Expected burst request %d to be allowed", i)
		}
	}
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	if err := l.Wait(context.Background(), "slow"); err != nil {
		t.Fatalf("Expected the first token immediately, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "slow"); err == nil {
		t.Error("Expected the second wait to fail on a short deadline")
	}
}

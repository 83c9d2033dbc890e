package semaphore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Parallel()

	if New(0, time.Second) != nil {
		t.Error("New(0) should be unlimited (nil)")
	}
	if New(-1, time.Second) != nil {
		t.Error("New(-1) should be unlimited (nil)")
	}

	sem := New(5, 10*time.Second)
	if sem == nil {
		t.Fatal("New(5) returned nil")
	}
	if cap(sem.sem) != 5 || sem.InUse() != 0 {
		t.Errorf("capacity = %d, in use = %d; want 5, 0", cap(sem.sem), sem.InUse())
	}
}

func TestAcquireRelease(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		capacity int
	}{
		{"capacity-1", 1},
		{"capacity-5", 5},
		{"capacity-100", 100},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sem := New(tc.capacity, 10*time.Millisecond)
			ctx := context.Background()

			for i := 0; i < tc.capacity; i++ {
				if err := sem.Acquire(ctx); err != nil {
					t.Fatalf("Acquire #%d error = %v", i, err)
				}
			}
			if err := sem.Acquire(ctx); !errors.Is(err, ErrTimeout) {
				t.Errorf("Acquire on full semaphore error = %v, want ErrTimeout", err)
			}

			sem.Release()
			if err := sem.Acquire(ctx); err != nil {
				t.Errorf("Acquire after Release error = %v", err)
			}
			if sem.InUse() != tc.capacity {
				t.Errorf("InUse() = %d, want %d", sem.InUse(), tc.capacity)
			}
		})
	}
}

func TestAcquireZeroTimeout(t *testing.T) {
	t.Parallel()

	sem := New(1, 0)
	sem.Acquire(context.Background())

	start := time.Now()
	if err := sem.Acquire(context.Background()); !errors.Is(err, ErrTimeout) {
		t.Errorf("Acquire() error = %v, want ErrTimeout", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("Acquire with zero timeout waited")
	}
}

func TestAcquireWaitsForRelease(t *testing.T) {
	t.Parallel()

	sem := New(1, time.Second)
	sem.Acquire(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		sem.Release()
	}()

	if err := sem.Acquire(context.Background()); err != nil {
		t.Errorf("Acquire() error = %v, want slot after release", err)
	}
}

func TestAcquireContextCancellation(t *testing.T) {
	t.Parallel()

	sem := New(1, 10*time.Second)
	sem.Acquire(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sem.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire() error = %v, want context.Canceled", err)
	}
}

func TestNilSemaphore(t *testing.T) {
	t.Parallel()

	var sem *ConnSemaphore
	if err := sem.Acquire(context.Background()); err != nil {
		t.Errorf("nil Acquire() error = %v", err)
	}
	sem.Release()
	if sem.InUse() != 0 {
		t.Error("nil InUse() != 0")
	}
}

func TestConcurrentAcquireRelease(t *testing.T) {
	t.Parallel()

	sem := New(3, time.Second)
	var wg sync.WaitGroup
	var mu sync.Mutex
	active, peak := 0, 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
			sem.Release()
		}()
	}
	wg.Wait()

	if peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
}

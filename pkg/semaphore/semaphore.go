// Package semaphore limits how many connections a server keeps at once.
package semaphore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when no slot frees up in time.
var ErrTimeout = errors.New("timeout acquiring connection slot")

// ConnSemaphore hands out a fixed number of connection slots.
// A nil *ConnSemaphore is unlimited: Acquire and Release are no-ops.
type ConnSemaphore struct {
	sem     chan struct{}
	timeout time.Duration
}

// New creates a semaphore with n slots. It returns nil (unlimited) for n <= 0.
// A zero timeout makes Acquire fail immediately when all slots are taken.
func New(n int, timeout time.Duration) *ConnSemaphore {
	if n <= 0 {
		return nil
	}
	return &ConnSemaphore{sem: make(chan struct{}, n), timeout: timeout}
}

// Acquire takes a slot, waiting up to the semaphore's timeout.
func (s *ConnSemaphore) Acquire(ctx context.Context) error {
	if s == nil {
		return nil
	}

	select {
	case s.sem <- struct{}{}:
		return nil
	default:
	}
	if s.timeout <= 0 {
		return fmt.Errorf("%w: all %d slots in use", ErrTimeout, cap(s.sem))
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	select {
	case s.sem <- struct{}{}:
		return nil
	case <-timeoutCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w after %v", ErrTimeout, s.timeout)
	}
}

// Release frees a slot taken by Acquire.
func (s *ConnSemaphore) Release() {
	if s == nil {
		return
	}
	<-s.sem
}

// InUse returns the number of taken slots.
func (s *ConnSemaphore) InUse() int {
	if s == nil {
		return 0
	}
	return len(s.sem)
}

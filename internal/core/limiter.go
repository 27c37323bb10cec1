package core

// limiter.go bounds the number of concurrent writes (product creation and
// batch registration).
//
// Writers that cannot get a slot wait up to maxWait before failing with
// ErrTooManyWrites. WaitForDrain lets shutdown wait for in-flight writes.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyWrites is returned when every write slot stays busy for longer
// than the wait timeout. Clients should retry after a short delay.
var ErrTooManyWrites = errors.New("too many concurrent writes, please try again later")

// DefaultMaxConcurrentWrites is the default limit for parallel writes.
const DefaultMaxConcurrentWrites = 8

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 5 * time.Second

// WriteLimiter controls concurrent writes using a semaphore.
type WriteLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewWriteLimiter creates a limiter that allows at most maxConcurrent
// simultaneous writes. Non-positive values fall back to the defaults.
func NewWriteLimiter(maxConcurrent int, maxWait time.Duration) *WriteLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentWrites
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &WriteLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a write slot.
// Returns ErrTooManyWrites when the wait times out, or the context error if
// ctx ends first. The caller must call Release after a successful Acquire.
func (l *WriteLimiter) Acquire(ctx context.Context) error {
	if l.TryAcquire() {
		return nil
	}

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyWrites
	}
}

// TryAcquire takes a slot without blocking. Returns false if none is free.
func (l *WriteLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *WriteLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of writes in progress.
func (l *WriteLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// Available returns the number of free slots.
func (l *WriteLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until no write is active or ctx is done.
func (l *WriteLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WriteLimiterStatus is a snapshot of the limiter state.
type WriteLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *WriteLimiter) Status() WriteLimiterStatus {
	return WriteLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.semaphore),
	}
}

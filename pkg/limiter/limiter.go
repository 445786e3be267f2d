// Package limiter provides the permit pool that bounds concurrent file writes.
//
// A Limiter is constructed explicitly and handed to whichever component
// performs writes. Callers acquire one permit before a write and release it
// afterward, including on failure, so at most Capacity writes are ever in
// flight regardless of how many write tasks are scheduled.
package limiter

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DefaultCapacity is the number of permits used when none is configured.
const DefaultCapacity = 200

// Limiter is a counting permit pool.
//
// Limiter is safe for concurrent use.
type Limiter struct {
	capacity int64
	sem      *semaphore.Weighted

	// Instrumentation only; never consulted for admission.
	inFlight atomic.Int64
	peak     atomic.Int64
	acquired atomic.Int64
}

// New creates a Limiter with the given number of permits.
// A non-positive capacity falls back to DefaultCapacity.
func New(capacity int) *Limiter {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Limiter{
		capacity: int64(capacity),
		sem:      semaphore.NewWeighted(int64(capacity)),
	}
}

// Acquire blocks until a permit is available or ctx is done.
// On error no permit is held and Release must not be called.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire write permit: %w", err)
	}

	n := l.inFlight.Add(1)
	l.acquired.Add(1)
	for {
		p := l.peak.Load()
		if n <= p || l.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return nil
}

// Release returns a permit to the pool.
func (l *Limiter) Release() {
	l.inFlight.Add(-1)
	l.sem.Release(1)
}

// Do runs fn while holding a permit. The permit is released before Do
// returns, whatever fn returns.
func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

// Capacity returns the total number of permits.
func (l *Limiter) Capacity() int {
	return int(l.capacity)
}

// InFlight returns the number of permits currently held.
func (l *Limiter) InFlight() int {
	return int(l.inFlight.Load())
}

// Peak returns the highest number of permits held at once.
func (l *Limiter) Peak() int {
	return int(l.peak.Load())
}

// Stats is a snapshot of limiter counters.
type Stats struct {
	Capacity int
	InFlight int
	Peak     int
	Acquired int64
}

// Stats returns current limiter statistics.
func (l *Limiter) Stats() Stats {
	return Stats{
		Capacity: int(l.capacity),
		InFlight: int(l.inFlight.Load()),
		Peak:     int(l.peak.Load()),
		Acquired: l.acquired.Load(),
	}
}

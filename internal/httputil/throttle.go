// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time so throttles can be driven by tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock is the wall clock.
var SystemClock Clock = realClock{}

// Throttle enforces a minimum interval between consecutive calls to one
// service. Every outbound request waits on the throttle of its service.
type Throttle struct {
	interval time.Duration
	clock    Clock

	mu   sync.Mutex
	last time.Time
}

// NewThrottle returns a throttle allowing one call per interval. A nil
// clock selects SystemClock. A zero interval never waits.
func NewThrottle(interval time.Duration, clock Clock) *Throttle {
	if clock == nil {
		clock = SystemClock
	}
	return &Throttle{interval: interval, clock: clock}
}

// Interval returns the configured minimum delay between calls.
func (t *Throttle) Interval() time.Duration {
	return t.interval
}

// Wait blocks until the next call is allowed and records the call time.
// It returns ctx.Err() if the context ends first; the slot is not
// consumed in that case.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.last.IsZero() && t.interval > 0 {
		if d := t.last.Add(t.interval).Sub(t.clock.Now()); d > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.clock.After(d):
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.last = t.clock.Now()
	return nil
}

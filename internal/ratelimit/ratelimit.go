// Package ratelimit combines a per-call inter-request delay with a
// sliding-window request cap, grounded on
// translation-service/internal/middleware's RateLimiter (sliding
// window over a map of timestamps) plus golang.org/x/time/rate for the
// steady per-call pacing spec §4.9/§4.10 both require.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces two independent constraints: a minimum delay between
// any two calls (token-bucket, via x/time/rate) and a maximum number of
// calls within a trailing window (sliding window, via timestamps).
type Limiter struct {
	bucket *rate.Limiter

	mu         sync.Mutex
	window     time.Duration
	maxInWindow int
	timestamps []time.Time
}

// NewLimiter builds a limiter that allows at most one call every
// minInterCallDelay, and no more than maxRequestsPerMinute calls in any
// trailing 60-second window.
func NewLimiter(minInterCallDelay time.Duration, maxRequestsPerMinute int) *Limiter {
	var every rate.Limit
	if minInterCallDelay > 0 {
		every = rate.Every(minInterCallDelay)
	} else {
		every = rate.Inf
	}
	return &Limiter{
		bucket:      rate.NewLimiter(every, 1),
		window:      time.Minute,
		maxInWindow: maxRequestsPerMinute,
	}
}

// Wait blocks until both the inter-call delay and the sliding-window
// budget permit another call, or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.bucket.Wait(ctx); err != nil {
		return err
	}
	return l.waitForWindow(ctx)
}

func (l *Limiter) waitForWindow(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()
		cutoff := now.Add(-l.window)

		kept := l.timestamps[:0]
		for _, ts := range l.timestamps {
			if ts.After(cutoff) {
				kept = append(kept, ts)
			}
		}
		l.timestamps = kept

		if l.maxInWindow <= 0 || len(l.timestamps) < l.maxInWindow {
			l.timestamps = append(l.timestamps, now)
			l.mu.Unlock()
			return nil
		}

		oldest := l.timestamps[0]
		sleepFor := oldest.Add(l.window).Sub(now)
		l.mu.Unlock()

		if sleepFor <= 0 {
			continue
		}

		timer := time.NewTimer(sleepFor)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// InWindow reports how many calls have been recorded in the current
// trailing window.
func (l *Limiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-l.window)
	count := 0
	for _, ts := range l.timestamps {
		if ts.After(cutoff) {
			count++
		}
	}
	return count
}

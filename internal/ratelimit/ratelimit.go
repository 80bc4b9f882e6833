package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Defaults used when the configuration does not say otherwise.
const (
	DefaultMaxCalls = 60
	DefaultWindow   = time.Minute
)

// ErrWaitInterrupted is returned by a Sleeper that woke before its duration
// elapsed for a reason other than context cancellation. Acquire treats it,
// and any other sleeper error while ctx is live, as a spurious wake-up and
// waits again.
var ErrWaitInterrupted = errors.New("rate limit wait interrupted")

// Clock returns the current time.
type Clock func() time.Time

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(l *Limiter) { l.now = c }
}

// WithSleeper replaces the timer-based sleep.
func WithSleeper(s Sleeper) Option {
	return func(l *Limiter) { l.sleep = s }
}

// Limiter is a sliding-window rate limiter. It is safe for concurrent use.
type Limiter struct {
	maxCalls int
	window   time.Duration
	now      Clock
	sleep    Sleeper

	mu    sync.Mutex
	calls []time.Time
}

// New returns a limiter admitting at most maxCalls per window. A maxCalls of
// zero or less disables limiting.
func New(maxCalls int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire blocks until a call may proceed and records its admission. The
// only error it returns is ctx.Err(), without admitting, once ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.maxCalls <= 0 || l.window <= 0 {
		return nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		wait := l.reserve()
		if wait <= 0 {
			return nil
		}

		slog.Info("rate limit reached, waiting", "wait", wait.Round(time.Millisecond), "maxCalls", l.maxCalls, "window", l.window)
		if err := l.sleep(ctx, wait); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !errors.Is(err, ErrWaitInterrupted) {
				slog.Debug("rate limit wait failed, waiting again", "error", err)
			}
		}
	}
}

// Wait is Acquire without cancellation. It always admits.
func (l *Limiter) Wait() {
	for l.Acquire(context.Background()) != nil {
	}
}

// Pending returns the number of admissions still inside the window.
func (l *Limiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.calls)
}

// reserve admits a call and returns zero, or returns how long to wait before
// the oldest admission leaves the window.
func (l *Limiter) reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)
	if len(l.calls) >= l.maxCalls {
		return l.window - now.Sub(l.calls[0])
	}
	l.calls = append(l.calls, now)
	return 0
}

func (l *Limiter) prune(now time.Time) {
	i := 0
	for i < len(l.calls) && now.Sub(l.calls[i]) >= l.window {
		i++
	}
	if i > 0 {
		l.calls = append(l.calls[:0], l.calls[i:]...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

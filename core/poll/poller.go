// Package poll provides the bounded polling primitives behind trade
// confirmation tracking and slow strategy generation: a fixed-interval
// result poller with an attempt budget, and a deadline race that falls
// back to polling when the primary request takes too long.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted reports that the attempt budget ran out while the probed
// operation was still pending. It signals uncertainty, not failure: the
// operation may still complete after the caller stops watching.
var ErrExhausted = errors.New("poll: attempts exhausted")

type outcomeKind int

const (
	kindPending outcomeKind = iota
	kindDone
	kindFailed
)

// Outcome is the result of one probe attempt.
type Outcome[T any] struct {
	kind  outcomeKind
	value T
	err   error
}

// Pending means the probed operation has not settled yet; the poller will
// spend one attempt and try again after the interval.
func Pending[T any]() Outcome[T] {
	return Outcome[T]{kind: kindPending}
}

// Done carries the final value and stops the loop.
func Done[T any](v T) Outcome[T] {
	return Outcome[T]{kind: kindDone, value: v}
}

// Fail stops the loop immediately with err, even if budget remains.
func Fail[T any](err error) Outcome[T] {
	return Outcome[T]{kind: kindFailed, err: err}
}

type Options struct {
	Interval    time.Duration
	MaxAttempts int
	// InitialDelay postpones the first probe. Zero means probe immediately.
	InitialDelay time.Duration
}

// Run invokes probe until it settles or opts.MaxAttempts pending outcomes
// have been consumed. Attempts are strictly sequential: the interval
// elapses fully before the next probe fires. ctx is checked before every
// scheduled attempt, so abandoned pollers do not leak timers.
func Run[T any](ctx context.Context, opts Options, probe func(context.Context) Outcome[T]) (T, error) {
	var zero T

	if opts.MaxAttempts <= 0 {
		return zero, ErrExhausted
	}

	if opts.InitialDelay > 0 {
		if err := wait(ctx, opts.InitialDelay); err != nil {
			return zero, err
		}
	}

	remaining := opts.MaxAttempts
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		out := probe(ctx)
		switch out.kind {
		case kindDone:
			return out.value, nil
		case kindFailed:
			return zero, out.err
		}

		remaining--
		if remaining <= 0 {
			return zero, ErrExhausted
		}

		if err := wait(ctx, opts.Interval); err != nil {
			return zero, err
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

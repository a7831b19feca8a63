package poll

import (
	"context"
	"time"
)

// RaceWithFallback starts primary and a timeout timer. Whichever settles
// first decides the result: if primary returns (value or error) before the
// deadline the fallback never runs, otherwise the primary's context is
// canceled to abandon the in-flight attempt and the result is whatever
// fallback produces. The fallback runs at most once.
func RaceWithFallback[R any](ctx context.Context, timeout time.Duration, primary, fallback func(context.Context) (R, error)) (R, error) {
	primCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type settled struct {
		value R
		err   error
	}

	ch := make(chan settled, 1)
	go func() {
		v, err := primary(primCtx)
		ch <- settled{value: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s := <-ch:
		return s.value, s.err
	case <-timer.C:
		cancel()
		return fallback(ctx)
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

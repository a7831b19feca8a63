package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaceFastPrimaryWins(t *testing.T) {
	var fallbackRan atomic.Bool

	got, err := RaceWithFallback(context.Background(), time.Second,
		func(ctx context.Context) (string, error) {
			return "fast", nil
		},
		func(ctx context.Context) (string, error) {
			fallbackRan.Store(true)
			return "fallback", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "fast", got)
	assert.False(t, fallbackRan.Load())
}

func TestRacePrimaryErrorIsTerminal(t *testing.T) {
	boom := errors.New("boom")
	var fallbackRan atomic.Bool

	_, err := RaceWithFallback(context.Background(), time.Second,
		func(ctx context.Context) (string, error) {
			return "", boom
		},
		func(ctx context.Context) (string, error) {
			fallbackRan.Store(true)
			return "fallback", nil
		})

	require.ErrorIs(t, err, boom)
	assert.False(t, fallbackRan.Load())
}

func TestRaceTimeoutRunsFallbackAndCancelsPrimary(t *testing.T) {
	primaryCanceled := make(chan struct{})

	got, err := RaceWithFallback(context.Background(), 10*time.Millisecond,
		func(ctx context.Context) (string, error) {
			<-ctx.Done()
			close(primaryCanceled)
			return "", ctx.Err()
		},
		func(ctx context.Context) (string, error) {
			return "fallback", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "fallback", got)

	select {
	case <-primaryCanceled:
	case <-time.After(time.Second):
		t.Fatal("primary context was not canceled after the deadline")
	}
}

func TestRaceOuterContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RaceWithFallback(ctx, time.Hour,
		func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
		func(ctx context.Context) (string, error) {
			t.Error("fallback must not run after outer cancellation")
			return "", nil
		})

	require.ErrorIs(t, err, context.Canceled)
}

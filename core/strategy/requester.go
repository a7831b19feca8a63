package strategy

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wavetradeapp/wave_trader/core/poll"
	"github.com/wavetradeapp/wave_trader/utils/logger"
)

// AnalyzeAPI is the slice of the backend contract the requester needs.
type AnalyzeAPI interface {
	Analyze(ctx context.Context, sess *Session) (string, error)
}

const (
	defaultTimeout      = 10 * time.Minute
	defaultPollInterval = 10 * time.Second
	defaultPollAttempts = 60
)

// Requester races the generation call against a deadline. When the
// deadline fires, it falls back to re-issuing the identical request on a
// fixed interval until something comes back or the attempt budget runs
// out. The backend offers no job id to check status against, so a slow
// backend can end up processing the request more than once.
type Requester struct {
	api          AnalyzeAPI
	timeout      time.Duration
	pollInterval time.Duration
	pollAttempts int
}

func NewRequester(api AnalyzeAPI) *Requester {
	return &Requester{
		api:          api,
		timeout:      defaultTimeout,
		pollInterval: defaultPollInterval,
		pollAttempts: defaultPollAttempts,
	}
}

// SetTiming overrides the deadline and fallback polling cadence.
func (r *Requester) SetTiming(timeout, pollInterval time.Duration, pollAttempts int) {
	if timeout > 0 {
		r.timeout = timeout
	}
	if pollInterval > 0 {
		r.pollInterval = pollInterval
	}
	if pollAttempts > 0 {
		r.pollAttempts = pollAttempts
	}
}

// RequestStrategy returns the generated strategy text. A non-2xx on the
// primary attempt is terminal (*GenerationError); errors during fallback
// polling are swallowed and retried; an exhausted budget surfaces as
// poll.ErrExhausted, which callers report as a timeout notice rather
// than a failure.
func (r *Requester) RequestStrategy(ctx context.Context, sess *Session) (string, error) {
	primary := func(ctx context.Context) (string, error) {
		return r.api.Analyze(ctx, sess)
	}

	fallback := func(ctx context.Context) (string, error) {
		logger.Logrus.WithFields(logrus.Fields{"TokenAddress": sess.TokenAddress}).Info("generation deadline hit, switching to fallback polling")

		opts := poll.Options{
			Interval:     r.pollInterval,
			MaxAttempts:  r.pollAttempts,
			InitialDelay: r.pollInterval,
		}
		return poll.Run(ctx, opts, func(ctx context.Context) poll.Outcome[string] {
			text, err := r.api.Analyze(ctx, sess)
			if err != nil {
				return poll.Pending[string]()
			}
			return poll.Done(text)
		})
	}

	return poll.RaceWithFallback(ctx, r.timeout, primary, fallback)
}

package procurement

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	// The procurement API allows a small sustained call budget; 15 calls
	// per 15 minutes matches the remote quota this service is granted.
	rateLimitCalls  = 15
	rateLimitPeriod = 15 * time.Minute

	// maxAttempts bounds retries of a single logical call, the initial
	// attempt included.
	maxAttempts = 8
)

// resilientCaller applies a shared token-bucket rate limit and an
// exponential-backoff retry policy to outbound procurement calls. A single
// instance is shared by all concurrent handler invocations; rate.Limiter
// is internally synchronized so no additional locking is needed.
type resilientCaller struct {
	limiter    *rate.Limiter
	newBackoff func() backoff.BackOff
}

func newResilientCaller() *resilientCaller {
	return &resilientCaller{
		limiter: rate.NewLimiter(rate.Every(rateLimitPeriod/rateLimitCalls), rateLimitCalls),
		newBackoff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxAttempts-1)
		},
	}
}

// newImmediateCaller returns a caller with no rate limiting and immediate
// retries. Used in tests.
func newImmediateCaller() *resilientCaller {
	return &resilientCaller{
		limiter: rate.NewLimiter(rate.Inf, 1),
		newBackoff: func() backoff.BackOff {
			return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxAttempts-1)
		},
	}
}

// Call runs op under the rate limit, retrying transient failures with
// exponential backoff. Errors wrapped with backoff.Permanent stop the
// retry loop immediately.
func (r *resilientCaller) Call(ctx context.Context, op func() error) error {
	attempt := func() error {
		if err := r.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		return op()
	}

	return backoff.Retry(attempt, backoff.WithContext(r.newBackoff(), ctx))
}

// permanent marks an error as non-retryable for the resilient caller while
// preserving the wrapped classification for callers.
func permanent(err error) error {
	return backoff.Permanent(err)
}

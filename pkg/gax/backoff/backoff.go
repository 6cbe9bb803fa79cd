// Package backoff retries calls made through gax clients. The executor never
// retries on its own; callers that want retries wrap their calls here.
package backoff

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/cloudrest/pkg/gax"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultInitial = 500 * time.Millisecond
	defaultMax     = 30 * time.Second
)

// Policy configures Retry.
//
// Invalid values are normalized:
//   - MaxAttempts < 1 becomes 1 (single attempt)
//   - Initial <= 0 becomes 500ms
//   - Max < Initial becomes Initial
type Policy struct {
	MaxAttempts int
	Initial     time.Duration
	Max         time.Duration
}

// DefaultPolicy returns a policy making at most attempts calls.
func DefaultPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts: attempts,
		Initial:     defaultInitial,
		Max:         defaultMax,
	}
}

func (p Policy) normalize() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	if p.Initial <= 0 {
		p.Initial = defaultInitial
	}

	if p.Max < p.Initial {
		p.Max = p.Initial
	}

	return p
}

// Delay is how long to wait before retrying after err on the given attempt
// (zero based). Server RetryInfo advice wins when it asks for longer than
// the exponential backoff.
func Delay(err error, attempt int, policy Policy) time.Duration {
	policy = policy.normalize()

	wait := retryablehttp.DefaultBackoff(policy.Initial, policy.Max, attempt, nil)

	if httpErr, ok := gax.AsHTTPError(err); ok {
		if advised, ok := httpErr.RetryDelay(); ok && advised > wait {
			wait = advised
		}
	}

	return wait
}

// Retry calls fn until it succeeds, returns an error gax.IsRetryable rejects,
// or the policy runs out of attempts. The last error is returned wrapped.
func Retry[T any](ctx context.Context, policy Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	policy = policy.normalize()

	var (
		zero    T
		lastErr error
	)

	for attempt := range policy.MaxAttempts {
		if attempt > 0 {
			timer := time.NewTimer(Delay(lastErr, attempt-1, policy))

			select {
			case <-ctx.Done():
				timer.Stop()

				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !gax.IsRetryable(err) {
			return zero, err
		}
	}

	if policy.MaxAttempts == 1 {
		return zero, lastErr
	}

	return zero, fmt.Errorf("giving up after %d attempts: %w", policy.MaxAttempts, lastErr)
}

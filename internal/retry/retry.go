// Package retry is a thin policy wrapper around sethvargo/go-retry so the
// three external call sites (embed, vector upsert, completion) share one
// backoff scheme instead of hand-rolled loops.
package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

type Policy struct {
	// Attempts is the total attempt count, first try included.
	Attempts  int
	BaseDelay time.Duration
	// CallTimeout bounds each individual attempt. Zero disables it.
	CallTimeout time.Duration
}

func DefaultPolicy() Policy {
	return Policy{Attempts: 3, BaseDelay: 200 * time.Millisecond}
}

// CallContext derives a per-attempt context from ctx. Callers that skip Do
// (single-shot operations) use it to get the same attempt bound.
func (p Policy) CallContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.CallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.CallTimeout)
}

// Transient marks err as retryable. Operations passed to Do return plain
// errors to stop immediately and Transient(err) to request another attempt.
func Transient(err error) error {
	return retry.RetryableError(err)
}

// Do runs op under p with exponential backoff and jitter. The last error is
// returned once attempts are exhausted or op returns a non-retryable error.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = 200 * time.Millisecond
	}

	backoff := retry.WithJitter(base/4, retry.NewExponential(base))
	backoff = retry.WithMaxRetries(uint64(attempts-1), backoff) // #nosec G115 -- attempts sanitized above

	run := op
	if p.CallTimeout > 0 {
		run = func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, p.CallTimeout)
			defer cancel()
			return op(ctx)
		}
	}

	return retry.Do(ctx, backoff, run)
}

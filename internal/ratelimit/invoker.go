// Package ratelimit wraps every outbound GitHub API call with quota
// monitoring and bounded exponential-backoff retry.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/compozy/repovault/internal/domain"
	"github.com/google/go-github/v74/github"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	// DefaultMaxRetries bounds the retry loop per call.
	DefaultMaxRetries = 3
	// DefaultInitialDelay is the first backoff delay.
	DefaultInitialDelay = 1 * time.Second
	// DefaultMaxDelay caps the doubling backoff.
	DefaultMaxDelay = 60 * time.Second
	// DefaultJitter spreads concurrent retries apart.
	DefaultJitter = 500 * time.Millisecond
	// DefaultLowWaterMark is the remaining-quota threshold below which
	// a warning is logged before each call.
	DefaultLowWaterMark = 100
)

// Sleeper blocks for the given duration or until the context is done.
// Injectable so retry timing is testable without real elapsed time.
type Sleeper func(ctx context.Context, d time.Duration) error

// BackoffFactory builds a fresh backoff schedule for one call.
type BackoffFactory func() retry.Backoff

// Call performs one API operation and returns the HTTP response for
// quota bookkeeping.
type Call func(ctx context.Context) (*github.Response, error)

// Invoker executes calls under the retry policy: exponential backoff
// starting at 1s, doubling per attempt, capped at 60s, with jitter, up
// to 3 retries. Rate-limit and transient failures retry; other 4xx
// fail immediately.
type Invoker struct {
	backoff      BackoffFactory
	sleep        Sleeper
	lowWaterMark int
	remaining    atomic.Int64
	log          *zap.Logger
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithBackoffFactory overrides the backoff schedule (tests use an
// un-jittered schedule for exact delays).
func WithBackoffFactory(f BackoffFactory) Option {
	return func(iv *Invoker) { iv.backoff = f }
}

// WithSleeper overrides the blocking sleep.
func WithSleeper(s Sleeper) Option {
	return func(iv *Invoker) { iv.sleep = s }
}

// WithLowWaterMark overrides the quota warning threshold.
func WithLowWaterMark(n int) Option {
	return func(iv *Invoker) { iv.lowWaterMark = n }
}

// New returns an Invoker with the default policy.
func New(log *zap.Logger, opts ...Option) *Invoker {
	if log == nil {
		log = zap.NewNop()
	}
	iv := &Invoker{
		backoff: func() retry.Backoff {
			b := retry.NewExponential(DefaultInitialDelay)
			b = retry.WithCappedDuration(DefaultMaxDelay, b)
			b = retry.WithJitter(DefaultJitter, b)
			return retry.WithMaxRetries(DefaultMaxRetries, b)
		},
		sleep:        contextSleep,
		lowWaterMark: DefaultLowWaterMark,
		log:          log,
	}
	iv.remaining.Store(-1)
	for _, opt := range opts {
		opt(iv)
	}
	return iv
}

// Do runs one call under the retry policy. Exhausting retries on a
// rate-limit response returns a RateLimitExceededError; the caller
// surfaces it as an entity failure, never a process crash.
func (iv *Invoker) Do(ctx context.Context, op string, call Call) error {
	backoff := iv.backoff()
	attempts := 0
	for {
		iv.warnLowQuota(op)
		resp, err := call(ctx)
		iv.observe(resp)
		if err == nil {
			return nil
		}
		kind := classify(err)
		if kind == kindPermanent {
			return fmt.Errorf("%s: %w", op, err)
		}
		delay, stop := backoff.Next()
		if stop {
			if kind == kindRateLimited {
				return &domain.RateLimitExceededError{Operation: op, Attempts: attempts + 1, Err: err}
			}
			return fmt.Errorf("%s: transient error retries exhausted after %d attempts: %w", op, attempts+1, err)
		}
		attempts++
		iv.log.Warn("retrying API call",
			zap.String("operation", op),
			zap.Int("attempt", attempts),
			zap.Duration("delay", delay),
			zap.Error(err))
		if sleepErr := iv.sleep(ctx, delay); sleepErr != nil {
			return fmt.Errorf("%s: %w", op, sleepErr)
		}
	}
}

// Remaining returns the last-known remaining quota, or -1 before the
// first response.
func (iv *Invoker) Remaining() int {
	return int(iv.remaining.Load())
}

func (iv *Invoker) warnLowQuota(op string) {
	remaining := iv.remaining.Load()
	if remaining >= 0 && remaining < int64(iv.lowWaterMark) {
		iv.log.Warn("API quota running low",
			zap.String("operation", op),
			zap.Int64("remaining", remaining))
	}
}

func (iv *Invoker) observe(resp *github.Response) {
	if resp == nil {
		return
	}
	iv.remaining.Store(int64(resp.Rate.Remaining))
}

type errorKind int

const (
	kindTransient errorKind = iota
	kindRateLimited
	kindPermanent
)

// classify buckets an API error into the retry taxonomy: rate limits
// and abuse limits retry, 5xx and network timeouts retry, any other
// 4xx fails immediately.
func classify(err error) errorKind {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return kindRateLimited
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return kindRateLimited
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		status := respErr.Response.StatusCode
		switch {
		case status == 403 || status == 429:
			return kindRateLimited
		case status >= 500:
			return kindTransient
		case status >= 400:
			return kindPermanent
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return kindTransient
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return kindPermanent
	}
	return kindTransient
}

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

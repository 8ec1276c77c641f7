// Package retry wraps failable operations in a sequential exponential-backoff policy that
// understands the errx taxonomy.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/Abraxas-365/wacloud/logx"
)

const (
	DefaultMaxRetries        = 3
	DefaultInitialDelay      = 1000 * time.Millisecond
	DefaultMaxDelay          = 30000 * time.Millisecond
	DefaultBackoffMultiplier = 2.0
)

// Config is the immutable configuration of a Policy
type Config struct {
	MaxRetries        int           // Retries after the first attempt (0 = run once)
	InitialDelay      time.Duration // Delay before the first retry
	MaxDelay          time.Duration // Upper bound for any computed delay
	BackoffMultiplier float64       // Growth factor between retries
	RetryOnRateLimit  bool          // Retry 429 responses
}

// DefaultConfig returns the defaults used by New
func DefaultConfig() Config {
	return Config{
		MaxRetries:        DefaultMaxRetries,
		InitialDelay:      DefaultInitialDelay,
		MaxDelay:          DefaultMaxDelay,
		BackoffMultiplier: DefaultBackoffMultiplier,
		RetryOnRateLimit:  true,
	}
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// RetryHook is called before each backoff wait; attempt is 0-indexed
type RetryHook func(attempt int, err error, delay time.Duration)

// Policy decides whether and when to retry. It holds no per-call state and is safe to
// share between goroutines.
type Policy struct {
	cfg     Config
	sleep   Sleeper
	onRetry RetryHook
}

// Option configures a Policy
type Option func(*Policy)

func WithMaxRetries(n int) Option {
	return func(p *Policy) {
		if n >= 0 {
			p.cfg.MaxRetries = n
		}
	}
}

func WithInitialDelay(d time.Duration) Option {
	return func(p *Policy) {
		if d >= 0 {
			p.cfg.InitialDelay = d
		}
	}
}

func WithMaxDelay(d time.Duration) Option {
	return func(p *Policy) {
		if d >= 0 {
			p.cfg.MaxDelay = d
		}
	}
}

func WithBackoffMultiplier(m float64) Option {
	return func(p *Policy) {
		if m > 0 {
			p.cfg.BackoffMultiplier = m
		}
	}
}

func WithRetryOnRateLimit(enabled bool) Option {
	return func(p *Policy) { p.cfg.RetryOnRateLimit = enabled }
}

// WithConfig replaces the whole configuration. Out-of-range values are clamped: a negative
// budget runs the operation once, negative delays become zero and a non-positive multiplier
// falls back to the default.
func WithConfig(cfg Config) Option {
	return func(p *Policy) {
		cfg.MaxRetries = max(cfg.MaxRetries, 0)
		cfg.InitialDelay = max(cfg.InitialDelay, 0)
		cfg.MaxDelay = max(cfg.MaxDelay, 0)
		if cfg.BackoffMultiplier <= 0 || math.IsNaN(cfg.BackoffMultiplier) {
			cfg.BackoffMultiplier = DefaultBackoffMultiplier
		}
		p.cfg = cfg
	}
}

// WithSleeper replaces the timer-based wait, mainly for tests
func WithSleeper(s Sleeper) Option {
	return func(p *Policy) {
		if s != nil {
			p.sleep = s
		}
	}
}

// WithOnRetry registers a hook called before every backoff wait
func WithOnRetry(hook RetryHook) Option {
	return func(p *Policy) { p.onRetry = hook }
}

// New creates a policy from the defaults plus opts
func New(opts ...Option) *Policy {
	p := &Policy{
		cfg:   DefaultConfig(),
		sleep: timerSleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns a copy of the policy configuration
func (p *Policy) Config() Config {
	return p.cfg
}

// Backoff returns the computed delay for the 0-indexed attempt:
// min(initialDelay * multiplier^attempt, maxDelay)
func (p *Policy) Backoff(attempt int) time.Duration {
	delay := float64(p.cfg.InitialDelay) * math.Pow(p.cfg.BackoffMultiplier, float64(attempt))
	if delay > float64(p.cfg.MaxDelay) || math.IsInf(delay, 0) || math.IsNaN(delay) {
		return p.cfg.MaxDelay
	}
	return time.Duration(delay)
}

// Delay decides whether err, produced by the 0-indexed attempt, should be retried and how
// long to wait first. It does not look at the retry budget.
func (p *Policy) Delay(attempt int, err error) (time.Duration, bool) {
	if _, ok := errx.AsValidation(err); ok {
		return 0, false
	}

	if rl, ok := errx.AsRateLimit(err); ok {
		if !p.cfg.RetryOnRateLimit {
			return 0, false
		}
		if rl.HasRetryAfter {
			return rl.RetryAfter, true
		}
	}

	return p.Backoff(attempt), true
}

// Do runs op until it succeeds, fails with a non-retryable error, or the budget of
// MaxRetries+1 attempts is spent. The error returned is always the one produced by the
// last attempt.
func (p *Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		delay, retryable := p.Delay(attempt, lastErr)
		if !retryable || attempt == p.cfg.MaxRetries {
			return lastErr
		}

		if p.onRetry != nil {
			p.onRetry(attempt, lastErr, delay)
		}
		logx.Debug("retry: attempt %d/%d failed, next in %s: %v", attempt+1, p.cfg.MaxRetries+1, delay, lastErr)

		if err := p.sleep(ctx, delay); err != nil {
			logx.Warn("retry: abandoned after attempt %d: %v", attempt+1, err)
			return lastErr
		}
	}

	return lastErr
}

// DoWithResult executes op with retry and returns both result and error
func DoWithResult[T any](ctx context.Context, p *Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = op(ctx)
		return innerErr
	})
	return result, err
}

func timerSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

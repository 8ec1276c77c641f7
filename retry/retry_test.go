package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/Abraxas-365/wacloud/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures requested delays instead of sleeping
type recorder struct {
	delays []time.Duration
}

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func TestDefaults(t *testing.T) {
	cfg := retry.New().Config()

	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 1000*time.Millisecond, cfg.InitialDelay)
	assert.Equal(t, 30000*time.Millisecond, cfg.MaxDelay)
	assert.Equal(t, 2.0, cfg.BackoffMultiplier)
	assert.True(t, cfg.RetryOnRateLimit)
}

func TestDo_ValidationIsNeverRetried(t *testing.T) {
	rec := &recorder{}
	p := retry.New(retry.WithMaxRetries(5), retry.WithSleeper(rec.sleep))

	calls := 0
	want := errx.Validation("to", "recipient is required")
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return want
	})

	assert.Same(t, want, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestDo_PersistentFailureUsesWholeBudget(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{"network", errx.Network("connection reset", nil)},
		{"api", errx.API("internal error", errx.WithHTTPStatus(500))},
		{"plain error", errors.New("boom")},
	}

	for _, tc := range testCases {
		for _, maxRetries := range []int{0, 1, 4} {
			t.Run(tc.name, func(t *testing.T) {
				rec := &recorder{}
				p := retry.New(retry.WithMaxRetries(maxRetries), retry.WithSleeper(rec.sleep))

				calls := 0
				err := p.Do(context.Background(), func(ctx context.Context) error {
					calls++
					return tc.err
				})

				assert.Equal(t, maxRetries+1, calls)
				assert.Len(t, rec.delays, maxRetries)
				assert.Same(t, tc.err, err)
			})
		}
	}
}

func TestDo_ReturnsLastError(t *testing.T) {
	p := retry.New(retry.WithMaxRetries(2), retry.WithSleeper((&recorder{}).sleep))

	errs := []error{
		errx.Network("first", nil),
		errx.API("second"),
		errx.Network("third", nil),
	}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		e := errs[calls]
		calls++
		return e
	})

	assert.Same(t, errs[2], err)
}

func TestBackoff_NonDefaultMultiplier(t *testing.T) {
	rec := &recorder{}
	p := retry.New(
		retry.WithMaxRetries(4),
		retry.WithInitialDelay(100*time.Millisecond),
		retry.WithBackoffMultiplier(3),
		retry.WithMaxDelay(2*time.Second),
		retry.WithSleeper(rec.sleep),
	)

	_ = p.Do(context.Background(), func(ctx context.Context) error {
		return errx.Network("down", nil)
	})

	// 100, 300, 900, then 2700 capped at 2000
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		300 * time.Millisecond,
		900 * time.Millisecond,
		2000 * time.Millisecond,
	}, rec.delays)

	assert.Equal(t, 900*time.Millisecond, p.Backoff(2))
	assert.Equal(t, 2*time.Second, p.Backoff(50))
}

func TestDo_RateLimitHintOverridesBackoff(t *testing.T) {
	rec := &recorder{}
	p := retry.New(retry.WithSleeper(rec.sleep))

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errx.RateLimit("slow down", errx.WithRetryAfter(10*time.Second))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{10000 * time.Millisecond}, rec.delays)
}

func TestDo_RateLimitWithoutHintUsesBackoff(t *testing.T) {
	rec := &recorder{}
	p := retry.New(retry.WithInitialDelay(250*time.Millisecond), retry.WithSleeper(rec.sleep))

	calls := 0
	_ = p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errx.RateLimit("slow down")
		}
		return nil
	})

	assert.Equal(t, []time.Duration{250 * time.Millisecond, 500 * time.Millisecond}, rec.delays)
}

func TestDo_RateLimitRetryDisabled(t *testing.T) {
	rec := &recorder{}
	p := retry.New(retry.WithRetryOnRateLimit(false), retry.WithSleeper(rec.sleep))

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errx.RateLimit("slow down", errx.WithRetryAfter(time.Second))
	})

	assert.True(t, errx.IsKind(err, errx.KindRateLimit))
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestDo_CancelledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := retry.New(retry.WithInitialDelay(time.Hour))

	calls := 0
	want := errx.Network("down", nil)
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		return want
	})

	assert.Same(t, want, err)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryHook(t *testing.T) {
	type call struct {
		attempt int
		delay   time.Duration
	}
	var seen []call

	p := retry.New(
		retry.WithMaxRetries(2),
		retry.WithInitialDelay(10*time.Millisecond),
		retry.WithSleeper((&recorder{}).sleep),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			seen = append(seen, call{attempt, delay})
		}),
	)

	_ = p.Do(context.Background(), func(ctx context.Context) error {
		return errx.Network("down", nil)
	})

	assert.Equal(t, []call{{0, 10 * time.Millisecond}, {1, 20 * time.Millisecond}}, seen)
}

func TestDoWithResult_TwoFailuresThenSuccess(t *testing.T) {
	rec := &recorder{}
	p := retry.New(
		retry.WithMaxRetries(2),
		retry.WithInitialDelay(100*time.Millisecond),
		retry.WithSleeper(rec.sleep),
	)

	calls := 0
	got, err := retry.DoWithResult(context.Background(), p, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errx.Network("connection refused", nil)
		}
		return "wamid.OK", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "wamid.OK", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, rec.delays)
}

func TestDelay(t *testing.T) {
	p := retry.New()

	d, ok := p.Delay(0, errx.Validation("to", "bad"))
	assert.False(t, ok)
	assert.Zero(t, d)

	d, ok = p.Delay(1, errx.API("bad gateway"))
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, d)

	d, ok = p.Delay(3, errx.RateLimit("slow", errx.WithRetryAfter(5*time.Second)))
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, d)
}

func TestTimerSleep_Real(t *testing.T) {
	p := retry.New(retry.WithMaxRetries(1), retry.WithInitialDelay(20*time.Millisecond))

	start := time.Now()
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errx.Network("down", nil)
		}
		return nil
	})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWithConfig_ClampsOutOfRangeValues(t *testing.T) {
	p := retry.New(retry.WithConfig(retry.Config{
		MaxRetries:        -1,
		InitialDelay:      -time.Second,
		MaxDelay:          -time.Second,
		BackoffMultiplier: -3,
	}), retry.WithSleeper((&recorder{}).sleep))

	cfg := p.Config()
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, time.Duration(0), cfg.InitialDelay)
	assert.Equal(t, time.Duration(0), cfg.MaxDelay)
	assert.Equal(t, retry.DefaultBackoffMultiplier, cfg.BackoffMultiplier)

	calls := 0
	want := errx.Network("connection reset", nil)
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return want
	})

	assert.Equal(t, 1, calls)
	assert.Same(t, want, err)
}

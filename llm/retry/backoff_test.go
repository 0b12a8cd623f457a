package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastPolicy(maxRetries int) *Policy {
	return &Policy{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetryer_SucceedsFirstAttempt(t *testing.T) {
	r := New(fastPolicy(3), zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryer_RetriesUntilSuccess(t *testing.T) {
	r := New(fastPolicy(3), zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryer_ExhaustsRetries(t *testing.T) {
	r := New(fastPolicy(2), zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return errors.New("permanent")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls) // 1 次初始 + 2 次重试
	assert.Contains(t, err.Error(), "retries exhausted")
}

func TestRetryer_NonRetryableStopsImmediately(t *testing.T) {
	fatal := errors.New("fatal")
	policy := fastPolicy(5)
	policy.Retryable = func(err error) bool { return !errors.Is(err, fatal) }
	r := New(policy, zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return fatal
	})

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestRetryer_ContextCancellation(t *testing.T) {
	policy := fastPolicy(5)
	policy.InitialDelay = time.Second
	r := New(policy, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Do(ctx, func() error { return errors.New("transient") })
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryer_OnRetryCallback(t *testing.T) {
	policy := fastPolicy(2)
	attempts := make([]int, 0, 2)
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}
	r := New(policy, zap.NewNop())

	_ = r.Do(context.Background(), func() error { return errors.New("x") })
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestRetryer_DelayCappedAtMax(t *testing.T) {
	policy := &Policy{
		MaxRetries:   10,
		InitialDelay: time.Millisecond,
		MaxDelay:     4 * time.Millisecond,
		Multiplier:   10.0,
	}
	r := New(policy, zap.NewNop())

	for attempt := 1; attempt <= 10; attempt++ {
		assert.LessOrEqual(t, r.delay(attempt), 4*time.Millisecond)
	}
}

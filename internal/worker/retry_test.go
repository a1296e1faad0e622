package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"pethotel/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 5*time.Second, policy.NextDelay(5), "capped")
	assert.Equal(t, time.Second, policy.NextDelay(0))
	assert.Equal(t, time.Second, RetryPolicy{}.NextDelay(1))
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.RetryConfig{MaxRetries: 3, InitialDelayMS: 200, MaxDelayMS: 5000, BackoffFactor: 1.5})
	assert.Equal(t, 3, p.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, p.InitialDelay)
	assert.Equal(t, 5*time.Second, p.MaxDelay)
	assert.Equal(t, 1.5, p.BackoffFactor)
}

func TestRetryDo(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	ctx := context.Background()

	t.Run("SucceedsAfterFailures", func(t *testing.T) {
		calls := 0
		var retried []int
		err := policy.Do(ctx, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("boom")
			}
			return nil
		}, func(attempt int, err error, delay time.Duration) {
			retried = append(retried, attempt)
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{1, 2}, retried)
	})

	t.Run("GivesUp", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := policy.Do(ctx, func(context.Context) error {
			calls++
			return boom
		}, nil)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 4, calls)
	})

	t.Run("NoRetries", func(t *testing.T) {
		calls := 0
		err := RetryPolicy{}.Do(ctx, func(context.Context) error {
			calls++
			return errors.New("boom")
		}, nil)
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		slow := RetryPolicy{MaxRetries: 5, InitialDelay: time.Hour}
		calls := 0
		err := slow.Do(cctx, func(context.Context) error {
			calls++
			cancel()
			return errors.New("boom")
		}, nil)
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

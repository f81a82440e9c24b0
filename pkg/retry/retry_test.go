package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telecare/clinic-dashboard/backend/pkg/retry"
)

func fastConfig() retry.Config {
	return retry.Config{
		MaxAttempts:     3,
		InitialDelay:    time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		BackoffFactor:   2.0,
		MaxTotalTimeout: time.Second,
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := retry.Do(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := retry.Do(context.Background(), fastConfig(), func() error {
		attempts++
		return errors.New("always failing")
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "max retry attempts")
	assert.Contains(t, err.Error(), "always failing")
}

func TestDo_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := retry.Do(ctx, fastConfig(), func() error {
		attempts++
		cancel()
		return errors.New("transient")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoWithLog_ReportsEachBackoff(t *testing.T) {
	var logged []int
	logFn := func(attempt int, err error, nextDelay time.Duration) {
		logged = append(logged, attempt)
	}

	err := retry.DoWithLog(context.Background(), fastConfig(), "probe", func() error {
		return errors.New("down")
	}, logFn)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "probe:")
	// The final attempt fails without a backoff, so it is not logged.
	assert.Equal(t, []int{1, 2}, logged)
}

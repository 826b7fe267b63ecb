package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_FirstAttemptSucceeds(t *testing.T) {
	ctx := context.Background()
	calls := 0

	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	}, 3, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	ctx := context.Background()
	calls := 0

	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, 5, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_AllAttemptsFail(t *testing.T) {
	ctx := context.Background()
	expectedErr := errors.New("persistent failure")
	calls := 0

	err := RetryWithBackoff(ctx, func() error {
		calls++
		return expectedErr
	}, 3, time.Millisecond)

	require.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 3, calls, "should attempt exactly maxAttempts times")
}

func TestRetryWithBackoff_InvalidMaxAttempts(t *testing.T) {
	ctx := context.Background()

	err := RetryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
	require.ErrorIs(t, err, ErrInvalidMaxAttempts)

	err = RetryWithBackoff(ctx, func() error { return nil }, -1, time.Millisecond)
	require.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return errors.New("should not matter")
	}, 3, time.Millisecond)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls, "cancelled context should prevent any attempt")
}

func TestRetryWithBackoff_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		cancel()
		return errors.New("fail then cancel")
	}, 3, time.Minute)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancellation during backoff should stop retrying")
}

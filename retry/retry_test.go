package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/docchat/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_ImmediateSuccess(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return nil
	}

	err := RetryWithBackoff(context.Background(), operation, 3, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	err := RetryWithBackoff(context.Background(), operation, 5, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestRetryWithBackoff_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	operation := func() error {
		attempts++
		return expectedErr
	}

	err := RetryWithBackoff(context.Background(), operation, 3, 10*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return the original error")
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	operation := func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	}

	err := RetryWithBackoff(ctx, operation, 10, 10*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, attempts, 2, "should stop when context is canceled")
}

func TestRetryWithBackoff_InvalidMaxAttempts(t *testing.T) {
	for _, n := range []int{0, -1} {
		attempts := 0
		err := RetryWithBackoff(context.Background(), func() error {
			attempts++
			return nil
		}, n, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
		assert.Equal(t, 0, attempts)
	}
}

func TestRetryIf_StopsOnPermanentError(t *testing.T) {
	attempts := 0
	permanent := fmt.Errorf("%w: OPENAI_API_KEY", core.ErrConfiguration)
	err := RetryIf(context.Background(), func() error {
		attempts++
		return permanent
	}, 5, time.Millisecond, Transient)

	assert.ErrorIs(t, err, core.ErrConfiguration)
	assert.Equal(t, 1, attempts)
}

func TestRetryIf_RetriesTransientError(t *testing.T) {
	attempts := 0
	err := RetryIf(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("%w: timeout", core.ErrEmbedding)
		}
		return nil
	}, 5, time.Millisecond, Transient)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("%w: x", core.ErrEmbedding), true},
		{fmt.Errorf("%w: x", core.ErrIndexWrite), true},
		{fmt.Errorf("%w: x", core.ErrLoad), false},
		{core.ErrUnsupportedFormat, false},
		{errors.New("other"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Transient(tt.err), "%v", tt.err)
	}
}

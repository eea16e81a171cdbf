package errors

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	err := New(ErrCodeGeneration, "something went wrong")

	assert.Equal(t, ErrCodeGeneration, err.Code)
	assert.Equal(t, SeverityError, err.Severity)
	assert.False(t, err.Recoverable)
	assert.Contains(t, err.Error(), "FFGE3001")
	assert.Contains(t, err.Error(), "something went wrong")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, ErrCodeSinkWrite, "write failed")

	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "disk full")

	assert.Nil(t, Wrap(nil, ErrCodeSinkWrite, "no-op"))
}

func TestWrapInheritsContext(t *testing.T) {
	inner := New(ErrCodeUnknownKey, "missing").WithContext("key", "STARTER")
	outer := Wrap(inner, ErrCodeGeneration, "lookup failed")

	assert.Equal(t, "STARTER", outer.Context["key"])
}

func TestErrorCodeComparison(t *testing.T) {
	err := New(ErrCodeInvalidState, "already identified")

	assert.True(t, err.Is(New(ErrCodeInvalidState, "different message")))
	assert.False(t, err.Is(New(ErrCodeGeneration, "already identified")))

	assert.Equal(t, ErrCodeInvalidState, GetErrorCode(err))
	assert.Equal(t, ErrCodeInvalidState, GetErrorCode(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, ErrCodeInternal, GetErrorCode(fmt.Errorf("plain")))
}

func TestRecoverable(t *testing.T) {
	err := New(ErrCodeConnectionFailed, "timed out")
	assert.False(t, IsRecoverable(err))

	err.AsRecoverable()
	assert.True(t, IsRecoverable(err))
	assert.False(t, IsRecoverable(fmt.Errorf("plain")))
}

func TestSuggestionsRenderInMessage(t *testing.T) {
	err := New(ErrCodeAuthenticationFailed, "login rejected").
		WithSuggestions("Check your password", "Check account lock status")

	msg := err.Error()
	assert.Contains(t, msg, "1. Check your password")
	assert.Contains(t, msg, "2. Check account lock status")
}

func TestUnknownKeyError(t *testing.T) {
	err := UnknownKeyError("product SKU", "FREE")

	assert.Equal(t, ErrCodeUnknownKey, err.Code)
	assert.Equal(t, "FREE", err.Context["key"])
	assert.Contains(t, err.Error(), `unknown product SKU "FREE"`)
	assert.NotEmpty(t, err.Suggestions)
}

func fastRetryConfig() *RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return New(ErrCodeConnectionFailed, "transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	attempts := 0
	permanent := New(ErrCodeInvalidState, "bad state")
	err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) error {
		attempts++
		return permanent
	})

	assert.Equal(t, 1, attempts)
	assert.Equal(t, ErrCodeInvalidState, GetErrorCode(err))
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) error {
		attempts++
		return New(ErrCodeServiceUnavailable, "still down")
	})

	require.Error(t, err)
	assert.Equal(t, 4, attempts) // initial try plus three retries
	assert.Equal(t, ErrCodeResourceExhausted, GetErrorCode(err))
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, fastRetryConfig(), func(ctx context.Context) error {
		return New(ErrCodeConnectionFailed, "transient")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

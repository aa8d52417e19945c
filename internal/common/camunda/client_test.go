// internal/common/camunda/client_test.go
package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"workforce-intelligence/internal/common/config"
	"workforce-intelligence/internal/common/errors"
	"workforce-intelligence/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() *RetryConfig {
	return &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	calls := 0
	result, err := executeWithRetry(context.Background(), fastRetry(), logger.NewTestLogger(t),
		func(ctx context.Context) (interface{}, error) {
			calls++
			if calls < 2 {
				return nil, stderrors.New("rpc error: code = Unavailable desc = connection refused")
			}
			return "ok", nil
		}, "topology")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, calls)
}

func TestExecuteWithRetry_DoesNotRetryPermanentError(t *testing.T) {
	calls := 0
	_, err := executeWithRetry(context.Background(), fastRetry(), logger.NewNoOpLogger(),
		func(ctx context.Context) (interface{}, error) {
			calls++
			return nil, stderrors.New("rpc error: code = NotFound desc = no such job")
		}, "complete-job")

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeBrokerRequestFailed, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestExecuteWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	_, err := executeWithRetry(context.Background(), fastRetry(), logger.NewNoOpLogger(),
		func(ctx context.Context) (interface{}, error) {
			calls++
			return nil, stderrors.New("context deadline exceeded")
		}, "topology")

	require.Error(t, err)
	assert.Equal(t, 3, calls)

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeBrokerUnavailable, stdErr.Code)
	assert.Contains(t, stdErr.Message, "after 3 attempts")
}

func TestExecuteWithRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	retry := &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}

	_, err := executeWithRetry(ctx, retry, logger.NewNoOpLogger(),
		func(ctx context.Context) (interface{}, error) {
			cancel()
			return nil, stderrors.New("connection reset by peer")
		}, "topology")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(config.CamundaConfig{
		BrokerAddress:  "zeebe:26500",
		UsePlaintext:   true,
		RequestTimeout: 1500,
	})

	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.True(t, cfg.UsePlaintextConnection)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, 10, cfg.RetryConfig.MaxRetries)
}

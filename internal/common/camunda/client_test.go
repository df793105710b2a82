package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-assistant/internal/common/errors"
)

func testClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   5 * time.Millisecond,
		},
	}}
}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	c := testClient(3)
	calls := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, stderrors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return "ok", nil
	}, "publish")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_DoesNotRetryPermanentError(t *testing.T) {
	c := testClient(3)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, stderrors.New("process definition not found")
	}, "create-instance")

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeWorkflowEngineUnavailable, stdErr.Code)
}

func TestExecuteWithRetry_MapsTimeouts(t *testing.T) {
	c := testClient(1)

	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		return nil, stderrors.New("context deadline exceeded")
	}, "topology")

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeWorkflowTimeout, stdErr.Code)
	assert.Contains(t, stdErr.Details, "after 2 attempts")
}

func TestExecuteWithRetry_HonoursCancellation(t *testing.T) {
	c := testClient(5)
	c.config.RetryConfig.BaseDelay = time.Second
	c.config.RetryConfig.MaxDelay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, stderrors.New("connection reset by peer")
	}, "topology")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackoff_Capped(t *testing.T) {
	rc := &RetryConfig{BaseDelay: time.Second, MaxDelay: 3 * time.Second}
	assert.Equal(t, time.Second, backoff(rc, 0))
	assert.Equal(t, 2*time.Second, backoff(rc, 1))
	assert.Equal(t, 3*time.Second, backoff(rc, 2))
}

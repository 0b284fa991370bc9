// concurrency/concurrency_test.go
package concurrency

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(limit int) *ConcurrencyHandler {
	return NewConcurrencyHandler(limit, zap.NewNop().Sugar(), nil)
}

func TestNewConcurrencyHandlerClampsLimit(t *testing.T) {
	assert.Equal(t, int64(MaxConcurrency), newTestHandler(50).CurrentCapacity(), "Limit should clamp to maximum")
	assert.Equal(t, int64(MinConcurrency), newTestHandler(0).CurrentCapacity(), "Limit should clamp to minimum")
	assert.Equal(t, int64(5), newTestHandler(5).CurrentCapacity())
}

func TestAcquireAndReleasePermit(t *testing.T) {
	handler := newTestHandler(2)

	ctx, requestID, err := handler.AcquireConcurrencyPermit(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, requestID)
	assert.Equal(t, int64(1), handler.ActivePermits())

	// The request ID should be retrievable from the returned context
	ctxID, ok := ctx.Value(RequestIDKey{}).(uuid.UUID)
	require.True(t, ok, "Context should carry the request ID")
	assert.Equal(t, requestID, ctxID)

	handler.ReleaseConcurrencyPermit(requestID)
	assert.Equal(t, int64(0), handler.ActivePermits())

	assert.Equal(t, int64(1), handler.Metrics.TotalRequests)
}

func TestAcquirePermitTimesOutWhenSaturated(t *testing.T) {
	handler := newTestHandler(1)

	_, first, err := handler.AcquireConcurrencyPermit(context.Background())
	require.NoError(t, err)
	defer handler.ReleaseConcurrencyPermit(first)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err = handler.AcquireConcurrencyPermit(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(1), handler.ActivePermits(), "Failed acquisition should not consume a permit")
}

func TestScaleUpAndDown(t *testing.T) {
	handler := newTestHandler(2)

	handler.ScaleUp()
	assert.Equal(t, int64(3), handler.CurrentCapacity())

	handler.ScaleDown()
	assert.Equal(t, int64(2), handler.CurrentCapacity())
}

func TestScaleDownStopsAtMinimum(t *testing.T) {
	handler := newTestHandler(1)

	handler.ScaleDown()
	assert.Equal(t, int64(MinConcurrency), handler.CurrentCapacity())
}

func TestScaleDownBlockedByActivePermits(t *testing.T) {
	handler := newTestHandler(2)

	_, first, err := handler.AcquireConcurrencyPermit(context.Background())
	require.NoError(t, err)
	_, second, err := handler.AcquireConcurrencyPermit(context.Background())
	require.NoError(t, err)

	handler.ScaleDown()
	assert.Equal(t, int64(2), handler.CurrentCapacity(), "Scale down should wait until permits free up")

	handler.ReleaseConcurrencyPermit(first)
	handler.ReleaseConcurrencyPermit(second)

	handler.ScaleDown()
	assert.Equal(t, int64(1), handler.CurrentCapacity())
}

func TestMonitorRateLimitHeaders(t *testing.T) {
	handler := newTestHandler(2)

	tests := []struct {
		name     string
		headers  map[string]string
		expected int
	}{
		{"Low remaining suggests scale down", map[string]string{"X-RateLimit-Remaining": "5"}, -1},
		{"RetryAfter suggests scale down", map[string]string{"Retry-After": "30"}, -1},
		{"Healthy headers suggest scale up", map[string]string{"X-RateLimit-Remaining": "500"}, 1},
		{"No headers suggest scale up", map[string]string{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			for k, v := range tt.headers {
				resp.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, handler.MonitorRateLimitHeaders(resp))
		})
	}
}

func TestMonitorServerResponseCodes(t *testing.T) {
	handler := newTestHandler(2)
	handler.Metrics.TotalRequests = 4

	// A single rate limit error against four requests exceeds the 10% threshold
	suggestion := handler.MonitorServerResponseCodes(&http.Response{StatusCode: http.StatusTooManyRequests})
	assert.Equal(t, -1, suggestion)
	assert.Equal(t, int64(1), handler.Metrics.TotalRateLimitErrors)

	handler.Metrics.TotalRequests = 1000
	suggestion = handler.MonitorServerResponseCodes(&http.Response{StatusCode: http.StatusOK})
	assert.Equal(t, 1, suggestion, "Low error rate with spare capacity should suggest scale up")

	suggestion = handler.MonitorServerResponseCodes(&http.Response{StatusCode: http.StatusServiceUnavailable})
	assert.Equal(t, int64(1), handler.Metrics.TotalServerErrors)
	assert.Equal(t, 1, suggestion, "Error rate still below threshold")
}

func TestMonitorResponseTimeVariability(t *testing.T) {
	handler := newTestHandler(2)

	// Steady response times keep the standard deviation at zero
	for i := 0; i < 5; i++ {
		suggestion := handler.MonitorResponseTimeVariability(100 * time.Millisecond)
		assert.Equal(t, 1, suggestion)
	}

	// A wildly divergent response time pushes the standard deviation over the threshold
	suggestion := handler.MonitorResponseTimeVariability(10 * time.Second)
	assert.Equal(t, -1, suggestion)
}

func TestEvaluateAndAdjustConcurrencyScalesDown(t *testing.T) {
	handler := newTestHandler(2)
	handler.Metrics.TotalRequests = 4

	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{"Retry-After": []string{"30"}},
	}

	handler.EvaluateAndAdjustConcurrency(resp, 100*time.Millisecond)
	assert.Equal(t, int64(1), handler.CurrentCapacity())
}

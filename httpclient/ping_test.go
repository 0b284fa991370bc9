// httpclient/ping_test.go
package httpclient

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/envhubhq/go-envhub-client/authenticationhandler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoHealthCheck(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, HealthEndpointPath, r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	}
	client, tokenHits := newTestClient(t, handler)

	healthStatus, err := client.DoHealthCheck()
	require.NoError(t, err)
	assert.Equal(t, "ok", healthStatus.Status)

	// The health endpoint is unauthenticated, no token must be fetched for it.
	assert.Equal(t, int32(0), tokenHits.Load())
}

func TestDoHealthCheckRetriesUntilHealthy(t *testing.T) {
	var hits atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	}
	client, _ := newTestClient(t, handler)

	healthStatus, err := client.DoHealthCheck()
	require.NoError(t, err)
	assert.Equal(t, "ok", healthStatus.Status)
	assert.Equal(t, int32(2), hits.Load())
}

func TestDoHealthCheckReportsUnhealthyService(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc(authenticationhandler.TokenEndpointPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"token":"test-token","expires":%q}`, time.Now().Add(time.Hour).UTC().Format(time.RFC3339))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"degraded"}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	config := ClientConfig{
		InstanceName:     "unit-test",
		AccessKeyID:      testAccessKeyID,
		AccessKeySecret:  testAccessKeySecret,
		OverrideBaseURL:  server.URL,
		LogLevel:         "LogLevelError",
		MaxRetryAttempts: 1,
	}
	client, err := BuildClient(config, true)
	require.NoError(t, err)

	_, err = client.DoHealthCheck()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health check failed after 2 attempts")
	assert.Contains(t, err.Error(), `unhealthy status "degraded"`)
	assert.Equal(t, int32(2), hits.Load())
}

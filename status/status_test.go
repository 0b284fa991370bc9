// status_test.go
package status

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRedirectStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		expected   bool
	}{
		{"Moved Permanently", http.StatusMovedPermanently, true},
		{"Found", http.StatusFound, true},
		{"See Other", http.StatusSeeOther, true},
		{"Temporary Redirect", http.StatusTemporaryRedirect, true},
		{"Permanent Redirect", http.StatusPermanentRedirect, true},
		{"OK", http.StatusOK, false},
		{"Not Modified", http.StatusNotModified, false},
		{"Bad Request", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRedirectStatusCode(tt.statusCode))
		})
	}
}

func TestIsPermanentRedirect(t *testing.T) {
	assert.True(t, IsPermanentRedirect(http.StatusMovedPermanently))
	assert.True(t, IsPermanentRedirect(http.StatusPermanentRedirect))
	assert.False(t, IsPermanentRedirect(http.StatusFound))
	assert.False(t, IsPermanentRedirect(http.StatusTemporaryRedirect))
}

func TestIsRetryableStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		expected   bool
	}{
		{"Request Timeout", http.StatusRequestTimeout, true},
		{"Too Many Requests", http.StatusTooManyRequests, true},
		{"Internal Server Error", http.StatusInternalServerError, true},
		{"Bad Gateway", http.StatusBadGateway, true},
		{"Service Unavailable", http.StatusServiceUnavailable, true},
		{"Gateway Timeout", http.StatusGatewayTimeout, true},
		{"OK", http.StatusOK, false},
		{"Bad Request", http.StatusBadRequest, false},
		{"Unauthorized", http.StatusUnauthorized, false},
		{"Not Found", http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryableStatusCode(tt.statusCode))
		})
	}
}

func TestIsNonRetryableStatusCode(t *testing.T) {
	assert.True(t, IsNonRetryableStatusCode(&http.Response{StatusCode: http.StatusBadRequest}))
	assert.True(t, IsNonRetryableStatusCode(&http.Response{StatusCode: http.StatusUnauthorized}))
	assert.True(t, IsNonRetryableStatusCode(&http.Response{StatusCode: http.StatusNotFound}))
	assert.True(t, IsNonRetryableStatusCode(&http.Response{StatusCode: http.StatusConflict}))
	assert.False(t, IsNonRetryableStatusCode(&http.Response{StatusCode: http.StatusServiceUnavailable}))
	assert.False(t, IsNonRetryableStatusCode(&http.Response{StatusCode: http.StatusTooManyRequests}))
}

func TestIsTransientError(t *testing.T) {
	assert.True(t, IsTransientError(&http.Response{StatusCode: http.StatusInternalServerError}))
	assert.True(t, IsTransientError(&http.Response{StatusCode: http.StatusServiceUnavailable}))
	assert.False(t, IsTransientError(&http.Response{StatusCode: http.StatusOK}))
	assert.False(t, IsTransientError(&http.Response{StatusCode: http.StatusBadRequest}))
	assert.False(t, IsTransientError(nil))
}

func TestIsRateLimitError(t *testing.T) {
	assert.True(t, IsRateLimitError(&http.Response{StatusCode: http.StatusTooManyRequests}))
	assert.False(t, IsRateLimitError(&http.Response{StatusCode: http.StatusOK}))
	assert.False(t, IsRateLimitError(nil))
}

func TestTranslateStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		resp     *http.Response
		expected string
	}{
		{"Nil response", nil, "No status code received, possible network or connection error."},
		{"OK", &http.Response{StatusCode: http.StatusOK}, "Request successful."},
		{"Unauthorized", &http.Response{StatusCode: http.StatusUnauthorized}, "Authentication failed. Verify the credentials or token being used for the request."},
		{"Not Found", &http.Response{StatusCode: http.StatusNotFound}, "Resource not found. Verify the instance name and the variable exists."},
		{"Standard text fallback", &http.Response{StatusCode: http.StatusTeapot}, "I'm a teapot."},
		{"Unknown code", &http.Response{StatusCode: 599}, "Unknown status code: 599"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TranslateStatusCode(tt.resp))
		})
	}
}

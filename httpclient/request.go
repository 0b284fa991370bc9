// httpclient/request.go
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/envhubhq/go-envhub-client/cookiejar"
	"github.com/envhubhq/go-envhub-client/headers"
	"github.com/envhubhq/go-envhub-client/ratehandler"
	"github.com/envhubhq/go-envhub-client/response"
	"github.com/envhubhq/go-envhub-client/status"
	"go.uber.org/zap"
)

// DoRequest constructs and executes an HTTP request against the service. It
// dispatches on the idempotency of the method: idempotent methods (GET, PUT,
// DELETE) run with retries to absorb transient errors and rate limits, while
// non-idempotent methods (POST, PATCH) run exactly once to avoid duplicating
// side effects. The response body is decoded into out via the response
// package; the caller is responsible for closing the response body when the
// returned response is non-nil.
func (c *Client) DoRequest(method, endpoint string, body, out interface{}) (*http.Response, error) {
	if IsIdempotentHTTPMethod(method) {
		return c.executeRequestWithRetries(method, endpoint, body, out)
	}
	if IsNonIdempotentHTTPMethod(method) {
		return c.executeRequest(method, endpoint, body, out)
	}

	c.Logger.Error("HTTP method not supported", zap.String("method", method))
	return nil, fmt.Errorf("unsupported HTTP method: %s", method)
}

// executeRequestWithRetries executes an idempotent request, retrying on
// transient errors and rate limits. Retries are bounded both by
// MaxRetryAttempts and by the TotalRetryDuration deadline; each transient
// retry backs off exponentially with jitter, and rate-limit retries honor the
// wait the service asked for.
func (c *Client) executeRequestWithRetries(method, endpoint string, body, out interface{}) (*http.Response, error) {
	log := c.Logger
	ctx := context.Background()
	totalRetryDeadline := time.Now().Add(c.config.TotalRetryDuration)

	var resp *http.Response
	var retryCount int

	log.Debug("Executing request with retries", zap.String("method", method), zap.String("endpoint", endpoint))

	for time.Now().Before(totalRetryDeadline) {
		res, requestErr := c.doRequest(ctx, method, endpoint, body)
		if requestErr != nil {
			return nil, requestErr
		}
		resp = res

		if resp.StatusCode >= 200 && resp.StatusCode < 400 {
			if resp.StatusCode >= 300 {
				log.Warn("Redirect response received", zap.Int("status_code", resp.StatusCode), zap.String("location", resp.Header.Get("Location")))
			}
			return resp, response.HandleAPISuccessResponse(resp, out, log)
		}

		// The service no longer accepts the cached token. Drop it so the
		// next operation authenticates from scratch.
		if resp.StatusCode == http.StatusUnauthorized {
			c.AuthTokenHandler.ClearToken()
		}

		statusMessage := status.TranslateStatusCode(resp)

		if status.IsNonRetryableStatusCode(resp) {
			log.Warn("Non-retryable error received", zap.Int("status_code", resp.StatusCode), zap.String("status_message", statusMessage))
			return resp, response.HandleAPIErrorResponse(resp, log)
		}

		if status.IsRateLimitError(resp) {
			waitDuration := ratehandler.ParseRateLimitHeaders(resp, log)
			if waitDuration > 0 {
				log.Warn("Rate limit encountered, waiting before retrying", zap.Duration("wait_duration", waitDuration))
				time.Sleep(waitDuration)
				continue
			}
		}

		if status.IsTransientError(resp) {
			retryCount++
			if retryCount > c.config.MaxRetryAttempts {
				log.Warn("Max retry attempts reached", zap.String("method", method), zap.String("endpoint", endpoint))
				break
			}
			waitDuration := ratehandler.CalculateBackoff(retryCount)
			log.Warn("Retrying request due to transient error",
				zap.String("method", method),
				zap.String("endpoint", endpoint),
				zap.Int("retry_count", retryCount),
				zap.String("status_message", statusMessage),
				zap.Duration("wait_duration", waitDuration),
			)
			time.Sleep(waitDuration)
			continue
		}

		break
	}

	if resp == nil {
		return nil, fmt.Errorf("no response received for %s %s within the retry window", method, endpoint)
	}
	return resp, response.HandleAPIErrorResponse(resp, log)
}

// executeRequest executes a non-idempotent request exactly once.
func (c *Client) executeRequest(method, endpoint string, body, out interface{}) (*http.Response, error) {
	log := c.Logger
	ctx := context.Background()

	log.Debug("Executing request without retries", zap.String("method", method), zap.String("endpoint", endpoint))

	resp, err := c.doRequest(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		if resp.StatusCode >= 300 {
			log.Warn("Redirect response received", zap.Int("status_code", resp.StatusCode), zap.String("location", resp.Header.Get("Location")))
		}
		return resp, response.HandleAPISuccessResponse(resp, out, log)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.AuthTokenHandler.ClearToken()
	}

	return resp, response.HandleAPIErrorResponse(resp, log)
}

// doRequest performs one round-trip: auth gate, concurrency permit, JSON
// marshal, standard headers, send, and post-send bookkeeping.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	log := c.Logger

	valid, err := c.AuthTokenHandler.CheckAndRefreshAuthToken(c.http, c.config.TokenRefreshBufferPeriod)
	if err != nil {
		return nil, fmt.Errorf("authentication token validation failed: %w", err)
	}
	if !valid {
		return nil, fmt.Errorf("authentication token validation failed")
	}

	ctx, requestID, err := c.Concurrency.AcquireConcurrencyPermit(ctx)
	if err != nil {
		log.Error("Failed to acquire concurrency permit", zap.Error(err))
		return nil, err
	}
	defer c.Concurrency.ReleaseConcurrencyPermit(requestID)

	var bodyReader io.Reader = http.NoBody
	if body != nil {
		requestData, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			log.Error("Failed to marshal request body", zap.String("method", method), zap.String("endpoint", endpoint), zap.Error(marshalErr))
			return nil, marshalErr
		}
		bodyReader = bytes.NewBuffer(requestData)
	}

	req, err := http.NewRequest(method, c.requestURL(endpoint), bodyReader)
	if err != nil {
		return nil, err
	}

	token, _ := c.AuthTokenHandler.CurrentToken()
	headerHandler := headers.NewHeaderHandler(req, log, token)
	headerHandler.SetRequestHeaders(c.config.CustomHeaders)
	headerHandler.LogHeaders(c.config.HideSensitiveData)

	req = req.WithContext(ctx)

	startTime := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("Failed to send request", zap.String("method", method), zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}

	duration := time.Since(startTime)
	if c.config.EnableDynamicRateLimiting {
		c.Concurrency.EvaluateAndAdjustConcurrency(resp, duration)
	}
	c.logResponseCookies(resp)
	headers.CheckDeprecationHeader(resp, log)

	log.Debug("Request sent successfully", zap.String("method", method), zap.String("endpoint", endpoint), zap.Int("status_code", resp.StatusCode))

	return resp, nil
}

// requestURL joins an endpoint path onto the base URL, consulting the
// permanent-redirect cache so known-moved resources skip a round-trip.
func (c *Client) requestURL(endpoint string) string {
	requestURL := c.BaseURL + endpoint
	if c.Redirects != nil {
		if target, ok := c.Redirects.ResolvePermanentRedirect(requestURL); ok {
			c.Logger.Debug("Using cached permanent redirect target", zap.String("url", requestURL), zap.String("target", target))
			return target
		}
	}
	return requestURL
}

// logResponseCookies records response cookies at debug level with sensitive
// values redacted.
func (c *Client) logResponseCookies(resp *http.Response) {
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return
	}
	redacted := cookiejar.RedactSensitiveCookies(cookies)
	pairs := make([]string, 0, len(redacted))
	for _, cookie := range redacted {
		pairs = append(pairs, cookie.Name+"="+cookie.Value)
	}
	c.Logger.Debug("Response cookies", zap.Strings("cookies", pairs))
}

// ratehandler/ratehandler.go
// This package provides backoff calculation and rate limit header parsing used by the
// request retry loop when the service throttles the client or a transient failure occurs.
package ratehandler

import (
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	// baseDelay is the starting delay for the first retry attempt.
	baseDelay = 100 * time.Millisecond
	// maxDelay caps the delay between retry attempts regardless of the retry count.
	maxDelay = 10 * time.Second
	// jitterFactor is the proportion of the calculated delay that is randomized to
	// spread out retries from concurrent clients.
	jitterFactor = 0.5
	// skewBuffer is added to reset-epoch waits to absorb clock skew between the
	// client and the service.
	skewBuffer = 5 * time.Second
)

// CalculateBackoff calculates the delay before the next retry attempt using exponential
// backoff with jitter. The delay doubles with each retry and is capped at maxDelay.
func CalculateBackoff(retry int) time.Duration {
	if retry < 0 {
		retry = 0
	}

	delay := float64(baseDelay) * math.Pow(2, float64(retry))

	// Randomize within [delay*(1-jitterFactor), delay*(1+jitterFactor)].
	jitter := (rand.Float64()*2 - 1) * jitterFactor
	delay = delay * (1 + jitter)

	if delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}
	return time.Duration(delay)
}

// ParseRateLimitHeaders parses rate limiting headers from an HTTP response and returns
// the duration the client should wait before retrying. It understands the Retry-After
// header carrying either delta-seconds or an HTTP-date, and the X-RateLimit-Reset header
// carrying a Unix epoch. When no recognized header is present it returns zero.
func ParseRateLimitHeaders(resp *http.Response, log *zap.SugaredLogger) time.Duration {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			return time.Duration(seconds) * time.Second
		}
		if date, err := http.ParseTime(retryAfter); err == nil {
			wait := time.Until(date)
			if wait < 0 {
				return 0
			}
			return wait
		}
		log.Warn("Unrecognized Retry-After header value", zap.String("retry_after", retryAfter))
	}

	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
			wait := time.Until(time.Unix(epoch, 0)) + skewBuffer
			if wait < 0 {
				return 0
			}
			return wait
		}
		log.Warn("Unrecognized X-RateLimit-Reset header value", zap.String("x_ratelimit_reset", reset))
	}

	return 0
}

// concurrency/metrics.go
package concurrency

import (
	"math"
	"net/http"
	"strconv"
	"time"
)

// EvaluateAndAdjustConcurrency evaluates the response from the server and adjusts the
// concurrency level accordingly.
func (ch *ConcurrencyHandler) EvaluateAndAdjustConcurrency(resp *http.Response, responseTime time.Duration) {
	// Call monitoring functions
	rateLimitFeedback := ch.MonitorRateLimitHeaders(resp)
	responseCodeFeedback := ch.MonitorServerResponseCodes(resp)
	responseTimeFeedback := ch.MonitorResponseTimeVariability(responseTime)

	// Determine overall action based on feedback
	suggestions := []int{rateLimitFeedback, responseCodeFeedback, responseTimeFeedback}
	scaleDownCount := 0
	scaleUpCount := 0

	for _, suggestion := range suggestions {
		switch suggestion {
		case -1:
			scaleDownCount++
		case 1:
			scaleUpCount++
		}
	}

	// Decide on scaling action
	if scaleDownCount > scaleUpCount {
		ch.ScaleDown()
	} else if scaleUpCount > scaleDownCount {
		ch.ScaleUp()
	}
}

// MonitorRateLimitHeaders monitors the rate limit headers in the response and suggests a
// concurrency adjustment.
func (ch *ConcurrencyHandler) MonitorRateLimitHeaders(resp *http.Response) int {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	retryAfter := resp.Header.Get("Retry-After")
	suggestion := 0

	if remaining != "" {
		remainingValue, err := strconv.Atoi(remaining)
		if err == nil && remainingValue < RateLimitRemainingThreshold {
			// Suggest decrease concurrency if X-RateLimit-Remaining is below the threshold
			suggestion = -1
		}
	}

	if retryAfter != "" {
		// Suggest decrease concurrency if Retry-After is specified
		suggestion = -1
	} else if suggestion == 0 && ch.CurrentCapacity() < MaxConcurrency {
		// Suggest increase concurrency if currently below maximum limit and no decrease
		// suggestion has been made
		suggestion = 1
	}

	return suggestion
}

// MonitorServerResponseCodes monitors the response status codes and suggests a concurrency
// adjustment.
func (ch *ConcurrencyHandler) MonitorServerResponseCodes(resp *http.Response) int {
	statusCode := resp.StatusCode

	ch.Metrics.Lock.Lock()
	switch {
	case statusCode == http.StatusTooManyRequests:
		ch.Metrics.TotalRateLimitErrors++
	case statusCode >= 500 && statusCode < 600:
		ch.Metrics.TotalServerErrors++
	}

	totalRequests := float64(ch.Metrics.TotalRequests)
	totalErrors := float64(ch.Metrics.TotalRateLimitErrors + ch.Metrics.TotalServerErrors)
	ch.Metrics.Lock.Unlock()

	if totalRequests == 0 {
		return 0
	}
	errorRate := totalErrors / totalRequests

	ch.Metrics.ResponseCodeMetrics.Lock.Lock()
	ch.Metrics.ResponseCodeMetrics.ErrorRate = errorRate
	ch.Metrics.ResponseCodeMetrics.Lock.Unlock()

	if errorRate > ErrorRateThreshold {
		// Suggest decrease concurrency
		return -1
	} else if ch.CurrentCapacity() < MaxConcurrency {
		// Suggest increase concurrency if there is capacity
		return 1
	}
	return 0
}

// MonitorResponseTimeVariability monitors the response time variability and suggests a
// concurrency adjustment. Variance is maintained incrementally across observations.
func (ch *ConcurrencyHandler) MonitorResponseTimeVariability(responseTime time.Duration) int {
	m := &ch.Metrics.ResponseTimeVariability
	m.Lock.Lock()

	m.Count++
	m.Total += responseTime
	m.Average = m.Total / time.Duration(m.Count)

	seconds := responseTime.Seconds()
	delta := seconds - m.mean
	m.mean += delta / float64(m.Count)
	m.m2 += delta * (seconds - m.mean)
	if m.Count > 1 {
		m.Variance = m.m2 / float64(m.Count-1)
	}

	stdDev := math.Sqrt(m.Variance)
	threshold := m.StdDevThreshold
	m.Lock.Unlock()

	if stdDev > threshold {
		// Suggest decrease concurrency
		return -1
	} else if ch.CurrentCapacity() < MaxConcurrency {
		// Suggest increase concurrency if there is capacity
		return 1
	}
	return 0
}

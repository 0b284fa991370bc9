// concurrency/const.go
package concurrency

import "time"

const (
	// Concurrency constants define parameters related to managing concurrent requests.

	// MaxConcurrency represents the maximum allowed concurrent requests.
	MaxConcurrency = 10

	// MinConcurrency represents the minimum allowed concurrent requests.
	MinConcurrency = 1

	// PermitAcquisitionTimeout is the longest a request waits for a concurrency permit
	// before giving up.
	PermitAcquisitionTimeout = 10 * time.Second

	// RateLimitRemainingThreshold is the X-RateLimit-Remaining value below which the
	// handler suggests scaling down concurrency.
	RateLimitRemainingThreshold = 10

	// MaxAcceptableResponseTimeVariability represents the maximum acceptable standard
	// deviation in response times, in seconds. It is used as the default threshold to
	// dynamically adjust concurrency based on fluctuations in response times.
	MaxAcceptableResponseTimeVariability = 0.5

	// ErrorRateThreshold represents the threshold for error rate above which concurrency will be adjusted.
	// Error rate is calculated as (TotalRateLimitErrors + TotalServerErrors) / TotalRequests.
	ErrorRateThreshold = 0.1
)

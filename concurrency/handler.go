// concurrency/handler.go
package concurrency

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// ConcurrencyHandler controls the number of concurrent HTTP requests.
type ConcurrencyHandler struct {
	sem              chan struct{}
	logger           *zap.SugaredLogger
	AcquisitionTimes []time.Duration
	lock             sync.Mutex
	currentCapacity  int64
	activePermits    int64
	Metrics          *ConcurrencyMetrics
}

// ConcurrencyMetrics captures various metrics related to managing concurrency for the
// client's interactions with the API.
type ConcurrencyMetrics struct {
	TotalRequests           int64         // Total number of requests made
	TotalRetries            int64         // Total number of retry attempts
	TotalRateLimitErrors    int64         // Total number of rate limit errors encountered
	TotalServerErrors       int64         // Total number of 5xx responses encountered
	PermitWaitTime          time.Duration // Total time spent waiting for permits
	ResponseTimeVariability struct {
		Total           time.Duration // Total response time for all requests
		Average         time.Duration // Average response time across all requests
		Variance        float64       // Sample variance of response times in seconds squared
		Count           int64         // Count of responses used for calculating response time variability
		StdDevThreshold float64       // Maximum acceptable standard deviation for adjusting concurrency
		Lock            sync.Mutex    // Lock for response time variability metrics

		mean float64 // Running mean of response times in seconds
		m2   float64 // Running sum of squared deviations, for incremental variance
	}
	ResponseCodeMetrics struct {
		ErrorRate float64    // Error rate calculated as (TotalRateLimitErrors + TotalServerErrors) / TotalRequests
		Lock      sync.Mutex // Lock for response code metrics
	}
	Lock sync.Mutex // Lock for overall metrics fields
}

// NewConcurrencyHandler initializes a new ConcurrencyHandler with the given concurrency
// limit, logger, and concurrency metrics. The ConcurrencyHandler ensures no more than a
// certain number of concurrent requests are made. It uses a semaphore to control concurrency.
func NewConcurrencyHandler(limit int, logger *zap.SugaredLogger, metrics *ConcurrencyMetrics) *ConcurrencyHandler {
	if limit < MinConcurrency {
		limit = MinConcurrency
	}
	if limit > MaxConcurrency {
		limit = MaxConcurrency
	}
	if metrics == nil {
		metrics = &ConcurrencyMetrics{}
	}
	if metrics.ResponseTimeVariability.StdDevThreshold == 0 {
		metrics.ResponseTimeVariability.StdDevThreshold = MaxAcceptableResponseTimeVariability
	}
	return &ConcurrencyHandler{
		sem:              make(chan struct{}, limit),
		logger:           logger,
		AcquisitionTimes: []time.Duration{},
		currentCapacity:  int64(limit),
		Metrics:          metrics,
	}
}

// CurrentCapacity returns the current concurrency limit.
func (ch *ConcurrencyHandler) CurrentCapacity() int64 {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.currentCapacity
}

// ActivePermits returns the number of permits currently held by in-flight requests.
func (ch *ConcurrencyHandler) ActivePermits() int64 {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.activePermits
}

// RequestIDKey is the type used as a key for storing and retrieving request-specific
// identifiers from a context.Context object. This private type ensures that the key is
// distinct and prevents accidental value retrieval or conflicts with other context keys.
// The value associated with this key in a context is a UUID that uniquely identifies a
// request holding a concurrency permit.
type RequestIDKey struct{}

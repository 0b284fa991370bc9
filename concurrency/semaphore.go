// concurrency/semaphore.go

/* This file provides the permit acquisition and release primitives for the concurrency
handler. The handler ensures no more than a configured number of concurrent requests are
sent to a service instance at the same time. This is managed using a semaphore. */
package concurrency

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AcquireConcurrencyPermit acquires a concurrency permit to regulate the number of
// concurrent requests within the configured limits. A unique request ID is generated for
// tracking and attached to the returned context, and the acquisition is bounded by
// PermitAcquisitionTimeout to prevent indefinite blocking.
//
// The returned context should be used for the request so that logs and metrics for the
// request can be correlated with its permit. The caller must release the permit with
// ReleaseConcurrencyPermit once the request completes.
//
// Example:
//
//	ctx, requestID, err := concurrencyHandler.AcquireConcurrencyPermit(context.Background())
//	if err != nil {
//	    // Handle permit acquisition failure
//	}
//	defer concurrencyHandler.ReleaseConcurrencyPermit(requestID)
func (ch *ConcurrencyHandler) AcquireConcurrencyPermit(ctx context.Context) (context.Context, uuid.UUID, error) {
	log := ch.logger

	// Measure the permit acquisition start time
	acquisitionStart := time.Now()

	// Generate a unique request ID for this acquisition
	requestID := uuid.New()

	// Create a new context with a timeout for acquiring the concurrency permit
	ctxWithTimeout, cancel := context.WithTimeout(ctx, PermitAcquisitionTimeout)
	defer cancel()

	ch.lock.Lock()
	sem := ch.sem
	ch.lock.Unlock()

	// Attempt to acquire a permit from the semaphore within the given context timeout
	select {
	case sem <- struct{}{}:
		acquisitionDuration := time.Since(acquisitionStart)

		ch.lock.Lock()
		ch.AcquisitionTimes = append(ch.AcquisitionTimes, acquisitionDuration)
		ch.activePermits++
		utilizedPermits := ch.activePermits
		availablePermits := ch.currentCapacity - utilizedPermits
		ch.lock.Unlock()

		ch.Metrics.Lock.Lock()
		ch.Metrics.PermitWaitTime += acquisitionDuration
		ch.Metrics.TotalRequests++
		ch.Metrics.Lock.Unlock()

		log.Debug("Acquired concurrency permit",
			zap.String("RequestID", requestID.String()),
			zap.Duration("AcquisitionTime", acquisitionDuration),
			zap.Int64("UtilizedPermits", utilizedPermits),
			zap.Int64("AvailablePermits", availablePermits),
		)

		// Add the acquired request ID to the context for use in subsequent operations
		ctxWithRequestID := context.WithValue(ctx, RequestIDKey{}, requestID)

		return ctxWithRequestID, requestID, nil

	case <-ctxWithTimeout.Done():
		log.Error("Failed to acquire concurrency permit", zap.Error(ctxWithTimeout.Err()))
		return ctx, requestID, ctxWithTimeout.Err()
	}
}

// ReleaseConcurrencyPermit returns a permit back to the semaphore pool, allowing other
// operations to proceed. It uses the provided requestID for structured logging, aiding in
// tracking and debugging the release of concurrency permits.
func (ch *ConcurrencyHandler) ReleaseConcurrencyPermit(requestID uuid.UUID) {
	ch.lock.Lock()
	sem := ch.sem
	ch.lock.Unlock()

	select {
	case <-sem:
	default:
		// The permit was absorbed by a semaphore resize, nothing to return.
	}

	ch.lock.Lock()
	if ch.activePermits > 0 {
		ch.activePermits--
	}
	utilizedPermits := ch.activePermits
	availablePermits := ch.currentCapacity - utilizedPermits
	ch.lock.Unlock()

	ch.logger.Debug("Released concurrency permit",
		zap.String("RequestID", requestID.String()),
		zap.Int64("UtilizedPermits", utilizedPermits),
		zap.Int64("AvailablePermits", availablePermits),
	)
}

// ResizeSemaphore adjusts the size of the semaphore used to control concurrency. This
// method creates a new semaphore with the specified new size and transfers outstanding
// permits so ongoing operations are unaffected. Callers must hold ch.lock.
func (ch *ConcurrencyHandler) ResizeSemaphore(newSize int64) {
	newSem := make(chan struct{}, newSize)

	// Transfer permits from the old semaphore to the new one.
	for {
		select {
		case permit := <-ch.sem:
			select {
			case newSem <- permit:
				// Permit transferred to new semaphore.
			default:
				// New semaphore is full, outstanding releases will drain the remainder.
			}
		default:
			// No more permits to transfer.
			ch.sem = newSem
			ch.currentCapacity = newSize
			return
		}
	}
}

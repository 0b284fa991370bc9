// concurrency/scale.go
package concurrency

import "go.uber.org/zap"

// ScaleDown reduces the concurrency level by one, down to the minimum limit.
func (ch *ConcurrencyHandler) ScaleDown() {
	ch.lock.Lock()
	defer ch.lock.Unlock()

	currentSize := ch.currentCapacity
	if currentSize <= MinConcurrency {
		ch.logger.Info("Concurrency already at minimum level; cannot reduce further", zap.Int64("currentSize", currentSize))
		return
	}

	// Check if active permits allow for scaling down
	if ch.activePermits >= currentSize {
		ch.logger.Info("Cannot scale down due to high number of active permits",
			zap.Int64("currentSize", currentSize),
			zap.Int64("activePermits", ch.activePermits),
		)
		return
	}

	newSize := currentSize - 1
	ch.logger.Info("Reducing request concurrency", zap.Int64("currentSize", currentSize), zap.Int64("newSize", newSize))
	ch.ResizeSemaphore(newSize)
}

// ScaleUp increases the concurrency level, up to the maximum limit. The step is a
// proportion of the remaining headroom so the handler approaches the maximum gradually.
func (ch *ConcurrencyHandler) ScaleUp() {
	ch.lock.Lock()
	defer ch.lock.Unlock()

	currentSize := ch.currentCapacity
	if currentSize >= MaxConcurrency {
		ch.logger.Info("Concurrency already at maximum level; cannot increase further", zap.Int64("currentSize", currentSize))
		return
	}

	// Calculate the increase based on a percentage of the available margin
	increase := int64(float64(MaxConcurrency-currentSize) * 0.1)
	if increase < 1 {
		increase = 1
	}
	newSize := currentSize + increase
	if newSize > MaxConcurrency {
		newSize = MaxConcurrency
	}

	ch.logger.Info("Increasing request concurrency", zap.Int64("currentSize", currentSize), zap.Int64("newSize", newSize))
	ch.ResizeSemaphore(newSize)
}

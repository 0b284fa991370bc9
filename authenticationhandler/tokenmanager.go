// authenticationhandler/tokenmanager.go
package authenticationhandler

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// CheckAndRefreshAuthToken checks the token's validity and refreshes it ahead
// of expiry. A token that expires within tokenRefreshBufferPeriod counts as
// invalid: handing it out would risk it lapsing mid-request. Before any
// network traffic the cache is consulted, so a token obtained by another
// process is reused rather than re-acquired. It returns true when a usable
// token is in place.
func (h *AuthTokenHandler) CheckAndRefreshAuthToken(httpClient *http.Client, tokenRefreshBufferPeriod time.Duration) (bool, error) {
	const maxConsecutiveRefreshAttempts = 10

	h.tokenLock.Lock()
	defer h.tokenLock.Unlock()

	if h.isTokenValid(tokenRefreshBufferPeriod) {
		h.Logger.Debug("Token is valid, no refresh required", zap.String("instance_name", h.InstanceName), zap.Time("expiry", h.Expires))
		return true, nil
	}

	if h.loadFromCache(tokenRefreshBufferPeriod) {
		return true, nil
	}

	refreshAttempts := 0
	for !h.isTokenValid(tokenRefreshBufferPeriod) {
		h.Logger.Debug("Token found to be invalid or close to expiry, handling token acquisition", zap.String("instance_name", h.InstanceName))
		if err := h.obtainOrRenewToken(httpClient); err != nil {
			h.Logger.Error("Failed to obtain a new token", zap.Error(err))
			return false, err
		}

		refreshAttempts++
		if refreshAttempts >= maxConsecutiveRefreshAttempts {
			return false, fmt.Errorf(
				"exceeded maximum consecutive token refresh attempts (%d): token lifetime (%s) is likely too short compared to the buffer period (%s) configured for token refresh",
				maxConsecutiveRefreshAttempts,
				time.Until(h.Expires),
				tokenRefreshBufferPeriod,
			)
		}
	}

	return true, nil
}

// isTokenValid reports whether the token is present and does not expire
// within the buffer period. Callers must hold h.tokenLock.
func (h *AuthTokenHandler) isTokenValid(tokenRefreshBufferPeriod time.Duration) bool {
	return h.Token != "" && time.Until(h.Expires) >= tokenRefreshBufferPeriod
}

// obtainOrRenewToken renews the held token when one exists, otherwise obtains
// a fresh one with the access key. Callers must hold h.tokenLock.
func (h *AuthTokenHandler) obtainOrRenewToken(httpClient *http.Client) error {
	if h.Token != "" {
		return h.renewToken(httpClient)
	}
	return h.obtainNewToken(httpClient)
}

// obtainNewToken acquires a token with bounded retries, backing off between
// attempts. Callers must hold h.tokenLock.
func (h *AuthTokenHandler) obtainNewToken(httpClient *http.Client) error {
	if h.Credentials.AccessKeyID == "" || h.Credentials.AccessKeySecret == "" {
		err := fmt.Errorf("no valid credentials configured, unable to obtain a token")
		h.Logger.Error("Authentication failed", zap.Error(err))
		return err
	}

	backoff := 100 * time.Millisecond
	const maxRetries = 5

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = h.obtainToken(httpClient)
		if err == nil {
			return nil
		}

		h.Logger.Warn("Failed to obtain token, retrying", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < maxRetries {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	return fmt.Errorf("failed to obtain token after %d attempts: %w", maxRetries, err)
}

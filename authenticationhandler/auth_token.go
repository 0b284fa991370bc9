// authenticationhandler/auth_token.go
package authenticationhandler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/envhubhq/go-envhub-client/headers/redact"
	"go.uber.org/zap"
)

// ObtainToken performs a single token acquisition against the token endpoint
// using the configured access key pair. Most callers want
// CheckAndRefreshAuthToken instead, which adds validity checks, cache reuse
// and retries around this call.
func (h *AuthTokenHandler) ObtainToken(httpClient *http.Client) error {
	h.tokenLock.Lock()
	defer h.tokenLock.Unlock()
	return h.obtainToken(httpClient)
}

// RefreshToken renews the held token via the renew endpoint. Any renewal
// failure falls back to a fresh acquisition with the access key, so an
// expired or revoked token never strands the client.
func (h *AuthTokenHandler) RefreshToken(httpClient *http.Client) error {
	h.tokenLock.Lock()
	defer h.tokenLock.Unlock()
	return h.renewToken(httpClient)
}

// InvalidateToken asks the service to invalidate the held token and drops the
// local copy along with its cache entry. Local state is cleared even when the
// service call fails: a token the client no longer trusts must not be reused.
func (h *AuthTokenHandler) InvalidateToken(httpClient *http.Client) error {
	h.tokenLock.Lock()
	defer h.tokenLock.Unlock()

	if h.Token == "" {
		return nil
	}
	defer h.clearLocked()

	req, err := http.NewRequest(http.MethodPost, h.endpoint(TokenInvalidateEndpointPath), nil)
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", "Bearer "+h.Token)

	resp, err := httpClient.Do(req)
	if err != nil {
		h.Logger.Warn("Token invalidation request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-OK response status: %d", resp.StatusCode)
	}

	h.Logger.Info("Token invalidated", zap.String("instance_name", h.InstanceName))
	return nil
}

// obtainToken exchanges the access key pair for a service token. Callers must
// hold h.tokenLock.
func (h *AuthTokenHandler) obtainToken(httpClient *http.Client) error {
	req, err := http.NewRequest(http.MethodPost, h.endpoint(TokenEndpointPath), nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(h.Credentials.AccessKeyID, h.Credentials.AccessKeySecret)

	resp, err := httpClient.Do(req)
	if err != nil {
		h.Logger.Error("Failed to execute token acquisition request", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-OK response status: %d", resp.StatusCode)
	}

	tokenResp := &TokenResponse{}
	if err := json.NewDecoder(resp.Body).Decode(tokenResp); err != nil {
		h.Logger.Error("Failed to decode token response", zap.Error(err))
		return err
	}

	return h.adoptToken(tokenResp)
}

// renewToken renews the held token, falling back to a full acquisition when
// the renewal request fails or returns an unusable token. Callers must hold
// h.tokenLock.
func (h *AuthTokenHandler) renewToken(httpClient *http.Client) error {
	req, err := http.NewRequest(http.MethodPost, h.endpoint(TokenRenewEndpointPath), nil)
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", "Bearer "+h.Token)

	resp, err := httpClient.Do(req)
	if err != nil {
		h.Logger.Warn("Token renewal request failed, falling back to token acquisition", zap.Error(err))
		return h.obtainNewToken(httpClient)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.Logger.Warn("Token renewal rejected, falling back to token acquisition", zap.Int("status_code", resp.StatusCode))
		return h.obtainNewToken(httpClient)
	}

	tokenResp := &TokenResponse{}
	if err := json.NewDecoder(resp.Body).Decode(tokenResp); err != nil {
		h.Logger.Warn("Failed to decode token renewal response, falling back to token acquisition", zap.Error(err))
		return h.obtainNewToken(httpClient)
	}

	if err := h.adoptToken(tokenResp); err != nil {
		h.Logger.Warn("Token renewal returned an unusable token, falling back to token acquisition", zap.Error(err))
		return h.obtainNewToken(httpClient)
	}

	return nil
}

// adoptToken validates a token response, resolves its expiry and installs it
// as the current token. Callers must hold h.tokenLock.
func (h *AuthTokenHandler) adoptToken(tokenResp *TokenResponse) error {
	if tokenResp.Token == "" {
		return fmt.Errorf("token response contained an empty token")
	}

	expiry, err := resolveTokenExpiry(tokenResp)
	if err != nil {
		return err
	}

	h.Token = tokenResp.Token
	h.Expires = expiry
	h.saveToCache()

	h.Logger.Info("Token obtained successfully",
		zap.String("instance_name", h.InstanceName),
		zap.String("token", redact.RedactSensitiveHeaderData(h.HideSensitiveData, "AccessToken", h.Token)),
		zap.Time("expiry", h.Expires),
		zap.Duration("valid_for", time.Until(h.Expires)),
	)
	return nil
}

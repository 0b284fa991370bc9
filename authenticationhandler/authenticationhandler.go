// authenticationhandler/authenticationhandler.go

/* The authenticationhandler package manages the service token lifecycle for the
EnvHub API: acquisition with the account access key, proactive renewal ahead of
expiry, invalidation, and mirroring into a pluggable token cache so that other
processes on the same machine or fleet can reuse a live token instead of
authenticating again. */

package authenticationhandler

import (
	"sync"
	"time"

	"github.com/envhubhq/go-envhub-client/tokencache"
	"go.uber.org/zap"
)

const (
	// TokenEndpointPath is the path used to obtain a token with the access key.
	TokenEndpointPath = "/api/v1/auth/token"

	// TokenRenewEndpointPath is the path used to renew a still-valid token.
	TokenRenewEndpointPath = "/api/v1/auth/renew"

	// TokenInvalidateEndpointPath is the path used to invalidate a token.
	TokenInvalidateEndpointPath = "/api/v1/auth/invalidate"
)

// AuthTokenHandler manages the token for authenticating with the EnvHub API.
// All exported methods are safe for concurrent use: a single mutex guarantees
// that at most one token acquisition is in flight at any time, and that other
// callers wait for its outcome rather than racing to authenticate themselves.
type AuthTokenHandler struct {
	Credentials       ClientCredentials // Credentials holds the access key pair used to authenticate.
	Token             string            // Token holds the current service token.
	Expires           time.Time         // Expires marks the expiry of the current service token.
	Logger            *zap.SugaredLogger
	InstanceName      string // InstanceName is the EnvHub instance the handler authenticates against.
	BaseURL           string // BaseURL is the scheme and host the auth endpoints are joined to.
	HideSensitiveData bool   // HideSensitiveData redacts token values in log output.
	Cache             tokencache.Store
	tokenLock         sync.Mutex
}

// ClientCredentials holds the API access key pair issued for an EnvHub account.
type ClientCredentials struct {
	AccessKeyID     string
	AccessKeySecret string
}

// TokenResponse is the body returned by the token and renew endpoints. The
// service reports expiry either as an absolute timestamp or as a lifetime in
// seconds, depending on deployment; both fields are optional.
type TokenResponse struct {
	Token     string    `json:"token"`
	Expires   time.Time `json:"expires,omitempty"`
	ExpiresIn int64     `json:"expires_in,omitempty"`
}

// NewAuthTokenHandler creates a new token handler for the given instance.
// baseURL carries the scheme and host the auth endpoints live under, e.g.
// "https://acme.envhub.io". A nil cache falls back to an in-memory store so
// the handler never has to care whether persistence is configured.
func NewAuthTokenHandler(logger *zap.SugaredLogger, credentials ClientCredentials, instanceName string, baseURL string, hideSensitiveData bool, cache tokencache.Store) *AuthTokenHandler {
	if cache == nil {
		cache = tokencache.NewMemoryStore()
	}

	return &AuthTokenHandler{
		Credentials:       credentials,
		Logger:            logger,
		InstanceName:      instanceName,
		BaseURL:           baseURL,
		HideSensitiveData: hideSensitiveData,
		Cache:             cache,
	}
}

// Valid reports whether the current token can still be handed out, i.e. it is
// non-empty and does not expire within the given buffer period.
func (h *AuthTokenHandler) Valid(tokenRefreshBufferPeriod time.Duration) bool {
	h.tokenLock.Lock()
	defer h.tokenLock.Unlock()
	return h.isTokenValid(tokenRefreshBufferPeriod)
}

// Expiry returns the expiry time of the current token, or the zero time when
// no token is held.
func (h *AuthTokenHandler) Expiry() time.Time {
	h.tokenLock.Lock()
	defer h.tokenLock.Unlock()
	return h.Expires
}

// CurrentToken returns the current token value and its expiry.
func (h *AuthTokenHandler) CurrentToken() (string, time.Time) {
	h.tokenLock.Lock()
	defer h.tokenLock.Unlock()
	return h.Token, h.Expires
}

// SetToken seeds the handler with an externally obtained token, for example
// one issued out of band for a short-lived job, and mirrors it into the cache.
func (h *AuthTokenHandler) SetToken(token string, expires time.Time) {
	h.tokenLock.Lock()
	defer h.tokenLock.Unlock()

	h.Token = token
	h.Expires = expires
	h.saveToCache()
}

// ClearToken drops the current token and its cache entry without contacting
// the service. The request layer calls this when the API answers a data
// request with 401, so the next operation authenticates from scratch instead
// of replaying a token the service no longer accepts.
func (h *AuthTokenHandler) ClearToken() {
	h.tokenLock.Lock()
	defer h.tokenLock.Unlock()
	h.clearLocked()
}

// endpoint joins an auth endpoint path onto the configured base URL.
func (h *AuthTokenHandler) endpoint(path string) string {
	return h.BaseURL + path
}

// clearLocked resets the token fields and the cache entry. Callers must hold
// h.tokenLock.
func (h *AuthTokenHandler) clearLocked() {
	h.Token = ""
	h.Expires = time.Time{}
	if err := h.Cache.Clear(); err != nil {
		h.Logger.Warn("Failed to clear cached token", zap.String("instance_name", h.InstanceName), zap.Error(err))
	}
}

// saveToCache mirrors the current token into the cache. Cache failures are
// logged and swallowed: the handler still holds a usable token in memory.
// Callers must hold h.tokenLock.
func (h *AuthTokenHandler) saveToCache() {
	entry := tokencache.Entry{Token: h.Token, Expires: h.Expires}
	if err := h.Cache.Save(entry); err != nil {
		h.Logger.Warn("Failed to cache token", zap.String("instance_name", h.InstanceName), zap.Error(err))
	}
}

// loadFromCache adopts a cached token when it is still valid for the given
// buffer period. It returns true when a usable token was adopted. Callers
// must hold h.tokenLock.
func (h *AuthTokenHandler) loadFromCache(tokenRefreshBufferPeriod time.Duration) bool {
	entry, ok, err := h.Cache.Load()
	if err != nil {
		h.Logger.Warn("Failed to load cached token", zap.String("instance_name", h.InstanceName), zap.Error(err))
		return false
	}
	if !ok || !entry.Valid(tokenRefreshBufferPeriod) {
		return false
	}

	h.Token = entry.Token
	h.Expires = entry.Expires
	h.Logger.Debug("Adopted cached token", zap.String("instance_name", h.InstanceName), zap.Time("expiry", h.Expires))
	return true
}

// redirecthandler/redirecthandler.go
package redirecthandler

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/envhubhq/go-envhub-client/status"
	"go.uber.org/zap"
)

// RedirectHandler contains configurations for handling HTTP redirects.
type RedirectHandler struct {
	Logger           *zap.SugaredLogger // Logger instance for logging.
	MaxRedirects     int                // Maximum allowed redirects to prevent infinite loops.
	SensitiveHeaders []string           // Headers to be removed on cross-domain redirects.

	permRedirects map[string]string // Cache for permanent redirects
	permMu        sync.RWMutex      // Mutex for safe concurrent access to permRedirects
}

// NewRedirectHandler creates a new instance of RedirectHandler.
func NewRedirectHandler(logger *zap.SugaredLogger, maxRedirects int) *RedirectHandler {
	return &RedirectHandler{
		Logger:           logger,
		MaxRedirects:     maxRedirects,
		SensitiveHeaders: []string{"Authorization", "Cookie"},
		permRedirects:    make(map[string]string),
	}
}

// AddSensitiveHeader allows adding configurable sensitive headers.
func (r *RedirectHandler) AddSensitiveHeader(header string) {
	r.SensitiveHeaders = append(r.SensitiveHeaders, header)
}

// WithRedirectHandling applies the redirect handling policy to an http.Client.
func (r *RedirectHandler) WithRedirectHandling(client *http.Client) {
	client.CheckRedirect = r.checkRedirect
}

// checkRedirect implements the redirect handling policy. req is the upcoming request with
// the Location target already resolved by the transport, via is the chain of requests made
// so far.
func (r *RedirectHandler) checkRedirect(req *http.Request, via []*http.Request) error {

	// Non-idempotent methods handling. Token requests are POSTs carrying credentials and
	// must never be replayed against a redirect target.
	if req.Method == http.MethodPost || req.Method == http.MethodPatch {
		r.Logger.Warn("Redirect attempted on non-idempotent method, not following", zap.String("method", req.Method))
		return http.ErrUseLastResponse
	}

	// Enforce max redirects
	if len(via) >= r.MaxRedirects {
		r.Logger.Warn("Maximum redirects reached", zap.Int("maxRedirects", r.MaxRedirects))
		return &MaxRedirectsError{MaxRedirects: r.MaxRedirects}
	}

	// Check for redirect loops by scanning the chain for the upcoming URL
	if hasLoop(req, via) {
		r.Logger.Error("Redirect loop detected", zap.String("url", req.URL.String()))
		return &RedirectLoopError{URL: req.URL.String()}
	}

	prev := via[len(via)-1]

	// Apply security measures for cross-domain redirects
	if req.URL.Host != via[0].URL.Host {
		r.secureRequest(req)
	}

	// Cache permanent redirects so later requests skip the extra round trip. The response
	// that produced this redirect is attached to the upcoming request by the transport.
	if req.Response != nil && status.IsPermanentRedirect(req.Response.StatusCode) {
		r.cachePermanentRedirect(prev.URL.String(), req.URL.String())
	}

	r.Logger.Info("Redirecting request",
		zap.String("originalURL", prev.URL.String()),
		zap.String("newURL", req.URL.String()),
		zap.Int("redirectCount", len(via)),
	)
	return nil
}

// secureRequest removes sensitive headers from the request if the new destination is a different domain.
func (r *RedirectHandler) secureRequest(req *http.Request) {
	for _, header := range r.SensitiveHeaders {
		req.Header.Del(header)
	}
}

// RedirectLoopError represents an error when a redirect loop is detected.
type RedirectLoopError struct {
	URL string
}

func (e *RedirectLoopError) Error() string {
	return fmt.Sprintf("redirect loop detected at %s", e.URL)
}

// MaxRedirectsError represents an error when the maximum number of redirects is reached.
type MaxRedirectsError struct {
	MaxRedirects int
}

func (e *MaxRedirectsError) Error() string {
	return fmt.Sprintf("maximum redirects reached: %d", e.MaxRedirects)
}

// cachePermanentRedirect caches the permanent redirect location.
func (r *RedirectHandler) cachePermanentRedirect(originalURL, redirectURL string) {
	r.permMu.Lock()
	defer r.permMu.Unlock()

	r.permRedirects[originalURL] = redirectURL
}

// ResolvePermanentRedirect returns the cached redirect target for the given URL, if one
// has been recorded from an earlier 301 or 308 response. Callers can substitute the target
// before issuing a request to skip the redirect round trip.
func (r *RedirectHandler) ResolvePermanentRedirect(originalURL string) (string, bool) {
	r.permMu.RLock()
	defer r.permMu.RUnlock()

	target, exists := r.permRedirects[originalURL]
	return target, exists
}

// hasLoop checks if the upcoming request URL already appears in the redirect chain.
func hasLoop(req *http.Request, via []*http.Request) bool {
	visited := make(map[string]struct{}, len(via))
	for _, v := range via {
		visited[v.URL.String()] = struct{}{}
	}
	_, exists := visited[req.URL.String()]
	return exists
}

// SetupRedirectHandler configures the HTTP client for redirect handling based on the client
// configuration. When redirects are disabled the client returns redirect responses to the
// caller unmodified. The returned handler exposes the permanent redirect cache, it is nil
// when redirects are disabled.
func SetupRedirectHandler(client *http.Client, followRedirects bool, maxRedirects int, log *zap.SugaredLogger) (*RedirectHandler, error) {
	if !followRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
		return nil, nil
	}

	if maxRedirects < 1 {
		log.Error("Invalid maxRedirects value", zap.Int("maxRedirects", maxRedirects))
		return nil, fmt.Errorf("invalid maxRedirects value: %d", maxRedirects)
	}

	redirectHandler := NewRedirectHandler(log, maxRedirects)
	redirectHandler.WithRedirectHandling(client)
	log.Info("Redirect handling enabled", zap.Int("MaxRedirects", maxRedirects))
	return redirectHandler, nil
}

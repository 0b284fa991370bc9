// headers/headers.go
package headers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/envhubhq/go-envhub-client/headers/redact"
	"github.com/envhubhq/go-envhub-client/version"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// HeaderHandler is responsible for managing and setting headers on HTTP requests.
type HeaderHandler struct {
	req   *http.Request      // The http.Request for which headers are being managed
	log   *zap.SugaredLogger // The logger to use for logging headers
	token string             // The token to use for setting the Authorization header
}

// NewHeaderHandler creates a new instance of HeaderHandler for a given http.Request, logger and token.
func NewHeaderHandler(req *http.Request, log *zap.SugaredLogger, token string) *HeaderHandler {
	return &HeaderHandler{
		req:   req,
		log:   log,
		token: token,
	}
}

// SetAuthorization sets the Authorization header for the request using the handler's token.
func (h *HeaderHandler) SetAuthorization() {
	token := h.token
	// Ensure the token is prefixed with "Bearer " only once
	if !strings.HasPrefix(token, "Bearer ") {
		token = "Bearer " + token
	}
	h.req.Header.Set("Authorization", token)
}

// SetContentType sets the Content-Type header for the request.
func (h *HeaderHandler) SetContentType(contentType string) {
	h.req.Header.Set("Content-Type", contentType)
}

// SetAccept sets the Accept header for the request.
func (h *HeaderHandler) SetAccept(acceptHeader string) {
	h.req.Header.Set("Accept", acceptHeader)
}

// SetUserAgent sets the User-Agent header for the request.
func (h *HeaderHandler) SetUserAgent(userAgent string) {
	h.req.Header.Set("User-Agent", userAgent)
}

// SetCustomHeader sets a custom header for an HTTP request.
// This function allows setting arbitrary headers for specialized deployment requirements.
func SetCustomHeader(req *http.Request, headerName, headerValue string) {
	req.Header.Set(headerName, headerValue)
}

// SetRequestHeaders sets the standard HTTP headers required for requests to the
// environment variable service: bearer authorization, JSON content negotiation and the
// client's user agent. Custom headers from the client configuration are applied on top
// and may override the standard set, with the exception of Authorization.
func (h *HeaderHandler) SetRequestHeaders(customHeaders map[string]string) {
	h.SetAuthorization()
	h.SetContentType("application/json")
	h.SetAccept("application/json")
	h.SetUserAgent(version.GetUserAgentHeader())

	for header, value := range customHeaders {
		if header == "Authorization" || value == "" {
			continue
		}
		h.req.Header.Set(header, value)
	}
}

// LogHeaders prints all the current headers in the http.Request using the zap logger.
// It uses the redact package to redact sensitive data based on the hideSensitiveData flag.
func (h *HeaderHandler) LogHeaders(hideSensitiveData bool) {
	if !h.log.Desugar().Core().Enabled(zapcore.DebugLevel) {
		return
	}

	// Initialize a new Header to hold the potentially redacted headers
	redactedHeaders := http.Header{}

	for name, values := range h.req.Header {
		if len(values) > 0 {
			// Use the first value for simplicity; adjust if multiple values per header are expected
			redactedValue := redact.RedactSensitiveHeaderData(hideSensitiveData, name, values[0])
			redactedHeaders.Set(name, redactedValue)
		}
	}

	headersStr := HeadersToString(redactedHeaders)

	h.log.Debug("HTTP Request Headers", zap.String("Headers", headersStr))
}

// HeadersToString converts a http.Header to a string for logging,
// with each header on a new line for readability.
func HeadersToString(headers http.Header) string {
	var headerStrings []string
	for name, values := range headers {
		// Join all values for the header with a comma, as per HTTP standard
		valueStr := strings.Join(values, ", ")
		headerStrings = append(headerStrings, fmt.Sprintf("%s: %s", name, valueStr))
	}
	return strings.Join(headerStrings, "\n") // "\n" as seperator.
}

// CheckDeprecationHeader checks the response headers for the Deprecation header and logs a warning if present.
func CheckDeprecationHeader(resp *http.Response, log *zap.SugaredLogger) {
	deprecationHeader := resp.Header.Get("Deprecation")
	if deprecationHeader != "" {

		log.Warn("API endpoint is deprecated",
			zap.String("Date", deprecationHeader),
			zap.String("Endpoint", resp.Request.URL.String()),
		)
	}
}

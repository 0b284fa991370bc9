// status.go
// This package provides utility functions for classifying and describing HTTP response status codes.
package status

import (
	"fmt"
	"net/http"
)

// IsRedirectStatusCode checks if the provided HTTP status code is one of the redirect codes.
// Redirect status codes instruct the client to make a new request to a different URI, as defined
// in the response's Location header. The function returns true for 301, 302, 303, 307 and 308,
// indicating that the client should follow the redirection as specified in the Location header.
func IsRedirectStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// IsPermanentRedirect checks if the provided HTTP status code is one of the permanent redirect codes.
func IsPermanentRedirect(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// IsNonRetryableStatusCode checks if the provided response indicates a non-retryable error.
func IsNonRetryableStatusCode(resp *http.Response) bool {
	nonRetryableStatusCodes := map[int]bool{
		http.StatusBadRequest:                   true,
		http.StatusUnauthorized:                 true,
		http.StatusPaymentRequired:              true,
		http.StatusForbidden:                    true,
		http.StatusNotFound:                     true,
		http.StatusMethodNotAllowed:             true,
		http.StatusNotAcceptable:                true,
		http.StatusProxyAuthRequired:            true,
		http.StatusConflict:                     true,
		http.StatusGone:                         true,
		http.StatusLengthRequired:               true,
		http.StatusPreconditionFailed:           true,
		http.StatusRequestEntityTooLarge:        true,
		http.StatusRequestURITooLong:            true,
		http.StatusUnsupportedMediaType:         true,
		http.StatusRequestedRangeNotSatisfiable: true,
		http.StatusExpectationFailed:            true,
		http.StatusUnprocessableEntity:          true,
		http.StatusLocked:                       true,
		http.StatusFailedDependency:             true,
		http.StatusUpgradeRequired:              true,
		http.StatusPreconditionRequired:         true,
		http.StatusRequestHeaderFieldsTooLarge:  true,
		http.StatusUnavailableForLegalReasons:   true,
	}

	_, isNonRetryable := nonRetryableStatusCodes[resp.StatusCode]
	return isNonRetryable
}

// IsTransientError checks if an HTTP response indicates a transient server-side error.
func IsTransientError(resp *http.Response) bool {
	transientStatusCodes := map[int]bool{
		http.StatusInternalServerError: true,
		http.StatusBadGateway:          true,
		http.StatusServiceUnavailable:  true,
		http.StatusGatewayTimeout:      true,
	}
	return resp != nil && transientStatusCodes[resp.StatusCode]
}

// IsRetryableStatusCode checks if the provided HTTP status code is considered retryable.
func IsRetryableStatusCode(statusCode int) bool {
	retryableStatusCodes := map[int]bool{
		http.StatusRequestTimeout:      true,
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusBadGateway:          true,
		http.StatusServiceUnavailable:  true,
		http.StatusGatewayTimeout:      true,
	}

	_, retryable := retryableStatusCodes[statusCode]
	return retryable
}

// IsRateLimitError checks if the provided response indicates the service has rate limited the client.
func IsRateLimitError(resp *http.Response) bool {
	if resp == nil {
		return false
	}
	return resp.StatusCode == http.StatusTooManyRequests
}

// TranslateStatusCode provides a human-readable message for status codes returned by the
// environment variable service. Codes without a service-specific meaning fall back to the
// standard status text.
func TranslateStatusCode(resp *http.Response) string {

	if resp == nil {
		return "No status code received, possible network or connection error."
	}

	messages := map[int]string{
		http.StatusOK:                  "Request successful.",
		http.StatusCreated:             "Variable created successfully.",
		http.StatusAccepted:            "The request was accepted for processing, but the processing has not completed.",
		http.StatusNoContent:           "Request successful. No content to send for this request.",
		http.StatusBadRequest:          "Bad request. Verify the syntax of the request and the variable name.",
		http.StatusUnauthorized:        "Authentication failed. Verify the credentials or token being used for the request.",
		http.StatusForbidden:           "Invalid permissions. Verify the account has access to the requested variable.",
		http.StatusNotFound:            "Resource not found. Verify the instance name and the variable exists.",
		http.StatusMethodNotAllowed:    "Method not allowed. The method specified is not allowed for the resource.",
		http.StatusRequestTimeout:      "Request timeout. The server timed out waiting for the request.",
		http.StatusConflict:            "Conflict. The variable was modified by another client since it was read.",
		http.StatusGone:                "Gone. The variable requested is no longer available and will not be available again.",
		http.StatusUnprocessableEntity: "Unprocessable entity. The request was well formed but the variable payload failed validation.",
		http.StatusLocked:              "Locked. The variable that is being accessed is locked.",
		http.StatusTooManyRequests:     "Too many requests. The client has exceeded the rate limit for this instance.",
		http.StatusInternalServerError: "Internal server error. The server encountered an unexpected condition that prevented it from fulfilling the request.",
		http.StatusBadGateway:          "Bad gateway. The server received an invalid response from the upstream server while trying to fulfill the request.",
		http.StatusServiceUnavailable:  "Service unavailable. The server is currently unable to handle the request due to temporary overloading or maintenance.",
		http.StatusGatewayTimeout:      "Gateway timeout. The server did not receive a timely response from the upstream server.",
	}

	if message, exists := messages[resp.StatusCode]; exists {
		return message
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return fmt.Sprintf("%s.", text)
	}
	return fmt.Sprintf("Unknown status code: %d", resp.StatusCode)
}

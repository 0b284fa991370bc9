// httpclient/download.go
package httpclient

import (
	"fmt"
	"io"
	"net/http"

	"github.com/envhubhq/go-envhub-client/headers"
	"github.com/envhubhq/go-envhub-client/response"
	"go.uber.org/zap"
)

// DoDownloadRequest performs a download from the given endpoint, streaming the
// response body into out instead of decoding it. It follows the same
// authentication and header handling as DoRequest but never retries; callers
// that need retry behavior should wrap it themselves, since a partially
// written out cannot be rewound here.
func (c *Client) DoDownloadRequest(method, endpoint string, out io.Writer) (*http.Response, error) {
	log := c.Logger

	valid, err := c.AuthTokenHandler.CheckAndRefreshAuthToken(c.http, c.config.TokenRefreshBufferPeriod)
	if err != nil {
		return nil, fmt.Errorf("authentication token validation failed: %w", err)
	}
	if !valid {
		return nil, fmt.Errorf("authentication token validation failed")
	}

	req, err := http.NewRequest(method, c.requestURL(endpoint), http.NoBody)
	if err != nil {
		return nil, err
	}

	token, _ := c.AuthTokenHandler.CurrentToken()
	headerHandler := headers.NewHeaderHandler(req, log, token)
	headerHandler.SetRequestHeaders(c.config.CustomHeaders)
	headerHandler.LogHeaders(c.config.HideSensitiveData)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("Failed to send download request", zap.String("method", method), zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.AuthTokenHandler.ClearToken()
		}
		return resp, response.HandleAPIErrorResponse(resp, log)
	}

	defer resp.Body.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		log.Error("Failed to write download to output", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}

	return resp, nil
}

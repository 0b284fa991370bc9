// authenticationhandler/tokensource.go
package authenticationhandler

import (
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// tokenSource adapts an AuthTokenHandler to the oauth2.TokenSource interface
// so EnvHub tokens can feed libraries that consume oauth2 token sources, such
// as the oauth2 Transport or gRPC per-RPC credentials.
type tokenSource struct {
	handler      *AuthTokenHandler
	client       *http.Client
	bufferPeriod time.Duration
}

// TokenSource returns an oauth2.TokenSource backed by this handler. Every
// Token call runs the same validity check as the request layer, so consumers
// always receive a token that outlives the buffer period.
func (h *AuthTokenHandler) TokenSource(httpClient *http.Client, tokenRefreshBufferPeriod time.Duration) oauth2.TokenSource {
	return &tokenSource{
		handler:      h,
		client:       httpClient,
		bufferPeriod: tokenRefreshBufferPeriod,
	}
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	if _, err := ts.handler.CheckAndRefreshAuthToken(ts.client, ts.bufferPeriod); err != nil {
		return nil, err
	}

	token, expires := ts.handler.CurrentToken()
	return &oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
		Expiry:      expires,
	}, nil
}

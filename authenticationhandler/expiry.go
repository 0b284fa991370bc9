// authenticationhandler/expiry.go
package authenticationhandler

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// resolveTokenExpiry determines when a token expires. Deployments differ in
// what they report: most return an absolute expires timestamp, some only a
// lifetime in seconds, and a few a bare JWT with nothing but its exp claim.
// The three sources are consulted in that order. A token whose expiry cannot
// be determined is rejected, since the refresh logic would have no way to
// renew it before it lapses.
func resolveTokenExpiry(tokenResp *TokenResponse) (time.Time, error) {
	if !tokenResp.Expires.IsZero() {
		return tokenResp.Expires, nil
	}

	if tokenResp.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second), nil
	}

	if expiry, err := jwtExpiry(tokenResp.Token); err == nil {
		return expiry, nil
	}

	return time.Time{}, fmt.Errorf("token response carries no expires timestamp, no expires_in lifetime and no exp claim")
}

// jwtExpiry extracts the exp claim from a JWT without verifying its
// signature. The client only needs the expiry for refresh scheduling;
// signature verification is the service's concern.
func jwtExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if expiry == nil {
		return time.Time{}, fmt.Errorf("token carries no exp claim")
	}

	return expiry.Time, nil
}

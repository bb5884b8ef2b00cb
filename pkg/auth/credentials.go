package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

/*
Credentials attaches bearer tokens to outgoing requests. Minting and
refreshing tokens is somebody else's job: callers hand over an
oauth2.TokenSource and this side only ever reads from it. A nil
Credentials (or one without a source) authorizes nothing and lets the
request through anonymously.
*/
type Credentials struct {
	source  oauth2.TokenSource
	limiter *RateLimiter
}

type CredentialsOption func(*Credentials)

// NewCredentials wraps a token source for request authorization.
func NewCredentials(source oauth2.TokenSource, opts ...CredentialsOption) *Credentials {
	creds := &Credentials{
		source: source,
	}

	for _, opt := range opts {
		opt(creds)
	}

	return creds
}

// Static wraps a fixed token string, the common case when the token comes
// out of configuration.
func Static(token string, opts ...CredentialsOption) *Credentials {
	return NewCredentials(
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		opts...,
	)
}

// WithRateLimiter paces authorized calls through the given limiter.
func WithRateLimiter(limiter *RateLimiter) CredentialsOption {
	return func(creds *Credentials) {
		creds.limiter = limiter
	}
}

// Authorize stamps the Authorization header onto req. It refuses when the
// rate limiter says so or when the token source cannot produce a token.
func (creds *Credentials) Authorize(req *http.Request) error {
	if creds == nil || creds.source == nil {
		return nil
	}

	if creds.limiter != nil && !creds.limiter.Allow() {
		return fmt.Errorf("rate limit exceeded")
	}

	token, err := creds.source.Token()

	if err != nil {
		return fmt.Errorf("bearer token source: %w", err)
	}

	if token.AccessToken == "" {
		return nil
	}

	warnIfExpired(token.AccessToken)

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	return nil
}

// warnIfExpired peeks inside JWT-shaped tokens without verifying them.
// The agent is the one that validates; this is purely to tell the user
// why their calls are about to start bouncing.
func warnIfExpired(raw string) {
	if strings.Count(raw, ".") != 2 {
		return
	}

	claims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return
	}

	expiry, err := claims.GetExpirationTime()

	if err != nil || expiry == nil {
		return
	}

	if time.Now().After(expiry.Time) {
		log.Warn("bearer token is expired", "expiredAt", expiry.Time)
	}
}

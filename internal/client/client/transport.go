package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/littlex/internal/logging"
)

// AuthTransport is an http.RoundTripper that presents the stored session
// token on every request and ends the session when the server answers 401.
type AuthTransport struct {
	base           http.RoundTripper
	session        TokenSource
	onUnauthorized UnauthorizedFunc
	log            logging.Logger
}

// NewAuthTransport wraps base (http.DefaultTransport when nil).
// onUnauthorized may be nil.
func NewAuthTransport(base http.RoundTripper, session TokenSource, onUnauthorized UnauthorizedFunc, log logging.Logger) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if log == nil {
		log = logging.Nop()
	}
	return &AuthTransport{base: base, session: session, onUnauthorized: onUnauthorized, log: log}
}

// RoundTrip implements http.RoundTripper. The caller's request is never
// modified; the response, including a 401, is returned as is.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	token, err := t.session.Token(ctx)
	if err != nil {
		t.log.Warn(ctx, "session token unavailable, sending request unauthenticated", "error", err)
	}
	if token != "" {
		req = req.Clone(ctx)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.log.Info(ctx, "request unauthorized, ending session", "url", req.URL.Path)
		revoke(ctx, t.session, t.onUnauthorized, t.log)
	}
	return resp, nil
}

// revoke purges the session and then notifies. It runs to completion even
// if the request's context has been cancelled.
func revoke(ctx context.Context, session TokenSource, onUnauthorized UnauthorizedFunc, log logging.Logger) {
	ctx = context.WithoutCancel(ctx)
	if err := session.Purge(ctx); err != nil {
		log.Error(ctx, "failed to purge rejected session", "error", err)
	}
	if onUnauthorized != nil {
		onUnauthorized(ctx)
	}
}

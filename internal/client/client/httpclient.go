package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/littlex/internal/client/models"
)

// DefaultRequestTimeout bounds a single API call when none is configured.
const DefaultRequestTimeout = 15 * time.Second

// Walker endpoints used by the auth flows.
const (
	pathLogin          = "/walker/login_user"
	pathRegister       = "/walker/register_user"
	pathChangePassword = "/walker/change_password"
	pathForgotPassword = "/walker/forgot_password"
	pathResetPassword  = "/walker/reset_password"
)

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 4 << 10

// HTTPClient talks JSON to the walker API. Requests go through the
// RoundTripper it was built with, normally an AuthTransport.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

var _ API = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, rt http.RoundTripper, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: rt},
		timeout: timeout,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.AuthPayload, error) {
	return c.auth(ctx, pathLogin, credentials{Email: email, Password: password})
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*models.AuthPayload, error) {
	return c.auth(ctx, pathRegister, credentials{Email: email, Password: password})
}

func (c *HTTPClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	_, err := c.post(ctx, pathChangePassword, map[string]string{
		"old_password": oldPassword,
		"new_password": newPassword,
	})
	return err
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.post(ctx, pathForgotPassword, map[string]string{"email": email})
	return err
}

func (c *HTTPClient) ResetPassword(ctx context.Context, code, newPassword string) error {
	_, err := c.post(ctx, pathResetPassword, map[string]string{
		"code":         code,
		"new_password": newPassword,
	})
	return err
}

func (c *HTTPClient) auth(ctx context.Context, path string, body credentials) (*models.AuthPayload, error) {
	raw, err := c.post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	var payload models.AuthPayload
	if err := json.Unmarshal(extractPayload(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	return &payload, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, mapStatus(resp.StatusCode, msg)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return raw, nil
}

func mapStatus(code int, body []byte) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	}
	if msg := errorMessage(body); msg != "" {
		return fmt.Errorf("api error: status %d: %s", code, msg)
	}
	return fmt.Errorf("api error: status %d", code)
}

// errorMessage pulls a human-readable message out of an error body.
func errorMessage(body []byte) string {
	var e struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	switch {
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	}
	if s, ok := e.Detail.(string); ok {
		return s
	}
	return ""
}

// extractPayload unwraps the walker envelope: the first report of the first
// report batch when there is one, otherwise the whole body.
func extractPayload(body []byte) []byte {
	var env struct {
		Reports []json.RawMessage `json:"reports"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Reports) == 0 {
		return body
	}
	var batch []json.RawMessage
	if err := json.Unmarshal(env.Reports[0], &batch); err != nil || len(batch) == 0 {
		return body
	}
	if empty(batch[0]) {
		return body
	}
	return batch[0]
}

func empty(v json.RawMessage) bool {
	switch strings.TrimSpace(string(v)) {
	case "", "null", "false", "0", `""`:
		return true
	}
	return false
}

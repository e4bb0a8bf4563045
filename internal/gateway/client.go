// Package gateway wraps all outbound calls to the remote gate
// management API: bearer token injection, bounded timeouts, response
// envelope decoding and failure classification.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the bearer token for outbound calls. Invalidate
// is called on any authorization-denied response, regardless of which
// caller triggered the request.
type TokenSource interface {
	Token() string
	Invalidate()
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  slog.With("component", "gateway"),
	}
}

// SetTokenSource binds the session credential hook. Separate from New
// because the session manager itself calls through the gateway.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// envelope is the remote API response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors,omitempty"`
}

// validator is implemented by response schemas checked at the gateway
// boundary before their data reaches the verification engine.
type validator interface {
	Validate() error
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: api base url not configured", ErrUnreachable)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return classifyTransport(err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Global session teardown: the credential is discarded no
		// matter which call saw the 401.
		if c.tokens != nil {
			c.tokens.Invalidate()
		}
		return apiErr(ErrSessionExpired, &env)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(env.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		if v, ok := out.(validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
			}
		}
		return nil
	}

	return c.classifyStatus(resp.StatusCode, &env)
}

func (c *Client) classifyStatus(status int, env *envelope) error {
	switch status {
	case http.StatusBadRequest:
		return apiErr(ErrBadRequest, env)
	case http.StatusForbidden:
		return apiErr(ErrForbidden, env)
	case http.StatusNotFound:
		return apiErr(ErrNotFound, env)
	case http.StatusConflict:
		if strings.Contains(strings.ToLower(env.Message), "plate") {
			return apiErr(ErrDuplicatePlate, env)
		}
		return apiErr(ErrDuplicateQRCode, env)
	default:
		c.logger.Warn("Unexpected API status", "status", status, "message", env.Message)
		return apiErr(ErrServerError, env)
	}
}

func apiErr(sentinel error, env *envelope) error {
	if env != nil && env.Message != "" {
		return fmt.Errorf("%w: %s", sentinel, env.Message)
	}
	return sentinel
}

func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

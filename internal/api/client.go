// Package api is the HTTP client for the Vx Predict backend. It covers the
// session endpoints and the server-sent event stream that delivers assistant
// responses token by token.
package api

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
)

// ErrUnauthorized is returned when the backend rejects the bearer token.
// By the time a caller sees it the stored credential has already been
// cleared and the unauthorized handler has fired.
var ErrUnauthorized = errors.New("unauthorized")

// TokenSource supplies the bearer token attached to outbound requests.
// Clear is invoked once when the backend answers 401.
type TokenSource interface {
	Token() string
	Clear() error
}

// Client talks to the Vx Predict backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	streamClient   *http.Client // no timeout; stream lifetime is context-controlled
	tokens         TokenSource
	onUnauthorized func()
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client for request/response calls.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the timeout for request/response calls. Stream reads are
// never subject to it.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithTokenSource sets the credential source consulted on every request.
func WithTokenSource(ts TokenSource) ClientOption {
	return func(client *Client) {
		client.tokens = ts
	}
}

// WithUnauthorizedHandler registers a callback fired after any 401 response,
// once the credential has been cleared. The TUI uses it to fall back to the
// login view.
func WithUnauthorizedHandler(fn func()) ClientOption {
	return func(client *Client) {
		client.onUnauthorized = fn
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		streamClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// StatusError is a non-2xx response that is not a 401.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// doRequest performs an HTTP request and decodes the JSON response.
// A 401 anywhere clears the credential, fires the unauthorized handler and
// returns ErrUnauthorized; every other error status passes through as a
// StatusError.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.setAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized()
		return ErrUnauthorized
	}

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// setAuthHeader attaches the bearer token when one is present.
func (c *Client) setAuthHeader(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// handleUnauthorized clears the stored credential and notifies the handler.
func (c *Client) handleUnauthorized() {
	if c.tokens != nil {
		_ = c.tokens.Clear()
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// ValidateKey checks a candidate API key against the backend by creating a
// session with it. It bypasses the token source and the global 401 handling
// so that probing a bad candidate never logs the current user out.
func (c *Client) ValidateKey(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sessions", strings.NewReader("{}"))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}
	return nil
}

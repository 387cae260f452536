// Package api is the REST client for the file-sharing service.
//
// It owns the transport-level session rules: every request to a protected
// endpoint carries the current bearer token, looked up fresh per request
// through a TokenSource; a fixed set of public endpoints is exempt both from
// token attachment and from invalid-token handling; and any response that
// signals an invalid credential on a protected endpoint notifies the
// registered unauthorized observers before the error is returned to the
// caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/avolkov/fileshare/internal/common"
)

const (
	loginPath    = "/api/auth/login/"
	registerPath = "/api/auth/register/"
	validatePath = "/api/auth/validate/"
	otpPath      = "/api/auth/otp/"
	filesPath    = "/api/files/"
	sharesPath   = "/api/shares/"
	linksPath    = "/api/links/"

	otpRequiredCode = common.OTPRequiredCode
)

// TokenSource supplies the current session token. An empty string means no
// session. It must be safe for concurrent use; the client never caches the
// returned value.
type TokenSource interface {
	Token() string
}

// Client issues requests against the service API. It holds no session state
// of its own beyond the unauthorized observer list.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource

	mu        sync.Mutex
	observers []func()
}

// New creates a Client for the API rooted at baseURL. No request timeout is
// set; callers bound operations through the context.
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  tokens,
	}
}

// OnUnauthorized registers an observer invoked whenever a protected request
// fails with an invalid or expired credential. Observers must be idempotent;
// overlapping in-flight requests may each trigger a notification.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

func (c *Client) notifyUnauthorized() {
	c.mu.Lock()
	observers := make([]func(), len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

// isPublic reports whether path is exempt from token attachment and from
// unauthorized-response handling.
func isPublic(path string) bool {
	if path == loginPath || path == registerPath {
		return true
	}
	return strings.HasPrefix(path, linksPath) && strings.HasSuffix(path, "/download/")
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if !isPublic(path) {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", common.BearerPrefix+token)
		}
	}
	return req, nil
}

// errEnvelope matches the server's error payloads: {"error": ...} or
// {"detail": ...}, optionally with a machine-readable code.
type errEnvelope struct {
	ErrorMsg string `json:"error"`
	Detail   string `json:"detail"`
	Code     string `json:"code"`
}

// decodeError turns a non-2xx response into an *Error, applying the
// per-operation fallback when the body carries no usable message, and fires
// the unauthorized observers for credential failures on protected paths.
func (c *Client) decodeError(resp *http.Response, path, fallback string) error {
	var env errEnvelope
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(body, &env)

	msg := env.ErrorMsg
	if msg == "" {
		msg = env.Detail
	}
	if msg == "" {
		msg = fallback
	}

	tokenInvalid := resp.StatusCode == http.StatusUnauthorized || env.Code == common.TokenNotValidCode
	if tokenInvalid && env.Code != otpRequiredCode && !isPublic(path) {
		c.notifyUnauthorized()
	}

	return &Error{Status: resp.StatusCode, Code: env.Code, Message: msg}
}

// doJSON executes a request with an optional JSON body and decodes a JSON
// response into out (which may be nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, fallback string) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp, path, fallback)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decoding response: %w", fallback, err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return nil
}

// doRaw executes a request and returns the raw response. The caller owns
// the body. Non-2xx responses are decoded into an error and the body closed.
func (c *Client) doRaw(ctx context.Context, method, path string, body io.Reader, contentType, fallback string) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fallback, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, c.decodeError(resp, path, fallback)
	}
	return resp, nil
}

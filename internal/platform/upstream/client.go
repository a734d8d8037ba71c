package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ajovest/ajovest-console/internal/session"
)

// SessionDestroyer is the slice of the session store the client needs for the
// logout-on-auth-failure side effect.
type SessionDestroyer interface {
	Destroy(ctx context.Context, id string) error
}

// ErrorCounter receives failure counts for monitoring.
type ErrorCounter interface {
	UpstreamError(kind string)
}

// Client performs authenticated requests against the platform API.
type Client struct {
	base     *url.URL
	http     *http.Client
	sessions SessionDestroyer
	logger   *slog.Logger
	metrics  ErrorCounter
}

// WithMetrics attaches a failure counter. Returns the client for chaining.
func (c *Client) WithMetrics(m ErrorCounter) *Client {
	c.metrics = m
	return c
}

func (c *Client) countError(kind string) {
	if c.metrics != nil {
		c.metrics.UpstreamError(kind)
	}
}

// New constructs a Client. timeout bounds individual requests in addition to
// whatever deadline the caller's context carries.
func New(baseURL string, timeout time.Duration, sessions SessionDestroyer, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		base:     base,
		http:     &http.Client{Timeout: timeout},
		sessions: sessions,
		logger:   logger,
	}, nil
}

// Do issues one request. The bearer token and session identity come from the
// request context; unauthenticated contexts send no Authorization header.
// On 401/403 the session is destroyed in both storage scopes and
// ErrAuthExpired is returned. Context cancellation maps to ErrCanceled.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	target := c.base.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, err
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	sess := session.FromContext(ctx)
	if sess.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		if Canceled(ctx.Err()) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			c.countError("canceled")
			return nil, ErrCanceled
		}
		c.countError("transport")
		return nil, err
	}

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		c.expireSession(ctx, sess)
		drain(res)
		c.countError("auth_expired")
		return nil, ErrAuthExpired
	}
	return res, nil
}

// GetJSON issues a GET and decodes a 2xx JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	res, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	defer drain(res)
	if err := c.checkStatus(res); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// PostJSON issues a POST with a JSON body and decodes the response into out
// when out is non-nil.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out)
}

// PatchJSON issues a PATCH with a JSON body.
func (c *Client) PatchJSON(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE and ignores the response body.
func (c *Client) Delete(ctx context.Context, path string) error {
	res, err := c.Do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	defer drain(res)
	return c.checkStatus(res)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	res, err := c.Do(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	defer drain(res)
	if err := c.checkStatus(res); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) expireSession(ctx context.Context, sess *session.Session) {
	if sess == nil || c.sessions == nil {
		return
	}
	// Best effort even when the inbound request is already going away.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := c.sessions.Destroy(dctx, sess.ID); err != nil && c.logger != nil {
		c.logger.Warn("destroy session after auth failure", slog.Any("error", err))
	}
	if c.logger != nil {
		c.logger.Info("upstream auth expired, session destroyed", slog.String("user", sess.User.ID))
	}
}

func (c *Client) checkStatus(res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	c.countError("api")
	return &APIError{Status: res.StatusCode, Message: decodeMessage(res)}
}

// decodeMessage pulls the best available human message out of an error body.
func decodeMessage(res *http.Response) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	data, err := io.ReadAll(io.LimitReader(res.Body, 8192))
	if err != nil {
		return ""
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	for _, msg := range []string{payload.Message, payload.Error, payload.Detail} {
		if strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	return ""
}

func drain(res *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
	_ = res.Body.Close()
}

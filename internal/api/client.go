package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"dairyDispatch/internal/auth"
	"dairyDispatch/internal/logger"
	"dairyDispatch/internal/metrics"
)

// CredentialSource supplies the token attached to each request.
type CredentialSource interface {
	Credential() (string, error)
}

// Client is the single outbound channel to the dispatch backend.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
	log     *slog.Logger
	metrics *metrics.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = logger.OrDiscard(l) } }

// WithMetrics records request counts and latency.
func WithMetrics(m *metrics.Metrics) Option { return func(c *Client) { c.metrics = m } }

// New returns a Client for baseURL. The backend calls have no client-side
// timeout; callers bound them through ctx when they need to.
func New(baseURL string, creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		creds:   creds,
		log:     logger.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// do sends one request. in is JSON-encoded when non-nil; out is decoded from
// a 2xx body when non-nil. withAuth=false skips the credential (login).
func (c *Client) do(ctx context.Context, method, path string, in, out any, withAuth bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	if withAuth && c.creds != nil {
		tok, err := c.creds.Credential()
		switch {
		case err == nil:
			req.Header.Set("Authorization", auth.HeaderValue(tok))
		case errors.Is(err, auth.ErrTokenExpired):
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		default:
			// No credential: let the backend reject the call.
		}
	}

	endpoint := endpointLabel(path)
	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(endpoint, 0, elapsed)
		c.log.Warn("backend request failed",
			logger.Action("api_request"), slog.String("request_id", reqID),
			slog.String("method", method), slog.String("path", path), logger.Err(err))
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.metrics.ObserveRequest(endpoint, resp.StatusCode, elapsed)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %w", ErrTransport, method, path, err)
	}

	attrs := []any{
		logger.Action("api_request"), slog.String("request_id", reqID),
		slog.String("method", method), slog.String("path", path),
		slog.Int("status", resp.StatusCode), slog.Duration("duration", elapsed),
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("backend rejected request", attrs...)
		return &Error{Method: method, Path: path, StatusCode: resp.StatusCode, Body: raw}
	}
	c.log.Debug("backend request", attrs...)

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// endpointLabel collapses numeric path segments so metrics stay low-cardinality.
func endpointLabel(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		numeric := true
		for _, r := range p {
			if r < '0' || r > '9' {
				numeric = false
				break
			}
		}
		if numeric {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

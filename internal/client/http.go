package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnauthorized is returned for any 401 response. Callers treat it as an
// expired session.
var ErrUnauthorized = errors.New("unauthorized")

// CredentialSource supplies the opaque session token attached to each
// request. An empty token sends no Authorization header.
type CredentialSource interface {
	Token() string
}

// StaticToken is a CredentialSource with a fixed token, used for the login
// probe before a session exists.
type StaticToken string

// Token returns the fixed token.
func (t StaticToken) Token() string { return string(t) }

// StatusError is a non-success HTTP response other than 401.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: server error: %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: server error: %d %s", e.Method, e.Path, e.Code, e.Body)
}

// HTTPClient makes REST calls to the SIEM backend.
type HTTPClient struct {
	baseURL string
	creds   CredentialSource
	client  *http.Client
	log     *zap.Logger
}

// NewHTTPClient creates a client targeting the given base URL (e.g. "http://127.0.0.1:8000").
func NewHTTPClient(baseURL string, creds CredentialSource, timeout time.Duration, log *zap.Logger) *HTTPClient {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// WithCredentials returns a copy of the client that authenticates with creds.
func (c *HTTPClient) WithCredentials(creds CredentialSource) *HTTPClient {
	cp := *c
	cp.creds = creds
	return &cp
}

// BaseURL returns the backend base URL.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// GetSummary fetches /api/dashboard/summary.
func (c *HTTPClient) GetSummary(ctx context.Context) (*Summary, error) {
	var s Summary
	if err := c.get(ctx, "/api/dashboard/summary", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetTimeline fetches /api/events/stats/timeline (hour label → count).
func (c *HTTPClient) GetTimeline(ctx context.Context) (Counts, error) {
	var out Counts
	if err := c.get(ctx, "/api/events/stats/timeline", &out); err != nil {
		return Counts{}, err
	}
	return out, nil
}

// GetEventsByType fetches /api/events/stats/by-type.
func (c *HTTPClient) GetEventsByType(ctx context.Context) (Counts, error) {
	var out Counts
	if err := c.get(ctx, "/api/events/stats/by-type", &out); err != nil {
		return Counts{}, err
	}
	return out, nil
}

// GetEventsBySeverity fetches /api/events/stats/by-severity.
func (c *HTTPClient) GetEventsBySeverity(ctx context.Context) (Counts, error) {
	var out Counts
	if err := c.get(ctx, "/api/events/stats/by-severity", &out); err != nil {
		return Counts{}, err
	}
	return out, nil
}

// GetEvents fetches /api/events?skip=..&limit=...
func (c *HTTPClient) GetEvents(ctx context.Context, skip, limit int) (*EventsResponse, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	var out EventsResponse
	if err := c.get(ctx, "/api/events?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHealth fetches /api/health. The endpoint needs no credentials.
func (c *HTTPClient) GetHealth(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/api/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.setAuth(req)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("GET %s: %w", path, ErrUnauthorized)
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: http.MethodGet, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) setAuth(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.creds == nil {
		return
	}
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Basic "+token)
	}
}

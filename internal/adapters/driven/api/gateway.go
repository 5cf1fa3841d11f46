// Package api provides the fetch gateway and the typed client for the
// knowledge backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
	"github.com/custodia-labs/kbsync/internal/logger"
)

// Default configuration values.
const (
	DefaultBaseURL   = "http://localhost:8000"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10
	DefaultBurst     = 20
)

// Headers sent with every request.
const (
	HeaderRequestID    = "X-Request-ID"
	HeaderOrganization = "X-Organization-ID"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 * 1024

// Config holds gateway configuration.
type Config struct {
	// BaseURL is the backend root (default: http://localhost:8000).
	BaseURL string

	// Timeout bounds requests that do not set their own (default: 30s).
	// Event streams are never bounded.
	Timeout time.Duration

	// RateLimit is the client-side request rate per second (default: 10).
	RateLimit float64

	// Burst is the limiter burst size (default: 20).
	Burst int

	// UserAgent is sent when non-empty.
	UserAgent string
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values

	Body        io.Reader
	ContentType string

	// Timeout overrides Config.Timeout for this request.
	Timeout time.Duration
}

// Result is the uniform outcome of a gateway call. Error is empty on
// success; Status is 0 when no response was received.
type Result[T any] struct {
	Data   T
	Error  string
	Status int

	endpoint string
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Error == ""
}

// Err returns the failure as a *domain.APIError, or nil.
func (r Result[T]) Err() error {
	if r.OK() {
		return nil
	}
	return &domain.APIError{Status: r.Status, Endpoint: r.endpoint, Message: r.Error}
}

// Gateway performs every HTTP request to the backend. It attaches the
// stored credential and organization, applies the client-side rate limit
// and turns failures into *domain.APIError values.
type Gateway struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	sessions  driven.SessionStore
	tokens    oauth2.TokenSource

	onAuthRequired func()
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		g.client = client
	}
}

// WithAuthRequiredHandler registers the handler run on a 401 response.
// Without one the gateway clears the stored token itself.
func WithAuthRequiredHandler(fn func()) Option {
	return func(g *Gateway) {
		g.onAuthRequired = fn
	}
}

// NewGateway creates a gateway. sessions may be nil for anonymous use.
func NewGateway(cfg Config, sessions driven.SessionStore, opts ...Option) *Gateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}

	g := &Gateway{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		// Deadlines come from request contexts so streams can stay open.
		client:   &http.Client{},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		sessions: sessions,
	}
	if sessions != nil {
		g.tokens = NewSessionTokenSource(sessions)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BaseURL returns the backend root.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Call performs req and decodes a JSON response body into T.
func Call[T any](ctx context.Context, g *Gateway, req Request) Result[T] {
	var res Result[T]
	res.endpoint = req.Path

	if req.Timeout <= 0 {
		req.Timeout = g.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	resp, apiErr := g.do(ctx, req, "application/json")
	if apiErr != nil {
		res.Status = apiErr.Status
		res.Error = apiErr.Message
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	if err := json.NewDecoder(resp.Body).Decode(&res.Data); err != nil && !errors.Is(err, io.EOF) {
		logger.Debug("decode %s %s: %v", req.Method, req.Path, err)
		res.Error = domain.ErrInvalidResponse.Error()
	}
	return res
}

// OpenStream performs req and returns the open response body of an event
// stream. The caller must close it.
func (g *Gateway) OpenStream(ctx context.Context, req Request) (io.ReadCloser, error) {
	resp, apiErr := g.do(ctx, req, "text/event-stream")
	if apiErr != nil {
		return nil, apiErr
	}
	return resp.Body, nil
}

// do sends req and classifies the response. A returned response always
// has a 2xx status and an open body.
func (g *Gateway) do(ctx context.Context, req Request, accept string) (*http.Response, *domain.APIError) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, domain.NewAPIError(0, req.Path, "request cancelled: %v", err)
	}

	target := g.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, req.Body)
	if err != nil {
		return nil, domain.NewAPIError(0, req.Path, "build request: %v", err)
	}
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set(HeaderRequestID, uuid.NewString())
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if g.userAgent != "" {
		httpReq.Header.Set("User-Agent", g.userAgent)
	}
	g.authorize(ctx, httpReq)

	logger.Debug("%s %s", req.Method, target)
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, domain.NewAPIError(0, req.Path, "cannot reach server at %s: %v", g.baseURL, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		g.authRequired(ctx)
		return nil, domain.NewAPIError(resp.StatusCode, req.Path, "authentication required")
	case http.StatusNotFound:
		return nil, domain.NewAPIError(resp.StatusCode, req.Path, "endpoint %s not found", req.Path)
	default:
		return nil, domain.NewAPIError(resp.StatusCode, req.Path, "%s", errorMessage(resp))
	}
}

// authorize attaches the bearer credential and the organization header.
func (g *Gateway) authorize(ctx context.Context, req *http.Request) {
	if g.tokens != nil {
		if tok, err := g.tokens.Token(); err == nil {
			tok.SetAuthHeader(req)
		}
	}
	if g.sessions == nil {
		return
	}
	if session, err := g.sessions.Load(ctx); err == nil && session.Organization != "" {
		req.Header.Set(HeaderOrganization, session.Organization)
	}
}

func (g *Gateway) authRequired(ctx context.Context) {
	logger.Warn("backend returned 401")
	if g.onAuthRequired != nil {
		g.onAuthRequired()
		return
	}
	if g.sessions != nil {
		if err := g.sessions.ClearToken(ctx); err != nil {
			logger.Error("clear token: %v", err)
		}
	}
}

// errorMessage extracts the backend's error text from a failed response.
func errorMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Detail  any    `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Detail != nil:
			if s, ok := payload.Detail.(string); ok {
				return s
			}
			return fmt.Sprint(payload.Detail)
		case payload.Error != "":
			return payload.Error
		case payload.Message != "":
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		return text
	}
	return fmt.Sprintf("request failed with status %d", resp.StatusCode)
}

// Package client is the REST transport client for the remote billing service.
//
// Every authenticated call asks its TokenSource for a bearer token before
// building a request. A missing or expired token fails with
// apperr.ErrUnauthenticated and nothing is sent. Responses use the service's
// envelope, {"success": bool, "data": ..., "message": string}, and HTTP status
// codes are mapped onto the apperr taxonomy:
//
//	401, 403       apperr.ErrUnauthenticated
//	404            apperr.ErrNotFound
//	400, 422       *apperr.ValidationError carrying the server message
//	anything else  *apperr.TransportError
package client

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

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/invoicer/internal/apperr"
)

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of a non-JSON error body ends up in an error message.
const maxErrorBody = 512

// TokenSource returns the bearer token for authenticated requests.
// session.TokenSource satisfies it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the billing service REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	metrics    *metrics
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout on the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMetrics registers request counters and latency histograms with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = newMetrics(reg)
	}
}

// WithLogger sets the logger used for request tracing. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tokens:     tokens,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the response body shape shared by every endpoint. Login
// responses carry Token and User at the top level.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Token   string          `json:"token,omitempty"`
	User    json.RawMessage `json:"user,omitempty"`
}

// call describes one request.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any

	// public requests skip the token lookup.
	public bool
}

// do performs c and decodes the envelope's data into out (when non-nil).
// The full envelope is returned for callers that need top-level fields.
func (c *Client) do(ctx context.Context, rc call, out any) (*envelope, error) {
	start := time.Now()
	env, err := c.send(ctx, rc)
	if err == nil && out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if decodeErr := json.Unmarshal(env.Data, out); decodeErr != nil {
			err = &apperr.TransportError{Op: rc.op, Err: fmt.Errorf("failed to decode response data: %w", decodeErr)}
		}
	}
	c.metrics.observe(rc.op, outcome(err), time.Since(start))

	if err != nil {
		c.logger.Debug("API request failed", "op", rc.op, "error", err)
		return nil, err
	}
	c.logger.Debug("API request ok", "op", rc.op, "duration_ms", time.Since(start).Milliseconds())
	return env, nil
}

func (c *Client) send(ctx context.Context, rc call) (*envelope, error) {
	var token string
	if !rc.public {
		t, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if t == "" {
			return nil, apperr.ErrUnauthenticated
		}
		token = t
	}

	var body io.Reader
	if rc.body != nil {
		buf, err := json.Marshal(rc.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", rc.op, err)
		}
		body = bytes.NewReader(buf)
	}

	target := c.baseURL + rc.path
	if len(rc.query) > 0 {
		target += "?" + rc.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", rc.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &apperr.TransportError{Op: rc.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.TransportError{Op: rc.op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = errorSnippet(raw, resp.Status)
		}
		return nil, statusError(rc.op, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, &apperr.TransportError{Op: rc.op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", decodeErr)}
	}
	return &env, nil
}

// statusError maps a non-2xx status onto the error taxonomy.
func statusError(op string, status int, msg string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %s: %w", op, msg, apperr.ErrUnauthenticated)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %s: %w", op, msg, apperr.ErrNotFound)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperr.Validation(msg)
	default:
		return &apperr.TransportError{Op: op, StatusCode: status, Err: errors.New(msg)}
	}
}

func errorSnippet(raw []byte, fallback string) string {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return fallback
	}
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}

// outcome is the metrics label for err.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case apperr.IsAuthentication(err):
		return "unauthenticated"
	case apperr.IsNotFound(err):
		return "not_found"
	case apperr.IsValidation(err):
		return "validation"
	default:
		return "transport"
	}
}

// escape makes an identifier safe to use as one path segment.
func escape(id string) string {
	return url.PathEscape(id)
}

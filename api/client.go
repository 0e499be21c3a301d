package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the storefront backend address.
	DefaultBaseURL = "http://localhost:8080/api"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second

	// TraceHeader carries the trace id attached with WithTraceID.
	TraceHeader = "X-Trace-ID"

	maxBodyBytes = 4 << 20
)

// Config wires a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient defaults to a new client. Its own Timeout is left untouched; the
	// request deadline comes from Timeout above.
	HTTPClient *http.Client

	// Token returns the bearer token to attach, or "" for none.
	Token func(ctx context.Context) string
	// Unauthorized runs on any 401 from an authenticated endpoint, before the
	// error is returned to the caller.
	Unauthorized func(ctx context.Context)
	// Observe receives the outcome of every request.
	Observe func(ctx context.Context, op string, status int, elapsed time.Duration)

	// Logger defaults to a disabled logger when nil.
	Logger *zerolog.Logger
}

// Client is safe for concurrent use.
type Client struct {
	base    *url.URL
	timeout time.Duration
	http    *http.Client
	cfg     Config
	log     zerolog.Logger
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api: base url %q must be http or https", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		base:    base,
		timeout: cfg.Timeout,
		http:    hc,
		cfg:     cfg,
		log:     logger.With().Str("component", "api").Logger(),
	}, nil
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	return c.base.String()
}

type call struct {
	op         string
	method     string
	path       string
	query      url.Values
	body       any
	fallback   string
	anonymous  bool
	decodeInto any
}

func (c *Client) do(ctx context.Context, rq call) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.base.JoinPath(rq.path)
	if len(rq.query) > 0 {
		target.RawQuery = rq.query.Encode()
	}

	var payload io.Reader
	if rq.body != nil {
		raw, err := json.Marshal(rq.body)
		if err != nil {
			return nil, &Error{Op: rq.op, Message: rq.fallback, Err: err}
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, rq.method, target.String(), payload)
	if err != nil {
		return nil, &Error{Op: rq.op, Message: rq.fallback, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if !rq.anonymous && c.cfg.Token != nil {
		if tok := c.cfg.Token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	traceID := TraceID(ctx)
	if traceID != "" {
		req.Header.Set(TraceHeader, traceID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(ctx, rq.op, 0, start)
		c.log.Warn().Err(err).Str("op", rq.op).Str("trace_id", traceID).Msg("request failed")
		return nil, &Error{Op: rq.op, Message: rq.fallback, Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.observe(ctx, rq.op, resp.StatusCode, start)

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Warn().Str("op", rq.op).Str("trace_id", traceID).Msg("unauthorized response")
		if !rq.anonymous && c.cfg.Unauthorized != nil {
			c.cfg.Unauthorized(ctx)
		}
		return nil, c.failure(rq, resp.StatusCode, body)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug().Str("op", rq.op).Int("status", resp.StatusCode).Str("trace_id", traceID).Msg("request rejected")
		return nil, c.failure(rq, resp.StatusCode, body)
	}
	if readErr != nil {
		return nil, &Error{Op: rq.op, Status: resp.StatusCode, Message: rq.fallback, Err: readErr}
	}

	if rq.decodeInto != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, rq.decodeInto); err != nil {
			return nil, &Error{Op: rq.op, Status: resp.StatusCode, Message: rq.fallback, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return body, nil
}

func (c *Client) failure(rq call, status int, body []byte) *Error {
	msg := serverMessage(body)
	if msg == "" {
		msg = rq.fallback
	}
	return &Error{Op: rq.op, Status: status, Message: msg}
}

func (c *Client) observe(ctx context.Context, op string, status int, start time.Time) {
	if c.cfg.Observe != nil {
		c.cfg.Observe(ctx, op, status, time.Since(start))
	}
}

type traceIDKey struct{}

// WithTraceID attaches a trace id that is sent as the X-Trace-ID header.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceID returns the trace id attached to ctx, if any.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxBodyBytes caps how much of a response is read into memory.
const maxBodyBytes = 4 << 20

// Request is a single API call, relative to the configured base URL.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      []byte // JSON; nil for no body
	Token     string
	RequestID string
}

// Idempotent reports whether the request may be repeated safely.
func (r *Request) Idempotent() bool {
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}

// Response is a successful (2xx) API response.
type Response struct {
	Status    int
	Body      []byte
	RequestID string
}

// Doer executes API requests. Non-2xx responses are returned as errors.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// HTTPDoer is the base Doer that talks to the server over net/http.
type HTTPDoer struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPDoer creates a Doer for baseURL with a per-attempt timeout.
func NewHTTPDoer(baseURL string, timeout time.Duration) (*HTTPDoer, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &HTTPDoer{
		base:   u,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (d *HTTPDoer) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	target := d.base.JoinPath(req.Path)
	// JoinPath drops the trailing slash the server's routes expect.
	if strings.HasSuffix(req.Path, "/") && !strings.HasSuffix(target.Path, "/") {
		target.Path += "/"
	}
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", req.RequestID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Token "+req.Token)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ErrServerUnavailable{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &ErrServerUnavailable{Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if err := statusError(resp, data); err != nil {
		return nil, err
	}
	return &Response{Status: resp.StatusCode, Body: data, RequestID: req.RequestID}, nil
}

// statusError maps a non-2xx response to the error taxonomy.
func statusError(resp *http.Response, body []byte) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	text := strings.TrimSpace(string(body))
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &ErrUnauthorized{Status: code, Body: text}
	case code == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case code >= http.StatusInternalServerError:
		return &ErrServerUnavailable{Status: code}
	}
	return &ErrStatus{Code: code, Body: text}
}

// parseRetryAfter handles the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

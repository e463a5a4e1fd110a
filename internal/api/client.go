package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
)

// Client is a typed wrapper around a Doer that carries the session token.
// It is safe for concurrent use.
type Client struct {
	doer Doer

	mu    sync.RWMutex
	token string
}

// NewClient creates a Client over doer.
func NewClient(doer Doer) *Client {
	return &Client{doer: doer}
}

// SetToken sets the session token; an empty token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current session token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// GetJSON issues a GET and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.call(ctx, http.MethodGet, path, query, nil, out)
}

// PostJSON issues a POST with in as the JSON body and decodes into out.
// A nil out discards the response body.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, http.MethodPost, path, nil, in, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.call(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, in, out any) error {
	req := &Request{
		Method: method,
		Path:   path,
		Query:  query,
		Token:  c.Token(),
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		req.Body = body
	}

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || resp.Status == http.StatusNoContent || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &ErrInvalidPayload{Body: resp.Body, Err: err}
	}
	return nil
}

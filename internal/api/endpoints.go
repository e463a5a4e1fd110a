package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Auth endpoint paths.
const (
	LoginPath  = "/api/v1/auth/token/login/"
	LogoutPath = "/api/v1/auth/token/logout/"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AuthToken string `json:"auth_token"`
}

// Login exchanges credentials for a session token. The client token is
// set on success.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.PostJSON(WithPurpose(ctx, "login"), LoginPath,
		loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AuthToken == "" {
		return "", &ErrInvalidPayload{Err: errors.New("missing auth_token")}
	}
	c.SetToken(resp.AuthToken)
	return resp.AuthToken, nil
}

// Logout invalidates the session on the server and clears the client
// token, even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.SetToken("")
	if c.Token() == "" {
		return nil
	}
	return c.PostJSON(WithPurpose(ctx, "logout"), LogoutPath, struct{}{}, nil)
}

// Item is one list entry as returned by the server.
type Item map[string]any

// ID returns the item's id rendered as text.
func (it Item) ID() string {
	switch v := it["id"].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Page is one page of a paginated list.
type Page struct {
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Results  []Item `json:"results"`
}

// ListItems fetches page (1-based) of the collection at path.
func (c *Client) ListItems(ctx context.Context, path string, page, pageSize int) (*Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	var p Page
	if err := c.GetJSON(WithPurpose(ctx, "list"), path, q, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateItem posts fields to the collection at path and returns the
// created item.
func (c *Client) CreateItem(ctx context.Context, path string, fields map[string]any) (Item, error) {
	var created Item
	if err := c.PostJSON(WithPurpose(ctx, "create"), path, fields, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteItem removes the item with id from the collection at path.
func (c *Client) DeleteItem(ctx context.Context, path, id string) error {
	return c.Delete(WithPurpose(ctx, "delete"), ItemPath(path, id))
}

// ItemPath joins a collection path and an item id, keeping the trailing
// slash convention.
func ItemPath(collection, id string) string {
	return strings.TrimRight(collection, "/") + "/" + url.PathEscape(id) + "/"
}

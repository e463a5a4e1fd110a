package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	d, err := NewHTTPDoer(srv.URL, 2*time.Second)
	require.NoError(t, err)
	return NewClient(d)
}

func TestClient_LoginSetsToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, LoginPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body loginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ann", body.Username)
		assert.Equal(t, "secret", body.Password)

		_, _ = w.Write([]byte(`{"auth_token":"tok-1"}`))
	})

	tok, err := c.Login(context.Background(), "ann", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, "tok-1", c.Token())
}

func TestClient_LoginMissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.Login(context.Background(), "ann", "secret")
	var inv *ErrInvalidPayload
	assert.ErrorAs(t, err, &inv)
	assert.Empty(t, c.Token())
}

func TestClient_SendsAuthorizationHeader(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"count":0,"results":[]}`))
	})
	c.SetToken("abc")

	_, err := c.ListItems(context.Background(), "/api/v1/foreign/", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "Token abc", got)
}

func TestClient_ListItemsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/foreign/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("page_size"))
		_, _ = w.Write([]byte(`{"count":7,"next":null,"previous":"x","results":[{"id":6,"foreign_word":"a"},{"id":7,"foreign_word":"b"}]}`))
	})

	p, err := c.ListItems(context.Background(), "/api/v1/foreign/", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Count)
	require.Len(t, p.Results, 2)
	assert.Equal(t, "6", p.Results[0].ID())
	assert.Equal(t, "b", p.Results[1]["foreign_word"])
}

func TestClient_DeleteItemPath(t *testing.T) {
	var path, method string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteItem(context.Background(), "/api/v1/foreign/", "42"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/v1/foreign/42/", path)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", 401, func(t *testing.T, err error) {
			assert.True(t, IsUnauthorized(err))
		}},
		{"forbidden", 403, func(t *testing.T, err error) {
			assert.True(t, IsUnauthorized(err))
		}},
		{"rate limit", 429, func(t *testing.T, err error) {
			var rl *ErrRateLimit
			require.ErrorAs(t, err, &rl)
			assert.Equal(t, 3*time.Second, rl.RetryAfter)
		}},
		{"internal error", 500, func(t *testing.T, err error) {
			var su *ErrServerUnavailable
			assert.ErrorAs(t, err, &su)
		}},
		{"unavailable", 503, func(t *testing.T, err error) {
			var su *ErrServerUnavailable
			assert.ErrorAs(t, err, &su)
		}},
		{"bad request", 400, func(t *testing.T, err error) {
			var s *ErrStatus
			require.ErrorAs(t, err, &s)
			assert.Equal(t, 400, s.Code)
			assert.Equal(t, `{"detail":"nope"}`, s.Body)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "3")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"detail":"nope"}`))
			})
			err := c.GetJSON(context.Background(), "/x/", nil, &struct{}{})
			require.Error(t, err)
			assert.Equal(t, tt.status, StatusOf(err))
			tt.check(t, err)
		})
	}
}

func TestClient_InternalErrorRetriedOnGet(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	d, err := NewHTTPDoer(srv.URL, 2*time.Second)
	require.NoError(t, err)

	c := NewClient(WithRetry(d, retryConfig()))
	require.NoError(t, c.GetJSON(context.Background(), "/x/", nil, &struct{}{}))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_InvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	var out map[string]any
	err := c.GetJSON(context.Background(), "/x/", nil, &out)
	var inv *ErrInvalidPayload
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "not json", string(inv.Body))
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	d, err := NewHTTPDoer(srv.URL, time.Second)
	require.NoError(t, err)

	err = NewClient(d).GetJSON(context.Background(), "/x/", nil, nil)
	var su *ErrServerUnavailable
	assert.ErrorAs(t, err, &su)
}

func TestClient_LogoutClearsTokenOnFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c.SetToken("abc")

	err := c.Logout(context.Background())
	assert.Error(t, err)
	assert.Empty(t, c.Token())
}

func TestNew_ValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "ftp://example.com"
	_, err := New(cfg, nil)
	assert.Error(t, err)

	cfg = DefaultConfig()
	c, err := New(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("WSE_SERVER", "https://wse.example.com")
	t.Setenv("WSE_API_TIMEOUT", "3s")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "https://wse.example.com", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)

	t.Setenv("WSE_API_TIMEOUT", "soon")
	assert.Error(t, cfg.ApplyEnv())
}

func TestStatusOf_Unknown(t *testing.T) {
	assert.Equal(t, 0, StatusOf(errors.New("x")))
}

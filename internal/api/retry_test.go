package api

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func getRequest() *Request {
	return &Request{Method: "GET", Path: "/api/v1/foreign/"}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := NewMockDoer(MockResponse{Body: json.RawMessage(`{"ok":true}`)})
	d := WithRetry(mock, retryConfig())

	resp, err := d.Do(context.Background(), getRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Fatalf("unexpected body: %s", resp.Body)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockDoer(
		MockResponse{Err: &ErrServerUnavailable{Err: errors.New("down")}},
		MockResponse{Body: json.RawMessage(`{}`)},
	)
	d := WithRetry(mock, retryConfig())

	if _, err := d.Do(context.Background(), getRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	mock := NewMockDoer(
		MockResponse{Err: &ErrServerUnavailable{Status: 503}},
		MockResponse{Err: &ErrServerUnavailable{Status: 503}},
		MockResponse{Err: &ErrServerUnavailable{Status: 503}},
	)
	d := WithRetry(mock, retryConfig())

	_, err := d.Do(context.Background(), getRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestRetry_PostNeverRetried(t *testing.T) {
	mock := NewMockDoer(
		MockResponse{Err: &ErrServerUnavailable{Status: 503}},
		MockResponse{Body: json.RawMessage(`{}`)},
	)
	d := WithRetry(mock, retryConfig())

	_, err := d.Do(context.Background(), &Request{Method: "POST", Path: "/api/v1/foreign/progress/"})
	if err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_UnauthorizedNotRetried(t *testing.T) {
	mock := NewMockDoer(
		MockResponse{Err: &ErrUnauthorized{Status: 401}},
		MockResponse{Body: json.RawMessage(`{}`)},
	)
	d := WithRetry(mock, retryConfig())

	_, err := d.Do(context.Background(), getRequest())
	if !IsUnauthorized(err) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	mock := NewMockDoer(
		MockResponse{Err: &ErrServerUnavailable{Status: 503}},
		MockResponse{Body: json.RawMessage(`{}`)},
	)
	cfg := retryConfig()
	cfg.InitialWait = time.Second
	cfg.MaxWait = time.Second
	d := WithRetry(mock, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := d.Do(ctx, getRequest())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRetry_RespectsRetryAfter(t *testing.T) {
	r := &RetryDoer{config: retryConfig()}
	wait := r.backoff(0, &ErrRateLimit{RetryAfter: 7 * time.Second})
	if wait != 7*time.Second {
		t.Fatalf("expected 7s, got %s", wait)
	}
}

func TestRetry_BackoffCapped(t *testing.T) {
	r := &RetryDoer{config: retryConfig()}
	for attempt := range 10 {
		wait := r.backoff(attempt, errors.New("x"))
		// MaxWait plus 20% jitter.
		if wait > 12*time.Millisecond {
			t.Fatalf("attempt %d: wait %s exceeds cap", attempt, wait)
		}
	}
}

func TestRetry_FreshRequestIDPerAttempt(t *testing.T) {
	mock := NewMockDoer(
		MockResponse{Err: &ErrServerUnavailable{Status: 502}},
		MockResponse{Body: json.RawMessage(`{}`)},
	)
	d := WithRetry(WithLogging(mock, &recordingLog{}), retryConfig())

	if _, err := d.Do(context.Background(), getRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.Calls[0].RequestID == mock.Calls[1].RequestID {
		t.Fatalf("expected distinct request ids, got %q twice", mock.Calls[0].RequestID)
	}
}

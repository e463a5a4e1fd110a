package api

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockDoer.
type MockResponse struct {
	Status int
	Body   json.RawMessage
	Err    error
}

// MockDoer is a deterministic Doer for testing.
// It returns canned responses in FIFO order and records all requests.
type MockDoer struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockDoer creates a MockDoer with the given canned responses.
func NewMockDoer(responses ...MockResponse) *MockDoer {
	return &MockDoer{responses: responses}
}

// Do returns the next canned response or ErrServerUnavailable if the
// queue is exhausted.
func (m *MockDoer) Do(_ context.Context, req *Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, *req)

	if len(m.responses) == 0 {
		return nil, &ErrServerUnavailable{Status: 503}
	}
	r := m.responses[0]
	m.responses = m.responses[1:]

	if r.Err != nil {
		return nil, r.Err
	}
	status := r.Status
	if status == 0 {
		status = 200
	}
	return &Response{Status: status, Body: r.Body, RequestID: req.RequestID}, nil
}

// CallCount returns the number of requests made.
func (m *MockDoer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or false if none.
func (m *MockDoer) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}

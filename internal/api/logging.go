package api

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/wselearn/wse/internal/store"
)

// RequestLog receives one event per API request.
type RequestLog interface {
	AppendRequest(ctx context.Context, data store.RequestEventData) error
}

// LoggingDoer is a decorator that records every request as an event.
type LoggingDoer struct {
	inner Doer
	log   RequestLog
}

// WithLogging wraps a Doer with request event logging.
func WithLogging(d Doer, log RequestLog) Doer {
	return &LoggingDoer{inner: d, log: log}
}

func (l *LoggingDoer) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	start := time.Now()

	resp, err := l.inner.Do(ctx, req)

	data := store.RequestEventData{
		RequestID: req.RequestID,
		Method:    req.Method,
		Path:      req.Path,
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.Status = resp.Status
	}
	if err != nil {
		data.Status = StatusOf(err)
		data.ErrorMessage = err.Error()
	}

	// Log the event but don't fail the request if logging fails. The
	// request context may already be cancelled.
	if logErr := l.log.AppendRequest(context.WithoutCancel(ctx), data); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log API request event: %v\n", logErr)
	}

	return resp, err
}

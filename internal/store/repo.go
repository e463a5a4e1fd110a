package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // id > After
	Before  int64     // id < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Variant string    // exact variant match (progress events only)
}

// Credentials is the saved API session.
type Credentials struct {
	Username string
	Token    string
	SavedAt  time.Time
}

// CredentialRepo persists the API session token between runs.
type CredentialRepo interface {
	// Save replaces the stored credentials.
	Save(ctx context.Context, c Credentials) error

	// Load returns the stored credentials, or nil if none are saved.
	Load(ctx context.Context) (*Credentials, error)

	// Clear removes the stored credentials.
	Clear(ctx context.Context) error
}

// ProgressEventData captures one posted self-assessment.
type ProgressEventData struct {
	Variant string
	ItemID  string
	Action  string
}

// ProgressEventRecord is a stored progress event.
type ProgressEventRecord struct {
	ID        int64
	Variant   string
	ItemID    string
	Action    string
	Timestamp time.Time
}

// ProgressStat aggregates progress events for one variant.
type ProgressStat struct {
	Variant  string
	Known    int
	NotKnown int
}

// Total returns the number of assessments.
func (s ProgressStat) Total() int {
	return s.Known + s.NotKnown
}

// RequestEventData captures the data for a single API request event.
type RequestEventData struct {
	RequestID    string
	Method       string
	Path         string
	Purpose      string
	Status       int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// RequestSummary aggregates the request log.
type RequestSummary struct {
	Total        int
	Failed       int
	AvgLatencyMs float64
}

// EventRepo provides append and query access to local events.
type EventRepo interface {
	// AppendProgress records a posted self-assessment.
	AppendProgress(ctx context.Context, data ProgressEventData) error

	// QueryProgress returns progress events, newest first.
	QueryProgress(ctx context.Context, opts QueryOpts) ([]ProgressEventRecord, error)

	// ProgressStats aggregates progress events per variant.
	ProgressStats(ctx context.Context) ([]ProgressStat, error)

	// AppendRequest records an API request event.
	AppendRequest(ctx context.Context, data RequestEventData) error

	// RequestSummary aggregates the request log.
	RequestSummary(ctx context.Context) (RequestSummary, error)
}

// ParamsSnapshot is the last exercise parameter selection of a variant.
type ParamsSnapshot struct {
	ID      int64
	Variant string
	Data    json.RawMessage
	SavedAt time.Time
}

// ParamsRepo remembers exercise parameter selections.
type ParamsRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *ParamsSnapshot) error

	// Latest returns the newest snapshot for variant, or nil if none exist.
	Latest(ctx context.Context, variant string) (*ParamsSnapshot, error)

	// Prune deletes all but the N most recent snapshots of variant.
	Prune(ctx context.Context, variant string, keep int) error
}

package exercise

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoTask is returned when task fields are read before any successful fetch.
var ErrNoTask = errors.New("no task loaded")

// Status tracks which half of the question/answer cycle is shown next.
type Status int

const (
	// StatusNone means no task is in progress; the next iteration fetches.
	StatusNone Status = iota
	// StatusAwaitingAnswer means the question is shown and the answer is next.
	StatusAwaitingAnswer
	// StatusAwaitingQuestion means the answer is shown and a new task is next.
	StatusAwaitingQuestion
)

func (s Status) String() string {
	switch s {
	case StatusAwaitingAnswer:
		return "awaiting-answer"
	case StatusAwaitingQuestion:
		return "awaiting-question"
	default:
		return "none"
	}
}

// Payload is the opaque exercise object returned by the remote API.
type Payload map[string]any

// Task holds the current exercise payload, the lookup params and the
// display phase.
type Task struct {
	mu      sync.RWMutex
	variant Variant
	data    Payload
	params  Params
	status  Status
}

// NewTask creates an empty Task for the given variant.
func NewTask(v Variant) *Task {
	return &Task{variant: v.WithDefaults()}
}

// SetData replaces the payload wholesale.
func (t *Task) SetData(p Payload) {
	t.mu.Lock()
	t.data = p
	t.mu.Unlock()
}

// Data returns the current payload, or nil before the first fetch.
func (t *Task) Data() Payload {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.data
}

// Loaded reports whether a payload has been set.
func (t *Task) Loaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.data != nil
}

// Params returns the lookup conditions sent with every fetch.
func (t *Task) Params() Params {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.params
}

// SetParams replaces the lookup conditions.
func (t *Task) SetParams(p Params) {
	t.mu.Lock()
	t.params = p
	t.mu.Unlock()
}

// Status returns the display phase.
func (t *Task) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// SetStatus sets the display phase.
func (t *Task) SetStatus(s Status) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Question returns the question text of the current payload.
func (t *Task) Question() (string, error) {
	return t.text(t.variant.QuestionKey)
}

// Answer returns the answer text of the current payload.
func (t *Task) Answer() (string, error) {
	return t.text(t.variant.AnswerKey)
}

// ItemID returns the subject item identifier as received from the API.
func (t *Task) ItemID() (any, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.data == nil {
		return nil, ErrNoTask
	}
	id, ok := t.data[t.variant.IDKey]
	if !ok || id == nil {
		return nil, fmt.Errorf("payload has no %q field", t.variant.IDKey)
	}
	return id, nil
}

// Extra returns the variant's extra display fields present in the payload,
// in the variant's key order.
func (t *Task) Extra() ([]ExtraField, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.data == nil {
		return nil, ErrNoTask
	}
	var out []ExtraField
	for _, key := range t.variant.ExtraKeys {
		v, ok := t.data[key]
		if !ok || v == nil {
			continue
		}
		out = append(out, ExtraField{Key: key, Value: fmt.Sprint(v)})
	}
	return out, nil
}

func (t *Task) text(key string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.data == nil {
		return "", ErrNoTask
	}
	v, ok := t.data[key]
	if !ok || v == nil {
		return "", nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}

// ExtraField is one optional display field of a payload.
type ExtraField struct {
	Key   string
	Value string
}

// FormatItemID renders an item ID for logs and storage. JSON numbers decode
// as float64, so integral values are printed without a fraction.
func FormatItemID(id any) string {
	switch v := id.(type) {
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
	}
	return fmt.Sprint(id)
}

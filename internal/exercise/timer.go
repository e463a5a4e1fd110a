package exercise

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is how long a question or an answer stays on screen before
// the loop flips to the other half of the cycle.
const DefaultDelay = 5 * time.Second

// pendingWait is a single in-flight delay.
type pendingWait struct {
	timer     *time.Timer
	cancelled chan struct{}
	once      sync.Once
}

func (w *pendingWait) cancel() {
	w.once.Do(func() {
		w.timer.Stop()
		close(w.cancelled)
	})
}

// Timer is a cancellable single-shot delay with a user-controlled pause flag.
// At most one delay is pending at any time: starting a new one supersedes
// the previous.
type Timer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending *pendingWait
	paused  bool
}

// NewTimer creates a Timer. A non-positive delay falls back to DefaultDelay.
func NewTimer(delay time.Duration) *Timer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Timer{delay: delay}
}

// Delay returns the configured delay.
func (t *Timer) Delay() time.Duration {
	return t.delay
}

// Start begins a new delay and blocks until it elapses (true) or until it
// is cancelled, superseded or ctx ends (false). A caller whose ctx is
// already done never supersedes the pending delay.
func (t *Timer) Start(ctx context.Context) bool {
	w := &pendingWait{
		timer:     time.NewTimer(t.delay),
		cancelled: make(chan struct{}),
	}

	t.mu.Lock()
	if ctx.Err() != nil {
		t.mu.Unlock()
		w.timer.Stop()
		return false
	}
	if t.pending != nil {
		t.pending.cancel()
	}
	t.pending = w
	t.mu.Unlock()

	defer t.release(w)

	select {
	case <-w.timer.C:
		return true
	case <-w.cancelled:
		return false
	case <-ctx.Done():
		w.cancel()
		return false
	}
}

// release forgets w if it is still the pending delay.
func (t *Timer) release(w *pendingWait) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == w {
		t.pending = nil
	}
}

// Cancel cancels the pending delay, if any. Safe to call repeatedly.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		t.pending.cancel()
		t.pending = nil
	}
}

// Pending reports whether a delay is in flight.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

// Pause sets the paused flag. It does not cancel a pending delay; the loop
// consults the flag at its next decision point.
func (t *Timer) Pause() {
	t.mu.Lock()
	t.paused = true
	t.mu.Unlock()
}

// Unpause clears the paused flag.
func (t *Timer) Unpause() {
	t.mu.Lock()
	t.paused = false
	t.mu.Unlock()
}

// IsPaused returns the current paused state.
func (t *Timer) IsPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

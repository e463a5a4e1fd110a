package exercise

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wselearn/wse/internal/store"
)

// Action is a learner's self-assessment of the current item.
type Action string

const (
	ActionKnow    Action = "know"
	ActionNotKnow Action = "not_know"
)

// ProgressUpdate is posted to the progress endpoint after an answer button.
type ProgressUpdate struct {
	Action Action `json:"action"`
	ItemID any    `json:"item_id"`
}

// API is the remote side of the exercise loop.
type API interface {
	// FetchTask requests the next exercise matching params.
	FetchTask(ctx context.Context, path string, params Params) (Payload, error)

	// PostProgress reports a self-assessment for one item.
	PostProgress(ctx context.Context, path string, update ProgressUpdate) error
}

// ProgressLog records posted progress updates locally.
type ProgressLog interface {
	AppendProgress(ctx context.Context, data store.ProgressEventData) error
}

// Options configures a Loop.
type Options struct {
	Variant Variant
	API     API
	Display Display

	// Visible reports whether the hosting screen is the active view. The
	// loop stops at its next decision point once it returns false.
	// Nil means always visible.
	Visible func() bool

	// Delay is how long each half of the cycle stays on screen.
	Delay time.Duration

	// Progress, when set, receives every successfully posted update.
	Progress ProgressLog
}

// Loop drives the timed question/answer cycle for one exercise screen.
//
// Each run alternates between fetching and showing a question and showing
// its answer, waiting out the Timer between the two. Starting a run
// invalidates the previous one, so at most one run acts at a time and a
// stale wakeup never executes an iteration.
type Loop struct {
	variant  Variant
	api      API
	display  Display
	visible  func() bool
	progress ProgressLog
	task     *Task
	timer    *Timer

	mu        sync.Mutex
	gen       uint64
	running   bool
	showing   bool
	cancelRun context.CancelFunc
	done      chan struct{}
}

// New creates an idle Loop.
func New(opts Options) *Loop {
	visible := opts.Visible
	if visible == nil {
		visible = func() bool { return true }
	}
	v := opts.Variant.WithDefaults()
	return &Loop{
		variant:  v,
		api:      opts.API,
		display:  opts.Display,
		visible:  visible,
		progress: opts.Progress,
		task:     NewTask(v),
		timer:    NewTimer(opts.Delay),
	}
}

// Task returns the loop's task.
func (l *Loop) Task() *Task { return l.task }

// Timer returns the loop's timer.
func (l *Loop) Timer() *Timer { return l.timer }

// Variant returns the variant this loop drills.
func (l *Loop) Variant() Variant { return l.variant }

// Running reports whether a run is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Start begins a fresh exercise with params: any stale delay is cancelled
// and the first iteration fetches a new task.
func (l *Loop) Start(params Params) {
	l.Stop()
	l.task.SetParams(params)
	l.task.SetStatus(StatusNone)
	l.begin()
}

// Know reports the current item as known and advances to a new task.
func (l *Loop) Know(ctx context.Context) error {
	return l.answer(ctx, ActionKnow)
}

// NotKnow reports the current item as not known and advances to a new task.
func (l *Loop) NotKnow(ctx context.Context) error {
	return l.answer(ctx, ActionNotKnow)
}

// Pause stops automatic flipping at the loop's next decision point. A
// pending delay is left to elapse.
func (l *Loop) Pause() {
	l.timer.Pause()
}

// Next resumes a paused loop and advances immediately.
func (l *Loop) Next() {
	l.timer.Unpause()
	l.begin()
}

// Stop ends the current run, if any.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.invalidateLocked()
	l.mu.Unlock()
	l.timer.Cancel()
}

// Wait blocks until the current run ends.
func (l *Loop) Wait() {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (l *Loop) answer(ctx context.Context, action Action) error {
	id, err := l.task.ItemID()
	if err != nil {
		return err
	}

	l.Stop()

	update := ProgressUpdate{Action: action, ItemID: id}
	if err := l.api.PostProgress(ctx, l.variant.ProgressPath, update); err != nil {
		err = fmt.Errorf("post progress: %w", err)
		l.display.ShowError(err)
		return err
	}

	// The assessed item must not be posted again.
	l.task.SetData(nil)

	if l.progress != nil {
		_ = l.progress.AppendProgress(ctx, store.ProgressEventData{
			Variant: l.variant.Name,
			ItemID:  FormatItemID(id),
			Action:  string(action),
		})
	}

	l.task.SetStatus(StatusNone)
	l.begin()
	return nil
}

// begin invalidates the current run, cancels its delay and starts a new
// run on its own goroutine.
func (l *Loop) begin() {
	l.mu.Lock()
	l.invalidateLocked()
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(context.Background())
	l.cancelRun = cancel
	done := make(chan struct{})
	l.done = done
	l.running = true
	l.mu.Unlock()

	// The old run's context is already cancelled, so it can no longer
	// install a delay; this clears one it installed before.
	l.timer.Cancel()

	go l.run(ctx, gen, done)
}

func (l *Loop) invalidateLocked() {
	l.gen++
	l.running = false
	if l.cancelRun != nil {
		l.cancelRun()
		l.cancelRun = nil
	}
}

func (l *Loop) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer func() {
		l.mu.Lock()
		if l.gen == gen {
			l.running = false
			if l.cancelRun != nil {
				l.cancelRun()
				l.cancelRun = nil
			}
		}
		l.mu.Unlock()
		close(done)
	}()

	for {
		if !l.current(gen) || !l.enabled() {
			return
		}

		if !l.step(ctx, gen) {
			return
		}

		if !l.timer.Start(ctx) && !l.current(gen) {
			return
		}
	}
}

// step runs one display iteration. It returns false when the run must end.
func (l *Loop) step(ctx context.Context, gen uint64) bool {
	if l.task.Status() != StatusAwaitingAnswer {
		payload, err := l.api.FetchTask(ctx, l.variant.ExercisePath, l.task.Params())
		return l.renderQuestion(gen, payload, err)
	}
	return l.renderAnswer(gen)
}

func (l *Loop) renderQuestion(gen uint64, payload Payload, fetchErr error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != gen {
		return false
	}
	if fetchErr == nil && payload == nil {
		fetchErr = ErrNoTask
	}
	if fetchErr != nil {
		l.task.SetData(nil)
		l.clearLocked()
		l.display.ShowError(fmt.Errorf("fetch task: %w", fetchErr))
		return false
	}

	l.task.SetData(payload)
	l.showing = true
	question, _ := l.task.Question()
	l.display.ShowQuestion(question)
	l.display.ShowAnswer("")
	if ed, ok := l.display.(ExtraDisplay); ok {
		extra, _ := l.task.Extra()
		ed.ShowExtra(extra)
	}
	l.task.SetStatus(StatusAwaitingAnswer)
	return true
}

func (l *Loop) renderAnswer(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != gen {
		return false
	}
	answer, err := l.task.Answer()
	if err != nil {
		l.display.ShowError(err)
		return false
	}
	l.display.ShowAnswer(answer)
	l.task.SetStatus(StatusAwaitingQuestion)
	return true
}

// clearLocked wipes a previously shown item from the display.
func (l *Loop) clearLocked() {
	if !l.showing {
		return
	}
	l.showing = false
	l.display.ShowQuestion("")
	l.display.ShowAnswer("")
	if ed, ok := l.display.(ExtraDisplay); ok {
		ed.ShowExtra(nil)
	}
}

func (l *Loop) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen == gen
}

func (l *Loop) enabled() bool {
	return !l.timer.IsPaused() && l.visible()
}

package exercise

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wselearn/wse/internal/store"
)

// fakeAPI returns canned payloads in order; the last one repeats.
type fakeAPI struct {
	mu       sync.Mutex
	payloads []Payload
	fetchErr error
	postErr  error
	fetches  []Params
	posts    []ProgressUpdate
	paths    []string
}

func (f *fakeAPI) FetchTask(_ context.Context, path string, params Params) (Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, params)
	f.paths = append(f.paths, path)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.payloads) == 0 {
		return nil, nil
	}
	p := f.payloads[0]
	if len(f.payloads) > 1 {
		f.payloads = f.payloads[1:]
	}
	return p, nil
}

func (f *fakeAPI) PostProgress(_ context.Context, path string, update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, update)
	f.paths = append(f.paths, path)
	return f.postErr
}

func (f *fakeAPI) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

func (f *fakeAPI) snapshot() (fetches []Params, posts []ProgressUpdate, paths []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Params(nil), f.fetches...),
		append([]ProgressUpdate(nil), f.posts...),
		append([]string(nil), f.paths...)
}

func (f *fakeAPI) postCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

// recordingDisplay logs every render as "q:<text>", "a:<text>", "x:<n>"
// or "err:<msg>".
type recordingDisplay struct {
	mu     sync.Mutex
	events []string
}

func (d *recordingDisplay) record(e string) {
	d.mu.Lock()
	d.events = append(d.events, e)
	d.mu.Unlock()
}

func (d *recordingDisplay) ShowQuestion(text string) { d.record("q:" + text) }
func (d *recordingDisplay) ShowAnswer(text string)   { d.record("a:" + text) }
func (d *recordingDisplay) ShowError(err error)      { d.record("err:" + err.Error()) }

func (d *recordingDisplay) Events() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

func (d *recordingDisplay) Last() string {
	ev := d.Events()
	if len(ev) == 0 {
		return ""
	}
	return ev[len(ev)-1]
}

func (d *recordingDisplay) Has(e string) bool {
	for _, got := range d.Events() {
		if got == e {
			return true
		}
	}
	return false
}

type recordingProgress struct {
	mu     sync.Mutex
	events []store.ProgressEventData
}

func (r *recordingProgress) AppendProgress(_ context.Context, data store.ProgressEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return nil
}

func catPayload() Payload {
	return Payload{"question_text": "cat", "answer_text": "кот", "id": 7}
}

func dogPayload() Payload {
	return Payload{"question_text": "dog", "answer_text": "собака", "id": 8}
}

type loopFixture struct {
	api     *fakeAPI
	display *recordingDisplay
	visible atomic.Bool
	loop    *Loop
}

func newLoopFixture(t *testing.T, delay time.Duration, payloads ...Payload) *loopFixture {
	t.Helper()
	f := &loopFixture{
		api:     &fakeAPI{payloads: payloads},
		display: &recordingDisplay{},
	}
	f.visible.Store(true)
	f.loop = New(Options{
		Variant: ForeignWords(),
		API:     f.api,
		Display: f.display,
		Visible: f.visible.Load,
		Delay:   delay,
	})
	t.Cleanup(func() {
		f.loop.Stop()
		f.loop.Wait()
	})
	return f
}

const waitFor = 2 * time.Second

func TestLoop_StartShowsQuestion(t *testing.T) {
	f := newLoopFixture(t, time.Hour, catPayload())

	f.loop.Start(Params{Category: "nouns"})

	require.Eventually(t, f.loop.Timer().Pending, waitFor, time.Millisecond)
	assert.Equal(t, []string{"q:cat", "a:"}, f.display.Events())
	assert.Equal(t, StatusAwaitingAnswer, f.loop.Task().Status())
	fetches, _, paths := f.api.snapshot()
	assert.Equal(t, []Params{{Category: "nouns"}}, fetches)
	assert.Equal(t, []string{"/api/v1/foreign/exercise/"}, paths)
	assert.True(t, f.loop.Running())
}

func TestLoop_DelayFlipsToAnswer(t *testing.T) {
	f := newLoopFixture(t, 20*time.Millisecond, catPayload())

	f.loop.Start(Params{Category: "nouns"})

	require.Eventually(t, func() bool { return f.display.Has("a:кот") }, waitFor, time.Millisecond)
	ev := f.display.Events()
	assert.Equal(t, []string{"q:cat", "a:", "a:кот"}, ev[:3])
}

func TestLoop_StatusAlternates(t *testing.T) {
	f := newLoopFixture(t, 5*time.Millisecond, catPayload(), dogPayload())

	f.loop.Start(DefaultParams())
	require.Eventually(t, func() bool { return f.api.fetchCount() >= 3 }, waitFor, time.Millisecond)
	f.loop.Stop()
	f.loop.Wait()

	// Drop the answer clears; what remains must alternate question, answer.
	var phases []byte
	for _, e := range f.display.Events() {
		switch {
		case strings.HasPrefix(e, "q:"):
			phases = append(phases, 'q')
		case e != "a:":
			phases = append(phases, 'a')
		}
	}
	require.NotEmpty(t, phases)
	for i, p := range phases {
		want := byte('q')
		if i%2 == 1 {
			want = 'a'
		}
		assert.Equal(t, string(want), string(p), "phase %d in %s", i, phases)
	}
}

func TestLoop_KnowPostsAndRefetches(t *testing.T) {
	f := newLoopFixture(t, 200*time.Millisecond, catPayload(), dogPayload())
	progress := &recordingProgress{}
	f.loop.progress = progress

	f.loop.Start(Params{Category: "nouns"})
	require.Eventually(t, func() bool {
		return f.loop.Task().Status() == StatusAwaitingQuestion
	}, waitFor, time.Millisecond)

	require.NoError(t, f.loop.Know(context.Background()))

	require.Eventually(t, func() bool { return f.display.Has("q:dog") }, waitFor, time.Millisecond)
	fetches, posts, paths := f.api.snapshot()
	assert.Equal(t, []ProgressUpdate{{Action: ActionKnow, ItemID: 7}}, posts)
	assert.Contains(t, paths, "/api/v1/foreign/progress/")
	assert.Equal(t, Params{Category: "nouns"}, fetches[1], "params persist across runs")

	require.Len(t, progress.events, 1)
	assert.Equal(t, store.ProgressEventData{Variant: "foreign", ItemID: "7", Action: "know"}, progress.events[0])
}

func TestLoop_NotKnowWhileQuestionShown(t *testing.T) {
	f := newLoopFixture(t, time.Hour, catPayload(), dogPayload())

	f.loop.Start(DefaultParams())
	require.Eventually(t, f.loop.Timer().Pending, waitFor, time.Millisecond)

	require.NoError(t, f.loop.NotKnow(context.Background()))
	require.Eventually(t, func() bool { return f.display.Has("q:dog") }, waitFor, time.Millisecond)

	_, posts, _ := f.api.snapshot()
	require.Len(t, posts, 1)
	assert.Equal(t, ActionNotKnow, posts[0].Action)
	assert.False(t, f.display.Has("a:кот"), "the skipped answer must not be shown")
}

func TestLoop_KnowBeforeTaskFails(t *testing.T) {
	f := newLoopFixture(t, time.Hour)

	err := f.loop.Know(context.Background())
	assert.ErrorIs(t, err, ErrNoTask)
	assert.Zero(t, f.api.postCount())
}

func TestLoop_AssessedItemIsNotPostedTwice(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fakeAPI)
	}{
		{"empty fetch", func(f *fakeAPI) { f.payloads = nil }},
		{"failed fetch", func(f *fakeAPI) { f.fetchErr = errors.New("connection refused") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoopFixture(t, time.Hour, catPayload())

			f.loop.Start(DefaultParams())
			require.Eventually(t, f.loop.Timer().Pending, waitFor, time.Millisecond)

			f.api.mu.Lock()
			tt.setup(f.api)
			f.api.mu.Unlock()

			require.NoError(t, f.loop.Know(context.Background()))
			f.loop.Wait()
			require.True(t, strings.HasPrefix(f.display.Last(), "err:fetch task"))
			assert.True(t, f.display.Has("q:"), "the assessed question is cleared")
			assert.False(t, f.loop.Task().Loaded())

			err := f.loop.Know(context.Background())
			assert.ErrorIs(t, err, ErrNoTask)
			_, posts, _ := f.api.snapshot()
			assert.Equal(t, []ProgressUpdate{{Action: ActionKnow, ItemID: 7}}, posts)
		})
	}
}

func TestLoop_PostFailureStopsLoop(t *testing.T) {
	f := newLoopFixture(t, time.Hour, catPayload())
	f.api.postErr = errors.New("server said no")

	f.loop.Start(DefaultParams())
	require.Eventually(t, f.loop.Timer().Pending, waitFor, time.Millisecond)

	err := f.loop.Know(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server said no")
	assert.True(t, strings.HasPrefix(f.display.Last(), "err:post progress"))

	f.loop.Wait()
	assert.False(t, f.loop.Running())
	assert.Equal(t, 1, f.api.fetchCount())
}

func TestLoop_PauseStopsAfterDelay(t *testing.T) {
	f := newLoopFixture(t, 30*time.Millisecond, catPayload())

	f.loop.Start(DefaultParams())
	require.Eventually(t, f.loop.Timer().Pending, waitFor, time.Millisecond)

	f.loop.Pause()
	f.loop.Wait()

	events := f.display.Events()
	fetches, posts := f.api.fetchCount(), f.api.postCount()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, events, f.display.Events(), "no display changes while paused")
	assert.Equal(t, fetches, f.api.fetchCount())
	assert.Equal(t, posts, f.api.postCount())
	assert.False(t, f.loop.Running())
	assert.Equal(t, StatusAwaitingAnswer, f.loop.Task().Status())
}

func TestLoop_NextResumesImmediately(t *testing.T) {
	f := newLoopFixture(t, 200*time.Millisecond, catPayload())

	f.loop.Start(DefaultParams())
	require.Eventually(t, f.loop.Timer().Pending, waitFor, time.Millisecond)
	f.loop.Pause()
	f.loop.Wait()
	before := len(f.display.Events())

	start := time.Now()
	f.loop.Next()
	assert.False(t, f.loop.Timer().IsPaused())

	require.Eventually(t, func() bool { return f.display.Has("a:кот") }, waitFor, time.Millisecond)
	assert.Less(t, time.Since(start), 150*time.Millisecond, "next must not wait out a delay")
	assert.Equal(t, before+1, len(f.display.Events()), "exactly one iteration")
	assert.Equal(t, 1, f.api.fetchCount())
}

func TestLoop_NextSupersedesPendingDelay(t *testing.T) {
	f := newLoopFixture(t, time.Hour, catPayload(), dogPayload())

	f.loop.Start(DefaultParams())
	require.Eventually(t, f.loop.Timer().Pending, waitFor, time.Millisecond)

	f.loop.Next()
	require.Eventually(t, func() bool { return f.display.Has("a:кот") }, waitFor, time.Millisecond)

	f.loop.Next()
	require.Eventually(t, func() bool { return f.display.Has("q:dog") }, waitFor, time.Millisecond)
	assert.Equal(t, 2, f.api.fetchCount())
}

func TestLoop_HiddenScreenStops(t *testing.T) {
	f := newLoopFixture(t, 30*time.Millisecond, catPayload())

	f.loop.Start(DefaultParams())
	require.Eventually(t, f.loop.Timer().Pending, waitFor, time.Millisecond)

	f.visible.Store(false)
	f.loop.Wait()

	assert.Equal(t, []string{"q:cat", "a:"}, f.display.Events())
	assert.Equal(t, 1, f.api.fetchCount())
	assert.Zero(t, f.api.postCount())
	assert.False(t, f.loop.Running())
}

func TestLoop_HiddenAtStartDoesNothing(t *testing.T) {
	f := newLoopFixture(t, time.Hour, catPayload())
	f.visible.Store(false)

	f.loop.Start(DefaultParams())
	f.loop.Wait()

	assert.Zero(t, f.api.fetchCount())
	assert.Empty(t, f.display.Events())
}

func TestLoop_FetchFailureShowsErrorAndStops(t *testing.T) {
	f := newLoopFixture(t, 10*time.Millisecond)
	f.api.fetchErr = fmt.Errorf("connection refused")

	f.loop.Start(DefaultParams())
	f.loop.Wait()

	assert.Equal(t, []string{"err:fetch task: connection refused"}, f.display.Events())
	assert.Equal(t, StatusNone, f.loop.Task().Status())
	assert.False(t, f.loop.Task().Loaded())
	assert.False(t, f.loop.Running())
	assert.Equal(t, 1, f.api.fetchCount(), "a failed fetch is not retried")
}

func TestLoop_EmptyFetchShowsNoTask(t *testing.T) {
	f := newLoopFixture(t, 10*time.Millisecond)

	f.loop.Start(DefaultParams())
	f.loop.Wait()

	require.Len(t, f.display.Events(), 1)
	assert.Contains(t, f.display.Last(), ErrNoTask.Error())
}

func TestLoop_RestartUsesNewParams(t *testing.T) {
	f := newLoopFixture(t, time.Hour, catPayload(), dogPayload())

	f.loop.Start(Params{Category: "a"})
	require.Eventually(t, f.loop.Timer().Pending, waitFor, time.Millisecond)

	f.loop.Start(Params{Category: "b"})
	require.Eventually(t, func() bool { return f.display.Has("q:dog") }, waitFor, time.Millisecond)

	fetches, _, _ := f.api.snapshot()
	assert.Equal(t, []Params{{Category: "a"}, {Category: "b"}}, fetches)
	assert.True(t, f.loop.Running())
}

func TestLoop_StopIsIdempotent(t *testing.T) {
	f := newLoopFixture(t, time.Hour, catPayload())

	assert.NotPanics(t, func() {
		f.loop.Stop()
		f.loop.Stop()
	})
	f.loop.Wait()
	assert.False(t, f.loop.Running())
}

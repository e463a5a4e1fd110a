package exercise

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"

	ex "github.com/wselearn/wse/internal/exercise"
	"github.com/wselearn/wse/internal/router"
	"github.com/wselearn/wse/internal/screen"
	"github.com/wselearn/wse/internal/screens/dialog"
	"github.com/wselearn/wse/internal/ui/layout"
)

const tickInterval = 100 * time.Millisecond

// ErrorHandler reacts to API errors that invalidate the session.
type ErrorHandler interface {
	HandleError(ctx context.Context, err error) bool
}

// Options configures an ExerciseScreen.
type Options struct {
	Variant  ex.Variant
	Params   ex.Params
	API      ex.API
	Progress ex.ProgressLog
	Delay    time.Duration
	Auth     ErrorHandler
}

// ExerciseScreen hosts one exercise loop. The loop runs only while the
// screen is on top of the router stack.
type ExerciseScreen struct {
	variant ex.Variant
	params  ex.Params
	loop    *ex.Loop
	panel   *ex.Panel
	auth    ErrorHandler

	visible atomic.Bool
	started bool
	gen     int
	busy    bool
	notice  string
	now     func() time.Time
}

var _ screen.Screen = (*ExerciseScreen)(nil)
var _ screen.Focusable = (*ExerciseScreen)(nil)
var _ screen.KeyHintProvider = (*ExerciseScreen)(nil)

// New creates an ExerciseScreen. The loop starts on first focus.
func New(opts Options) *ExerciseScreen {
	s := &ExerciseScreen{
		variant: opts.Variant.WithDefaults(),
		params:  opts.Params,
		panel:   ex.NewPanel(),
		auth:    opts.Auth,
		now:     time.Now,
	}
	s.loop = ex.New(ex.Options{
		Variant:  opts.Variant,
		API:      opts.API,
		Display:  s.panel,
		Visible:  s.visible.Load,
		Delay:    opts.Delay,
		Progress: opts.Progress,
	})
	return s
}

// Loop returns the screen's exercise loop.
func (s *ExerciseScreen) Loop() *ex.Loop {
	return s.loop
}

// Panel returns what the loop last rendered.
func (s *ExerciseScreen) Panel() *ex.Panel {
	return s.panel
}

func (s *ExerciseScreen) Init() tea.Cmd {
	return nil
}

func (s *ExerciseScreen) Title() string {
	return s.variant.Title
}

// Focus marks the screen visible. The first focus starts the exercise;
// later ones leave a stopped loop for the user to restart.
func (s *ExerciseScreen) Focus() tea.Cmd {
	s.visible.Store(true)
	if !s.started {
		s.started = true
		s.loop.Start(s.params)
	}
	s.gen++
	return s.tick()
}

// Blur marks the screen hidden. A running loop exits at its next
// decision point.
func (s *ExerciseScreen) Blur() {
	s.visible.Store(false)
	s.gen++
}

// Visible reports whether the screen is the active one.
func (s *ExerciseScreen) Visible() bool {
	return s.visible.Load()
}

func (s *ExerciseScreen) tick() tea.Cmd {
	gen := s.gen
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (s *ExerciseScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "K", Description: "Know"},
		{Key: "N", Description: "Don't know"},
	}
	if s.loop.Timer().IsPaused() || !s.loop.Running() {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Next"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "Space", Description: "Pause"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *ExerciseScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if msg.gen != s.gen || !s.visible.Load() {
			return s, nil
		}
		if err := s.panel.Snapshot().Err; err != nil {
			s.panel.ClearError()
			return s, tea.Batch(s.tick(), s.reportError(err))
		}
		return s, s.tick()

	case answeredMsg:
		s.busy = false
		if errors.Is(msg.Err, ex.ErrNoTask) {
			s.notice = "Nothing to assess yet."
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *ExerciseScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "k":
		return s, s.answer(ex.ActionKnow)
	case "n":
		return s, s.answer(ex.ActionNotKnow)
	case "space", "p":
		s.notice = ""
		s.loop.Pause()
	case "enter":
		s.notice = ""
		s.loop.Next()
	case "r":
		s.notice = ""
		s.loop.Start(s.params)
	}
	return s, nil
}

// answer posts the self-assessment off the UI goroutine. Only one post is
// in flight at a time.
func (s *ExerciseScreen) answer(action ex.Action) tea.Cmd {
	if s.busy {
		return nil
	}
	s.busy = true
	s.notice = ""
	loop := s.loop
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if action == ex.ActionKnow {
			err = loop.Know(ctx)
		} else {
			err = loop.NotKnow(ctx)
		}
		return answeredMsg{Action: action, Err: err}
	}
}

func (s *ExerciseScreen) reportError(err error) tea.Cmd {
	if s.auth != nil && s.auth.HandleError(context.Background(), err) {
		return router.Push(dialog.New("Session expired", "The server no longer accepts your session. Sign in again from the main menu."))
	}
	if errors.Is(err, ex.ErrNoTask) {
		return router.Push(dialog.New(s.variant.Title, "No items match the chosen parameters."))
	}
	return router.Push(dialog.Error(s.variant.Title, err))
}

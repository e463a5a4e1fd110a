package welcome

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wselearn/wse/internal/api"
	"github.com/wselearn/wse/internal/router"
	"github.com/wselearn/wse/internal/screen"
	"github.com/wselearn/wse/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	bannerAt     = 300 * time.Millisecond
	totalDur     = 1500 * time.Millisecond
)

// spinner frames shown while the server check runs
var spinnerFrames = []string{"◐", "◓", "◑", "◒"}

type tickMsg time.Time

type checkDoneMsg struct {
	Health *api.Health
	Err    error
}

// Checker probes the server before the menu opens.
type Checker func(ctx context.Context) (*api.Health, error)

// WelcomeScreen shows the banner while the server is probed, then hands
// over to the home screen on a key press.
type WelcomeScreen struct {
	homeFactory  screen.Factory
	check        Checker
	elapsed      time.Duration
	tickCount    int
	checked      bool
	status       string
	warning      bool
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that will transition to the screen produced
// by homeFactory. A nil check skips the server probe.
func New(homeFactory screen.Factory, check Checker) *WelcomeScreen {
	return &WelcomeScreen{
		homeFactory: homeFactory,
		check:       check,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	tick := tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
	if w.check == nil {
		w.checked = true
		return tick
	}
	check := w.check
	return tea.Batch(tick, func() tea.Msg {
		h, err := check(context.Background())
		if err == nil {
			err = h.CheckCompatible()
		}
		return checkDoneMsg{Health: h, Err: err}
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		if w.transitioned {
			return w, nil
		}
		return w, tea.Tick(tickInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case checkDoneMsg:
		w.checked = true
		switch {
		case msg.Err != nil:
			w.status = "Server check failed: " + msg.Err.Error()
			w.warning = true
		case msg.Health.APIVersion != "":
			w.status = "Server online · API " + msg.Health.APIVersion
		default:
			w.status = "Server online"
		}
		return w, nil

	case tea.KeyPressMsg:
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	return router.Replace(w.homeFactory())
}

func (w *WelcomeScreen) View(width, height int) string {
	sections := []string{RenderBanner(width)}

	if w.elapsed >= bannerAt {
		sections = append(sections, "",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
				Render("Words and scientific terms, one card at a time."))
	}

	sections = append(sections, "")
	switch {
	case !w.checked:
		frame := spinnerFrames[w.tickCount%len(spinnerFrames)]
		sections = append(sections, theme.Hint.Render(frame+" contacting server..."))
	case w.warning:
		sections = append(sections, theme.ErrorText.Render(w.status))
	case w.status != "":
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Success).Render(w.status))
	}

	if w.elapsed >= totalDur || w.checked {
		sections = append(sections, "",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("press any key to continue"))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wselearn/wse/internal/exercise"
	"github.com/wselearn/wse/internal/router"
	"github.com/wselearn/wse/internal/screen"
	"github.com/wselearn/wse/internal/screens/dialog"
	"github.com/wselearn/wse/internal/ui/components"
	"github.com/wselearn/wse/internal/ui/layout"
	"github.com/wselearn/wse/internal/ui/theme"
)

// Screen names registered by the app and shown from the menu.
const (
	LoginScreen   = "login"
	HistoryScreen = "history"
)

// ParamsScreen names the exercise parameters screen of a variant.
func ParamsScreen(variant string) string { return "params:" + variant }

// ListScreen names the item list screen of a variant.
func ListScreen(variant string) string { return "list:" + variant }

// Session is the part of the auth manager the menu needs.
type Session interface {
	LoggedIn() bool
	Username() string
	Logout(ctx context.Context) error
}

type logoutDoneMsg struct {
	Err error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	session  Session
	variants []exercise.Variant
	menu     components.Menu
	loggedIn bool
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Focusable = (*HomeScreen)(nil)

// New creates a HomeScreen offering an exercise and a list per variant.
func New(session Session, variants []exercise.Variant) *HomeScreen {
	h := &HomeScreen{session: session, variants: variants}
	h.rebuild()
	return h
}

// rebuild regenerates the menu for the current session state, keeping
// the selected row where possible.
func (h *HomeScreen) rebuild() {
	h.loggedIn = h.session.LoggedIn()
	selected := h.menu.Selected

	var items []components.MenuItem
	for _, v := range h.variants {
		items = append(items, components.MenuItem{
			Label:    v.Title,
			Hint:     "exercise",
			Action:   func() tea.Cmd { return router.Show(ParamsScreen(v.Name)) },
			Disabled: !h.loggedIn,
		})
	}
	for _, v := range h.variants {
		items = append(items, components.MenuItem{
			Label:    v.Title,
			Hint:     "list",
			Action:   func() tea.Cmd { return router.Show(ListScreen(v.Name)) },
			Disabled: !h.loggedIn,
		})
	}
	items = append(items, components.MenuItem{
		Label:  "History",
		Hint:   "local progress log",
		Action: func() tea.Cmd { return router.Show(HistoryScreen) },
	})
	if h.loggedIn {
		items = append(items, components.MenuItem{Label: "Sign out", Action: h.logout})
	} else {
		items = append(items, components.MenuItem{
			Label:  "Sign in",
			Action: func() tea.Cmd { return router.Show(LoginScreen) },
		})
	}
	items = append(items, components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }})

	h.menu = components.NewMenu(items)
	if selected > 0 && selected < len(items) && !items[selected].Disabled {
		h.menu.Selected = selected
	}
}

func (h *HomeScreen) logout() tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{Err: h.session.Logout(context.Background())}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

// Focus refreshes the menu; the session may have changed while another
// screen was shown.
func (h *HomeScreen) Focus() tea.Cmd {
	if h.session.LoggedIn() != h.loggedIn {
		h.rebuild()
	}
	return nil
}

func (h *HomeScreen) Blur() {}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(logoutDoneMsg); ok {
		h.rebuild()
		if msg.Err != nil {
			return h, router.Push(dialog.Error("Sign out", msg.Err))
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var greeting string
	if h.loggedIn {
		greeting = "Welcome back, " + h.session.Username() + "."
	} else {
		greeting = "Sign in to start practising."
	}

	sections := []string{
		theme.Title.Render("WSE"),
		theme.Subtitle.Render("words · scientific terms · exercises"),
		"",
		theme.Body.Render(greeting),
		"",
		h.menu.View(),
	}
	card := theme.Card.Width(min(width-4, 56)).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

package login

import (
	"context"
	"net/http"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wselearn/wse/internal/api"
	"github.com/wselearn/wse/internal/router"
	"github.com/wselearn/wse/internal/screen"
	"github.com/wselearn/wse/internal/ui/components"
	"github.com/wselearn/wse/internal/ui/layout"
	"github.com/wselearn/wse/internal/ui/theme"
)

// Authenticator signs the user in.
type Authenticator interface {
	Login(ctx context.Context, username, password string) error
}

type loginDoneMsg struct {
	Err error
}

// LoginScreen is the username/password form.
type LoginScreen struct {
	auth    Authenticator
	fields  []components.TextField
	focus   int
	pending bool
	errMsg  string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen.
func New(auth Authenticator) *LoginScreen {
	return &LoginScreen{
		auth: auth,
		fields: []components.TextField{
			components.NewTextField("Username", "your username", false, 150),
			components.NewTextField("Password", "your password", true, 128),
		},
	}
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.fields[0].Focus()
}

func (s *LoginScreen) Title() string {
	return "Sign in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Sign in"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		s.pending = false
		if msg.Err != nil {
			s.errMsg = describe(msg.Err)
			return s, nil
		}
		return s, router.Pop()

	case tea.KeyMsg:
		if s.pending {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down":
			return s, s.moveFocus(1)
		case "shift+tab", "up":
			return s, s.moveFocus(-1)
		case "enter":
			if s.focus < len(s.fields)-1 {
				return s, s.moveFocus(1)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *LoginScreen) moveFocus(delta int) tea.Cmd {
	s.fields[s.focus].Blur()
	n := len(s.fields)
	s.focus = ((s.focus+delta)%n + n) % n
	return s.fields[s.focus].Focus()
}

func (s *LoginScreen) submit() tea.Cmd {
	username := strings.TrimSpace(s.fields[0].Value())
	password := s.fields[1].Value()
	s.pending = true
	s.errMsg = ""
	return func() tea.Msg {
		return loginDoneMsg{Err: s.auth.Login(context.Background(), username, password)}
	}
}

func describe(err error) string {
	if api.StatusOf(err) == http.StatusBadRequest {
		return "Unable to sign in with the provided credentials."
	}
	return err.Error()
}

func (s *LoginScreen) View(width, height int) string {
	rows := []string{
		theme.Subtitle.Width(48).Render("Sign in to your WSE account"),
		"",
	}
	for _, f := range s.fields {
		rows = append(rows, f.View())
	}
	rows = append(rows, "")
	switch {
	case s.pending:
		rows = append(rows, theme.Hint.Render("Signing in..."))
	case s.errMsg != "":
		rows = append(rows, theme.ErrorText.Render(s.errMsg))
	}

	card := theme.Card.Width(min(width-4, 60)).Render(strings.Join(rows, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

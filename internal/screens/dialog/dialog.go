package dialog

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wselearn/wse/internal/router"
	"github.com/wselearn/wse/internal/screen"
	"github.com/wselearn/wse/internal/ui/layout"
	"github.com/wselearn/wse/internal/ui/theme"
)

// Kind selects the dialog's styling.
type Kind int

const (
	KindInfo Kind = iota
	KindError
)

// DialogScreen is a modal message box. Enter or Esc closes it.
type DialogScreen struct {
	title   string
	message string
	kind    Kind
}

var _ screen.Screen = (*DialogScreen)(nil)
var _ screen.KeyHintProvider = (*DialogScreen)(nil)

// New creates an informational dialog.
func New(title, message string) *DialogScreen {
	return &DialogScreen{title: title, message: message, kind: KindInfo}
}

// Error creates a dialog reporting err.
func Error(title string, err error) *DialogScreen {
	return &DialogScreen{title: title, message: err.Error(), kind: KindError}
}

// Message returns the dialog text.
func (d *DialogScreen) Message() string {
	return d.message
}

func (d *DialogScreen) Init() tea.Cmd {
	return nil
}

func (d *DialogScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q", "space":
			return d, router.Pop()
		}
	}
	return d, nil
}

func (d *DialogScreen) View(width, height int) string {
	card := theme.Card
	heading := theme.Title
	if d.kind == KindError {
		card = theme.ErrorCard
		heading = heading.Foreground(theme.Error)
	}

	boxWidth := min(max(width-10, 20), 64)
	body := lipgloss.NewStyle().Width(boxWidth - 4).Foreground(theme.Text).Render(d.message)

	content := strings.Join([]string{
		heading.Width(boxWidth - 4).Render(d.title),
		"",
		body,
		"",
		theme.Hint.Render("press Enter to close"),
	}, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		card.Width(boxWidth).Render(content))
}

func (d *DialogScreen) Title() string {
	return d.title
}

func (d *DialogScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Close"},
	}
}

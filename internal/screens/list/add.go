package list

import (
	"context"
	"errors"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wselearn/wse/internal/api"
	"github.com/wselearn/wse/internal/exercise"
	"github.com/wselearn/wse/internal/router"
	"github.com/wselearn/wse/internal/screen"
	"github.com/wselearn/wse/internal/ui/components"
	"github.com/wselearn/wse/internal/ui/layout"
	"github.com/wselearn/wse/internal/ui/theme"
)

type createdMsg struct {
	Item api.Item
	Err  error
}

// AddScreen is the form for creating one item.
type AddScreen struct {
	variant exercise.Variant
	items   ItemsAPI
	keys    []string
	fields  []components.TextField
	focus   int
	pending bool
	errMsg  string
}

var _ screen.Screen = (*AddScreen)(nil)
var _ screen.KeyHintProvider = (*AddScreen)(nil)

// NewAddScreen creates a form with one field per list column, the
// variant's extra keys and the category.
func NewAddScreen(v exercise.Variant, items ItemsAPI) *AddScreen {
	keys := append([]string(nil), v.ListColumns...)
	for _, k := range v.ExtraKeys {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	keys = append(keys, "category")

	fields := make([]components.TextField, len(keys))
	for i, k := range keys {
		fields[i] = components.NewTextField(strings.ReplaceAll(k, "_", " "), "", false, 256)
	}
	return &AddScreen{variant: v, items: items, keys: keys, fields: fields}
}

func (s *AddScreen) Init() tea.Cmd {
	return s.fields[0].Focus()
}

func (s *AddScreen) Title() string {
	return "Add to " + s.variant.Title
}

func (s *AddScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Ctrl+S", Description: "Save"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *AddScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case createdMsg:
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
		case "ctrl+s":
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *AddScreen) moveFocus(delta int) tea.Cmd {
	s.fields[s.focus].Blur()
	n := len(s.fields)
	s.focus = ((s.focus+delta)%n + n) % n
	return s.fields[s.focus].Focus()
}

// Values returns the trimmed form values keyed by field.
func (s *AddScreen) Values() map[string]any {
	out := make(map[string]any, len(s.keys))
	for i, k := range s.keys {
		out[k] = strings.TrimSpace(s.fields[i].Value())
	}
	return out
}

func (s *AddScreen) submit() tea.Cmd {
	s.pending = true
	s.errMsg = ""
	values, path, items := s.Values(), s.variant.ItemsPath, s.items
	return func() tea.Msg {
		it, err := items.CreateItem(context.Background(), path, values)
		return createdMsg{Item: it, Err: err}
	}
}

// describe surfaces the server's field errors for a rejected form.
func describe(err error) string {
	var se *api.ErrStatus
	if errors.As(err, &se) && se.Body != "" {
		return "Rejected: " + se.Body
	}
	return err.Error()
}

func (s *AddScreen) View(width, height int) string {
	rows := []string{theme.Subtitle.Render("New item"), ""}
	for _, f := range s.fields {
		rows = append(rows, f.View())
	}
	rows = append(rows, "")
	if s.pending {
		rows = append(rows, theme.Hint.Render("Saving..."))
	} else if s.errMsg != "" {
		rows = append(rows, theme.ErrorText.Render(s.errMsg))
	}
	card := theme.Card.Width(min(width-4, 72)).Render(strings.Join(rows, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

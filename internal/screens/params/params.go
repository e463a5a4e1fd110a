package params

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wselearn/wse/internal/exercise"
	"github.com/wselearn/wse/internal/router"
	"github.com/wselearn/wse/internal/screen"
	"github.com/wselearn/wse/internal/store"
	"github.com/wselearn/wse/internal/ui/components"
	"github.com/wselearn/wse/internal/ui/layout"
	"github.com/wselearn/wse/internal/ui/theme"
)

// keepSnapshots is how many parameter selections are kept per variant.
const keepSnapshots = 10

// Starter builds the exercise screen for the chosen params.
type Starter func(exercise.Params) screen.Screen

type paramsLoadedMsg struct {
	Params exercise.Params
}

// ParamsScreen lets the user choose the lookup conditions for an exercise.
type ParamsScreen struct {
	variant  exercise.Variant
	repo     store.ParamsRepo
	start    Starter
	form     *exercise.ParamsForm
	category components.TextField
	errMsg   string
}

var _ screen.Screen = (*ParamsScreen)(nil)
var _ screen.KeyHintProvider = (*ParamsScreen)(nil)

// New creates a ParamsScreen. repo may be nil, in which case selections
// are not remembered.
func New(v exercise.Variant, repo store.ParamsRepo, start Starter) *ParamsScreen {
	return &ParamsScreen{
		variant:  v,
		repo:     repo,
		start:    start,
		form:     exercise.NewParamsForm(exercise.DefaultParams()),
		category: components.NewTextField("", "any", false, 64),
	}
}

// Form returns the underlying selection controller.
func (s *ParamsScreen) Form() *exercise.ParamsForm {
	return s.form
}

func (s *ParamsScreen) Init() tea.Cmd {
	if s.repo == nil {
		return nil
	}
	repo, name := s.repo, s.variant.Name
	return func() tea.Msg {
		snap, err := repo.Latest(context.Background(), name)
		if err != nil || snap == nil {
			return nil
		}
		var p exercise.Params
		if err := json.Unmarshal(snap.Data, &p); err != nil {
			return nil
		}
		return paramsLoadedMsg{Params: p}
	}
}

func (s *ParamsScreen) Title() string {
	return s.variant.Title
}

func (s *ParamsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Field"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Start exercise"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ParamsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case paramsLoadedMsg:
		focus := s.form.Focus
		s.form = exercise.NewParamsForm(msg.Params)
		s.form.Focus = focus
		s.category.SetValue(msg.Params.Category)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "shift+tab":
			s.form.PrevField()
			return s, s.syncCategoryFocus()
		case "down", "tab":
			s.form.NextField()
			return s, s.syncCategoryFocus()
		case "left":
			if s.form.Focus != exercise.FieldCategory {
				s.form.Cycle(-1)
				return s, nil
			}
		case "right":
			if s.form.Focus != exercise.FieldCategory {
				s.form.Cycle(1)
				return s, nil
			}
		case "enter":
			return s, s.submit()
		}
	}

	if s.form.Focus == exercise.FieldCategory {
		var cmd tea.Cmd
		s.category, cmd = s.category.Update(msg)
		s.form.Params.Category = strings.TrimSpace(s.category.Value())
		return s, cmd
	}
	return s, nil
}

func (s *ParamsScreen) syncCategoryFocus() tea.Cmd {
	if s.form.Focus == exercise.FieldCategory {
		return s.category.Focus()
	}
	s.category.Blur()
	return nil
}

func (s *ParamsScreen) submit() tea.Cmd {
	p := s.form.Params
	if err := p.Validate(); err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.errMsg = ""
	s.remember(p)
	return router.Push(s.start(p))
}

func (s *ParamsScreen) remember(p exercise.Params) {
	if s.repo == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	ctx := context.Background()
	if err := s.repo.Save(ctx, &store.ParamsSnapshot{Variant: s.variant.Name, Data: data}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save exercise params: %v\n", err)
		return
	}
	_ = s.repo.Prune(ctx, s.variant.Name, keepSnapshots)
}

func (s *ParamsScreen) View(width, height int) string {
	rows := []string{
		theme.Subtitle.Render("Choose which items to drill"),
		"",
	}
	for _, f := range s.form.Fields() {
		focused := f == s.form.Focus
		var value string
		if f == exercise.FieldCategory {
			value = s.category.Model.View()
		} else {
			value = components.RenderOption(humanize(s.form.Value(f)), focused)
		}
		rows = append(rows, components.RenderFormRow(f.String(), value, focused))
	}
	if s.errMsg != "" {
		rows = append(rows, "", theme.ErrorText.Render(s.errMsg))
	}
	rows = append(rows, "", components.ButtonRow(components.Button{Key: "Enter", Label: "Start exercise", Active: true}))

	card := theme.Card.Width(min(width-4, 64)).Render(strings.Join(rows, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

// humanize turns an option key like "two_weeks_ago" into "two weeks ago".
func humanize(option string) string {
	if option == "not_choice" {
		return "any"
	}
	return strings.ReplaceAll(option, "_", " ")
}

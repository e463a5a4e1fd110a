package list

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wselearn/wse/internal/api"
	"github.com/wselearn/wse/internal/exercise"
	"github.com/wselearn/wse/internal/pagination"
	"github.com/wselearn/wse/internal/router"
	"github.com/wselearn/wse/internal/screen"
	"github.com/wselearn/wse/internal/screens/dialog"
	"github.com/wselearn/wse/internal/ui/components"
	"github.com/wselearn/wse/internal/ui/layout"
	"github.com/wselearn/wse/internal/ui/theme"
)

// ItemsAPI is the remote collection the list browses.
type ItemsAPI interface {
	pagination.Lister
	CreateItem(ctx context.Context, path string, fields map[string]any) (api.Item, error)
	DeleteItem(ctx context.Context, path, id string) error
}

// ErrorHandler reacts to API errors that invalidate the session.
type ErrorHandler interface {
	HandleError(ctx context.Context, err error) bool
}

// pageLoadedMsg carries the result of a paginator operation. The
// paginator itself is only touched by the command that produced it.
type pageLoadedMsg struct {
	Err error
}

// page is what the view shows; it is copied out of the paginator after
// each load.
type page struct {
	number int
	pages  int
	count  int
	items  []api.Item
}

// ListScreen shows one variant's items a page at a time.
type ListScreen struct {
	variant   exercise.Variant
	items     ItemsAPI
	auth      ErrorHandler
	paginator *pagination.Paginator

	shown    page
	selected int
	loading  bool
	confirm  bool
	dirty    bool
	errMsg   string
}

var _ screen.Screen = (*ListScreen)(nil)
var _ screen.Focusable = (*ListScreen)(nil)
var _ screen.KeyHintProvider = (*ListScreen)(nil)

// New creates a ListScreen. auth may be nil.
func New(v exercise.Variant, items ItemsAPI, auth ErrorHandler, pageSize int) *ListScreen {
	return &ListScreen{
		variant:   v,
		items:     items,
		auth:      auth,
		paginator: pagination.New(items, v.ItemsPath, pageSize),
		dirty:     true,
	}
}

func (s *ListScreen) Init() tea.Cmd {
	return nil
}

// Focus loads the first page on first show and reloads the current page
// after returning from the add form.
func (s *ListScreen) Focus() tea.Cmd {
	if !s.dirty || s.loading {
		return nil
	}
	s.dirty = false
	if s.shown.number == 0 {
		return s.run(func(ctx context.Context, p *pagination.Paginator) error {
			return p.Load(ctx, 1)
		})
	}
	return s.run(func(ctx context.Context, p *pagination.Paginator) error {
		return p.Reload(ctx)
	})
}

func (s *ListScreen) Blur() {}

func (s *ListScreen) Title() string {
	return s.variant.Title
}

func (s *ListScreen) KeyHints() []layout.KeyHint {
	if s.confirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Delete"},
			{Key: "N", Description: "Keep"},
		}
	}
	return []layout.KeyHint{
		{Key: "←→", Description: "Page"},
		{Key: "↑↓", Description: "Select"},
		{Key: "A", Description: "Add"},
		{Key: "D", Description: "Delete"},
		{Key: "R", Description: "Reload"},
		{Key: "Esc", Description: "Back"},
	}
}

// run executes op against the paginator off the UI goroutine.
func (s *ListScreen) run(op func(context.Context, *pagination.Paginator) error) tea.Cmd {
	s.loading = true
	p := s.paginator
	return func() tea.Msg {
		return pageLoadedMsg{Err: op(context.Background(), p)}
	}
}

func (s *ListScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case pageLoadedMsg:
		s.loading = false
		s.shown = page{
			number: s.paginator.Page(),
			pages:  s.paginator.Pages(),
			count:  s.paginator.Count(),
			items:  append([]api.Item(nil), s.paginator.Items()...),
		}
		s.selected = min(s.selected, max(len(s.shown.items)-1, 0))
		if msg.Err != nil && !errors.Is(msg.Err, pagination.ErrNoPage) {
			return s, s.reportError(msg.Err)
		}
		s.errMsg = ""
		return s, nil

	case tea.KeyMsg:
		if s.loading {
			return s, nil
		}
		if s.confirm {
			return s, s.handleConfirm(msg)
		}
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *ListScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "right", "l", "pgdown":
		if s.paginator.HasNext() {
			s.selected = 0
			return s.run(func(ctx context.Context, p *pagination.Paginator) error { return p.Next(ctx) })
		}
	case "left", "h", "pgup":
		if s.paginator.HasPrev() {
			s.selected = 0
			return s.run(func(ctx context.Context, p *pagination.Paginator) error { return p.Prev(ctx) })
		}
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.shown.items)-1 {
			s.selected++
		}
	case "r":
		return s.run(func(ctx context.Context, p *pagination.Paginator) error { return p.Reload(ctx) })
	case "a":
		s.dirty = true
		return router.Push(NewAddScreen(s.variant, s.items))
	case "d", "delete":
		if len(s.shown.items) > 0 {
			s.confirm = true
		}
	}
	return nil
}

func (s *ListScreen) handleConfirm(msg tea.KeyMsg) tea.Cmd {
	s.confirm = false
	if msg.String() != "y" {
		return nil
	}
	id := s.shown.items[s.selected].ID()
	path, items := s.variant.ItemsPath, s.items
	return s.run(func(ctx context.Context, p *pagination.Paginator) error {
		if err := items.DeleteItem(ctx, path, id); err != nil {
			return fmt.Errorf("delete item %s: %w", id, err)
		}
		return p.Reload(ctx)
	})
}

func (s *ListScreen) reportError(err error) tea.Cmd {
	if s.auth != nil && s.auth.HandleError(context.Background(), err) {
		return router.Replace(dialog.New("Session expired", "The server no longer accepts your session. Sign in again from the main menu."))
	}
	s.errMsg = err.Error()
	return nil
}

// Columns returns the table headers.
func (s *ListScreen) Columns() []string {
	cols := append([]string{"id"}, s.variant.ListColumns...)
	return append(cols, "category", "progress")
}

func (s *ListScreen) View(width, height int) string {
	var sections []string

	switch {
	case s.loading && s.shown.number == 0:
		sections = append(sections, theme.Hint.Render("Loading..."))
	case len(s.shown.items) == 0:
		sections = append(sections, theme.Hint.Render("No items yet. Press A to add one."))
	default:
		cols := s.Columns()
		rows := make([][]string, 0, len(s.shown.items))
		for _, it := range s.shown.items {
			row := make([]string, len(cols))
			for i, c := range cols {
				if v, ok := it[c]; ok && v != nil {
					row[i] = fmt.Sprint(v)
				}
			}
			row[0] = it.ID()
			rows = append(rows, row)
		}
		headers := make([]string, len(cols))
		for i, c := range cols {
			headers[i] = strings.ReplaceAll(c, "_", " ")
		}
		sections = append(sections, components.Table{
			Headers:  headers,
			Rows:     rows,
			Selected: s.selected,
			Width:    min(width-4, 100),
		}.View())
	}

	status := fmt.Sprintf("Page %d of %d  ·  %d items", max(s.shown.number, 1), max(s.shown.pages, 1), s.shown.count)
	if s.loading && s.shown.number != 0 {
		status += "  ·  loading..."
	}
	sections = append(sections, theme.Hint.Render(status))

	if s.confirm {
		sections = append(sections, theme.Paused.Render(
			fmt.Sprintf("Delete item %s? (y/n)", s.shown.items[s.selected].ID())))
	}
	if s.errMsg != "" {
		sections = append(sections, theme.ErrorText.Render(s.errMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(sections, "\n\n"))
}

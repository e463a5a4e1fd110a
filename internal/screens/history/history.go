package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wselearn/wse/internal/router"
	"github.com/wselearn/wse/internal/screen"
	"github.com/wselearn/wse/internal/store"
	"github.com/wselearn/wse/internal/ui/layout"
	"github.com/wselearn/wse/internal/ui/theme"
)

var errNoStore = errors.New("local history is unavailable")

// recentLimit caps how many progress events are listed.
const recentLimit = 50

type historyLoadedMsg struct {
	Stats    []store.ProgressStat
	Events   []store.ProgressEventRecord
	Requests store.RequestSummary
	Err      error
}

// HistoryScreen shows the local progress log and per-variant totals.
type HistoryScreen struct {
	eventRepo store.EventRepo
	variants  []string
	filter    int // 0 = all, otherwise index+1 into variants
	stats     []store.ProgressStat
	events    []store.ProgressEventRecord
	requests  store.RequestSummary
	selected  int
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen. variants lists the names the filter
// cycles through.
func New(eventRepo store.EventRepo, variants []string) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		variants:  variants,
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	repo, variant := s.eventRepo, s.variantFilter()
	return func() tea.Msg {
		if repo == nil {
			return historyLoadedMsg{Err: errNoStore}
		}
		ctx := context.Background()

		stats, err := repo.ProgressStats(ctx)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		events, err := repo.QueryProgress(ctx, store.QueryOpts{Limit: recentLimit, Variant: variant})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		// The request log is informational only.
		requests, _ := repo.RequestSummary(ctx)

		return historyLoadedMsg{Stats: stats, Events: events, Requests: requests}
	}
}

func (s *HistoryScreen) variantFilter() string {
	if s.filter == 0 || s.filter > len(s.variants) {
		return ""
	}
	return s.variants[s.filter-1]
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "F", Description: "Filter"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.errMsg = ""
			s.stats = msg.Stats
			s.events = msg.Events
			s.requests = msg.Requests
			s.selected = min(s.selected, max(len(s.events)-1, 0))
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, router.Pop()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
		case "f", "tab":
			s.filter = (s.filter + 1) % (len(s.variants) + 1)
			s.selected = 0
			return s, s.load()
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.renderStats(width))
	b.WriteString("\n")

	filter := s.variantFilter()
	if filter == "" {
		filter = "all"
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Hint.Render("showing: "+filter)))
	b.WriteString("\n\n")

	if len(s.events) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("No answers yet. Start an exercise!"))
		return b.String()
	}

	// Keep the selected row on screen.
	rows := max(height-8, 1)
	first := max(s.selected-rows+1, 0)
	last := min(first+rows, len(s.events))

	for i := first; i < last; i++ {
		ev := s.events[i]
		mark := theme.Known.Render("✓ know    ")
		if ev.Action != "know" {
			mark = theme.NotKnown.Render("✗ not know")
		}
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := style.Render(fmt.Sprintf("%s%s  %-10s  item %-6s", prefix,
			ev.Timestamp.Format("Jan 02 15:04"), ev.Variant, ev.ItemID)) + "  " + mark
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) renderStats(width int) string {
	var parts []string
	for _, st := range s.stats {
		pct := 0.0
		if st.Total() > 0 {
			pct = float64(st.Known) / float64(st.Total()) * 100
		}
		parts = append(parts, fmt.Sprintf("%s: %d answered, %.0f%% known", st.Variant, st.Total(), pct))
	}
	if len(parts) == 0 {
		parts = append(parts, "no answers recorded")
	}
	if s.requests.Total > 0 {
		parts = append(parts, fmt.Sprintf("%d requests, %d failed, %.0f ms avg",
			s.requests.Total, s.requests.Failed, s.requests.AvgLatencyMs))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Body.Render(strings.Join(parts, "   ·   ")))
}

package exercise

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	ex "github.com/wselearn/wse/internal/exercise"
	"github.com/wselearn/wse/internal/ui/components"
	"github.com/wselearn/wse/internal/ui/theme"
)

func (s *ExerciseScreen) View(width, height int) string {
	snap := s.panel.Snapshot()
	cardWidth := min(max(width-8, 30), 72)
	inner := cardWidth - 6

	var rows []string
	rows = append(rows, theme.Subtitle.Width(inner).Render(describeParams(s.params)), "")

	switch {
	case snap.Question == "" && s.loop.Running():
		rows = append(rows, theme.Hint.Width(inner).Align(lipgloss.Center).Render("Fetching a task..."))
	case snap.Question == "":
		rows = append(rows, theme.Hint.Width(inner).Align(lipgloss.Center).Render("No task loaded. Press Enter to fetch one."))
	default:
		rows = append(rows, theme.Question.Width(inner).Render(snap.Question))
		for _, f := range snap.Extra {
			rows = append(rows, theme.Hint.Width(inner).Align(lipgloss.Center).Render(f.Value))
		}
		rows = append(rows, "")
		if snap.Answer != "" {
			rows = append(rows, theme.Answer.Width(inner).Render(snap.Answer))
		} else {
			rows = append(rows, theme.Hint.Width(inner).Align(lipgloss.Center).Render("· · ·"))
		}
	}

	rows = append(rows, "", s.renderStatus(snap, inner))
	if s.notice != "" {
		rows = append(rows, theme.Hint.Render(s.notice))
	}

	card := theme.Card.Width(cardWidth).Render(strings.Join(rows, "\n"))
	buttons := components.ButtonRow(
		components.Button{Key: "k", Label: "Know", Active: !s.busy},
		components.Button{Key: "n", Label: "Don't know", Active: !s.busy},
		components.Button{Key: "space", Label: "Pause"},
		components.Button{Key: "enter", Label: "Next"},
	)

	content := lipgloss.JoinVertical(lipgloss.Center, card, "", buttons)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *ExerciseScreen) renderStatus(snap ex.PanelState, width int) string {
	timer := s.loop.Timer()
	switch {
	case s.busy:
		return theme.Hint.Render("Saving progress...")
	case timer.IsPaused():
		return theme.Paused.Render("Paused") + theme.Hint.Render("  press Enter to continue")
	case !s.loop.Running():
		return theme.Hint.Render("Stopped. Press Enter to continue or R to restart.")
	case timer.Pending() && !snap.ShownAt.IsZero():
		remaining := timer.Delay() - s.now().Sub(snap.ShownAt)
		return components.Countdown(max(remaining, 0), timer.Delay(), width).View()
	}
	return ""
}

// describeParams summarizes the lookup conditions in one line.
func describeParams(p ex.Params) string {
	parts := []string{"stage: " + orAny(p.Progress)}
	if p.Category != "" {
		parts = append(parts, "category: "+p.Category)
	}
	start, end := period(p.PeriodStart), period(p.PeriodEnd)
	if start != "" || end != "" {
		parts = append(parts, fmt.Sprintf("added: %s … %s", orAny(start), orAny(end)))
	}
	return strings.Join(parts, "  ·  ")
}

func period(p string) string {
	if p == "not_choice" {
		return ""
	}
	return strings.ReplaceAll(p, "_", " ")
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}

package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wselearn/wse/internal/ui/theme"
)

// TextField is a labelled bubbles/textinput. Secret fields echo bullets.
type TextField struct {
	Label string
	Model textinput.Model
}

// NewTextField creates an unfocused field.
func NewTextField(label, placeholder string, secret bool, limit int) TextField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	if limit > 0 {
		ti.CharLimit = limit
	}
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return TextField{Label: label, Model: ti}
}

// Focus gives the field keyboard input.
func (f *TextField) Focus() tea.Cmd {
	return f.Model.Focus()
}

// Blur removes keyboard input.
func (f *TextField) Blur() {
	f.Model.Blur()
}

// Focused reports whether the field takes input.
func (f TextField) Focused() bool {
	return f.Model.Focused()
}

// Update forwards messages to the input.
func (f TextField) Update(msg tea.Msg) (TextField, tea.Cmd) {
	var cmd tea.Cmd
	f.Model, cmd = f.Model.Update(msg)
	return f, cmd
}

// View renders the label and the input on one row.
func (f TextField) View() string {
	return RenderFormRow(f.Label, f.Model.View(), f.Focused())
}

// Value returns the current input value.
func (f TextField) Value() string {
	return f.Model.Value()
}

// SetValue replaces the input value.
func (f *TextField) SetValue(v string) {
	f.Model.SetValue(v)
}

// RenderFormRow renders one "label  value" form row with a focus marker.
func RenderFormRow(label, value string, focused bool) string {
	labelStyle := lipgloss.NewStyle().Width(16).Foreground(theme.TextDim)
	marker := "  "
	if focused {
		labelStyle = labelStyle.Foreground(theme.Primary).Bold(true)
		marker = theme.Selected.Render("▸ ")
	}
	return marker + labelStyle.Render(label) + value
}

// RenderOption renders a cyclable value as "‹ value ›".
func RenderOption(value string, focused bool) string {
	if !focused {
		return theme.Unselected.Render("  " + value)
	}
	arrow := lipgloss.NewStyle().Foreground(theme.Primary)
	return arrow.Render("‹ ") + theme.Selected.Render(value) + arrow.Render(" ›")
}

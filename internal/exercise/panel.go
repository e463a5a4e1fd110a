package exercise

import (
	"sync"
	"time"
)

// Display receives what the loop renders. Implementations are owned by the
// UI layer and must not call back into the Loop.
type Display interface {
	// ShowQuestion shows the question text of a freshly fetched task.
	ShowQuestion(text string)

	// ShowAnswer shows the answer text. An empty string clears it.
	ShowAnswer(text string)

	// ShowError surfaces a fetch or progress failure to the user.
	ShowError(err error)
}

// ExtraDisplay is an optional Display extension for variants that carry
// extra info fields.
type ExtraDisplay interface {
	ShowExtra(fields []ExtraField)
}

// PanelState is a point-in-time copy of what a Panel shows.
type PanelState struct {
	Question string
	Answer   string
	Extra    []ExtraField
	Err      error
	ShownAt  time.Time
	Renders  int
}

// Panel is a goroutine-safe Display that keeps the latest rendered state.
// Readers poll Snapshot; Renders increases with every change.
type Panel struct {
	mu    sync.Mutex
	state PanelState
	now   func() time.Time
}

var _ Display = (*Panel)(nil)
var _ ExtraDisplay = (*Panel)(nil)

// NewPanel creates an empty Panel.
func NewPanel() *Panel {
	return &Panel{now: time.Now}
}

func (p *Panel) ShowQuestion(text string) {
	p.update(func(s *PanelState) {
		s.Question = text
		s.Err = nil
		s.ShownAt = p.now()
	})
}

func (p *Panel) ShowAnswer(text string) {
	p.update(func(s *PanelState) {
		s.Answer = text
		if text != "" {
			s.ShownAt = p.now()
		}
	})
}

func (p *Panel) ShowExtra(fields []ExtraField) {
	p.update(func(s *PanelState) {
		s.Extra = fields
	})
}

func (p *Panel) ShowError(err error) {
	p.update(func(s *PanelState) {
		s.Err = err
	})
}

// ClearError dismisses a shown error.
func (p *Panel) ClearError() {
	p.update(func(s *PanelState) {
		s.Err = nil
	})
}

// Snapshot returns a copy of the current state.
func (p *Panel) Snapshot() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	s.Extra = append([]ExtraField(nil), p.state.Extra...)
	return s
}

func (p *Panel) update(fn func(*PanelState)) {
	p.mu.Lock()
	fn(&p.state)
	p.state.Renders++
	p.mu.Unlock()
}

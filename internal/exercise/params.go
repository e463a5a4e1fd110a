package exercise

import (
	"fmt"
	"slices"
)

// Period options for the lookup date range, ordered from most recent to
// oldest. "not_choice" leaves that bound open.
var Periods = []string{
	"not_choice",
	"day_ago",
	"week_ago",
	"two_weeks_ago",
	"three_weeks_ago",
	"month_ago",
	"three_months_ago",
	"six_months_ago",
	"year_ago",
}

// ProgressStages are the spaced-repetition stages an item moves through.
var ProgressStages = []string{"study", "repeat", "examination", "know"}

// Params are the lookup conditions sent with each task fetch.
type Params struct {
	PeriodStart string `json:"period_start_date,omitempty" yaml:"period_start_date"`
	PeriodEnd   string `json:"period_end_date,omitempty" yaml:"period_end_date"`
	Category    string `json:"category,omitempty" yaml:"category"`
	Progress    string `json:"progress,omitempty" yaml:"progress"`
}

// DefaultParams selects everything in the "study" stage.
func DefaultParams() Params {
	return Params{
		PeriodStart: "not_choice",
		PeriodEnd:   "not_choice",
		Progress:    "study",
	}
}

// Validate rejects unknown options and an inverted date range.
func (p Params) Validate() error {
	start := periodIndex(p.PeriodStart)
	if start < 0 {
		return fmt.Errorf("unknown period start %q", p.PeriodStart)
	}
	end := periodIndex(p.PeriodEnd)
	if end < 0 {
		return fmt.Errorf("unknown period end %q", p.PeriodEnd)
	}
	// Start is the older bound, so it must be at least as far back as end.
	if start > 0 && end > 0 && start < end {
		return fmt.Errorf("period start %q is more recent than period end %q", p.PeriodStart, p.PeriodEnd)
	}
	if p.Progress != "" && !slices.Contains(ProgressStages, p.Progress) {
		return fmt.Errorf("unknown progress stage %q", p.Progress)
	}
	return nil
}

// periodIndex treats the empty string as "not_choice".
func periodIndex(p string) int {
	if p == "" {
		return 0
	}
	return slices.Index(Periods, p)
}

// ParamsField identifies one selectable field of a ParamsForm.
type ParamsField int

const (
	FieldPeriodStart ParamsField = iota
	FieldPeriodEnd
	FieldProgress
	FieldCategory
	fieldCount
)

func (f ParamsField) String() string {
	switch f {
	case FieldPeriodStart:
		return "Period start"
	case FieldPeriodEnd:
		return "Period end"
	case FieldProgress:
		return "Progress"
	case FieldCategory:
		return "Category"
	}
	return "?"
}

// ParamsForm is the selection controller behind the exercise parameters
// screen. Option fields cycle through fixed lists; the category is free text.
type ParamsForm struct {
	Params Params
	Focus  ParamsField
}

// NewParamsForm starts a form from p, filling empty selections with defaults.
func NewParamsForm(p Params) *ParamsForm {
	d := DefaultParams()
	if p.PeriodStart == "" {
		p.PeriodStart = d.PeriodStart
	}
	if p.PeriodEnd == "" {
		p.PeriodEnd = d.PeriodEnd
	}
	if p.Progress == "" {
		p.Progress = d.Progress
	}
	return &ParamsForm{Params: p}
}

// Fields lists the form fields in display order.
func (f *ParamsForm) Fields() []ParamsField {
	return []ParamsField{FieldPeriodStart, FieldPeriodEnd, FieldProgress, FieldCategory}
}

// NextField moves focus down, wrapping around.
func (f *ParamsForm) NextField() {
	f.Focus = (f.Focus + 1) % fieldCount
}

// PrevField moves focus up, wrapping around.
func (f *ParamsForm) PrevField() {
	f.Focus = (f.Focus + fieldCount - 1) % fieldCount
}

// Cycle moves the focused option field by delta positions. It is a no-op
// on the category field.
func (f *ParamsForm) Cycle(delta int) {
	switch f.Focus {
	case FieldPeriodStart:
		f.Params.PeriodStart = cycle(Periods, f.Params.PeriodStart, delta)
	case FieldPeriodEnd:
		f.Params.PeriodEnd = cycle(Periods, f.Params.PeriodEnd, delta)
	case FieldProgress:
		f.Params.Progress = cycle(ProgressStages, f.Params.Progress, delta)
	}
}

// Value returns the display value of field.
func (f *ParamsForm) Value(field ParamsField) string {
	switch field {
	case FieldPeriodStart:
		return f.Params.PeriodStart
	case FieldPeriodEnd:
		return f.Params.PeriodEnd
	case FieldProgress:
		return f.Params.Progress
	case FieldCategory:
		return f.Params.Category
	}
	return ""
}

func cycle(options []string, current string, delta int) string {
	i := slices.Index(options, current)
	if i < 0 {
		i = 0
	}
	n := len(options)
	i = ((i+delta)%n + n) % n
	return options[i]
}

// Package calendar holds the edit and sync state machine behind the month
// view. A Controller carries no view state of its own: every operation takes
// a ViewState and returns the next one, so front-ends own their state and
// two overlapping gestures simply produce two results.
package calendar

import (
	"errors"

	"github.com/pkordes/cyclelog/internal/domain"
	"github.com/pkordes/cyclelog/internal/layout"
)

// ErrDeclined is returned when the user does not confirm a destructive action.
var ErrDeclined = errors.New("action declined")

// Mode is the state of the view's edit cycle.
type Mode int

const (
	Idle Mode = iota
	FormOpen
	Submitting
)

func (m Mode) String() string {
	switch m {
	case FormOpen:
		return "form_open"
	case Submitting:
		return "submitting"
	default:
		return "idle"
	}
}

// FormKind says whether the form creates or edits an entry.
type FormKind int

const (
	NoForm FormKind = iota
	CreateForm
	EditForm
)

func (k FormKind) String() string {
	switch k {
	case CreateForm:
		return "create"
	case EditForm:
		return "edit"
	default:
		return "none"
	}
}

// Form is the entry form. Dates are inclusive.
type Form struct {
	Kind          FormKind
	ID            string
	Type          domain.LogType
	Description   string
	TreatmentName string
	Start         domain.Date
	End           domain.Date
	// Error is the message of the last failed submit, shown in the form.
	Error string
}

// Entry returns the entry the form describes.
func (f Form) Entry() domain.LogEntry {
	return domain.LogEntry{
		ID:            f.ID,
		Type:          f.Type,
		Description:   f.Description,
		TreatmentName: f.TreatmentName,
		Start:         f.Start,
		End:           f.End,
	}
}

// Selection is a date range as a calendar widget reports it: End is
// exclusive, so a single selected day has End == Start + 1.
type Selection struct {
	Start domain.Date
	End   domain.Date
}

// Inclusive converts s to inclusive bounds. End never precedes Start.
func (s Selection) Inclusive() domain.Range {
	end := s.End.AddDays(-1)
	if s.End.IsZero() || end.Before(s.Start) {
		end = s.Start
	}
	return domain.Range{Start: s.Start, End: end}
}

// SelectionOf returns the widget selection covering the inclusive range r.
func SelectionOf(r domain.Range) Selection {
	return Selection{Start: r.Start, End: r.End.AddDays(1)}
}

// ViewState is everything the month view shows. Operations never modify a
// ViewState in place; they return a new one.
type ViewState struct {
	Month domain.Month
	Mode  Mode
	Form  Form
	// Entries is the last server-confirmed entry set of the month, or the
	// optimistic set while a move is Submitting.
	Entries        []domain.LogEntry
	Layout         layout.MonthLayout
	DetailID       string
	ShowTreatments bool
	// Alert is the message of the last failure, empty after a success.
	Alert string
	// RequestID identifies the gesture that produced this state.
	RequestID string
}

// Entry returns the cached entry with id.
func (vs ViewState) Entry(id string) (domain.LogEntry, bool) {
	for _, e := range vs.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return domain.LogEntry{}, false
}

// Detail returns the entry shown in the detail panel, if any.
func (vs ViewState) Detail() (domain.LogEntry, bool) {
	if vs.DetailID == "" {
		return domain.LogEntry{}, false
	}
	return vs.Entry(vs.DetailID)
}

package handler

import (
	"strings"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/cyclelog/internal/calendar"
	"github.com/pkordes/cyclelog/internal/domain"
	"github.com/pkordes/cyclelog/internal/layout"
)

// Wire types of the local service. They mirror the schemas in api/openapi.yaml.

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MoveFailure is returned when a move is refused. Month is the view after
// the revert, so the widget can redraw the entry where it was.
type MoveFailure struct {
	Error ErrorDetail `json:"error"`
	Month MonthView   `json:"month"`
}

type Entry struct {
	ID            string             `json:"id"`
	Type          domain.LogType     `json:"type"`
	Description   string             `json:"description,omitempty"`
	TreatmentName string             `json:"treatment_name,omitempty"`
	StartDate     openapi_types.Date `json:"start_date"`
	EndDate       openapi_types.Date `json:"end_date"`
	Label         string             `json:"label"`
}

type Placement struct {
	EntryID  string `json:"entry_id"`
	StartDay int    `json:"start_day"`
	EndDay   int    `json:"end_day"`
	Row      int    `json:"row"`
}

type Item struct {
	EntryID      string         `json:"entry_id"`
	Type         domain.LogType `json:"type"`
	Row          int            `json:"row"`
	Text         string         `json:"text"`
	Continuation bool           `json:"continuation"`
}

type Day struct {
	Date  openapi_types.Date `json:"date"`
	Items []Item             `json:"items"`
}

type MonthView struct {
	Year           int         `json:"year"`
	Month          int         `json:"month"`
	WeekStart      string      `json:"week_start"`
	ShowTreatments bool        `json:"show_treatments"`
	Rows           int         `json:"rows"`
	Entries        []Entry     `json:"entries"`
	Placements     []Placement `json:"placements"`
	Days           []Day       `json:"days"`
	Weeks          [][]int     `json:"weeks"`
	RequestID      string      `json:"request_id,omitempty"`
}

// EntryRequest is the body of create and update. Dates are inclusive;
// a missing end_date means a single-day entry.
type EntryRequest struct {
	Type          string              `json:"type"`
	Description   string              `json:"description"`
	TreatmentName string              `json:"treatment_name"`
	StartDate     *openapi_types.Date `json:"start_date"`
	EndDate       *openapi_types.Date `json:"end_date"`
}

// BoundsRequest is the body of a move, in the widget convention: end_date
// is the day after the last day.
type BoundsRequest struct {
	StartDate *openapi_types.Date `json:"start_date"`
	EndDate   *openapi_types.Date `json:"end_date"`
}

type CycleLength struct {
	Month          string `json:"month"`
	AvgCycleLength int    `json:"avg_cycle_length"`
}

func date(d domain.Date) openapi_types.Date {
	return openapi_types.Date{Time: d.Time()}
}

func dateOf(d *openapi_types.Date) domain.Date {
	if d == nil || d.Time.IsZero() {
		return domain.Date{}
	}
	return domain.DateOf(d.Time)
}

func toEntry(e domain.LogEntry, showTreatments bool) Entry {
	return Entry{
		ID:            e.ID,
		Type:          e.Type,
		Description:   e.Description,
		TreatmentName: e.TreatmentName,
		StartDate:     date(e.Start),
		EndDate:       date(e.End),
		Label:         layout.Label(e, showTreatments),
	}
}

func toMonthView(vs calendar.ViewState) MonthView {
	l := vs.Layout
	mv := MonthView{
		Year:           vs.Month.Year,
		Month:          int(vs.Month.Month),
		WeekStart:      strings.ToLower(l.Options.WeekStart.String()),
		ShowTreatments: vs.ShowTreatments,
		Rows:           l.Rows,
		Entries:        make([]Entry, 0, len(vs.Entries)),
		Placements:     make([]Placement, 0, len(l.Placements)),
		Days:           make([]Day, 0, len(l.Days)),
		Weeks:          l.Weeks,
		RequestID:      vs.RequestID,
	}
	for _, e := range vs.Entries {
		mv.Entries = append(mv.Entries, toEntry(e, vs.ShowTreatments))
	}
	for _, p := range l.Placements {
		mv.Placements = append(mv.Placements, Placement{
			EntryID: p.Entry.ID, StartDay: p.StartDay, EndDay: p.EndDay, Row: p.Row,
		})
	}
	for _, c := range l.Days {
		d := Day{Date: date(c.Date), Items: make([]Item, 0, len(c.Items))}
		for _, it := range c.Items {
			d.Items = append(d.Items, Item{
				EntryID: it.EntryID, Type: it.Type, Row: it.Row, Text: it.Text, Continuation: it.Continuation,
			})
		}
		mv.Days = append(mv.Days, d)
	}
	if mv.Weeks == nil {
		mv.Weeks = [][]int{}
	}
	return mv
}

func toCycleLengths(rows []domain.CycleLength) []CycleLength {
	out := make([]CycleLength, 0, len(rows))
	for _, r := range rows {
		out = append(out, CycleLength{Month: r.Month, AvgCycleLength: r.AvgCycleLength})
	}
	return out
}

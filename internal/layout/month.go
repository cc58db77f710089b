package layout

import (
	"sort"
	"time"

	"github.com/pkordes/cyclelog/internal/domain"
)

// ContinuationMarker is shown on every day of a multi-day entry after the
// first visible one, and appended to the label on that first day.
const ContinuationMarker = "→"

// Options controls presentation choices that do not affect packing.
type Options struct {
	// WeekStart is the first column of the grid. Only Sunday and Monday are used.
	WeekStart time.Weekday
	// ShowTreatments switches labels to the detailed form (see Label).
	ShowTreatments bool
}

// Placement is where one entry landed: its clipped day span and row.
type Placement struct {
	Entry    domain.LogEntry
	StartDay int
	EndDay   int
	Row      int
}

// Item is what one entry shows inside one day cell.
type Item struct {
	EntryID      string
	Type         domain.LogType
	Row          int
	Text         string
	Continuation bool
}

// Cell is one day of the month with its items ordered by row.
type Cell struct {
	Date  domain.Date
	Items []Item
}

// MonthLayout is the laid-out month. It is the single view model the
// front-ends read from.
type MonthLayout struct {
	Month      domain.Month
	Options    Options
	Placements []Placement
	// Days holds one cell per day; Days[0] is the 1st.
	Days []Cell
	// Weeks lists day numbers per grid row, 0 for blank leading/trailing slots.
	Weeks [][]int
	// Rows is the number of stacked rows in use (max row + 1).
	Rows int
}

// Build lays entries out on month. Entries entirely outside the month are
// dropped; the rest are clipped to the month before packing.
func Build(month domain.Month, entries []domain.LogEntry, opts Options) MonthLayout {
	first, last := month.First(), month.Last()

	placements := make([]Placement, 0, len(entries))
	for _, e := range entries {
		if e.End.Before(e.Start) {
			e.End = e.Start
		}
		if e.End.Before(first) || e.Start.After(last) {
			continue
		}
		start, end := e.Start, e.End
		if start.Before(first) {
			start = first
		}
		if end.After(last) {
			end = last
		}
		placements = append(placements, Placement{Entry: e, StartDay: start.Day, EndDay: end.Day})
	}

	sort.SliceStable(placements, func(i, j int) bool {
		a, b := placements[i], placements[j]
		if la, lb := a.EndDay-a.StartDay, b.EndDay-b.StartDay; la != lb {
			return la > lb
		}
		if a.StartDay != b.StartDay {
			return a.StartDay < b.StartDay
		}
		return a.Entry.ID < b.Entry.ID
	})

	spans := make([]Span, len(placements))
	for i, p := range placements {
		spans[i] = Span{Start: p.StartDay, End: p.EndDay}
	}
	rows := Pack(spans)

	l := MonthLayout{
		Month:      month,
		Options:    opts,
		Placements: placements,
		Days:       make([]Cell, month.Days()),
		Weeks:      weeks(month, opts.WeekStart),
	}
	for d := range l.Days {
		l.Days[d].Date = domain.NewDate(month.Year, month.Month, d+1)
	}

	for i := range placements {
		p := &placements[i]
		p.Row = rows[i]
		if p.Row+1 > l.Rows {
			l.Rows = p.Row + 1
		}
		label := Label(p.Entry, opts.ShowTreatments)
		for d := p.StartDay; d <= p.EndDay; d++ {
			item := Item{EntryID: p.Entry.ID, Type: p.Entry.Type, Row: p.Row}
			switch {
			case d != p.StartDay:
				item.Text = ContinuationMarker
				item.Continuation = true
			case p.StartDay != p.EndDay:
				item.Text = label + " " + ContinuationMarker
			default:
				item.Text = label
			}
			l.Days[d-1].Items = append(l.Days[d-1].Items, item)
		}
	}
	for d := range l.Days {
		items := l.Days[d].Items
		sort.SliceStable(items, func(i, j int) bool { return items[i].Row < items[j].Row })
	}

	return l
}

// Placement returns where the entry with id landed, if it is visible.
func (l MonthLayout) Placement(id string) (Placement, bool) {
	for _, p := range l.Placements {
		if p.Entry.ID == id {
			return p, true
		}
	}
	return Placement{}, false
}

// Cell returns the cell for a day of the month (1-based).
func (l MonthLayout) Cell(day int) (Cell, bool) {
	if day < 1 || day > len(l.Days) {
		return Cell{}, false
	}
	return l.Days[day-1], true
}

// weeks splits the month into grid rows beginning on weekStart.
func weeks(month domain.Month, weekStart time.Weekday) [][]int {
	if weekStart != time.Monday {
		weekStart = time.Sunday
	}
	lead := (int(month.First().Weekday()) - int(weekStart) + 7) % 7

	var out [][]int
	week := make([]int, 0, 7)
	for i := 0; i < lead; i++ {
		week = append(week, 0)
	}
	for d := 1; d <= month.Days(); d++ {
		week = append(week, d)
		if len(week) == 7 {
			out = append(out, week)
			week = make([]int, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, 0)
		}
		out = append(out, week)
	}
	return out
}

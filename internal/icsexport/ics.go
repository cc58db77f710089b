// Package icsexport renders a month of log entries as an iCalendar feed.
package icsexport

import (
	"fmt"
	"io"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pkordes/cyclelog/internal/domain"
	"github.com/pkordes/cyclelog/internal/layout"
)

// ProductID identifies the generator in the PRODID property.
const ProductID = "-//cyclelog//calendar export//EN"

// Encode writes one all-day VEVENT per entry overlapping month. DTEND is
// exclusive, the day after the entry's last day, as RFC 5545 requires for
// all-day events. Entries are not clipped to the month. Summaries use the
// same labels as the month grid.
func Encode(w io.Writer, month domain.Month, entries []domain.LogEntry, showTreatments bool, stamp time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName("cyclelog " + month.String())

	visible := make([]domain.LogEntry, 0, len(entries))
	for _, e := range entries {
		if e.Range().Overlaps(month.Range()) {
			visible = append(visible, e)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if c := visible[i].Start.Compare(visible[j].Start); c != 0 {
			return c < 0
		}
		return visible[i].ID < visible[j].ID
	})

	for i, e := range visible {
		ev := cal.AddEvent(uid(e, i))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetAllDayStartAt(e.Start.Time())
		ev.SetAllDayEndAt(e.End.AddDays(1).Time())
		ev.SetSummary(layout.Label(e, showTreatments))
		ev.SetProperty(ics.ComponentPropertyCategories, e.Type.DisplayName())
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("icsexport.Encode: %w", err)
	}
	return nil
}

// uid derives the event UID from the entry id. Entries the upstream returned
// without one get a UID from their position and start day so that no two
// events in the feed share it.
func uid(e domain.LogEntry, i int) string {
	if e.ID != "" {
		return e.ID + "@cyclelog"
	}
	return fmt.Sprintf("unsaved-%d-%s@cyclelog", i, e.Start)
}

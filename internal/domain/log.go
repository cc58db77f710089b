// Package domain contains the core data types for cyclelog.
// This package has no external dependencies and is imported by every other
// internal package (repo, service, layout, calendar, handler).
package domain

import (
	"fmt"
	"strings"
)

// LogType is the kind of a calendar log entry.
type LogType string

const (
	LogPeriod         LogType = "Period"
	LogOvulation      LogType = "Ovulation"
	LogSexualActivity LogType = "SexualActivity"
	LogEvent          LogType = "Event"
	LogTreatment      LogType = "Treatment"
	LogNote           LogType = "Note"
)

// LogTypes lists every type in display order.
var LogTypes = []LogType{
	LogPeriod, LogOvulation, LogSexualActivity, LogEvent, LogTreatment, LogNote,
}

// ParseLogType accepts any casing and ignores spaces, underscores and hyphens,
// so "PERIOD", "Sexual Activity" and "SEXUAL_ACTIVITY" all parse.
func ParseLogType(s string) (LogType, error) {
	key := normalizeType(s)
	for _, t := range LogTypes {
		if normalizeType(string(t)) == key {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown log type %q", ErrValidation, s)
}

func normalizeType(s string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// DisplayName returns the human-readable name of t.
func (t LogType) DisplayName() string {
	if t == LogSexualActivity {
		return "Sexual Activity"
	}
	return string(t)
}

// LogEntry is one dated entry on the calendar.
// Start and End are both inclusive; a single-day entry has Start == End.
// TreatmentName is only meaningful when Type is LogTreatment.
type LogEntry struct {
	ID            string
	Type          LogType
	Description   string
	TreatmentName string
	Start         Date
	End           Date
}

// Span returns End - Start in days (0 for a single-day entry).
func (e LogEntry) Span() int {
	return e.Start.DaysUntil(e.End)
}

// Range returns the inclusive dates the entry covers.
func (e LogEntry) Range() Range {
	return Range{Start: e.Start, End: e.End}
}

// CycleLength is the average cycle length for one calendar month,
// as charted by the cycle-length statistic.
type CycleLength struct {
	Month          string `json:"month"`
	AvgCycleLength int    `json:"avg_cycle_length"`
}

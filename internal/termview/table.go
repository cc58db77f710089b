package termview

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pkordes/cyclelog/internal/domain"
	"github.com/pkordes/cyclelog/internal/layout"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var rowStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return rowStyle
		})
}

// CycleLengths renders the cycle-length statistic as a table.
func CycleLengths(rows []domain.CycleLength) string {
	if len(rows) == 0 {
		return "Not enough periods logged to compute cycle lengths."
	}
	t := newTable("Month", "Avg cycle (days)")
	for _, r := range rows {
		t.Row(r.Month, strconv.Itoa(r.AvgCycleLength))
	}
	return t.Render()
}

// Entries lists entries with their ids, so they can be passed to edit and rm.
func Entries(entries []domain.LogEntry, showTreatments bool) string {
	t := newTable("ID", "Start", "End", "Entry")
	for _, e := range entries {
		t.Row(e.ID, e.Start.String(), e.End.String(),
			itemStyle(e.Type).UnsetMaxWidth().Render(layout.Label(e, showTreatments)))
	}
	return t.Render()
}

// Detail renders the detail panel of one entry.
func Detail(e domain.LogEntry) string {
	title := itemStyle(e.Type).UnsetMaxWidth().Bold(true).Render(layout.Label(e, false))
	lines := []string{title, e.Start.String() + " to " + e.End.String()}
	if e.Type == domain.LogTreatment && e.TreatmentName != "" {
		lines = append(lines, "Treatment: "+e.TreatmentName)
	}
	if e.Description != "" {
		lines = append(lines, e.Description)
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Package termview draws calendar view models in the terminal with lipgloss.
package termview

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pkordes/cyclelog/internal/domain"
	"github.com/pkordes/cyclelog/internal/layout"
)

// CellWidth is the width of one day column, border excluded.
const CellWidth = 14

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	weekdayStyle = lipgloss.NewStyle().Width(CellWidth).Align(lipgloss.Center).Bold(true)
	dayNumStyle  = lipgloss.NewStyle().Faint(true)
	cellStyle    = lipgloss.NewStyle().
			Width(CellWidth).
			Border(lipgloss.NormalBorder(), false, true, true, false)
	continuationStyle = lipgloss.NewStyle().Faint(true)
)

// typeColors are ANSI 256 colors per log type.
var typeColors = map[domain.LogType]lipgloss.Color{
	domain.LogPeriod:         lipgloss.Color("160"),
	domain.LogOvulation:      lipgloss.Color("135"),
	domain.LogSexualActivity: lipgloss.Color("205"),
	domain.LogEvent:          lipgloss.Color("33"),
	domain.LogTreatment:      lipgloss.Color("35"),
	domain.LogNote:           lipgloss.Color("244"),
}

func itemStyle(t domain.LogType) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(typeColors[t]).Inline(true).MaxWidth(CellWidth)
}

// Month renders the laid-out month as a grid: one column per weekday, one
// line per stacked row inside every cell. A cell with nothing on a row
// prints a blank line so multi-day entries stay aligned across the week.
func Month(l layout.MonthLayout) string {
	rows := l.Rows
	if rows < 1 {
		rows = 1
	}

	header := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(l.Options.WeekStart) + i) % 7)
		header = append(header, weekdayStyle.Render(wd.String()[:3]))
	}

	blocks := []string{
		titleStyle.Render(fmt.Sprintf("%s %d", l.Month.Month, l.Month.Year)),
		lipgloss.JoinHorizontal(lipgloss.Top, header...),
	}
	for _, week := range l.Weeks {
		cells := make([]string, 0, len(week))
		for _, day := range week {
			cells = append(cells, cellStyle.Render(cellLines(l, day, rows)))
		}
		blocks = append(blocks, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func cellLines(l layout.MonthLayout, day, rows int) string {
	lines := make([]string, rows+1)
	cell, ok := l.Cell(day)
	if !ok {
		return strings.Join(lines, "\n")
	}
	lines[0] = dayNumStyle.Render(strconv.Itoa(day))
	for _, it := range cell.Items {
		if it.Row >= rows {
			continue
		}
		style := itemStyle(it.Type)
		if it.Continuation {
			style = style.Inherit(continuationStyle)
		}
		lines[it.Row+1] = style.Render(it.Text)
	}
	return strings.Join(lines, "\n")
}

package layout_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/cyclelog/internal/domain"
	"github.com/pkordes/cyclelog/internal/layout"
)

var jan2024 = domain.Month{Year: 2024, Month: time.January}

func entry(id string, typ domain.LogType, start, end string) domain.LogEntry {
	return domain.LogEntry{
		ID:    id,
		Type:  typ,
		Start: domain.MustParseDate(start),
		End:   domain.MustParseDate(end),
	}
}

func TestBuild_scenarioLongEntryClaimsRowZero(t *testing.T) {
	// B is listed first but A is longer, so A is packed first.
	entries := []domain.LogEntry{
		entry("b", domain.LogNote, "2024-01-03", "2024-01-04"),
		entry("a", domain.LogPeriod, "2024-01-01", "2024-01-05"),
	}

	l := layout.Build(jan2024, entries, layout.Options{})

	a, ok := l.Placement("a")
	require.True(t, ok)
	assert.Equal(t, 0, a.Row)
	assert.Equal(t, 1, a.StartDay)
	assert.Equal(t, 5, a.EndDay)

	b, ok := l.Placement("b")
	require.True(t, ok)
	assert.Equal(t, 1, b.Row)
	assert.Equal(t, 3, b.StartDay)
	assert.Equal(t, 4, b.EndDay)

	assert.Equal(t, 2, l.Rows)
}

func TestBuild_excludesAndClipsToMonth(t *testing.T) {
	entries := []domain.LogEntry{
		entry("before", domain.LogNote, "2023-12-01", "2023-12-31"),
		entry("after", domain.LogNote, "2024-02-01", "2024-02-02"),
		entry("straddle-start", domain.LogPeriod, "2023-12-29", "2024-01-02"),
		entry("straddle-end", domain.LogOvulation, "2024-01-30", "2024-02-04"),
	}

	l := layout.Build(jan2024, entries, layout.Options{})

	require.Len(t, l.Placements, 2)
	_, ok := l.Placement("before")
	assert.False(t, ok)
	_, ok = l.Placement("after")
	assert.False(t, ok)

	p, _ := l.Placement("straddle-start")
	assert.Equal(t, 1, p.StartDay)
	assert.Equal(t, 2, p.EndDay)

	p, _ = l.Placement("straddle-end")
	assert.Equal(t, 30, p.StartDay)
	assert.Equal(t, 31, p.EndDay)
}

func TestBuild_continuationText(t *testing.T) {
	entries := []domain.LogEntry{
		entry("p", domain.LogPeriod, "2024-01-10", "2024-01-12"),
		entry("n", domain.LogNote, "2024-01-20", "2024-01-20"),
	}

	l := layout.Build(jan2024, entries, layout.Options{})

	first, _ := l.Cell(10)
	require.Len(t, first.Items, 1)
	assert.Equal(t, "Period →", first.Items[0].Text)
	assert.False(t, first.Items[0].Continuation)

	for _, day := range []int{11, 12} {
		c, _ := l.Cell(day)
		require.Len(t, c.Items, 1)
		assert.Equal(t, layout.ContinuationMarker, c.Items[0].Text)
		assert.True(t, c.Items[0].Continuation)
	}

	single, _ := l.Cell(20)
	require.Len(t, single.Items, 1)
	assert.Equal(t, "Note", single.Items[0].Text)
}

func TestBuild_clippedEntryShowsLabelOnFirstVisibleDay(t *testing.T) {
	l := layout.Build(jan2024, []domain.LogEntry{entry("p", domain.LogPeriod, "2023-12-30", "2024-01-02")}, layout.Options{})

	c, _ := l.Cell(1)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Period →", c.Items[0].Text)
}

func TestBuild_cellItemsOrderedByRow(t *testing.T) {
	entries := []domain.LogEntry{
		entry("short", domain.LogNote, "2024-01-03", "2024-01-03"),
		entry("long", domain.LogPeriod, "2024-01-01", "2024-01-07"),
	}

	l := layout.Build(jan2024, entries, layout.Options{})

	c, _ := l.Cell(3)
	require.Len(t, c.Items, 2)
	assert.Equal(t, "long", c.Items[0].EntryID)
	assert.Equal(t, "short", c.Items[1].EntryID)
}

func TestBuild_deterministicAcrossInputOrder(t *testing.T) {
	entries := []domain.LogEntry{
		entry("x", domain.LogNote, "2024-01-05", "2024-01-06"),
		entry("y", domain.LogNote, "2024-01-05", "2024-01-06"),
		entry("z", domain.LogNote, "2024-01-06", "2024-01-07"),
	}
	reversed := []domain.LogEntry{entries[2], entries[1], entries[0]}

	a := layout.Build(jan2024, entries, layout.Options{})
	b := layout.Build(jan2024, reversed, layout.Options{})

	for _, id := range []string{"x", "y", "z"} {
		pa, _ := a.Placement(id)
		pb, _ := b.Placement(id)
		assert.Equal(t, pa.Row, pb.Row, id)
	}
}

func TestBuild_weeksSundayStart(t *testing.T) {
	// 1 Jan 2024 is a Monday.
	l := layout.Build(jan2024, nil, layout.Options{WeekStart: time.Sunday})

	require.Len(t, l.Weeks, 5)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, l.Weeks[0])
	assert.Equal(t, []int{28, 29, 30, 31, 0, 0, 0}, l.Weeks[4])
	assert.Len(t, l.Days, 31)
	assert.Equal(t, domain.MustParseDate("2024-01-31"), l.Days[30].Date)
}

func TestBuild_weeksMondayStart(t *testing.T) {
	l := layout.Build(jan2024, nil, layout.Options{WeekStart: time.Monday})

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, l.Weeks[0])
	assert.Equal(t, []int{29, 30, 31, 0, 0, 0, 0}, l.Weeks[len(l.Weeks)-1])
}

func TestLabel(t *testing.T) {
	period := domain.LogEntry{Type: domain.LogPeriod, Description: "heavy"}
	treatment := domain.LogEntry{Type: domain.LogTreatment, TreatmentName: "Metformin", Description: "500mg"}
	bare := domain.LogEntry{Type: domain.LogSexualActivity}

	assert.Equal(t, "Period", layout.Label(period, false))
	assert.Equal(t, "Period: heavy", layout.Label(period, true))
	assert.Equal(t, "Treatment: Metformin", layout.Label(treatment, false))
	assert.Equal(t, "Metformin: 500mg", layout.Label(treatment, true))
	assert.Equal(t, "Sexual Activity", layout.Label(bare, true))
}

package domain_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/cyclelog/internal/domain"
)

func TestParseDate_acceptsUpstreamFormats(t *testing.T) {
	want := domain.NewDate(2024, time.January, 5)
	for _, in := range []string{
		"2024-01-05",
		"2024-01-05T00:00",
		"2024-01-05T00:00:00",
		"2024-01-05T00:00:00.000Z",
		"2024-01-05T00:00:00Z",
		"2024-01-05T00:00:00+00:00",
		"2024-01-05T00:00:00.123456",
		"2024-01-05T23:30:00-08:00", // wall date in its own offset, not UTC
	} {
		got, err := domain.ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseDate_invalid(t *testing.T) {
	_, err := domain.ParseDate("05/01/2024")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDate_AddDays_crossesMonthAndYear(t *testing.T) {
	assert.Equal(t, domain.NewDate(2024, time.February, 1), domain.NewDate(2024, time.January, 31).AddDays(1))
	assert.Equal(t, domain.NewDate(2023, time.December, 31), domain.NewDate(2024, time.January, 1).AddDays(-1))
	assert.Equal(t, domain.NewDate(2024, time.February, 29), domain.NewDate(2024, time.February, 28).AddDays(1))
}

func TestDate_DaysUntil(t *testing.T) {
	a := domain.MustParseDate("2024-01-05")
	assert.Equal(t, 2, a.DaysUntil(domain.MustParseDate("2024-01-07")))
	assert.Equal(t, -5, a.DaysUntil(domain.MustParseDate("2023-12-31")))
	assert.Equal(t, 0, a.DaysUntil(a))
}

func TestDate_String(t *testing.T) {
	assert.Equal(t, "2024-03-09", domain.NewDate(2024, time.March, 9).String())
	assert.Equal(t, "", domain.Date{}.String())
}

func TestRange_Overlaps(t *testing.T) {
	jan := domain.Month{Year: 2024, Month: time.January}.Range()

	assert.True(t, jan.Overlaps(domain.Range{Start: domain.MustParseDate("2023-12-30"), End: domain.MustParseDate("2024-01-01")}))
	assert.True(t, jan.Overlaps(domain.Range{Start: domain.MustParseDate("2024-01-31"), End: domain.MustParseDate("2024-02-03")}))
	assert.False(t, jan.Overlaps(domain.Range{Start: domain.MustParseDate("2024-02-01"), End: domain.MustParseDate("2024-02-03")}))
}

func TestMonth_boundaries(t *testing.T) {
	feb := domain.Month{Year: 2024, Month: time.February}

	assert.Equal(t, 29, feb.Days())
	assert.Equal(t, domain.NewDate(2024, time.February, 29), feb.Last())
	assert.Equal(t, domain.Month{Year: 2024, Month: time.March}, feb.Next())
	assert.Equal(t, domain.Month{Year: 2023, Month: time.December}, domain.Month{Year: 2024, Month: time.January}.Prev())
	assert.Equal(t, "2024-02", feb.String())
}

func TestParseMonth(t *testing.T) {
	m, err := domain.ParseMonth("2024-11")
	require.NoError(t, err)
	assert.Equal(t, domain.Month{Year: 2024, Month: time.November}, m)

	_, err = domain.ParseMonth("November")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseLogType_normalizesVocabularies(t *testing.T) {
	cases := map[string]domain.LogType{
		"PERIOD":          domain.LogPeriod,
		"Period":          domain.LogPeriod,
		"Sexual Activity": domain.LogSexualActivity,
		"SEXUAL_ACTIVITY": domain.LogSexualActivity,
		"treatment":       domain.LogTreatment,
		" NOTE ":          domain.LogNote,
	}
	for in, want := range cases {
		got, err := domain.ParseLogType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := domain.ParseLogType("SPOTTING")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogEntry_Span(t *testing.T) {
	e := domain.LogEntry{Start: domain.MustParseDate("2024-01-05"), End: domain.MustParseDate("2024-01-07")}
	assert.Equal(t, 2, e.Span())
}

func TestRemoteError_matchesSentinels(t *testing.T) {
	var err error = &domain.RemoteError{Status: http.StatusNotFound, Message: "Log not found"}

	assert.True(t, errors.Is(err, domain.ErrRejected))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "Log not found")

	err = &domain.RemoteError{Status: http.StatusInternalServerError}
	assert.True(t, errors.Is(err, domain.ErrRejected))
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

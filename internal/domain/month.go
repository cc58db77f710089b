package domain

import (
	"fmt"
	"time"
)

// Month identifies one displayed calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing d.
func MonthOf(d Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// ParseMonth reads a month written as "2006-01".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: invalid month %q (want YYYY-MM)", ErrValidation, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// First returns the first day of the month.
func (m Month) First() Date {
	return Date{Year: m.Year, Month: m.Month, Day: 1}
}

// Last returns the last day of the month.
func (m Month) Last() Date {
	return m.Next().First().AddDays(-1)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return m.Last().Day
}

// Add returns the month n months away from m.
func (m Month) Add(n int) Month {
	return MonthOf(DateOf(m.First().Time().AddDate(0, n, 0)))
}

func (m Month) Next() Month { return m.Add(1) }
func (m Month) Prev() Month { return m.Add(-1) }

// Range returns the inclusive date range covered by the month.
func (m Month) Range() Range {
	return Range{Start: m.First(), End: m.Last()}
}

// Contains reports whether d falls in the month.
func (m Month) Contains(d Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

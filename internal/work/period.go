package work

import (
	"fmt"
	"strings"
	"time"
)

// Period is a report granularity.
type Period string

const (
	Week  Period = "week"
	Month Period = "month"
	Year  Period = "year"
)

// ParsePeriod accepts week, month or year (and their first letter).
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "week", "w":
		return Week, nil
	case "month", "m":
		return Month, nil
	case "year", "y":
		return Year, nil
	}
	return "", fmt.Errorf("unknown period: %q (use week, month or year)", s)
}

// RangeOf returns the period containing t.
func (p Period) RangeOf(t time.Time) Range {
	switch p {
	case Month:
		return MonthRange(t)
	case Year:
		return YearRange(t)
	default:
		return WeekRange(t)
	}
}

// Label names the period containing t, e.g. "2026-W09", "March 2026", "2026".
func (p Period) Label(t time.Time) string {
	switch p {
	case Month:
		return t.Format("January 2006")
	case Year:
		return t.Format("2006")
	default:
		return ISOWeekLabel(t)
	}
}

// WeekRange returns [Monday 00:00, next Monday 00:00) of the ISO week
// containing t.
func WeekRange(t time.Time) Range {
	monday := StartOfDay(t).AddDate(0, 0, -(isoWeekday(t) - 1))
	return Range{Start: monday, End: monday.AddDate(0, 0, 7)}
}

// MonthRange returns [1st 00:00, 1st of next month 00:00).
func MonthRange(t time.Time) Range {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Range{Start: start, End: start.AddDate(0, 1, 0)}
}

// YearRange returns [Jan 1 00:00, Jan 1 of next year 00:00).
func YearRange(t time.Time) Range {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return Range{Start: start, End: start.AddDate(1, 0, 0)}
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

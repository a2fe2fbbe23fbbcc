package work

import (
	"fmt"
	"sort"
	"time"
)

// Range is a half-open interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in the range. The end bound is exclusive.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Days returns the number of calendar days covered by the range.
func (r Range) Days() int {
	n := 0
	for d := StartOfDay(r.Start); d.Before(r.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// Filter keeps records dated inside rng. When categories are given, only
// records of those categories are kept.
func Filter(records []DayRecord, rng Range, categories ...Category) []DayRecord {
	out := make([]DayRecord, 0, len(records))
	for _, r := range records {
		if !rng.Contains(r.Date) {
			continue
		}
		if len(categories) > 0 && !hasCategory(categories, r.Category) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// OfCategory keeps records of the given category regardless of date.
func OfCategory(records []DayRecord, c Category) []DayRecord {
	var out []DayRecord
	for _, r := range records {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out
}

// CountCategory counts records of the given category.
func CountCategory(records []DayRecord, c Category) int {
	n := 0
	for _, r := range records {
		if r.Category == c {
			n++
		}
	}
	return n
}

// TotalWorked sums WorkedSeconds over records.
func TotalWorked(records []DayRecord) int64 {
	var total int64
	for _, r := range records {
		total += WorkedSeconds(r)
	}
	return total
}

// TotalOvertime sums NetOvertimeSeconds over records.
func TotalOvertime(records []DayRecord, s Schedule) int64 {
	var total int64
	for _, r := range records {
		total += NetOvertimeSeconds(r, s)
	}
	return total
}

// AverageWorked is the mean worked time over Work records, 0 when there are
// none. Integer division truncates toward zero.
func AverageWorked(records []DayRecord) int64 {
	work := OfCategory(records, Work)
	if len(work) == 0 {
		return 0
	}
	return TotalWorked(work) / int64(len(work))
}

// Summary is the statistics block shown for a report period.
type Summary struct {
	WorkDays         int
	VacationDays     int
	HolidayDays      int
	SickDays         int
	CompensatoryDays int
	WorkedSeconds    int64
	AverageSeconds   int64
	OvertimeSeconds  int64
	StandardSeconds  int64
}

// Summarize computes the statistics block for records under s.
func Summarize(records []DayRecord, s Schedule) Summary {
	sum := Summary{
		WorkDays:         CountCategory(records, Work),
		VacationDays:     CountCategory(records, Vacation),
		HolidayDays:      CountCategory(records, Holiday),
		SickDays:         CountCategory(records, SickLeave),
		CompensatoryDays: CountCategory(records, Compensatory),
		WorkedSeconds:    TotalWorked(OfCategory(records, Work)),
		AverageSeconds:   AverageWorked(records),
		OvertimeSeconds:  TotalOvertime(records, s),
	}
	for _, r := range records {
		sum.StandardSeconds += StandardSeconds(r, s)
	}
	return sum
}

// WeekTotal holds the figures of one ISO week.
type WeekTotal struct {
	Year     int
	Week     int
	Worked   int64
	Overtime int64
}

// Label returns the week as "W05".
func (w WeekTotal) Label() string {
	return fmt.Sprintf("W%02d", w.Week)
}

// ByISOWeek groups records by ISO year and week, in calendar order. Weeks
// that straddle a year boundary keep their ISO year, so W01 of the next
// year sorts after W52.
func ByISOWeek(records []DayRecord, s Schedule) []WeekTotal {
	index := make(map[[2]int]int)
	var weeks []WeekTotal
	for _, r := range records {
		year, week := r.Date.ISOWeek()
		key := [2]int{year, week}
		i, ok := index[key]
		if !ok {
			i = len(weeks)
			index[key] = i
			weeks = append(weeks, WeekTotal{Year: year, Week: week})
		}
		weeks[i].Worked += WorkedSeconds(r)
		weeks[i].Overtime += NetOvertimeSeconds(r, s)
	}
	sort.Slice(weeks, func(a, b int) bool {
		if weeks[a].Year != weeks[b].Year {
			return weeks[a].Year < weeks[b].Year
		}
		return weeks[a].Week < weeks[b].Week
	})
	return weeks
}

func hasCategory(categories []Category, c Category) bool {
	for _, x := range categories {
		if x == c {
			return true
		}
	}
	return false
}

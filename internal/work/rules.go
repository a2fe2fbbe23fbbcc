package work

import (
	"fmt"
	"math"
	"math/bits"
	"strings"
	"time"
)

// =============================================================================
// SCHEDULE DEFAULTS
// =============================================================================
// These are the values used when no configuration file exists yet.
// Users change them through `timeflow config set`, never by editing code.
// =============================================================================

const (
	// DefaultWeeklyHours - standard weekly working hours
	DefaultWeeklyHours = 41.0

	// DefaultAnnualVacationDays - paid vacation days per calendar year
	DefaultAnnualVacationDays = 25

	// DefaultBreak - break subtracted from a new work day
	DefaultBreak = time.Hour
)

// WeekdaySet is a set of weekdays stored as a bitmask. Being a plain value it
// can be copied into every calculation without sharing state.
type WeekdaySet uint8

// NewWeekdaySet builds a set from the given days. Duplicates are ignored.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// MondayToFriday is the default working week.
var MondayToFriday = NewWeekdaySet(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)

// With returns a copy of the set including d.
func (s WeekdaySet) With(d time.Weekday) WeekdaySet {
	if d < time.Sunday || d > time.Saturday {
		return s
	}
	return s | 1<<uint(d)
}

// Without returns a copy of the set excluding d.
func (s WeekdaySet) Without(d time.Weekday) WeekdaySet {
	if d < time.Sunday || d > time.Saturday {
		return s
	}
	return s &^ (1 << uint(d))
}

// Has reports whether d is in the set.
func (s WeekdaySet) Has(d time.Weekday) bool {
	if d < time.Sunday || d > time.Saturday {
		return false
	}
	return s&(1<<uint(d)) != 0
}

// Len returns the number of distinct weekdays in the set.
func (s WeekdaySet) Len() int {
	return bits.OnesCount8(uint8(s) & 0x7f)
}

// Days lists the weekdays in ISO order, Monday first.
func (s WeekdaySet) Days() []time.Weekday {
	days := make([]time.Weekday, 0, s.Len())
	for i := 1; i <= 7; i++ {
		d := time.Weekday(i % 7)
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

func (s WeekdaySet) String() string {
	names := make([]string, 0, s.Len())
	for _, d := range s.Days() {
		names = append(names, d.String()[:3])
	}
	return strings.Join(names, ",")
}

// ParseWeekday accepts full English names ("Monday") and three letter
// abbreviations ("mon"), case-insensitively.
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || n == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday: %q", name)
}

// Schedule is the weekly obligation a record is measured against.
type Schedule struct {
	WeeklyHours float64
	WorkingDays WeekdaySet
}

// DefaultSchedule returns 41 hours over Monday to Friday.
func DefaultSchedule() Schedule {
	return Schedule{WeeklyHours: DefaultWeeklyHours, WorkingDays: MondayToFriday}
}

// DailyHours is the weekly hours spread evenly over the working days, or 0
// when no working day is configured.
func (s Schedule) DailyHours() float64 {
	n := s.WorkingDays.Len()
	if n == 0 {
		return 0
	}
	return s.WeeklyHours / float64(n)
}

// DailySeconds is DailyHours converted to whole seconds, rounded half away
// from zero.
func (s Schedule) DailySeconds() int64 {
	return int64(math.Round(s.DailyHours() * 3600))
}

// IsWorkingDay returns true if t falls on one of the schedule's working days.
func (s Schedule) IsWorkingDay(t time.Time) bool {
	return s.WorkingDays.Has(t.Weekday())
}

// RemainingWorkingDays returns how many working days are left in the ISO week
// of t, today included.
func (s Schedule) RemainingWorkingDays(t time.Time) int {
	n := 0
	for d := isoWeekday(t); d <= 7; d++ {
		if s.WorkingDays.Has(time.Weekday(d % 7)) {
			n++
		}
	}
	return n
}

// RequiredDailySeconds calculates seconds needed per remaining day to meet the
// weekly obligation.
func (s Schedule) RequiredDailySeconds(workedSeconds int64, remainingDays int) int64 {
	if remainingDays <= 0 {
		return 0
	}
	remaining := int64(math.Round(s.WeeklyHours*3600)) - workedSeconds
	if remaining <= 0 {
		return 0
	}
	return remaining / int64(remainingDays)
}

// isoWeekday maps Monday..Sunday to 1..7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

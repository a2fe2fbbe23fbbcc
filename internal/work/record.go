package work

import (
	"fmt"
	"strings"
	"time"
)

// Category decides whether a day accrues an obligation and whether elapsed
// time is counted.
type Category int

const (
	Work Category = iota
	Vacation
	Holiday
	SickLeave
	Compensatory
)

// Categories lists every category in display order.
var Categories = []Category{Work, Vacation, Holiday, SickLeave, Compensatory}

var categoryIDs = map[Category]string{
	Work:         "work",
	Vacation:     "vacation",
	Holiday:      "holiday",
	SickLeave:    "sick",
	Compensatory: "compensatory",
}

var categoryLabels = map[Category]string{
	Work:         "Work",
	Vacation:     "Vacation",
	Holiday:      "Holiday",
	SickLeave:    "Sick leave",
	Compensatory: "Compensatory",
}

// String returns the stable identifier stored in the database.
func (c Category) String() string {
	if id, ok := categoryIDs[c]; ok {
		return id
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Label is the human readable name used in reports and exports.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return c.String()
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryIDs[c]
	return ok
}

// ParseCategory accepts an identifier or a label, case-insensitively.
func ParseCategory(s string) (Category, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if n == categoryIDs[c] || n == strings.ToLower(categoryLabels[c]) {
			return c, nil
		}
	}
	switch n {
	case "sickleave", "sick-leave", "sick_leave":
		return SickLeave, nil
	case "comp":
		return Compensatory, nil
	}
	return Work, fmt.Errorf("unknown category: %q", s)
}

// DayRecord is one user entry for a calendar day. Start and End are only set
// for Work days.
type DayRecord struct {
	ID        string
	Date      time.Time
	Start     *time.Time
	End       *time.Time
	Break     time.Duration
	Note      string
	Category  Category
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasTimes reports whether both timestamps are present.
func (r DayRecord) HasTimes() bool {
	return r.Start != nil && r.End != nil
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// At places the clock time of clock on the calendar day of day.
func At(day time.Time, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, day.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

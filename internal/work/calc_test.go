package work

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datetime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func workDay(day time.Time, startH, startM, endH, endM int, brk time.Duration) DayRecord {
	start := time.Date(day.Year(), day.Month(), day.Day(), startH, startM, 0, 0, time.UTC)
	end := time.Date(day.Year(), day.Month(), day.Day(), endH, endM, 0, 0, time.UTC)
	return DayRecord{Date: StartOfDay(day), Start: &start, End: &end, Break: brk, Category: Work}
}

var fortyHours = Schedule{WeeklyHours: 40, WorkingDays: MondayToFriday}

func TestWorkedSeconds_WorkDay(t *testing.T) {
	// 8h30 on site minus a 1h break.
	r := workDay(datetime(2024, 1, 1, 0, 0), 9, 0, 17, 30, time.Hour)
	assert.Equal(t, int64(27000), WorkedSeconds(r))

	r = workDay(datetime(2024, 1, 1, 0, 0), 9, 0, 17, 20, time.Hour)
	assert.Equal(t, int64(26400), WorkedSeconds(r))
	assert.Equal(t, "7h20", FormatDuration(WorkedSeconds(r)))
}

func TestWorkedSeconds_NonWorkCategoriesAreZero(t *testing.T) {
	for _, c := range []Category{Vacation, Holiday, SickLeave, Compensatory} {
		t.Run(c.String(), func(t *testing.T) {
			r := workDay(datetime(2024, 1, 1, 0, 0), 9, 0, 17, 30, 0)
			r.Category = c
			assert.Zero(t, WorkedSeconds(r))
		})
	}
}

func TestWorkedSeconds_MissingTimes(t *testing.T) {
	start := datetime(2024, 1, 1, 9, 0)
	end := datetime(2024, 1, 1, 17, 0)

	assert.Zero(t, WorkedSeconds(DayRecord{Category: Work, Start: &start}))
	assert.Zero(t, WorkedSeconds(DayRecord{Category: Work, End: &end}))
	assert.Zero(t, WorkedSeconds(DayRecord{Category: Work}))
}

func TestWorkedSeconds_NegativeIsNotClamped(t *testing.T) {
	r := workDay(datetime(2024, 1, 1, 0, 0), 9, 0, 9, 30, time.Hour)
	assert.Equal(t, int64(-1800), WorkedSeconds(r))

	// End before start, as can happen after a time zone shift.
	r = workDay(datetime(2024, 1, 1, 0, 0), 17, 0, 9, 0, 0)
	assert.Equal(t, int64(-8*3600), WorkedSeconds(r))
}

func TestWorkedSeconds_TruncatesSubSecond(t *testing.T) {
	r := workDay(datetime(2024, 1, 1, 0, 0), 9, 0, 10, 0, 0)
	end := r.End.Add(999 * time.Millisecond)
	r.End = &end
	assert.Equal(t, int64(3600), WorkedSeconds(r))
}

func TestStandardSeconds(t *testing.T) {
	monday := datetime(2024, 1, 1, 0, 0)
	saturday := datetime(2024, 1, 6, 0, 0)

	tests := []struct {
		category Category
		date     time.Time
		want     int64
	}{
		{Work, monday, 28800},
		{Compensatory, monday, 28800},
		{Vacation, monday, 0},
		{Holiday, monday, 0},
		{SickLeave, monday, 0},
		{Work, saturday, 0},
		{Compensatory, saturday, 0},
		{Vacation, saturday, 0},
		{Holiday, saturday, 0},
		{SickLeave, saturday, 0},
	}

	for _, tt := range tests {
		t.Run(tt.category.String()+"/"+tt.date.Weekday().String(), func(t *testing.T) {
			r := DayRecord{Date: tt.date, Category: tt.category}
			assert.Equal(t, tt.want, StandardSeconds(r, fortyHours))
		})
	}
}

func TestStandardSeconds_EmptyWorkingDays(t *testing.T) {
	s := Schedule{WeeklyHours: 40}
	require.Zero(t, s.DailyHours())

	for i := 0; i < 7; i++ {
		day := datetime(2024, 1, 1+i, 0, 0)
		for _, c := range Categories {
			r := workDay(day, 8, 0, 18, 0, 0)
			r.Category = c
			assert.Zero(t, StandardSeconds(r, s), "%s on %s", c, day.Weekday())
		}
	}
}

func TestNetOvertimeSeconds(t *testing.T) {
	monday := datetime(2024, 1, 1, 0, 0)
	sunday := datetime(2024, 1, 7, 0, 0)

	long := workDay(monday, 8, 0, 18, 0, 30*time.Minute)
	assert.Equal(t, int64(9*3600+1800-28800), NetOvertimeSeconds(long, fortyHours))

	short := workDay(monday, 9, 0, 12, 0, 0)
	assert.Equal(t, int64(3*3600-28800), NetOvertimeSeconds(short, fortyHours))

	weekend := workDay(sunday, 10, 0, 12, 0, 0)
	assert.Equal(t, int64(7200), NetOvertimeSeconds(weekend, fortyHours))

	comp := DayRecord{Date: monday, Category: Compensatory}
	assert.Equal(t, int64(-28800), NetOvertimeSeconds(comp, fortyHours))

	vacation := DayRecord{Date: monday, Category: Vacation}
	assert.Zero(t, NetOvertimeSeconds(vacation, fortyHours))
}

func TestNetOvertimeSeconds_Identity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	schedules := []Schedule{fortyHours, DefaultSchedule(), {WeeklyHours: 30}, {WeeklyHours: 12, WorkingDays: NewWeekdaySet(time.Saturday)}}

	for i := 0; i < 200; i++ {
		day := datetime(2024, 1, 1+rng.Intn(60), 0, 0)
		r := workDay(day, rng.Intn(12), rng.Intn(60), 12+rng.Intn(12), rng.Intn(60), time.Duration(rng.Intn(7200))*time.Second)
		r.Category = Categories[rng.Intn(len(Categories))]
		if rng.Intn(4) == 0 {
			r.End = nil
		}
		s := schedules[rng.Intn(len(schedules))]

		assert.Equal(t, WorkedSeconds(r)-StandardSeconds(r, s), NetOvertimeSeconds(r, s))
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input string
		want  Category
	}{
		{"work", Work},
		{"Work", Work},
		{"vacation", Vacation},
		{"holiday", Holiday},
		{"sick", SickLeave},
		{"Sick leave", SickLeave},
		{"sick_leave", SickLeave},
		{"compensatory", Compensatory},
		{"comp", Compensatory},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseCategory("party")
	assert.Error(t, err)
}

func TestCategoryStrings(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid())
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.False(t, Category(42).Valid())
	assert.Equal(t, "category(42)", Category(42).String())
	assert.Equal(t, "Sick leave", SickLeave.Label())
}

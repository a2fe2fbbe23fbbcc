package work

import "time"

// WorkedSeconds is the elapsed time between start and end minus the break.
// Only Work records with both timestamps count. A break longer than the
// elapsed time yields a negative result; it is not clamped.
func WorkedSeconds(r DayRecord) int64 {
	if r.Category != Work || !r.HasTimes() {
		return 0
	}
	return int64((r.End.Sub(*r.Start) - r.Break) / time.Second)
}

// StandardSeconds is the obligation of the record's day under s. Only Work
// and Compensatory days on a working weekday carry one.
func StandardSeconds(r DayRecord, s Schedule) int64 {
	if !s.IsWorkingDay(r.Date) {
		return 0
	}
	switch r.Category {
	case Work, Compensatory:
		return s.DailySeconds()
	default:
		return 0
	}
}

// NetOvertimeSeconds is worked minus standard. Negative means a shortfall.
func NetOvertimeSeconds(r DayRecord, s Schedule) int64 {
	return WorkedSeconds(r) - StandardSeconds(r, s)
}

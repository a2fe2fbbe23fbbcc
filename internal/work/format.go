package work

import (
	"fmt"
	"time"
)

// FormatDuration renders seconds as "7h20", "-0h30" or "0h00". Hours are not
// padded, minutes always have two digits.
func FormatDuration(seconds int64) string {
	abs := seconds
	if abs < 0 {
		abs = -abs
	}
	sign := ""
	if seconds < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%dh%02d", sign, abs/3600, (abs%3600)/60)
}

// FormatSignedDuration is FormatDuration with an explicit "+" for surpluses.
func FormatSignedDuration(seconds int64) string {
	if seconds > 0 {
		return "+" + FormatDuration(seconds)
	}
	return FormatDuration(seconds)
}

// FormatClock renders an optional timestamp as HH:MM, or "" when absent.
func FormatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

// ParseClock parses "15:04", "3:04", "15:04:05" and returns the clock time on
// day.
func ParseClock(day time.Time, s string) (time.Time, error) {
	for _, layout := range []string{"15:04", "3:04", "15:04:05", "3:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return At(day, t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format: %s", s)
}

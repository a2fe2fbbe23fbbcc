package work

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0h00"},
		{59, "0h00"},
		{60, "0h01"},
		{26400, "7h20"},
		{-1800, "-0h30"},
		{-26400, "-7h20"},
		{3600, "1h00"},
		{100 * 3600, "100h00"},
		{-59, "-0h00"},
	}
	for _, tt := range tests {
		got := FormatDuration(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatSignedDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0h00"},
		{5400, "+1h30"},
		{-5400, "-1h30"},
	}
	for _, tt := range tests {
		got := FormatSignedDuration(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatSignedDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(nil); got != "" {
		t.Errorf("FormatClock(nil) = %q, want empty", got)
	}
	ts := time.Date(2024, 1, 1, 7, 5, 0, 0, time.UTC)
	if got := FormatClock(&ts); got != "07:05" {
		t.Errorf("FormatClock = %q, want %q", got, "07:05")
	}
}

func TestParseClock(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input    string
		hour     int
		minute   int
		hasError bool
	}{
		{"09:00", 9, 0, false},
		{"9:00", 9, 0, false},
		{"17:30", 17, 30, false},
		{"14:00:00", 14, 0, false},
		{"invalid", 0, 0, true},
		{"", 0, 0, true},
		{"25:00", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseClock(day, tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("ParseClock(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q) unexpected error: %v", tt.input, err)
			}
			if result.Hour() != tt.hour || result.Minute() != tt.minute {
				t.Errorf("ParseClock(%q) = %v, want %02d:%02d", tt.input, result, tt.hour, tt.minute)
			}
			if !SameDay(result, day) {
				t.Errorf("ParseClock(%q) moved the day: %v", tt.input, result)
			}
		})
	}
}

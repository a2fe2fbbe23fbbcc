package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeflow/internal/config"
)

func TestParseMonth(t *testing.T) {
	cfg = config.Default()
	cfg.TimeZone = "UTC"

	got, err := parseMonth("2025-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), got)

	now := cfg.Now()
	want := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	got, err = parseMonth("LAST")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	for _, bad := range []string{"2025-13", "01-2025", "january"} {
		_, err := parseMonth(bad)
		assert.Error(t, err, bad)
	}
}

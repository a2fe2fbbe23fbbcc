package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeflow/internal/work"
)

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, work.DefaultWeeklyHours, cfg.WeeklyHours)
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, cfg.WorkingDays)
	assert.Equal(t, 25, cfg.AnnualVacationDays)
	assert.Equal(t, "18:00", cfg.ReminderTime)
	assert.True(t, cfg.NotificationsEnabled)
	assert.Equal(t, 60, cfg.DefaultBreakMinutes)
	assert.NoError(t, cfg.Validate())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "timeflow.yaml")

	cfg := Default()
	cfg.WeeklyHours = 40
	cfg.NotificationsEnabled = false
	require.NoError(t, cfg.SetWorkingDays("sat, sun,mon"))
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40.0, loaded.WeeklyHours)
	assert.False(t, loaded.NotificationsEnabled)
	assert.Equal(t, []string{"Monday", "Saturday", "Sunday"}, loaded.WorkingDays)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("WeeklyHours: 35\nDatabasePath: ~/data/tf.db\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, 35.0, cfg.WeeklyHours)
	assert.Equal(t, filepath.Join(home, "data", "tf.db"), cfg.DatabasePath)
	assert.Len(t, cfg.WorkingDays, 5)
	assert.Equal(t, "08:00", cfg.DefaultStart)
	assert.True(t, cfg.NotificationsEnabled)
}

func TestLoadEmptyWorkingDays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("WorkingDays: []\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	s := cfg.Schedule()
	assert.Zero(t, s.WorkingDays.Len())
	assert.Zero(t, s.DailyHours())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("WeeklyHours: [oops\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaultPathFromEnv(t *testing.T) {
	t.Setenv(EnvPath, "/tmp/custom.yaml")
	assert.Equal(t, "/tmp/custom.yaml", DefaultPath())
}

func TestSchedule(t *testing.T) {
	cfg := Default()
	cfg.WeeklyHours = 40

	s := cfg.Schedule()
	assert.Equal(t, 8.0, s.DailyHours())
	assert.True(t, s.WorkingDays.Has(time.Monday))
	assert.False(t, s.WorkingDays.Has(time.Saturday))
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"zero weekly hours", func(c *Config) { c.WeeklyHours = 0 }, "WeeklyHours"},
		{"too many weekly hours", func(c *Config) { c.WeeklyHours = 200 }, "WeeklyHours"},
		{"unknown weekday", func(c *Config) { c.WorkingDays = []string{"Monday", "Caturday"} }, "WorkingDays"},
		{"negative vacation", func(c *Config) { c.AnnualVacationDays = -1 }, "AnnualVacationDays"},
		{"bad reminder", func(c *Config) { c.ReminderTime = "6pm" }, "ReminderTime"},
		{"end before start", func(c *Config) { c.DefaultStart, c.DefaultEnd = "18:00", "9:00" }, "DefaultEnd"},
		{"unknown zone", func(c *Config) { c.TimeZone = "Mars/Olympus" }, "TimeZone"},
		{"missing database", func(c *Config) { c.DatabasePath = "" }, "DatabasePath"},
		{"negative break", func(c *Config) { c.DefaultBreakMinutes = -5 }, "DefaultBreakMinutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNextReminder(t *testing.T) {
	cfg := Default()
	loc := time.UTC

	before := time.Date(2024, 1, 1, 9, 0, 0, 0, loc)
	next, ok := cfg.NextReminder(before)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 18, 0, 0, 0, loc), next)

	after := time.Date(2024, 1, 1, 18, 0, 0, 0, loc)
	next, ok = cfg.NextReminder(after)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 18, 0, 0, 0, loc), next)

	cfg.NotificationsEnabled = false
	_, ok = cfg.NextReminder(before)
	assert.False(t, ok)
}

func TestLocation(t *testing.T) {
	cfg := Default()
	assert.Equal(t, time.Local, cfg.Location())

	cfg.TimeZone = "Europe/Paris"
	assert.Equal(t, "Europe/Paris", cfg.Location().String())

	cfg.TimeZone = "Nowhere/Land"
	assert.Equal(t, time.Local, cfg.Location())
}

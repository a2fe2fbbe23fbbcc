package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/timeflow/internal/work"
)

// EnvPath overrides the config file location.
const EnvPath = "TIMEFLOW_CONFIG"

type Config struct {
	DatabasePath string `yaml:"DatabasePath"`
	TimeZone     string `yaml:"TimeZone,omitempty"`

	// Schedule
	WeeklyHours        float64  `yaml:"WeeklyHours"`
	WorkingDays        []string `yaml:"WorkingDays"`
	AnnualVacationDays int      `yaml:"AnnualVacationDays"`

	// Defaults for new work days
	DefaultStart        string `yaml:"DefaultStart"`
	DefaultEnd          string `yaml:"DefaultEnd"`
	DefaultBreakMinutes int    `yaml:"DefaultBreakMinutes"`

	// Reminder
	ReminderTime         string `yaml:"ReminderTime"`
	NotificationsEnabled bool   `yaml:"NotificationsEnabled"`

	// Logging
	LogLevel string `yaml:"LogLevel"`
	LogFile  string `yaml:"LogFile,omitempty"`
}

// DefaultPath returns $TIMEFLOW_CONFIG or ~/.timeflow.yaml.
func DefaultPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".timeflow.yaml")
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	// NotificationsEnabled defaults to true, so start from the defaults and
	// let the file override what it sets.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Apply defaults for missing values
	def := Default()
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = def.DatabasePath
	}
	if cfg.DefaultStart == "" {
		cfg.DefaultStart = def.DefaultStart
	}
	if cfg.DefaultEnd == "" {
		cfg.DefaultEnd = def.DefaultEnd
	}
	if cfg.ReminderTime == "" {
		cfg.ReminderTime = def.ReminderTime
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}

	// Expand ~ in paths
	cfg.DatabasePath = expandHome(cfg.DatabasePath)
	cfg.LogFile = expandHome(cfg.LogFile)

	return cfg, nil
}

// Save writes cfg to path. Nothing is persisted implicitly.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = DefaultPath()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	days := make([]string, 0, 5)
	for _, d := range work.MondayToFriday.Days() {
		days = append(days, d.String())
	}
	return &Config{
		DatabasePath:         filepath.Join(home, ".timeflow", "timeflow.db"),
		WeeklyHours:          work.DefaultWeeklyHours,
		WorkingDays:          days,
		AnnualVacationDays:   work.DefaultAnnualVacationDays,
		DefaultStart:         "08:00",
		DefaultEnd:           "17:00",
		DefaultBreakMinutes:  int(work.DefaultBreak / time.Minute),
		ReminderTime:         "18:00",
		NotificationsEnabled: true,
		LogLevel:             "info",
	}
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s - %s", e.Field, e.Message)
}

// Validate checks the configuration for common issues
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return &ValidationError{Field: "DatabasePath", Message: "Database path is required"}
	}
	if c.WeeklyHours <= 0 || c.WeeklyHours > 168 {
		return &ValidationError{Field: "WeeklyHours", Message: "Weekly hours must be between 0 and 168"}
	}
	if _, err := c.workingDays(); err != nil {
		return &ValidationError{Field: "WorkingDays", Message: err.Error()}
	}
	if c.AnnualVacationDays < 0 {
		return &ValidationError{Field: "AnnualVacationDays", Message: "Annual vacation days cannot be negative"}
	}
	if c.DefaultBreakMinutes < 0 {
		return &ValidationError{Field: "DefaultBreakMinutes", Message: "Default break cannot be negative"}
	}
	clocks := make(map[string]time.Time, 3)
	for _, f := range []struct{ field, value string }{
		{"DefaultStart", c.DefaultStart},
		{"DefaultEnd", c.DefaultEnd},
		{"ReminderTime", c.ReminderTime},
	} {
		t, err := time.Parse("15:04", f.value)
		if err != nil {
			return &ValidationError{Field: f.field, Message: fmt.Sprintf("%q is not HH:MM", f.value)}
		}
		clocks[f.field] = t
	}
	if !clocks["DefaultStart"].Before(clocks["DefaultEnd"]) {
		return &ValidationError{Field: "DefaultEnd", Message: "Default end must be after default start"}
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return &ValidationError{Field: "TimeZone", Message: err.Error()}
	}
	return nil
}

// Schedule derives the calculation schedule. Unknown weekday names are
// skipped; Validate reports them.
func (c *Config) Schedule() work.Schedule {
	days, _ := c.workingDays()
	return work.Schedule{WeeklyHours: c.WeeklyHours, WorkingDays: days}
}

// SetWorkingDays replaces the working days from a comma separated list.
func (c *Config) SetWorkingDays(list string) error {
	var names []string
	var set work.WeekdaySet
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := work.ParseWeekday(part)
		if err != nil {
			return err
		}
		set = set.With(d)
	}
	for _, d := range set.Days() {
		names = append(names, d.String())
	}
	c.WorkingDays = names
	return nil
}

// Location returns the configured time zone, or the local one.
func (c *Config) Location() *time.Location {
	if c.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Now returns the current time in the configured location.
func (c *Config) Now() time.Time {
	return time.Now().In(c.Location())
}

// DefaultBreak returns the default break as a duration.
func (c *Config) DefaultBreak() time.Duration {
	return time.Duration(c.DefaultBreakMinutes) * time.Minute
}

// NextReminder returns when the daily reminder fires next, relative to now.
// ok is false when notifications are disabled or the time is malformed.
func (c *Config) NextReminder(now time.Time) (next time.Time, ok bool) {
	if !c.NotificationsEnabled {
		return time.Time{}, false
	}
	at, err := work.ParseClock(now, c.ReminderTime)
	if err != nil {
		return time.Time{}, false
	}
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, true
}

func (c *Config) workingDays() (work.WeekdaySet, error) {
	var set work.WeekdaySet
	var firstErr error
	for _, name := range c.WorkingDays {
		d, err := work.ParseWeekday(name)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		set = set.With(d)
	}
	return set, firstErr
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[2:])
	}
	return p
}

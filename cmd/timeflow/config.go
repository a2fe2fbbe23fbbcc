package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/timeflow/internal/config"
	"github.com/timeflow/internal/work"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long:  `Show or change the schedule, defaults and reminder settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgPath
		if path == "" {
			path = config.DefaultPath()
		}
		schedule := cfg.Schedule()

		dbSize := "empty"
		if info, err := os.Stat(cfg.DatabasePath); err == nil {
			dbSize = humanize.Bytes(uint64(info.Size()))
		}
		count, err := db.Count(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Config:        %s\n", path)
		fmt.Printf("Database:      %s (%s, %s)\n", cfg.DatabasePath, dbSize, humanize.Comma(int64(count))+" days")
		fmt.Printf("Weekly hours:  %g\n", cfg.WeeklyHours)
		fmt.Printf("Working days:  %s\n", schedule.WorkingDays)
		fmt.Printf("Daily hours:   %s\n", work.FormatDuration(schedule.DailySeconds()))
		fmt.Printf("Vacation:      %d days per year\n", cfg.AnnualVacationDays)
		fmt.Printf("New work day:  %s - %s, %dmin break\n", cfg.DefaultStart, cfg.DefaultEnd, cfg.DefaultBreakMinutes)
		reminder := "off"
		if cfg.NotificationsEnabled {
			reminder = cfg.ReminderTime
		}
		fmt.Printf("Reminder:      %s\n", reminder)
		zone := cfg.TimeZone
		if zone == "" {
			zone = "local"
		}
		fmt.Printf("Time zone:     %s\n", zone)
		fmt.Printf("Log level:     %s\n", cfg.LogLevel)
		return nil
	},
}

// settableKeys maps lower-cased keys to setters on the config.
var settableKeys = map[string]func(c *config.Config, value string) error{
	"weeklyhours": func(c *config.Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %s", v)
		}
		c.WeeklyHours = f
		return nil
	},
	"workingdays": func(c *config.Config, v string) error {
		return c.SetWorkingDays(v)
	},
	"annualvacationdays": func(c *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid number: %s", v)
		}
		c.AnnualVacationDays = n
		return nil
	},
	"remindertime": func(c *config.Config, v string) error {
		c.ReminderTime = v
		return nil
	},
	"notificationsenabled": func(c *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", v)
		}
		c.NotificationsEnabled = b
		return nil
	},
	"timezone": func(c *config.Config, v string) error {
		c.TimeZone = v
		return nil
	},
	"defaultstart": func(c *config.Config, v string) error {
		c.DefaultStart = v
		return nil
	},
	"defaultend": func(c *config.Config, v string) error {
		c.DefaultEnd = v
		return nil
	},
	"defaultbreakminutes": func(c *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid number: %s", v)
		}
		c.DefaultBreakMinutes = n
		return nil
	},
	"databasepath": func(c *config.Config, v string) error {
		c.DatabasePath = v
		return nil
	},
	"loglevel": func(c *config.Config, v string) error {
		c.LogLevel = v
		return nil
	},
	"logfile": func(c *config.Config, v string) error {
		c.LogFile = v
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting and save the config file.

Keys: WeeklyHours, WorkingDays (comma separated, e.g. Mon,Tue,Wed,Thu,Fri),
AnnualVacationDays, ReminderTime, NotificationsEnabled, TimeZone, DefaultStart,
DefaultEnd, DefaultBreakMinutes, DatabasePath, LogLevel, LogFile`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToLower(strings.ReplaceAll(args[0], "_", ""))
		set, ok := settableKeys[key]
		if !ok {
			return fmt.Errorf("unknown setting: %s", args[0])
		}
		if err := set(cfg, args[1]); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		logger.Info().Str("key", args[0]).Str("value", args[1]).Msg("setting changed")
		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

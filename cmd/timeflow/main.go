package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/timeflow/internal/config"
	"github.com/timeflow/internal/logging"
	"github.com/timeflow/internal/storage"
	"github.com/timeflow/internal/tracker"
)

var (
	cfgPath        string
	debug          bool
	cfg            *config.Config
	logger         zerolog.Logger
	db             *storage.Database
	trackerService *tracker.Tracker
)

var rootCmd = &cobra.Command{
	Use:   "timeflow",
	Short: "Track working days, vacation and overtime",
	Long: `Timeflow records one entry per day (work, vacation, holiday, sick leave or
compensatory day) and reports worked time and overtime against your weekly schedule.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			// config set must stay usable to repair a bad file.
			if cmd.Parent() == nil || cmd.Parent().Name() != "config" {
				return fmt.Errorf("%w (fix with: timeflow config set)", err)
			}
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}

		dataDir := filepath.Dir(cfg.DatabasePath)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		logFile := cfg.LogFile
		if logFile == "" {
			logFile = filepath.Join(dataDir, "timeflow.log")
		}
		logger, err = logging.New(logging.Config{Level: cfg.LogLevel, File: logFile, Debug: debug})
		if err != nil {
			return err
		}

		db, err = storage.New(cfg.DatabasePath,
			storage.WithLogger(logger.With().Str("component", "storage").Logger()),
			storage.WithLocation(cfg.Location()))
		if err != nil {
			return err
		}

		trackerService, err = tracker.New(db, tracker.Options{
			Schedule:           cfg.Schedule(),
			AnnualVacationDays: cfg.AnnualVacationDays,
			Defaults: tracker.Defaults{
				Start: cfg.DefaultStart,
				End:   cfg.DefaultEnd,
				Break: cfg.DefaultBreak(),
			},
			Logger: logger.With().Str("component", "tracker").Logger(),
		})
		if err != nil {
			return err
		}

		logger.Debug().Str("command", cmd.CommandPath()).Str("db", cfg.DatabasePath).Msg("starting")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if trackerService != nil {
			trackerService.Close()
		}
		if db != nil {
			return db.Close()
		}
		return nil
	},
}

func historyPath() string {
	return filepath.Join(filepath.Dir(cfg.DatabasePath), "history")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $TIMEFLOW_CONFIG or ~/.timeflow.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug output to stderr")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(monthCmd)
	rootCmd.AddCommand(yearCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(homeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(visualizeCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(eraseCmd)
	rootCmd.AddCommand(completionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

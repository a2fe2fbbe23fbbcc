package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/timeflow/internal/archive"
)

func newArchiver() *archive.Archiver {
	return archive.New(db, historyPath(), cfg.Schedule(),
		archive.WithLocation(cfg.Location()),
		archive.WithLogger(logger.With().Str("component", "archive").Logger()))
}

// parseMonth accepts YYYY-MM or "last" for the month before the current one.
func parseMonth(s string) (time.Time, error) {
	if strings.EqualFold(s, "last") {
		now := cfg.Now()
		return time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, cfg.Location()), nil
	}
	t, err := time.ParseInLocation("2006-01", s, cfg.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, use YYYY-MM or last", s)
	}
	return t, nil
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Move finished months to markdown files",
	Long: `Write finished months as markdown reports into the history/ directory next to
the database. Archived months can be removed from the database to keep it small;
their totals stay readable with 'timeflow history'.`,
}

var archiveAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Archive and prune every finished month",
	Long: `Archive each month before the current one that has recorded days and no
archive file yet, then remove those days from the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		archived, err := newArchiver().AutoArchivePastMonths(cmd.Context())
		if err != nil {
			return err
		}

		if len(archived) == 0 {
			fmt.Println("Nothing to archive")
			return nil
		}

		fmt.Printf("%d month(s) written to %s:\n", len(archived), historyPath())
		for _, name := range archived {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

var archiveMonthCmd = &cobra.Command{
	Use:   "month <YYYY-MM|last>",
	Short: "Archive one month",
	Long: `Write one month as a markdown report. Recorded days stay in the database
unless --clean is given. An existing archive for the month is overwritten.`,
	Example: `  timeflow archive month 2025-01
  timeflow archive month last --clean`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := parseMonth(args[0])
		if err != nil {
			return err
		}

		clean, _ := cmd.Flags().GetBool("clean")
		path, err := newArchiver().ArchiveMonth(cmd.Context(), month.Year(), month.Month(), clean)
		if errors.Is(err, archive.ErrNoRecords) {
			fmt.Printf("No days recorded in %s\n", month.Format("January 2006"))
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s -> %s\n", month.Format("January 2006"), path)
		if clean {
			fmt.Println("Recorded days removed from the database")
		}
		return nil
	},
}

var archiveListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List archive files",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := newArchiver().ListArchives()
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Printf("No archives in %s\n", historyPath())
			return nil
		}

		for _, name := range names {
			label := strings.TrimSuffix(name, ".md")
			if t, err := time.Parse("2006-01", label); err == nil {
				label = t.Format("January 2006")
			}
			size := ""
			if info, err := os.Stat(filepath.Join(historyPath(), name)); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			}
			fmt.Printf("  %-16s %-12s %s\n", label, name, size)
		}
		return nil
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <YYYY-MM|last>",
	Short: "Print an archived month",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := parseMonth(args[0])
		if err != nil {
			return err
		}

		content, err := newArchiver().ReadArchive(month.Year(), month.Month())
		if err != nil {
			return err
		}

		fmt.Print(content)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [months|all]",
	Short: "Show totals of archived months",
	Long: `Print the summary table of the most recent archived months, 3 by default.
Pass a number of months, or "all" for every archive.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		monthsBack := 3
		if len(args) > 0 {
			if strings.EqualFold(args[0], "all") {
				monthsBack = 0
			} else {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid number of months: %s", args[0])
				}
				monthsBack = n
			}
		}

		summary, err := newArchiver().HistorySummary(monthsBack)
		if err != nil {
			return err
		}

		if summary == "" {
			fmt.Println("No archives yet (timeflow archive auto)")
			return nil
		}

		fmt.Print(summary)
		return nil
	},
}

func init() {
	archiveCmd.AddCommand(archiveAutoCmd)
	archiveCmd.AddCommand(archiveMonthCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)

	archiveMonthCmd.Flags().BoolP("clean", "c", false, "Remove the month's days from the database after archiving")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/timeflow/internal/storage"
	"github.com/timeflow/internal/work"
)

var addCmd = &cobra.Command{
	Use:     "add [date]",
	Aliases: []string{"log", "new"},
	Short:   "Record a day",
	Long: `Record a day. The date defaults to today. Work days start from the times
of the last recorded work day, or from the configured defaults.

Examples:
  timeflow add                                # today, default times
  timeflow add 2024-03-04 --start 8:30 --end 17:15 --break 45
  timeflow add yesterday --type vacation
  timeflow add --type sick --note "flu"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		date := cfg.Now()
		if len(args) > 0 {
			var err error
			if date, err = parseDate(args[0]); err != nil {
				return err
			}
		}

		last, err := trackerService.LastWorkDay(ctx)
		if err != nil {
			return err
		}
		record, err := trackerService.NewDraft(date, last)
		if err != nil {
			return err
		}
		if err := applyRecordFlags(cmd, &record); err != nil {
			return err
		}

		if err := trackerService.AddDay(ctx, &record); err != nil {
			return err
		}

		fmt.Printf("Added %s %s (%s)\n", record.Date.Format("Mon 2006-01-02"), record.Category.Label(), shortID(record.ID))
		printRecordFigures(record)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:     "edit <id|date>",
	Aliases: []string{"e", "update"},
	Short:   "Edit a recorded day",
	Long:    `Edit a day by ID (or unique ID prefix) or by date. Only the flags you pass are changed.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		record, err := resolveRecord(ctx, args[0])
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("date") {
			s, _ := cmd.Flags().GetString("date")
			date, err := parseDate(s)
			if err != nil {
				return err
			}
			moveTo(record, date)
		}
		wasWork := record.Category == work.Work
		if err := applyRecordFlags(cmd, record); err != nil {
			return err
		}
		// A day switched to work needs times; take them from a fresh draft.
		if !wasWork && record.Category == work.Work && !record.HasTimes() {
			draft, err := trackerService.NewDraft(record.Date, nil)
			if err != nil {
				return err
			}
			record.Start, record.End, record.Break = draft.Start, draft.End, draft.Break
			if err := applyRecordFlags(cmd, record); err != nil {
				return err
			}
		}

		if err := trackerService.UpdateDay(ctx, record); err != nil {
			return err
		}

		fmt.Printf("Updated %s %s (%s)\n", record.Date.Format("Mon 2006-01-02"), record.Category.Label(), shortID(record.ID))
		printRecordFigures(*record)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id|date>",
	Aliases: []string{"del", "rm", "remove"},
	Short:   "Delete a recorded day",
	Long:    `Delete a day by ID (or unique ID prefix) or by date. Use 'list' to see IDs.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		record, err := resolveRecord(ctx, args[0])
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force {
			fmt.Printf("Delete %s %s (%s)? This cannot be undone. Use --force to confirm.\n",
				record.Date.Format("2006-01-02"), record.Category.Label(), shortID(record.ID))
			return nil
		}

		if err := trackerService.DeleteDay(ctx, record.ID); err != nil {
			return err
		}

		fmt.Printf("Deleted %s (%s)\n", record.Date.Format("2006-01-02"), shortID(record.ID))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id|date>",
	Short: "Show one recorded day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := resolveRecord(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:       %s\n", record.ID)
		fmt.Printf("Date:     %s\n", record.Date.Format("Monday, January 2, 2006"))
		fmt.Printf("Type:     %s\n", record.Category.Label())
		if record.Category == work.Work {
			fmt.Printf("Time:     %s - %s\n", work.FormatClock(record.Start), work.FormatClock(record.End))
			fmt.Printf("Break:    %dmin\n", int(record.Break/time.Minute))
		}
		if record.Note != "" {
			fmt.Printf("Note:     %s\n", record.Note)
		}
		printRecordFigures(*record)
		fmt.Printf("Updated:  %s\n", humanize.Time(record.UpdatedAt))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list [week|month|year]",
	Aliases: []string{"ls", "days"},
	Short:   "List recorded days",
	Long:    `List recorded days, newest first. Limit to the current week, month or year, or to the period containing --date.`,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var records []work.DayRecord
		var err error
		if len(args) == 0 {
			records, err = trackerService.All(ctx)
		} else {
			period, perr := work.ParsePeriod(args[0])
			if perr != nil {
				return perr
			}
			anchor, derr := anchorFlag(cmd)
			if derr != nil {
				return derr
			}
			records, err = trackerService.Records(ctx, period.RangeOf(anchor))
			// Periods come back oldest first; keep the list newest first.
			for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
				records[i], records[j] = records[j], records[i]
			}
		}
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No days recorded")
			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		if limit > 0 && len(records) > limit {
			records = records[:limit]
		}

		schedule := trackerService.Schedule()
		for _, r := range records {
			times := ""
			if r.Category == work.Work {
				times = fmt.Sprintf("%s-%s", work.FormatClock(r.Start), work.FormatClock(r.End))
			}
			note := ""
			if r.Note != "" {
				note = " - " + r.Note
			}
			fmt.Printf("%s %s %-12s %-11s %6s %7s%s\n",
				shortID(r.ID), r.Date.Format("Mon 2006-01-02"), r.Category.Label(), times,
				work.FormatDuration(work.WorkedSeconds(r)),
				work.FormatSignedDuration(work.NetOvertimeSeconds(r, schedule)),
				note)
		}
		return nil
	},
}

var todayCmd = &cobra.Command{
	Use:     "today",
	Aliases: []string{"status", "st"},
	Short:   "Show today's progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := cfg.Now()
		progress, err := trackerService.Today(cmd.Context(), now)
		if err != nil {
			return err
		}

		if len(progress.Records) == 0 {
			status := "not a working day"
			if trackerService.Schedule().IsWorkingDay(now) {
				status = "nothing recorded yet (timeflow add)"
			}
			fmt.Printf("Today: %s | %s\n", now.Format("Monday, Jan 2"), status)
			return nil
		}

		types := make([]string, 0, len(progress.Records))
		for _, r := range progress.Records {
			types = append(types, r.Category.Label())
		}
		fmt.Printf("Today: %s | %s | Worked: %s | Standard: %s | Overtime: %s\n",
			now.Format("Monday, Jan 2"), strings.Join(types, ", "),
			work.FormatDuration(progress.WorkedSeconds),
			work.FormatDuration(progress.StandardSeconds),
			work.FormatSignedDuration(progress.OvertimeSeconds))
		return nil
	},
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Check whether today still needs to be recorded",
	Long: `Print the next reminder time and exit with status 2 when the reminder time has
passed and today is a working day with nothing recorded. Suitable for cron.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		now := cfg.Now()
		next, ok := cfg.NextReminder(now)
		if !ok {
			fmt.Println("Reminders are disabled (timeflow config set NotificationsEnabled true)")
			return nil
		}

		progress, err := trackerService.Today(cmd.Context(), now)
		if err != nil {
			return err
		}

		reminderToday, err := work.ParseClock(now, cfg.ReminderTime)
		if err != nil {
			return err
		}
		due := !now.Before(reminderToday) && len(progress.Records) == 0 && trackerService.Schedule().IsWorkingDay(now)

		fmt.Printf("Next reminder: %s (%s)\n", next.Format("Mon Jan 2 15:04"), humanize.Time(next))
		if due {
			fmt.Println("Don't forget to record your day: timeflow add")
			logger.Info().Msg("reminder due")
			trackerService.Close()
			db.Close()
			os.Exit(2)
		}
		return nil
	},
}

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Delete all recorded days",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			fmt.Println("This deletes every recorded day and cannot be undone. Use --force to confirm.")
			return nil
		}

		n, err := trackerService.EraseAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Erased %d day(s)\n", n)
		return nil
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for timeflow.

To load completions:

Bash:
  $ source <(timeflow completion bash)

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  $ timeflow completion zsh > "${fpath[1]}/_timeflow"

Fish:
  $ timeflow completion fish > ~/.config/fish/completions/timeflow.fish

PowerShell:
  PS> timeflow completion powershell > timeflow.ps1
  PS> . timeflow.ps1
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletion(os.Stdout)
		}
		return nil
	},
}

// applyRecordFlags copies the record flags that were set onto r.
func applyRecordFlags(cmd *cobra.Command, r *work.DayRecord) error {
	flags := cmd.Flags()

	if flags.Changed("type") {
		s, _ := flags.GetString("type")
		c, err := work.ParseCategory(s)
		if err != nil {
			return err
		}
		r.Category = c
	}
	if flags.Changed("start") {
		s, _ := flags.GetString("start")
		t, err := work.ParseClock(r.Date, s)
		if err != nil {
			return err
		}
		r.Start = &t
	}
	if flags.Changed("end") {
		s, _ := flags.GetString("end")
		t, err := work.ParseClock(r.Date, s)
		if err != nil {
			return err
		}
		r.End = &t
	}
	if flags.Changed("break") {
		minutes, _ := flags.GetInt("break")
		r.Break = time.Duration(minutes) * time.Minute
	}
	if flags.Changed("note") {
		r.Note, _ = flags.GetString("note")
	}
	return nil
}

// moveTo changes the record's date and keeps its clock times.
func moveTo(r *work.DayRecord, date time.Time) {
	r.Date = work.StartOfDay(date)
	if r.Start != nil {
		s := work.At(r.Date, *r.Start)
		r.Start = &s
	}
	if r.End != nil {
		e := work.At(r.Date, *r.End)
		r.End = &e
	}
}

// resolveRecord finds a record by full ID, unique ID prefix, or date.
func resolveRecord(ctx context.Context, ref string) (*work.DayRecord, error) {
	if date, err := parseDate(ref); err == nil {
		return trackerService.Day(ctx, date)
	}

	record, err := trackerService.Get(ctx, ref)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	all, err := trackerService.All(ctx)
	if err != nil {
		return nil, err
	}
	var match *work.DayRecord
	for i := range all {
		if strings.HasPrefix(all[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("ID prefix %q is ambiguous", ref)
			}
			match = &all[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%s: %w", ref, storage.ErrNotFound)
	}
	return match, nil
}

// parseDate accepts today, yesterday, tomorrow, YYYY-MM-DD and short forms
// without a year (Jan 2, 1/2), which use the current year.
func parseDate(s string) (time.Time, error) {
	now := cfg.Now()
	loc := cfg.Location()

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return work.StartOfDay(now), nil
	case "yesterday":
		return work.StartOfDay(now).AddDate(0, 0, -1), nil
	case "tomorrow":
		return work.StartOfDay(now).AddDate(0, 0, 1), nil
	}

	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	for _, layout := range []string{"Jan 2", "Jan 02", "1/2"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %s (use YYYY-MM-DD)", s)
}

// anchorFlag returns the --date flag as a date, or now.
func anchorFlag(cmd *cobra.Command) (time.Time, error) {
	s, _ := cmd.Flags().GetString("date")
	if s == "" {
		return cfg.Now(), nil
	}
	return parseDate(s)
}

func printRecordFigures(r work.DayRecord) {
	schedule := trackerService.Schedule()
	fmt.Printf("Worked:   %s | Standard: %s | Overtime: %s\n",
		work.FormatDuration(work.WorkedSeconds(r)),
		work.FormatDuration(work.StandardSeconds(r, schedule)),
		work.FormatSignedDuration(work.NetOvertimeSeconds(r, schedule)))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("type", "t", "", "Day type: work, vacation, holiday, sick, compensatory")
	cmd.Flags().StringP("start", "s", "", "Start time (HH:MM)")
	cmd.Flags().StringP("end", "e", "", "End time (HH:MM)")
	cmd.Flags().IntP("break", "b", 0, "Break in minutes")
	cmd.Flags().StringP("note", "n", "", "Note")
}

func init() {
	addRecordFlags(addCmd)
	addRecordFlags(editCmd)
	editCmd.Flags().StringP("date", "d", "", "Move the day to another date (YYYY-MM-DD)")

	deleteCmd.Flags().BoolP("force", "f", false, "Delete without confirmation")
	eraseCmd.Flags().Bool("force", false, "Erase without confirmation")

	listCmd.Flags().StringP("date", "d", "", "Any date inside the period (YYYY-MM-DD)")
	listCmd.Flags().IntP("limit", "l", 0, "Show at most this many days")
}

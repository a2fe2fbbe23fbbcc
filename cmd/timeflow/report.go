package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/timeflow/internal/tracker"
	"github.com/timeflow/internal/work"
)

func periodCommand(period work.Period, aliases []string, short string) *cobra.Command {
	return &cobra.Command{
		Use:     fmt.Sprintf("%s [last|date]", period),
		Aliases: aliases,
		Short:   short,
		Long: fmt.Sprintf(`Show the days and statistics of the current %[1]s. Use "last" for the previous
%[1]s or a date (YYYY-MM-DD) for the %[1]s containing it.`, period),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			anchor, err := periodAnchor(period, args)
			if err != nil {
				return err
			}
			report, err := trackerService.Report(cmd.Context(), period, anchor)
			if err != nil {
				return err
			}

			printDays(report)
			fmt.Println()
			printStatistics(report)
			if period == work.Week {
				return printWeekProgress(cmd, anchor)
			}
			return nil
		},
	}
}

var (
	weekCmd  = periodCommand(work.Week, []string{"w"}, "Show the week's days and overtime")
	monthCmd = periodCommand(work.Month, []string{"m"}, "Show the month's days and overtime")
	yearCmd  = periodCommand(work.Year, []string{"y"}, "Show the year's days and overtime")
)

var reportCmd = &cobra.Command{
	Use:     "report [week|month|year] [last|date]",
	Aliases: []string{"stats", "statistics"},
	Short:   "Show statistics for a period",
	Long: `Show the statistics block for a period: worked days, total and average worked
time, overtime, and vacation, holiday, sick and compensatory day counts.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		period := work.Month
		if len(args) > 0 {
			var err error
			if period, err = work.ParsePeriod(args[0]); err != nil {
				return err
			}
		}
		anchor, err := periodAnchor(period, args[min(len(args), 1):])
		if err != nil {
			return err
		}

		report, err := trackerService.Report(cmd.Context(), period, anchor)
		if err != nil {
			return err
		}
		printStatistics(report)
		return nil
	},
}

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show the year, month and week at a glance",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := trackerService.Home(cmd.Context(), cfg.Now())
		if err != nil {
			return err
		}

		for _, c := range []tracker.Card{home.Year, home.Month, home.Week} {
			fmt.Printf("%-12s %8s  %8s\n", c.Title, work.FormatDuration(c.Worked), work.FormatSignedDuration(c.Overtime))
		}
		fmt.Printf("%-12s %8d  (of %d)\n", "Vacation left", home.VacationRemaining, home.VacationAllowance)
		return nil
	},
}

// periodAnchor turns an optional "last" or date argument into a time inside
// the requested period.
func periodAnchor(period work.Period, args []string) (time.Time, error) {
	now := cfg.Now()
	if len(args) == 0 {
		return now, nil
	}
	if args[0] == "last" {
		switch period {
		case work.Week:
			return now.AddDate(0, 0, -7), nil
		case work.Month:
			return work.MonthRange(now).Start.AddDate(0, -1, 0), nil
		default:
			return work.YearRange(now).Start.AddDate(-1, 0, 0), nil
		}
	}
	return parseDate(args[0])
}

func printDays(report *tracker.Report) {
	fmt.Printf("%s | %s - %s\n", report.Label,
		report.Range.Start.Format("Jan 2"), report.Range.End.AddDate(0, 0, -1).Format("Jan 2, 2006"))

	if len(report.Days) == 0 {
		fmt.Println("  No days recorded")
		return
	}

	today := cfg.Now()
	for _, d := range report.Days {
		r := d.Record
		times := ""
		if r.Category == work.Work {
			times = fmt.Sprintf("%s-%s", work.FormatClock(r.Start), work.FormatClock(r.End))
		}
		marker := ""
		if work.SameDay(r.Date, today) {
			marker = " *"
		}
		fmt.Printf("  %s %-12s %-11s %6s %7s%s\n",
			r.Date.Format("Mon 01/02"), r.Category.Label(), times,
			work.FormatDuration(d.WorkedSeconds), work.FormatSignedDuration(d.OvertimeSeconds), marker)
	}
}

func printStatistics(report *tracker.Report) {
	s := report.Summary
	fmt.Printf("Statistics %s\n", report.Label)
	fmt.Printf("  Worked days:       %d\n", s.WorkDays)
	fmt.Printf("  Total worked:      %s\n", work.FormatDuration(s.WorkedSeconds))
	fmt.Printf("  Average per day:   %s\n", work.FormatDuration(s.AverageSeconds))
	fmt.Printf("  Overtime:          %s\n", work.FormatSignedDuration(s.OvertimeSeconds))
	fmt.Printf("  Vacation days:     %d\n", s.VacationDays)
	fmt.Printf("  Holidays:          %d\n", s.HolidayDays)
	fmt.Printf("  Sick days:         %d\n", s.SickDays)
	fmt.Printf("  Compensatory days: %d\n", s.CompensatoryDays)
}

func printWeekProgress(cmd *cobra.Command, anchor time.Time) error {
	if !work.SameDay(work.WeekRange(anchor).Start, work.WeekRange(cfg.Now()).Start) {
		return nil
	}
	p, err := trackerService.WeekProgress(cmd.Context(), cfg.Now())
	if err != nil {
		return err
	}

	fmt.Println()
	if p.RemainingSeconds > 0 {
		fmt.Printf("Remaining: %s over %d working day(s) | Needed per day: %s\n",
			work.FormatDuration(p.RemainingSeconds), p.RemainingDays, work.FormatDuration(p.RequiredDailySeconds))
	} else {
		fmt.Printf("Weekly hours reached: %s of %s\n",
			work.FormatDuration(p.WorkedSeconds), work.FormatDuration(p.TargetSeconds))
	}
	return nil
}

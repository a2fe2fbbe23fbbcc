package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/timeflow/internal/visualization"
	"github.com/timeflow/internal/work"
)

var visualizeCmd = &cobra.Command{
	Use:     "visualize [week|month|calendar|html] [date]",
	Aliases: []string{"viz"},
	Short:   "Generate visual reports",
	Long:    `Generate SVG charts and month calendars, or an HTML overview page.`,
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		visualizer := visualization.New(trackerService.Schedule())
		output, _ := cmd.Flags().GetString("output")

		anchor := cfg.Now()
		if len(args) > 1 {
			var err error
			if anchor, err = parseDate(args[1]); err != nil {
				return err
			}
		}

		var content string
		switch args[0] {
		case "week":
			report, err := trackerService.Report(ctx, work.Week, anchor)
			if err != nil {
				return err
			}
			content = visualizer.WeekSVG(report)
		case "month":
			report, err := trackerService.Report(ctx, work.Month, anchor)
			if err != nil {
				return err
			}
			content = visualizer.MonthSVG(report)
		case "calendar", "cal":
			report, err := trackerService.Report(ctx, work.Month, anchor)
			if err != nil {
				return err
			}
			content = visualizer.CalendarSVG(report, cfg.Now())
		case "html":
			home, err := trackerService.Home(ctx, anchor)
			if err != nil {
				return err
			}
			progress, err := trackerService.WeekProgress(ctx, anchor)
			if err != nil {
				return err
			}
			report, err := trackerService.Report(ctx, work.Month, anchor)
			if err != nil {
				return err
			}
			content = visualizer.HTMLReport(home, progress, report, cfg.Now())
		default:
			return fmt.Errorf("unknown visualization type: %s (use week, month, calendar or html)", args[0])
		}

		if output != "" {
			return os.WriteFile(output, []byte(content), 0644)
		}
		fmt.Println(content)
		return nil
	},
}

var calendarCmd = &cobra.Command{
	Use:     "calendar [last|date]",
	Aliases: []string{"cal"},
	Short:   "Show a month calendar marking recorded days",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		anchor, err := periodAnchor(work.Month, args)
		if err != nil {
			return err
		}
		report, err := trackerService.Report(cmd.Context(), work.Month, anchor)
		if err != nil {
			return err
		}

		fmt.Print(visualization.New(trackerService.Schedule()).CalendarText(report, cfg.Now()))
		return nil
	},
}

func init() {
	visualizeCmd.Flags().StringP("output", "o", "", "Output file path")
}

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/timeflow/internal/export"
	"github.com/timeflow/internal/work"
)

var exportCmd = &cobra.Command{
	Use:     "export [csv|json|xlsx]",
	Aliases: []string{"exp"},
	Short:   "Export recorded days to CSV, JSON or Excel",
	Long: `Export recorded days. Without a range every day is exported, newest first.

CSV columns: Date,StartTime,EndTime,BreakSeconds,Note,Category

Examples:
  timeflow export csv -o WorkDays.csv
  timeflow export json -s 2024-01-01 -e 2024-01-31
  timeflow export xlsx -o hours.xlsx`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		formatStr, _ := cmd.Flags().GetString("format")
		startStr, _ := cmd.Flags().GetString("start")
		endStr, _ := cmd.Flags().GetString("end")
		outputPath, _ := cmd.Flags().GetString("output")

		if len(args) > 0 {
			formatStr = args[0]
		}
		format, err := export.ParseFormat(formatStr)
		if err != nil {
			return err
		}

		var records []work.DayRecord
		if startStr == "" && endStr == "" {
			records, err = trackerService.All(ctx)
		} else {
			rng, rerr := exportRange(startStr, endStr)
			if rerr != nil {
				return rerr
			}
			records, err = trackerService.Records(ctx, rng)
		}
		if err != nil {
			return err
		}

		if format == export.XLSX && outputPath == "" {
			outputPath = "timeflow-" + cfg.Now().Format("2006-01-02") + "." + format.Extension()
		}

		var output io.Writer = os.Stdout
		if outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				return err
			}
			defer f.Close()
			output = f
		}

		if err := export.Write(output, format, records, trackerService.Schedule()); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if outputPath != "" {
			size := uint64(0)
			if info, err := os.Stat(outputPath); err == nil {
				size = uint64(info.Size())
			}
			fmt.Fprintf(os.Stderr, "Exported %d day(s) to %s (%s)\n", len(records), outputPath, humanize.Bytes(size))
		}
		logger.Info().Str("format", string(format)).Int("records", len(records)).Str("output", outputPath).Msg("export written")
		return nil
	},
}

// exportRange builds the half-open range [start, end+1 day). A missing bound
// is open towards the past or the future.
func exportRange(startStr, endStr string) (work.Range, error) {
	loc := cfg.Location()
	rng := work.Range{
		Start: time.Date(1, 1, 1, 0, 0, 0, 0, loc),
		End:   time.Date(9999, 12, 31, 0, 0, 0, 0, loc),
	}
	if startStr != "" {
		t, err := parseDate(startStr)
		if err != nil {
			return rng, err
		}
		rng.Start = t
	}
	if endStr != "" {
		t, err := parseDate(endStr)
		if err != nil {
			return rng, err
		}
		rng.End = t.AddDate(0, 0, 1)
	}
	if !rng.Start.Before(rng.End) {
		return rng, fmt.Errorf("start %s is after end %s", startStr, endStr)
	}
	return rng, nil
}

func init() {
	exportCmd.Flags().StringP("format", "f", "csv", "Output format: csv, json, xlsx")
	exportCmd.Flags().StringP("start", "s", "", "Start date (YYYY-MM-DD)")
	exportCmd.Flags().StringP("end", "e", "", "End date, inclusive (YYYY-MM-DD)")
	exportCmd.Flags().StringP("output", "o", "", "Output file (stdout if empty)")
}

package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/timeflow/internal/work"
)

// Format is an export file format.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	XLSX Format = "xlsx"
)

// ParseFormat accepts csv, json or xlsx.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, JSON, XLSX:
		return f, nil
	case "excel":
		return XLSX, nil
	}
	return "", fmt.Errorf("unknown format: %s (use csv, json or xlsx)", s)
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// CSVHeader is the fixed first row of a CSV export.
var CSVHeader = []string{"Date", "StartTime", "EndTime", "BreakSeconds", "Note", "Category"}

// Write exports records in format f. Records are written in the order given.
func Write(w io.Writer, f Format, records []work.DayRecord, s work.Schedule) error {
	switch f {
	case CSV:
		return WriteCSV(w, records)
	case JSON:
		return WriteJSON(w, records, s)
	case XLSX:
		return WriteXLSX(w, records, s)
	}
	return fmt.Errorf("unknown format: %s", f)
}

// WriteCSV writes one row per record after CSVHeader. Times are HH:MM and
// empty when absent, commas in notes become spaces.
func WriteCSV(w io.Writer, records []work.DayRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write(csvRow(r)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvRow(r work.DayRecord) []string {
	return []string{
		r.Date.Format("2006-01-02"),
		work.FormatClock(r.Start),
		work.FormatClock(r.End),
		strconv.FormatInt(int64(r.Break/time.Second), 10),
		strings.ReplaceAll(r.Note, ",", " "),
		r.Category.Label(),
	}
}

type recordExport struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time,omitempty"`
	EndTime         string `json:"end_time,omitempty"`
	BreakSeconds    int64  `json:"break_seconds"`
	Note            string `json:"note,omitempty"`
	Category        string `json:"category"`
	WorkedSeconds   int64  `json:"worked_seconds"`
	OvertimeSeconds int64  `json:"overtime_seconds"`
}

type summaryExport struct {
	WorkDays        int   `json:"work_days"`
	VacationDays    int   `json:"vacation_days"`
	HolidayDays     int   `json:"holiday_days"`
	SickDays        int   `json:"sick_days"`
	CompDays        int   `json:"compensatory_days"`
	WorkedSeconds   int64 `json:"worked_seconds"`
	AverageSeconds  int64 `json:"average_seconds"`
	OvertimeSeconds int64 `json:"overtime_seconds"`
}

// WriteJSON writes the records with their worked and overtime seconds and a
// summary block.
func WriteJSON(w io.Writer, records []work.DayRecord, s work.Schedule) error {
	exports := make([]recordExport, 0, len(records))
	for _, r := range records {
		exports = append(exports, recordExport{
			ID:              r.ID,
			Date:            r.Date.Format("2006-01-02"),
			StartTime:       work.FormatClock(r.Start),
			EndTime:         work.FormatClock(r.End),
			BreakSeconds:    int64(r.Break / time.Second),
			Note:            r.Note,
			Category:        r.Category.String(),
			WorkedSeconds:   work.WorkedSeconds(r),
			OvertimeSeconds: work.NetOvertimeSeconds(r, s),
		})
	}

	sum := work.Summarize(records, s)
	summary := summaryExport{
		WorkDays:        sum.WorkDays,
		VacationDays:    sum.VacationDays,
		HolidayDays:     sum.HolidayDays,
		SickDays:        sum.SickDays,
		CompDays:        sum.CompensatoryDays,
		WorkedSeconds:   sum.WorkedSeconds,
		AverageSeconds:  sum.AverageSeconds,
		OvertimeSeconds: sum.OvertimeSeconds,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]interface{}{
		"total_records": len(records),
		"weekly_hours":  s.WeeklyHours,
		"working_days":  s.WorkingDays.String(),
		"summary":       summary,
		"records":       exports,
	})
}

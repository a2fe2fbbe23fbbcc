package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/timeflow/internal/work"
)

const (
	recordsSheet = "Records"
	summarySheet = "Summary"
)

// sheetWriter appends rows to the sheets of a workbook.
type sheetWriter struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func newSheetWriter() *sheetWriter {
	return &sheetWriter{file: excelize.NewFile()}
}

func (w *sheetWriter) addSheet(name string) error {
	// Excel limits sheet names to 31 characters.
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

func (w *sheetWriter) writeHeader(columns []string) error {
	row := make([]interface{}, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	if err := w.writeRow(row); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow-1)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow-1)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}
	return nil
}

func (w *sheetWriter) writeRow(row []interface{}) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}

	w.currentRow++
	return nil
}

// WriteXLSX writes a workbook with a Records sheet (the CSV columns plus
// worked and overtime) and a Summary sheet.
func WriteXLSX(w io.Writer, records []work.DayRecord, s work.Schedule) error {
	sw := newSheetWriter()
	defer sw.file.Close()

	if err := sw.addSheet(recordsSheet); err != nil {
		return err
	}
	header := append(append([]string{}, CSVHeader...), "Worked", "Overtime")
	if err := sw.writeHeader(header); err != nil {
		return err
	}
	for _, r := range records {
		row := []interface{}{
			r.Date.Format("2006-01-02"),
			work.FormatClock(r.Start),
			work.FormatClock(r.End),
			int64(r.Break / time.Second),
			r.Note,
			r.Category.Label(),
			work.FormatDuration(work.WorkedSeconds(r)),
			work.FormatSignedDuration(work.NetOvertimeSeconds(r, s)),
		}
		if err := sw.writeRow(row); err != nil {
			return err
		}
	}

	sum := work.Summarize(records, s)
	if err := sw.addSheet(summarySheet); err != nil {
		return err
	}
	if err := sw.writeHeader([]string{"Statistic", "Value"}); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Worked days", sum.WorkDays},
		{"Total worked", work.FormatDuration(sum.WorkedSeconds)},
		{"Average per day", work.FormatDuration(sum.AverageSeconds)},
		{"Overtime", work.FormatSignedDuration(sum.OvertimeSeconds)},
		{"Vacation days", sum.VacationDays},
		{"Holidays", sum.HolidayDays},
		{"Sick days", sum.SickDays},
		{"Compensatory days", sum.CompensatoryDays},
	}
	for _, row := range rows {
		if err := sw.writeRow(row); err != nil {
			return err
		}
	}

	return sw.file.Write(w)
}

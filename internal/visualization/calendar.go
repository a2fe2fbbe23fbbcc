package visualization

import (
	"fmt"
	"strings"
	"time"

	"github.com/timeflow/internal/tracker"
	"github.com/timeflow/internal/work"
)

// CalendarDay is one cell of a month grid. Cells outside the month have a
// zero Date.
type CalendarDay struct {
	Date     time.Time
	Recorded bool
	Category work.Category
}

var categoryColors = map[work.Category]string{
	work.Work:         "#3498DB",
	work.Vacation:     "#2ECC71",
	work.Holiday:      "#F39C12",
	work.SickLeave:    "#E74C3C",
	work.Compensatory: "#9B59B6",
}

// MonthGrid lays the month of report out in Monday-first weeks. A day with
// several records takes the category of the first one.
func MonthGrid(report *tracker.Report) [][7]CalendarDay {
	first := work.StartOfDay(report.Range.Start)
	offset := (int(first.Weekday()) + 6) % 7

	byDay := make(map[int]work.Category)
	for _, d := range report.Days {
		if !report.Range.Contains(d.Record.Date) {
			continue
		}
		if _, ok := byDay[d.Record.Date.Day()]; !ok {
			byDay[d.Record.Date.Day()] = d.Record.Category
		}
	}

	var grid [][7]CalendarDay
	var week [7]CalendarDay
	col := offset
	for day := first; report.Range.Contains(day); day = day.AddDate(0, 0, 1) {
		c, ok := byDay[day.Day()]
		week[col] = CalendarDay{Date: day, Recorded: ok, Category: c}
		col++
		if col == 7 {
			grid = append(grid, week)
			week = [7]CalendarDay{}
			col = 0
		}
	}
	if col > 0 {
		grid = append(grid, week)
	}
	return grid
}

func marker(c CalendarDay) string {
	if !c.Recorded {
		return ""
	}
	return strings.ToUpper(c.Category.String()[:1])
}

// CalendarText renders the month grid for a terminal. Recorded days carry
// the first letter of their category, today is followed by "*".
func (v *Visualizer) CalendarText(report *tracker.Report, today time.Time) string {
	var sb strings.Builder
	title := report.Range.Start.Format("January 2006")
	sb.WriteString(fmt.Sprintf("%*s\n", 17+len(title)/2, title))
	for _, name := range []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"} {
		sb.WriteString(fmt.Sprintf("%3s  ", name))
	}
	sb.WriteString("\n")

	for _, week := range MonthGrid(report) {
		var line strings.Builder
		for _, c := range week {
			if c.Date.IsZero() {
				line.WriteString("     ")
				continue
			}
			mark := marker(c)
			if work.SameDay(c.Date, today) {
				mark += "*"
			}
			line.WriteString(fmt.Sprintf("%3d%-2s", c.Date.Day(), mark))
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		sb.WriteString("\n")
	}

	sb.WriteString("\nW work  V vacation  H holiday  S sick leave  C compensatory  * today\n")
	return sb.String()
}

// CalendarSVG draws the month grid with recorded days filled in the color
// of their category.
func (v *Visualizer) CalendarSVG(report *tracker.Report, today time.Time) string {
	grid := MonthGrid(report)
	cell := 70
	padding := 20
	top := 80
	width := 7*cell + 2*padding
	height := top + len(grid)*cell + padding

	var cells strings.Builder
	for i, name := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		cells.WriteString(fmt.Sprintf(`<text x="%d" y="%d" text-anchor="middle" font-size="12" fill="#7f8c8d">%s</text>`,
			padding+i*cell+cell/2, top-10, name))
	}
	for row, week := range grid {
		for col, c := range week {
			if c.Date.IsZero() {
				continue
			}
			x := padding + col*cell
			y := top + row*cell
			fill := "#FFFFFF"
			if c.Recorded {
				fill = categoryColors[c.Category]
			}
			stroke, strokeWidth := "#E0E0E0", 1
			if work.SameDay(c.Date, today) {
				stroke, strokeWidth = "#2c3e50", 3
			}
			cells.WriteString(fmt.Sprintf(`
  <rect x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="%s" stroke-width="%d" rx="6"/>
  <text x="%d" y="%d" font-size="14" fill="#333">%d</text>`,
				x+2, y+2, cell-4, cell-4, fill, stroke, strokeWidth,
				x+10, y+24, c.Date.Day()))
		}
	}

	s := report.Summary
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">
  <text x="%d" y="30" text-anchor="middle" font-size="18" font-weight="bold" fill="#2c3e50">%s</text>
  <text x="%d" y="52" text-anchor="middle" font-size="12" fill="#7f8c8d">%d worked | %d vacation | %d holiday | %d sick | %d compensatory</text>
  %s
</svg>`,
		width, height, width, height,
		width/2, report.Range.Start.Format("January 2006"),
		width/2, s.WorkDays, s.VacationDays, s.HolidayDays, s.SickDays, s.CompensatoryDays,
		cells.String(),
	)
}

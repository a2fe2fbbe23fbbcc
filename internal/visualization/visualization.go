package visualization

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/timeflow/internal/tracker"
	"github.com/timeflow/internal/work"
)

type Visualizer struct {
	schedule work.Schedule
}

func New(schedule work.Schedule) *Visualizer {
	return &Visualizer{schedule: schedule}
}

type dayBar struct {
	name     string
	hours    float64
	category string
}

func (v *Visualizer) weekBars(report *tracker.Report) []dayBar {
	dayNames := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	bars := make([]dayBar, 7)
	for i := range bars {
		bars[i].name = dayNames[i]
	}

	for _, d := range report.Days {
		i := int(math.Round(d.Record.Date.Sub(report.Range.Start).Hours() / 24))
		if i < 0 || i > 6 {
			continue
		}
		if d.Record.Category == work.Work {
			bars[i].hours += float64(d.WorkedSeconds) / 3600
		} else {
			bars[i].category = d.Record.Category.Label()
		}
	}
	return bars
}

// WeekSVG draws worked hours per day of a week report with the daily target
// as a dashed line.
func (v *Visualizer) WeekSVG(report *tracker.Report) string {
	width := 600
	height := 300
	padding := 40
	barWidth := float64((width - 2*padding) / 7)
	chartHeight := float64(height - 2*padding)
	target := v.schedule.DailyHours()

	bars := v.weekBars(report)
	maxHours := 12.0
	for _, b := range bars {
		if b.hours+1 > maxHours {
			maxHours = math.Ceil(b.hours + 1)
		}
	}

	var rects strings.Builder
	days := make([]string, 0, len(bars))
	for i, b := range bars {
		days = append(days, b.name)

		h := math.Max(b.hours, 0)
		barHeight := (h / maxHours) * chartHeight
		x := float64(padding) + float64(i)*barWidth + 5
		y := float64(height) - float64(padding) - barHeight

		color := "#4CAF50"
		if target > 0 && h < target {
			color = "#3498DB"
		}
		if h > target+2 {
			color = "#FF9800"
		}
		if h > 12 {
			color = "#F44336"
		}

		label := work.FormatDuration(int64(math.Round(b.hours * 3600)))
		if b.category != "" && b.hours == 0 {
			label = html.EscapeString(b.category)
		}
		rects.WriteString(fmt.Sprintf(`<rect x="%.0f" y="%.0f" width="%.0f" height="%.0f" fill="%s" rx="4"/>
    <text x="%.0f" y="%d" text-anchor="middle" font-size="12" fill="#333">%s</text>`,
			x, y, barWidth-10, barHeight, color,
			x+barWidth/2-5, int(y)-5, label))
	}

	targetY := float64(height) - float64(padding) - (target/maxHours)*chartHeight
	s := report.Summary

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">
  <defs>
    <linearGradient id="bgGrad" x1="0%%" y1="0%%" x2="0%%" y2="100%%">
      <stop offset="0%%" style="stop-color:#f5f7fa"/>
      <stop offset="100%%" style="stop-color:#e4e8ec"/>
    </linearGradient>
  </defs>
  <rect width="%d" height="%d" fill="url(#bgGrad)" rx="10"/>
  <text x="%d" y="30" text-anchor="middle" font-size="18" font-weight="bold" fill="#2c3e50">Week %s</text>
  <text x="%d" y="55" text-anchor="middle" font-size="12" fill="#7f8c8d">%s - %s | Worked: %s | Overtime: %s</text>

  <!-- Daily target -->
  <line x1="%d" y1="%.0f" x2="%d" y2="%.0f" stroke="#E74C3C" stroke-width="2" stroke-dasharray="5,5"/>
  <text x="%d" y="%.0f" font-size="10" fill="#E74C3C">%s</text>

  <!-- Bars -->
  %s

  <!-- X-axis labels -->
  %s

  <!-- Grid lines -->
  %s
</svg>`,
		width, height, width, height,
		width, height,
		width/2, report.Label,
		width/2, report.Range.Start.Format("Jan 2"), report.Range.End.AddDate(0, 0, -1).Format("Jan 2"),
		work.FormatDuration(s.WorkedSeconds), work.FormatSignedDuration(s.OvertimeSeconds),
		padding, targetY, width-padding, targetY,
		width-padding+2, targetY-5, work.FormatDuration(v.schedule.DailySeconds()),
		rects.String(),
		v.generateXLabels(days, float64(padding), barWidth, float64(height-padding)),
		v.generateGridLines(height, padding, width),
	)
}

// MonthSVG draws worked hours per ISO week of a month report and a ring
// showing worked time against the month's standard time.
func (v *Visualizer) MonthSVG(report *tracker.Report) string {
	width := 600
	height := 400
	padding := 50

	records := make([]work.DayRecord, 0, len(report.Days))
	for _, d := range report.Days {
		records = append(records, d.Record)
	}
	weeks := work.ByISOWeek(records, v.schedule)

	cellSize := float64(width-2*padding) / 6 // a month touches at most six ISO weeks
	weekTarget := math.Max(v.schedule.WeeklyHours, 1)

	var bars strings.Builder
	for i, w := range weeks {
		h := math.Max(float64(w.Worked)/3600, 0)
		barHeight := math.Min(h/(weekTarget*1.25), 1) * float64(height-2*padding-100)
		x := float64(padding) + float64(i)*cellSize + 10
		y := float64(height) - float64(padding) - barHeight

		bars.WriteString(fmt.Sprintf(`<rect x="%.0f" y="%.0f" width="%.0f" height="%.0f" fill="#3498DB" rx="4"/>
    <text x="%.0f" y="%d" text-anchor="middle" font-size="12" fill="#333">%.1fh</text>
    <text x="%.0f" y="%d" text-anchor="middle" font-size="12" fill="#7f8c8d">%s</text>`,
			x, y, cellSize-20, barHeight,
			x+cellSize/2-10, int(y)-5, h,
			x+cellSize/2-10, height-padding+20, w.Label()))
	}

	s := report.Summary
	percent := 0.0
	if s.StandardSeconds > 0 {
		percent = float64(s.WorkedSeconds) / float64(s.StandardSeconds) * 100
	}
	circumference := 2 * math.Pi * 60

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">
  <defs>
    <linearGradient id="bgGrad" x1="0%%" y1="0%%" x2="0%%" y2="100%%">
      <stop offset="0%%" style="stop-color:#f5f7fa"/>
      <stop offset="100%%" style="stop-color:#e4e8ec"/>
    </linearGradient>
  </defs>
  <rect width="%d" height="%d" fill="url(#bgGrad)" rx="10"/>
  <text x="%d" y="30" text-anchor="middle" font-size="18" font-weight="bold" fill="#2c3e50">Monthly Overview</text>
  <text x="%d" y="55" text-anchor="middle" font-size="12" fill="#7f8c8d">%s | Worked: %s | Avg/day: %s</text>

  <!-- Progress ring -->
  <circle cx="%d" cy="%d" r="60" fill="none" stroke="#E0E0E0" stroke-width="10"/>
  <circle cx="%d" cy="%d" r="60" fill="none" stroke="#4CAF50" stroke-width="10"
    stroke-dasharray="%.0f %.0f" transform="rotate(-90 %d %d)"/>
  <text x="%d" y="%d" text-anchor="middle" font-size="14" fill="#333">%.0f%%</text>

  <!-- Bars -->
  %s
</svg>`,
		width, height, width, height,
		width, height,
		width/2,
		width/2, report.Label, work.FormatDuration(s.WorkedSeconds), work.FormatDuration(s.AverageSeconds),
		width-100, 120,
		width-100, 120,
		circumference*math.Min(percent, 100)/100, circumference,
		width-100, 120,
		width-100, 125,
		percent,
		bars.String(),
	)
}

// HTMLReport renders the home cards, the week's progress and the rows of
// report as a standalone page.
func (v *Visualizer) HTMLReport(home *tracker.Home, progress *tracker.WeekProgress, report *tracker.Report, generated time.Time) string {
	percent := 0.0
	if progress.TargetSeconds > 0 {
		percent = math.Min(float64(progress.WorkedSeconds)/float64(progress.TargetSeconds)*100, 100)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Timeflow - Work Hours Report</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 40px; background: #f5f7fa; }
    .container { max-width: 800px; margin: 0 auto; }
    .card { background: white; border-radius: 10px; padding: 24px; margin-bottom: 20px; box-shadow: 0 2px 8px rgba(0,0,0,0.1); }
    h1 { color: #2c3e50; margin-bottom: 8px; }
    h2 { color: #34495e; font-size: 18px; margin-bottom: 16px; }
    .subtitle { color: #7f8c8d; margin-bottom: 30px; }
    .stat { display: inline-block; text-align: center; padding: 20px; margin: 10px; background: #f8f9fa; border-radius: 8px; min-width: 120px; }
    .stat-value { font-size: 28px; font-weight: bold; color: #3498DB; }
    .stat-sub { font-size: 14px; margin-top: 4px; }
    .stat-sub.positive { color: #2E7D32; }
    .stat-sub.negative { color: #C62828; }
    .stat-label { font-size: 12px; color: #7f8c8d; margin-top: 4px; }
    .progress-bar { height: 24px; background: #E0E0E0; border-radius: 12px; overflow: hidden; margin: 16px 0; }
    .progress-fill { height: 100%%; background: linear-gradient(90deg, #4CAF50, #8BC34A); border-radius: 12px; transition: width 0.3s; }
    table { width: 100%%; border-collapse: collapse; margin-top: 16px; }
    th, td { padding: 12px; text-align: left; border-bottom: 1px solid #eee; }
    th { color: #7f8c8d; font-weight: 500; }
  </style>
</head>
<body>
  <div class="container">
    <h1>Timeflow Report</h1>
    <p class="subtitle">Generated on %s</p>

    <div class="card">
      <h2>Overview</h2>
      %s
      %s
      %s
      <div class="stat">
        <div class="stat-value">%d</div>
        <div class="stat-label">Vacation left</div>
      </div>
    </div>

    <div class="card">
      <h2>Weekly Progress</h2>
      <div class="progress-bar">
        <div class="progress-fill" style="width: %.1f%%"></div>
      </div>
      <p style="color: #7f8c8d; text-align: center;">%s / %s</p>
    </div>

    <div class="card">
      <h2>%s</h2>
      <table>
        <tr><th>Date</th><th>Type</th><th>Start</th><th>End</th><th>Worked</th><th>Overtime</th><th>Note</th></tr>
        %s
      </table>
    </div>
  </div>
</body>
</html>`,
		generated.Format("Monday, January 2, 2006"),
		statCard(home.Year), statCard(home.Month), statCard(home.Week),
		home.VacationRemaining,
		percent,
		work.FormatDuration(progress.WorkedSeconds), work.FormatDuration(progress.TargetSeconds),
		html.EscapeString(report.Label),
		v.formatDayRows(report),
	)
}

func statCard(c tracker.Card) string {
	class := "positive"
	if c.Overtime < 0 {
		class = "negative"
	}
	return fmt.Sprintf(`<div class="stat">
        <div class="stat-value">%s</div>
        <div class="stat-sub %s">%s</div>
        <div class="stat-label">%s</div>
      </div>`,
		work.FormatDuration(c.Worked), class, work.FormatSignedDuration(c.Overtime), html.EscapeString(c.Title))
}

func (v *Visualizer) formatDayRows(report *tracker.Report) string {
	rows := make([]string, 0, len(report.Days))
	for _, d := range report.Days {
		r := d.Record
		rows = append(rows, fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			r.Date.Format("Mon Jan 2"), r.Category.Label(),
			work.FormatClock(r.Start), work.FormatClock(r.End),
			work.FormatDuration(d.WorkedSeconds), work.FormatSignedDuration(d.OvertimeSeconds),
			html.EscapeString(r.Note)))
	}
	return strings.Join(rows, "\n        ")
}

func (v *Visualizer) generateXLabels(days []string, padding float64, barWidth float64, y float64) string {
	var labels strings.Builder
	for i, day := range days {
		x := padding + float64(i)*barWidth + barWidth/2 - 5
		labels.WriteString(fmt.Sprintf(`<text x="%.0f" y="%d" text-anchor="middle" font-size="12" fill="#7f8c8d">%s</text>`,
			x, int(y)+20, day))
	}
	return labels.String()
}

func (v *Visualizer) generateGridLines(height int, padding int, width int) string {
	var lines strings.Builder
	for i := 1; i <= 4; i++ {
		y := float64(height) - float64(padding) - (float64(i)/4.0)*float64(height-2*padding)
		lines.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.0f" x2="%d" y2="%.0f" stroke="#E0E0E0"/>`,
			padding, y, width-padding, y))
	}
	return lines.String()
}

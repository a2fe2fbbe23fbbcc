package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/timeflow/internal/work"
)

// ErrNoRecords is returned when a month has nothing to archive.
var ErrNoRecords = errors.New("no records to archive")

// Store is the subset of the record store the archiver uses.
type Store interface {
	InRange(ctx context.Context, rng work.Range) ([]work.DayRecord, error)
	DeleteInRange(ctx context.Context, rng work.Range) (int64, error)
	OldestDate(ctx context.Context) (time.Time, bool, error)
}

// Archiver handles monthly data archival to markdown
type Archiver struct {
	store       Store
	historyPath string
	schedule    work.Schedule
	loc         *time.Location
	now         func() time.Time
	log         zerolog.Logger
}

// Option configures an Archiver.
type Option func(*Archiver)

func WithLogger(l zerolog.Logger) Option {
	return func(a *Archiver) { a.log = l }
}

func WithLocation(loc *time.Location) Option {
	return func(a *Archiver) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithClock sets the source of "now" used to find past months.
func WithClock(now func() time.Time) Option {
	return func(a *Archiver) { a.now = now }
}

// New creates a new Archiver
func New(store Store, historyPath string, schedule work.Schedule, opts ...Option) *Archiver {
	a := &Archiver{
		store:       store,
		historyPath: historyPath,
		schedule:    schedule,
		loc:         time.Local,
		now:         time.Now,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MonthSummary contains archived month data
type MonthSummary struct {
	Month         time.Time
	Summary       work.Summary
	WeeklyHours   float64
	Days          []DayRow
	WeekBreakdown []work.WeekTotal
}

// DayRow is a record flattened for the archive table.
type DayRow struct {
	Date     string
	Category string
	Start    string
	End      string
	Break    string
	Worked   int64
	Overtime int64
	Note     string
}

// FileName returns the archive file name for a month, e.g. "2025-01.md".
func FileName(year int, month time.Month) string {
	return fmt.Sprintf("%d-%02d.md", year, month)
}

// ArchiveMonth writes a month's records to markdown and optionally removes
// them from the store. It returns the path written.
func (a *Archiver) ArchiveMonth(ctx context.Context, year int, month time.Month, clean bool) (string, error) {
	rng := work.MonthRange(time.Date(year, month, 1, 0, 0, 0, 0, a.loc))

	records, err := a.store.InRange(ctx, rng)
	if err != nil {
		return "", fmt.Errorf("failed to get records: %w", err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("%s %d: %w", month, year, ErrNoRecords)
	}

	summary := a.buildSummary(rng.Start, records)
	markdown := a.generateMarkdown(summary)

	if err := os.MkdirAll(a.historyPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}

	filePath := filepath.Join(a.historyPath, FileName(year, month))
	if err := os.WriteFile(filePath, []byte(markdown), 0644); err != nil {
		return "", fmt.Errorf("failed to write archive: %w", err)
	}

	if clean {
		n, err := a.store.DeleteInRange(ctx, rng)
		if err != nil {
			return filePath, fmt.Errorf("failed to clean database: %w", err)
		}
		a.log.Info().Str("month", rng.Start.Format("2006-01")).Int64("removed", n).Msg("archived month pruned")
	}

	a.log.Info().Str("file", filePath).Int("records", len(records)).Msg("month archived")
	return filePath, nil
}

func (a *Archiver) buildSummary(monthStart time.Time, records []work.DayRecord) *MonthSummary {
	summary := &MonthSummary{
		Month:         monthStart,
		Summary:       work.Summarize(records, a.schedule),
		WeeklyHours:   a.schedule.WeeklyHours,
		Days:          make([]DayRow, 0, len(records)),
		WeekBreakdown: work.ByISOWeek(records, a.schedule),
	}

	for _, r := range records {
		worked := work.WorkedSeconds(r)
		overtime := work.NetOvertimeSeconds(r, a.schedule)

		row := DayRow{
			Date:     r.Date.Format("2006-01-02"),
			Category: r.Category.Label(),
			Start:    work.FormatClock(r.Start),
			End:      work.FormatClock(r.End),
			Worked:   worked,
			Overtime: overtime,
			Note:     r.Note,
		}
		if r.Category == work.Work {
			row.Break = fmt.Sprintf("%dm", int(r.Break/time.Minute))
		}
		summary.Days = append(summary.Days, row)
	}

	return summary
}

func (a *Archiver) generateMarkdown(summary *MonthSummary) string {
	var sb strings.Builder
	s := summary.Summary

	sb.WriteString(fmt.Sprintf("# %s\n\n", summary.Month.Format("January 2006")))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Worked | %s |\n", work.FormatDuration(s.WorkedSeconds)))
	sb.WriteString(fmt.Sprintf("| Overtime | %s |\n", work.FormatSignedDuration(s.OvertimeSeconds)))
	sb.WriteString(fmt.Sprintf("| Days Worked | %d |\n", s.WorkDays))
	sb.WriteString(fmt.Sprintf("| Daily Average | %s |\n", work.FormatDuration(s.AverageSeconds)))
	sb.WriteString(fmt.Sprintf("| Vacation Days | %d |\n", s.VacationDays))
	sb.WriteString(fmt.Sprintf("| Holidays | %d |\n", s.HolidayDays))
	sb.WriteString(fmt.Sprintf("| Sick Days | %d |\n", s.SickDays))
	sb.WriteString(fmt.Sprintf("| Compensatory Days | %d |\n", s.CompensatoryDays))
	sb.WriteString(fmt.Sprintf("| Weekly Hours | %.2f |\n", summary.WeeklyHours))
	sb.WriteString("\n")

	sb.WriteString("## Weekly Breakdown\n\n")
	sb.WriteString("| Week | Worked | Overtime |\n")
	sb.WriteString("|------|--------|----------|\n")

	for _, w := range summary.WeekBreakdown {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", w.Label(), work.FormatDuration(w.Worked), work.FormatSignedDuration(w.Overtime)))
	}
	sb.WriteString("\n")

	sb.WriteString("## Days\n\n")
	sb.WriteString("| Date | Type | Start | End | Break | Worked | Overtime | Note |\n")
	sb.WriteString("|------|------|-------|-----|-------|--------|----------|------|\n")

	for _, d := range summary.Days {
		note := strings.ReplaceAll(d.Note, "|", "/")
		if utf8.RuneCountInString(note) > 30 {
			note = string([]rune(note)[:27]) + "..."
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			d.Date, d.Category, d.Start, d.End, d.Break,
			work.FormatDuration(d.Worked), work.FormatSignedDuration(d.Overtime), note))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("---\n*Archived: %s*\n", a.now().In(a.loc).Format("2006-01-02 15:04")))

	return sb.String()
}

// AutoArchivePastMonths archives every month older than the current one
// that has records and no archive file yet. Archived months are pruned.
func (a *Archiver) AutoArchivePastMonths(ctx context.Context) ([]string, error) {
	now := a.now().In(a.loc)
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, a.loc)

	oldest, ok, err := a.store.OldestDate(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var archived []string
	for monthStart := time.Date(oldest.Year(), oldest.Month(), 1, 0, 0, 0, 0, a.loc); monthStart.Before(currentMonth); monthStart = monthStart.AddDate(0, 1, 0) {
		filename := FileName(monthStart.Year(), monthStart.Month())
		if _, err := os.Stat(filepath.Join(a.historyPath, filename)); err == nil {
			continue
		}

		_, err := a.ArchiveMonth(ctx, monthStart.Year(), monthStart.Month(), true)
		if errors.Is(err, ErrNoRecords) {
			continue
		}
		if err != nil {
			return archived, err
		}
		archived = append(archived, filename)
	}

	return archived, nil
}

// ListArchives returns list of archived months
func (a *Archiver) ListArchives() ([]string, error) {
	entries, err := os.ReadDir(a.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var archives []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			archives = append(archives, e.Name())
		}
	}

	sort.Strings(archives)
	return archives, nil
}

// ReadArchive reads a specific month's archive
func (a *Archiver) ReadArchive(year int, month time.Month) (string, error) {
	filename := FileName(year, month)

	data, err := os.ReadFile(filepath.Join(a.historyPath, filename))
	if err != nil {
		return "", fmt.Errorf("archive not found: %s", filename)
	}

	return string(data), nil
}

// HistorySummary returns the summary tables of the last monthsBack archives.
func (a *Archiver) HistorySummary(monthsBack int) (string, error) {
	archives, err := a.ListArchives()
	if err != nil {
		return "", err
	}
	if len(archives) == 0 {
		return "", nil
	}

	// Zero or negative keeps every archive.
	start := len(archives) - monthsBack
	if monthsBack <= 0 || start < 0 {
		start = 0
	}

	var sb strings.Builder
	sb.WriteString("History:\n")

	for _, name := range archives[start:] {
		content, err := os.ReadFile(filepath.Join(a.historyPath, name))
		if err != nil {
			a.log.Warn().Err(err).Str("file", name).Msg("skipping unreadable archive")
			continue
		}

		inSummary := false
		for _, line := range strings.Split(string(content), "\n") {
			if strings.HasPrefix(line, "# ") {
				sb.WriteString(fmt.Sprintf("\n%s:\n", strings.TrimPrefix(line, "# ")))
			}
			if strings.HasPrefix(line, "## Summary") {
				inSummary = true
				continue
			}
			if strings.HasPrefix(line, "## Weekly") {
				inSummary = false
			}
			if inSummary && strings.HasPrefix(line, "| ") && !strings.HasPrefix(line, "| Metric") {
				sb.WriteString(fmt.Sprintf("  %s\n", line))
			}
		}
	}

	return sb.String(), nil
}

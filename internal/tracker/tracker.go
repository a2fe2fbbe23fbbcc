package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/timeflow/internal/storage"
	"github.com/timeflow/internal/work"
)

// ErrNoRecord is returned by Day when nothing is recorded for the date.
var ErrNoRecord = errors.New("no record for this day")

// Store is the persistence the tracker needs. *storage.Database implements it.
type Store interface {
	Insert(ctx context.Context, r *work.DayRecord) error
	Update(ctx context.Context, r *work.DayRecord) error
	Get(ctx context.Context, id string) (*work.DayRecord, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	InRange(ctx context.Context, rng work.Range) ([]work.DayRecord, error)
	All(ctx context.Context) ([]work.DayRecord, error)
	OnDate(ctx context.Context, day time.Time) ([]work.DayRecord, error)
	Subscribe(fn func(storage.Change)) func()
}

// Defaults pre-fill new work days.
type Defaults struct {
	Start string // HH:MM
	End   string // HH:MM
	Break time.Duration
}

type Options struct {
	Schedule           work.Schedule
	AnnualVacationDays int
	Defaults           Defaults
	Logger             zerolog.Logger
	CacheSize          int
}

type Tracker struct {
	store          Store
	schedule       work.Schedule
	annualVacation int
	defaults       Defaults
	log            zerolog.Logger

	reports     *lru.Cache[reportKey, *Report]
	unsubscribe func()
}

type reportKey struct {
	period work.Period
	start  int64
}

func New(store Store, opts Options) (*Tracker, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = 64
	}
	cache, err := lru.New[reportKey, *Report](size)
	if err != nil {
		return nil, fmt.Errorf("creating report cache: %w", err)
	}
	if opts.Defaults.Start == "" {
		opts.Defaults.Start = "08:00"
	}
	if opts.Defaults.End == "" {
		opts.Defaults.End = "17:00"
	}

	t := &Tracker{
		store:          store,
		schedule:       opts.Schedule,
		annualVacation: opts.AnnualVacationDays,
		defaults:       opts.Defaults,
		log:            opts.Logger,
		reports:        cache,
	}
	t.unsubscribe = store.Subscribe(func(c storage.Change) {
		t.reports.Purge()
		t.log.Debug().Str("kind", string(c.Kind)).Str("id", c.ID).Msg("report cache purged")
	})
	return t, nil
}

// NewWithDefaults creates a tracker with the default schedule.
func NewWithDefaults(store Store) (*Tracker, error) {
	return New(store, Options{
		Schedule:           work.DefaultSchedule(),
		AnnualVacationDays: work.DefaultAnnualVacationDays,
		Defaults:           Defaults{Break: work.DefaultBreak},
		Logger:             zerolog.Nop(),
	})
}

// Close detaches the tracker from store notifications.
func (t *Tracker) Close() {
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
}

// Schedule returns the schedule calculations run against.
func (t *Tracker) Schedule() work.Schedule {
	return t.schedule
}

func (t *Tracker) AddDay(ctx context.Context, r *work.DayRecord) error {
	if err := t.store.Insert(ctx, r); err != nil {
		return err
	}
	t.log.Info().
		Str("id", r.ID).
		Str("date", r.Date.Format("2006-01-02")).
		Str("category", r.Category.String()).
		Int64("worked", work.WorkedSeconds(*r)).
		Msg("day added")
	return nil
}

func (t *Tracker) UpdateDay(ctx context.Context, r *work.DayRecord) error {
	if err := t.store.Update(ctx, r); err != nil {
		return err
	}
	t.log.Info().Str("id", r.ID).Msg("day updated")
	return nil
}

func (t *Tracker) DeleteDay(ctx context.Context, id string) error {
	if err := t.store.Delete(ctx, id); err != nil {
		return err
	}
	t.log.Info().Str("id", id).Msg("day deleted")
	return nil
}

// EraseAll deletes every record.
func (t *Tracker) EraseAll(ctx context.Context) (int64, error) {
	n, err := t.store.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	t.log.Warn().Int64("count", n).Msg("all data erased")
	return n, nil
}

// Get returns the record with the given id.
func (t *Tracker) Get(ctx context.Context, id string) (*work.DayRecord, error) {
	return t.store.Get(ctx, id)
}

// Day returns the first record stored for the calendar day of date.
func (t *Tracker) Day(ctx context.Context, date time.Time) (*work.DayRecord, error) {
	records, err := t.store.OnDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", date.Format("2006-01-02"), ErrNoRecord)
	}
	return &records[0], nil
}

// Records returns the records in rng, oldest first.
func (t *Tracker) Records(ctx context.Context, rng work.Range) ([]work.DayRecord, error) {
	return t.store.InRange(ctx, rng)
}

// All returns every record, newest first.
func (t *Tracker) All(ctx context.Context) ([]work.DayRecord, error) {
	return t.store.All(ctx)
}

// NewDraft builds a Work record for date, copying the clock times and break
// of lastUsed when it is a complete work day and falling back to the
// configured defaults otherwise.
func (t *Tracker) NewDraft(date time.Time, lastUsed *work.DayRecord) (work.DayRecord, error) {
	day := work.StartOfDay(date)
	draft := work.DayRecord{Date: day, Category: work.Work, Break: t.defaults.Break}

	if lastUsed != nil && lastUsed.Category == work.Work && lastUsed.HasTimes() {
		start := work.At(day, *lastUsed.Start)
		end := work.At(day, *lastUsed.End)
		draft.Start, draft.End, draft.Break = &start, &end, lastUsed.Break
		return draft, nil
	}

	start, err := work.ParseClock(day, t.defaults.Start)
	if err != nil {
		return draft, fmt.Errorf("default start: %w", err)
	}
	end, err := work.ParseClock(day, t.defaults.End)
	if err != nil {
		return draft, fmt.Errorf("default end: %w", err)
	}
	draft.Start, draft.End = &start, &end
	return draft, nil
}

// LastWorkDay returns the most recent complete work day, or nil.
func (t *Tracker) LastWorkDay(ctx context.Context) (*work.DayRecord, error) {
	records, err := t.store.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Category == work.Work && records[i].HasTimes() {
			return &records[i], nil
		}
	}
	return nil, nil
}

// DayLine is one record with its derived figures.
type DayLine struct {
	Record          work.DayRecord
	WorkedSeconds   int64
	StandardSeconds int64
	OvertimeSeconds int64
}

// Report is a computed period report. Reports are cached and shared, callers
// must not modify them.
type Report struct {
	Period  work.Period
	Range   work.Range
	Label   string
	Summary work.Summary
	Days    []DayLine
}

// Report computes the report for the period containing anchor.
func (t *Tracker) Report(ctx context.Context, period work.Period, anchor time.Time) (*Report, error) {
	rng := period.RangeOf(anchor)
	key := reportKey{period: period, start: rng.Start.Unix()}
	if r, ok := t.reports.Get(key); ok {
		return r, nil
	}

	records, err := t.store.InRange(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("loading %s records: %w", period, err)
	}

	report := &Report{
		Period:  period,
		Range:   rng,
		Label:   period.Label(anchor),
		Summary: work.Summarize(records, t.schedule),
		Days:    make([]DayLine, 0, len(records)),
	}
	for _, r := range records {
		report.Days = append(report.Days, DayLine{
			Record:          r,
			WorkedSeconds:   work.WorkedSeconds(r),
			StandardSeconds: work.StandardSeconds(r, t.schedule),
			OvertimeSeconds: work.NetOvertimeSeconds(r, t.schedule),
		})
	}

	t.reports.Add(key, report)
	t.log.Debug().Str("period", string(period)).Str("label", report.Label).Int("records", len(records)).Msg("report computed")
	return report, nil
}

// Card is one figure pair on the home screen.
type Card struct {
	Title    string
	Worked   int64
	Overtime int64
}

type Home struct {
	Year              Card
	Month             Card
	Week              Card
	VacationTaken     int
	VacationAllowance int
	VacationRemaining int
}

// Home returns the dashboard figures for the year, month and week of now.
func (t *Tracker) Home(ctx context.Context, now time.Time) (*Home, error) {
	year, err := t.Report(ctx, work.Year, now)
	if err != nil {
		return nil, err
	}
	month, err := t.Report(ctx, work.Month, now)
	if err != nil {
		return nil, err
	}
	week, err := t.Report(ctx, work.Week, now)
	if err != nil {
		return nil, err
	}

	card := func(title string, r *Report) Card {
		return Card{Title: title, Worked: r.Summary.WorkedSeconds, Overtime: r.Summary.OvertimeSeconds}
	}
	return &Home{
		Year:              card("This year", year),
		Month:             card("This month", month),
		Week:              card("This week", week),
		VacationTaken:     year.Summary.VacationDays,
		VacationAllowance: t.annualVacation,
		VacationRemaining: t.annualVacation - year.Summary.VacationDays,
	}, nil
}

type DayProgress struct {
	Date            time.Time
	Records         []work.DayRecord
	WorkedSeconds   int64
	StandardSeconds int64
	OvertimeSeconds int64
}

// Today returns the records and figures for the calendar day of now.
func (t *Tracker) Today(ctx context.Context, now time.Time) (*DayProgress, error) {
	records, err := t.store.OnDate(ctx, now)
	if err != nil {
		return nil, err
	}
	p := &DayProgress{Date: work.StartOfDay(now), Records: records}
	for _, r := range records {
		p.WorkedSeconds += work.WorkedSeconds(r)
		p.StandardSeconds += work.StandardSeconds(r, t.schedule)
	}
	p.OvertimeSeconds = p.WorkedSeconds - p.StandardSeconds
	return p, nil
}

type WeekProgress struct {
	Range                work.Range
	WorkedSeconds        int64
	TargetSeconds        int64
	RemainingSeconds     int64
	RemainingDays        int
	RequiredDailySeconds int64
	DaysWorked           map[string]int64
}

// WeekProgress measures the ISO week of now against the weekly hours.
func (t *Tracker) WeekProgress(ctx context.Context, now time.Time) (*WeekProgress, error) {
	report, err := t.Report(ctx, work.Week, now)
	if err != nil {
		return nil, err
	}

	p := &WeekProgress{
		Range:         report.Range,
		WorkedSeconds: report.Summary.WorkedSeconds,
		TargetSeconds: int64(math.Round(t.schedule.WeeklyHours * 3600)),
		RemainingDays: t.schedule.RemainingWorkingDays(now),
		DaysWorked:    make(map[string]int64),
	}
	for _, d := range report.Days {
		if d.Record.Category == work.Work {
			p.DaysWorked[d.Record.Date.Format("2006-01-02")] += d.WorkedSeconds
		}
	}
	p.RemainingSeconds = p.TargetSeconds - p.WorkedSeconds
	p.RequiredDailySeconds = t.schedule.RequiredDailySeconds(p.WorkedSeconds, p.RemainingDays)
	return p, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/timeflow/internal/work"
)

const (
	dateLayout  = "2006-01-02"
	stampLayout = time.RFC3339Nano
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidRecord is returned when a record fails validation.
	ErrInvalidRecord = errors.New("invalid record")
)

// ChangeKind names the mutation that triggered a notification.
type ChangeKind string

const (
	Inserted ChangeKind = "inserted"
	Updated  ChangeKind = "updated"
	Deleted  ChangeKind = "deleted"
	Cleared  ChangeKind = "cleared"
)

// Change is delivered to subscribers after a successful mutation. ID is
// empty for bulk deletes.
type Change struct {
	Kind ChangeKind
	ID   string
}

type Database struct {
	db   *sql.DB
	loc  *time.Location
	log  zerolog.Logger
	now  func() time.Time
	path string

	mu      sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// Option configures a Database.
type Option func(*Database)

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Database) { d.log = l }
}

// WithLocation sets the zone record dates are read back in.
func WithLocation(loc *time.Location) Option {
	return func(d *Database) {
		if loc != nil {
			d.loc = loc
		}
	}
}

// WithClock overrides the source of created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Database) { d.now = now }
}

func New(path string, opts ...Option) (*Database, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	database := &Database{
		db:   db,
		loc:  time.Local,
		log:  zerolog.Nop(),
		now:  time.Now,
		path: path,
		subs: make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(database)
	}
	if err := database.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return database, nil
}

func (d *Database) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS day_records (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			start_time TEXT,
			end_time TEXT,
			break_seconds INTEGER NOT NULL DEFAULT 0,
			note TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_day_records_date ON day_records(date)`,
	}

	for _, query := range queries {
		if _, err := d.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Path returns the file the database was opened from.
func (d *Database) Path() string {
	return d.path
}

// Subscribe registers fn to run after every successful mutation. The
// returned func removes the subscription.
func (d *Database) Subscribe(fn func(Change)) (unsubscribe func()) {
	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

func (d *Database) notify(c Change) {
	d.mu.Lock()
	fns := make([]func(Change), 0, len(d.subs))
	for _, fn := range d.subs {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// ValidateRecord normalizes r in place and rejects records that cannot be
// stored. Non-Work records lose their times and break.
func ValidateRecord(r *work.DayRecord) error {
	if !r.Category.Valid() {
		return fmt.Errorf("%w: unknown category %d", ErrInvalidRecord, int(r.Category))
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidRecord)
	}
	r.Date = work.StartOfDay(r.Date)

	if r.Category != work.Work {
		r.Start = nil
		r.End = nil
		r.Break = 0
		return nil
	}

	if !r.HasTimes() {
		return fmt.Errorf("%w: work days need a start and an end time", ErrInvalidRecord)
	}
	if !r.Start.Before(*r.End) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidRecord,
			r.Start.Format("15:04"), r.End.Format("15:04"))
	}
	if r.Break < 0 {
		return fmt.Errorf("%w: break cannot be negative", ErrInvalidRecord)
	}
	return nil
}

// Insert validates and stores r. An empty ID is replaced by a new UUID.
func (d *Database) Insert(ctx context.Context, r *work.DayRecord) error {
	if err := ValidateRecord(r); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	now := d.now()
	r.CreatedAt = now
	r.UpdatedAt = now

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO day_records (id, date, start_time, end_time, break_seconds, note, category, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.Date.Format(dateLayout),
		formatStamp(r.Start),
		formatStamp(r.End),
		int64(r.Break/time.Second),
		r.Note,
		r.Category.String(),
		now.Format(stampLayout),
		now.Format(stampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}

	d.log.Debug().Str("id", r.ID).Str("date", r.Date.Format(dateLayout)).Str("category", r.Category.String()).Msg("record inserted")
	d.notify(Change{Kind: Inserted, ID: r.ID})
	return nil
}

// Update overwrites the stored record with r's ID.
func (d *Database) Update(ctx context.Context, r *work.DayRecord) error {
	if err := ValidateRecord(r); err != nil {
		return err
	}
	r.UpdatedAt = d.now()

	result, err := d.db.ExecContext(ctx,
		`UPDATE day_records SET date = ?, start_time = ?, end_time = ?, break_seconds = ?, note = ?, category = ?, updated_at = ?
		 WHERE id = ?`,
		r.Date.Format(dateLayout),
		formatStamp(r.Start),
		formatStamp(r.End),
		int64(r.Break/time.Second),
		r.Note,
		r.Category.String(),
		r.UpdatedAt.Format(stampLayout),
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("updating record %s: %w", r.ID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("updating record %s: %w", r.ID, ErrNotFound)
	}

	d.log.Debug().Str("id", r.ID).Msg("record updated")
	d.notify(Change{Kind: Updated, ID: r.ID})
	return nil
}

func (d *Database) Get(ctx context.Context, id string) (*work.DayRecord, error) {
	row := d.db.QueryRowContext(ctx, selectRecord+` WHERE id = ?`, id)
	r, err := d.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}
	return r, nil
}

func (d *Database) Delete(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM day_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting record %s: %w", id, ErrNotFound)
	}

	d.log.Debug().Str("id", id).Msg("record deleted")
	d.notify(Change{Kind: Deleted, ID: id})
	return nil
}

// DeleteAll removes every record and returns how many were removed.
func (d *Database) DeleteAll(ctx context.Context) (int64, error) {
	result, err := d.db.ExecContext(ctx, `DELETE FROM day_records`)
	if err != nil {
		return 0, fmt.Errorf("erasing records: %w", err)
	}
	n, _ := result.RowsAffected()

	d.log.Info().Int64("count", n).Msg("all records erased")
	d.notify(Change{Kind: Cleared})
	return n, nil
}

// DeleteInRange removes the records whose date falls in rng.
func (d *Database) DeleteInRange(ctx context.Context, rng work.Range) (int64, error) {
	records, err := d.InRange(ctx, rng)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		if _, err := tx.ExecContext(ctx, `DELETE FROM day_records WHERE id = ?`, r.ID); err != nil {
			return 0, fmt.Errorf("deleting record %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing delete: %w", err)
	}

	n := int64(len(records))
	d.log.Info().Int64("count", n).Time("from", rng.Start).Time("to", rng.End).Msg("records pruned")
	d.notify(Change{Kind: Cleared})
	return n, nil
}

// InRange returns the records whose date falls in rng, oldest first.
func (d *Database) InRange(ctx context.Context, rng work.Range) ([]work.DayRecord, error) {
	// The SQL bounds are inclusive by calendar day; Contains applies the
	// exact half-open bounds.
	records, err := d.query(ctx,
		selectRecord+` WHERE date >= ? AND date <= ? ORDER BY date ASC, created_at ASC`,
		rng.Start.In(d.loc).Format(dateLayout),
		rng.End.In(d.loc).Format(dateLayout),
	)
	if err != nil {
		return nil, err
	}

	filtered := records[:0]
	for _, r := range records {
		if rng.Contains(r.Date) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// All returns every record, newest first.
func (d *Database) All(ctx context.Context) ([]work.DayRecord, error) {
	return d.query(ctx, selectRecord+` ORDER BY date DESC, created_at DESC`)
}

// OnDate returns the records stored for the calendar day of day.
func (d *Database) OnDate(ctx context.Context, day time.Time) ([]work.DayRecord, error) {
	return d.query(ctx, selectRecord+` WHERE date = ? ORDER BY created_at ASC`, day.In(d.loc).Format(dateLayout))
}

// OldestDate returns the earliest record date. ok is false on an empty store.
func (d *Database) OldestDate(ctx context.Context) (oldest time.Time, ok bool, err error) {
	var date sql.NullString
	if err := d.db.QueryRowContext(ctx, `SELECT MIN(date) FROM day_records`).Scan(&date); err != nil {
		return time.Time{}, false, fmt.Errorf("reading oldest date: %w", err)
	}
	if !date.Valid {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(dateLayout, date.String, d.loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing date %q: %w", date.String, err)
	}
	return t, true, nil
}

// Count returns the number of stored records.
func (d *Database) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM day_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

const selectRecord = `SELECT id, date, start_time, end_time, break_seconds, note, category, created_at, updated_at FROM day_records`

type scanner interface {
	Scan(dest ...any) error
}

func (d *Database) query(ctx context.Context, query string, args ...any) ([]work.DayRecord, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []work.DayRecord
	for rows.Next() {
		r, err := d.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

func (d *Database) scan(s scanner) (*work.DayRecord, error) {
	var (
		r                  work.DayRecord
		date, category     string
		created, updated   string
		startTime, endTime sql.NullString
		breakSeconds       int64
	)
	if err := s.Scan(&r.ID, &date, &startTime, &endTime, &breakSeconds, &r.Note, &category, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if r.Date, err = time.ParseInLocation(dateLayout, date, d.loc); err != nil {
		return nil, fmt.Errorf("record %s: parsing date %q: %w", r.ID, date, err)
	}
	if r.Category, err = work.ParseCategory(category); err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	if r.Start, err = d.parseStamp(startTime); err != nil {
		return nil, fmt.Errorf("record %s: start: %w", r.ID, err)
	}
	if r.End, err = d.parseStamp(endTime); err != nil {
		return nil, fmt.Errorf("record %s: end: %w", r.ID, err)
	}
	r.Break = time.Duration(breakSeconds) * time.Second
	r.CreatedAt, _ = time.Parse(stampLayout, created)
	r.UpdatedAt, _ = time.Parse(stampLayout, updated)
	return &r, nil
}

func (d *Database) parseStamp(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(stampLayout, s.String)
	if err != nil {
		return nil, err
	}
	t = t.In(d.loc)
	return &t, nil
}

func formatStamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(stampLayout)
}

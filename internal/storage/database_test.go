package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeflow/internal/work"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"), WithLocation(time.UTC))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func workDay(day time.Time, start, end string, brk time.Duration) *work.DayRecord {
	s, _ := work.ParseClock(day, start)
	e, _ := work.ParseClock(day, end)
	return &work.DayRecord{Date: day, Start: &s, End: &e, Break: brk, Category: work.Work}
}

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInsertAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	r := workDay(utcDay(2024, 3, 4), "08:00", "17:00", time.Hour)
	r.Note = "planning"
	require.NoError(t, db.Insert(ctx, r))
	require.NotEmpty(t, r.ID)

	got, err := db.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.True(t, got.Date.Equal(utcDay(2024, 3, 4)))
	require.True(t, got.HasTimes())
	assert.True(t, got.Start.Equal(*r.Start))
	assert.True(t, got.End.Equal(*r.End))
	assert.Equal(t, time.Hour, got.Break)
	assert.Equal(t, "planning", got.Note)
	assert.Equal(t, work.Work, got.Category)
	assert.Equal(t, int64(8*3600), work.WorkedSeconds(*got))
}

func TestGetMissing(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInsertNonWorkClearsTimes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	r := workDay(utcDay(2024, 3, 5), "08:00", "17:00", time.Hour)
	r.Category = work.Vacation
	require.NoError(t, db.Insert(ctx, r))

	got, err := db.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Start)
	assert.Nil(t, got.End)
	assert.Zero(t, got.Break)
	assert.Equal(t, work.Vacation, got.Category)
}

func TestValidateRecord(t *testing.T) {
	day := utcDay(2024, 3, 4)

	tests := []struct {
		name    string
		record  *work.DayRecord
		wantErr bool
	}{
		{"valid work day", workDay(day, "08:00", "17:00", time.Hour), false},
		{"end before start", workDay(day, "17:00", "08:00", 0), true},
		{"equal times", workDay(day, "08:00", "08:00", 0), true},
		{"negative break", workDay(day, "08:00", "17:00", -time.Minute), true},
		{"missing times", &work.DayRecord{Date: day, Category: work.Work}, true},
		{"holiday without times", &work.DayRecord{Date: day, Category: work.Holiday}, false},
		{"no date", &work.DayRecord{Category: work.Holiday}, true},
		{"unknown category", &work.DayRecord{Date: day, Category: work.Category(42)}, true},
		{"break longer than day is allowed", workDay(day, "08:00", "09:00", 2*time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.record)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidRecord), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	r := workDay(utcDay(2024, 3, 4), "08:00", "17:00", time.Hour)
	require.NoError(t, db.Insert(ctx, r))

	end := r.End.Add(30 * time.Minute)
	r.End = &end
	r.Note = "late meeting"
	require.NoError(t, db.Update(ctx, r))

	got, err := db.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "late meeting", got.Note)
	assert.Equal(t, int64(8*3600+1800), work.WorkedSeconds(*got))

	missing := workDay(utcDay(2024, 3, 4), "08:00", "17:00", 0)
	missing.ID = "does-not-exist"
	assert.True(t, errors.Is(db.Update(ctx, missing), ErrNotFound))
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	r := &work.DayRecord{Date: utcDay(2024, 3, 4), Category: work.SickLeave}
	require.NoError(t, db.Insert(ctx, r))
	require.NoError(t, db.Delete(ctx, r.ID))

	_, err := db.Get(ctx, r.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(db.Delete(ctx, r.ID), ErrNotFound))
}

func TestRangesAndOrdering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, d := range []int{3, 4, 10, 11} {
		require.NoError(t, db.Insert(ctx, workDay(utcDay(2024, 3, d), "09:00", "17:00", 0)))
	}

	week := work.Range{Start: utcDay(2024, 3, 4), End: utcDay(2024, 3, 11)}
	records, err := db.InRange(ctx, week)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 4, records[0].Date.Day())
	assert.Equal(t, 10, records[1].Date.Day())

	all, err := db.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, 11, all[0].Date.Day())
	assert.Equal(t, 3, all[3].Date.Day())

	onDate, err := db.OnDate(ctx, time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, onDate, 1)

	oldest, ok, err := db.OldestDate(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, oldest.Equal(utcDay(2024, 3, 3)))

	n, err := db.DeleteInRange(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestOldestDateEmpty(t *testing.T) {
	db := newTestDB(t)
	_, ok, err := db.OldestDate(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteAll(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Insert(ctx, &work.DayRecord{Date: utcDay(2024, 1, 1), Category: work.Holiday}))
	require.NoError(t, db.Insert(ctx, &work.DayRecord{Date: utcDay(2024, 1, 2), Category: work.Vacation}))

	n, err := db.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := db.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubscribe(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var changes []Change
	unsubscribe := db.Subscribe(func(c Change) { changes = append(changes, c) })

	r := &work.DayRecord{Date: utcDay(2024, 1, 1), Category: work.Holiday}
	require.NoError(t, db.Insert(ctx, r))
	require.NoError(t, db.Update(ctx, r))
	require.NoError(t, db.Delete(ctx, r.ID))
	_, err := db.DeleteAll(ctx)
	require.NoError(t, err)

	// Failed mutations do not notify.
	assert.Error(t, db.Delete(ctx, r.ID))

	require.Len(t, changes, 4)
	assert.Equal(t, Change{Kind: Inserted, ID: r.ID}, changes[0])
	assert.Equal(t, Change{Kind: Updated, ID: r.ID}, changes[1])
	assert.Equal(t, Change{Kind: Deleted, ID: r.ID}, changes[2])
	assert.Equal(t, Cleared, changes[3].Kind)

	unsubscribe()
	require.NoError(t, db.Insert(ctx, &work.DayRecord{Date: utcDay(2024, 1, 3), Category: work.Holiday}))
	assert.Len(t, changes, 4)
}

func TestTimestamps(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	db, err := New(filepath.Join(t.TempDir(), "clock.db"), WithLocation(time.UTC), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	r := &work.DayRecord{Date: utcDay(2024, 4, 30), Category: work.Compensatory}
	require.NoError(t, db.Insert(ctx, r))

	got, err := db.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(now))
	assert.True(t, got.UpdatedAt.Equal(now))
}

package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeflow/internal/storage"
	"github.com/timeflow/internal/work"
)

func setup(t *testing.T, now time.Time) (*Archiver, *storage.Database, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "archive.db"), storage.WithLocation(time.UTC))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	history := filepath.Join(dir, "history")
	a := New(db, history, work.DefaultSchedule(),
		WithLocation(time.UTC),
		WithClock(func() time.Time { return now }))
	return a, db, history
}

func insertWork(t *testing.T, db *storage.Database, date time.Time, start, end string, brk time.Duration, note string) {
	t.Helper()
	s, err := work.ParseClock(date, start)
	require.NoError(t, err)
	e, err := work.ParseClock(date, end)
	require.NoError(t, err)
	r := &work.DayRecord{Date: date, Start: &s, End: &e, Break: brk, Note: note, Category: work.Work}
	require.NoError(t, db.Insert(context.Background(), r))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestArchiveMonth(t *testing.T) {
	a, db, history := setup(t, date(2025, 3, 10))
	ctx := context.Background()

	insertWork(t, db, date(2025, 1, 6), "08:00", "17:00", time.Hour, "kickoff | planning")
	insertWork(t, db, date(2025, 1, 7), "08:00", "18:00", time.Hour, "")
	require.NoError(t, db.Insert(ctx, &work.DayRecord{Date: date(2025, 1, 8), Category: work.Vacation}))

	path, err := a.ArchiveMonth(ctx, 2025, time.January, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(history, "2025-01.md"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(content)

	assert.Contains(t, md, "# January 2025")
	assert.Contains(t, md, "| Worked | 17h00 |")
	// 8h + 9h against two days of 8h12.
	assert.Contains(t, md, "| Overtime | +0h36 |")
	assert.Contains(t, md, "| Days Worked | 2 |")
	assert.Contains(t, md, "| Vacation Days | 1 |")
	assert.Contains(t, md, "| W02 | 17h00 | +0h36 |")
	assert.Contains(t, md, "| 2025-01-06 | Work | 08:00 | 17:00 | 60m | 8h00 | -0h12 | kickoff / planning |")
	assert.Contains(t, md, "| 2025-01-08 | Vacation |  |  |  | 0h00 | 0h00 |  |")
	assert.Contains(t, md, "*Archived: 2025-03-10 00:00*")

	// Without clean the records stay.
	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestArchiveMonthClean(t *testing.T) {
	a, db, _ := setup(t, date(2025, 3, 10))
	ctx := context.Background()

	insertWork(t, db, date(2025, 1, 6), "08:00", "17:00", time.Hour, "")
	insertWork(t, db, date(2025, 2, 3), "08:00", "17:00", time.Hour, "")

	_, err := a.ArchiveMonth(ctx, 2025, time.January, true)
	require.NoError(t, err)

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestArchiveMonthEmpty(t *testing.T) {
	a, _, _ := setup(t, date(2025, 3, 10))
	_, err := a.ArchiveMonth(context.Background(), 2024, time.June, false)
	assert.True(t, errors.Is(err, ErrNoRecords))
}

func TestAutoArchivePastMonths(t *testing.T) {
	a, db, _ := setup(t, date(2025, 3, 10))
	ctx := context.Background()

	archived, err := a.AutoArchivePastMonths(ctx)
	require.NoError(t, err)
	assert.Empty(t, archived)

	insertWork(t, db, date(2024, 12, 30), "08:00", "17:00", time.Hour, "")
	insertWork(t, db, date(2025, 2, 3), "08:00", "17:00", time.Hour, "")
	insertWork(t, db, date(2025, 3, 3), "08:00", "17:00", time.Hour, "")

	archived, err = a.AutoArchivePastMonths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-12.md", "2025-02.md"}, archived)

	// Only the current month is left in the store.
	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err := a.ListArchives()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-12.md", "2025-02.md"}, list)

	archived, err = a.AutoArchivePastMonths(ctx)
	require.NoError(t, err)
	assert.Empty(t, archived)
}

func TestReadArchiveAndHistory(t *testing.T) {
	a, db, _ := setup(t, date(2025, 3, 10))
	ctx := context.Background()

	list, err := a.ListArchives()
	require.NoError(t, err)
	assert.Empty(t, list)

	history, err := a.HistorySummary(3)
	require.NoError(t, err)
	assert.Empty(t, history)

	insertWork(t, db, date(2025, 1, 6), "08:00", "17:00", time.Hour, "")
	insertWork(t, db, date(2025, 2, 3), "09:00", "17:00", 0, "")
	_, err = a.AutoArchivePastMonths(ctx)
	require.NoError(t, err)

	content, err := a.ReadArchive(2025, time.February)
	require.NoError(t, err)
	assert.Contains(t, content, "# February 2025")

	_, err = a.ReadArchive(2020, time.May)
	assert.Error(t, err)

	history, err = a.HistorySummary(1)
	require.NoError(t, err)
	assert.Contains(t, history, "February 2025:")
	assert.NotContains(t, history, "January 2025:")
	assert.Contains(t, history, "| Worked | 8h00 |")
	assert.NotContains(t, history, "| Metric")
}

func TestArchiveMonthTruncatesNotesByRune(t *testing.T) {
	a, db, _ := setup(t, date(2025, 3, 10))
	ctx := context.Background()

	note := strings.Repeat("é", 20) + " congés à Noël"
	require.NoError(t, db.Insert(ctx, &work.DayRecord{Date: date(2025, 1, 8), Category: work.Vacation, Note: note}))

	path, err := a.ArchiveMonth(ctx, 2025, time.January, false)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, utf8.Valid(content))
	assert.Contains(t, string(content), "| "+string([]rune(note)[:27])+"... |")
}

func TestArchiveMonthWeeksAcrossYearEnd(t *testing.T) {
	a, db, _ := setup(t, date(2026, 2, 1))
	ctx := context.Background()

	// December 29th 2025 belongs to 2026-W01.
	insertWork(t, db, date(2025, 12, 29), "08:00", "17:00", time.Hour, "")
	insertWork(t, db, date(2025, 12, 1), "08:00", "17:00", time.Hour, "")

	path, err := a.ArchiveMonth(ctx, 2025, time.December, false)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(content)
	w49 := strings.Index(md, "| W49 |")
	w01 := strings.Index(md, "| W01 |")
	require.NotEqual(t, -1, w49)
	require.NotEqual(t, -1, w01)
	assert.Less(t, w49, w01)
}

func TestHistorySummaryNonPositiveMonths(t *testing.T) {
	a, db, _ := setup(t, date(2025, 3, 10))
	ctx := context.Background()

	insertWork(t, db, date(2025, 1, 6), "08:00", "17:00", time.Hour, "")
	insertWork(t, db, date(2025, 2, 3), "08:00", "17:00", time.Hour, "")
	_, err := a.AutoArchivePastMonths(ctx)
	require.NoError(t, err)

	for _, n := range []int{0, -1, -5} {
		history, err := a.HistorySummary(n)
		require.NoError(t, err)
		assert.Contains(t, history, "January 2025:")
		assert.Contains(t, history, "February 2025:")
	}
}

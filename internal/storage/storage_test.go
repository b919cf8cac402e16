package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/LJTian/MediaBias/internal/analysis"
	"github.com/LJTian/MediaBias/internal/processor"
)

var reportColumns = []string{"id", "model", "outcome", "sites", "summaries", "report", "started_at", "finished_at", "created_at"}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func sampleResult() *analysis.Result {
	started := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	return &analysis.Result{
		ID:         "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Model:      "gemma3:4b",
		Sites:      []string{"https://apnews.com"},
		Summaries: []processor.SummarySet{{
			URL:     "https://apnews.com",
			Stories: []processor.StoryRecord{{Title: "Budget", Description: "Talks stall", MediaOutlet: "AP"}},
		}},
		Report:  "Mostly neutral.",
		Outcome: analysis.OutcomeReport,
	}
}

func TestSaveReportWritesDBAndCache(t *testing.T) {
	db, mock := newMockDB(t)
	rdb, mr := newRedis(t)
	s := New(db, rdb, nil)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "reports"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SaveReport(context.Background(), sampleResult()))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.True(t, mr.Exists(latestKey))
	assert.InDelta(t, latestTTL.Seconds(), mr.TTL(latestKey).Seconds(), 1)

	// 最近报告直接命中缓存，不再查库
	got, err := s.LatestReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, "Mostly neutral.", got.Report)
	require.Len(t, got.Summaries, 1)
	assert.Equal(t, "Budget", got.Summaries[0].Stories[0].Title)
	assert.True(t, got.StartedAt.Equal(sampleResult().StartedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReportSanitizesInvalidUTF8(t *testing.T) {
	rdb, _ := newRedis(t)
	s := New(nil, rdb, nil)

	r := sampleResult()
	r.Report = "bad \xff byte"
	require.NoError(t, s.SaveReport(context.Background(), r))

	got, err := s.LatestReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bad \uFFFD byte", got.Report)
}

func TestLatestReportFallsBackToDB(t *testing.T) {
	db, mock := newMockDB(t)
	rdb, _ := newRedis(t)
	s := New(db, rdb, nil)

	started := time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reports" ORDER BY started_at DESC`)).
		WillReturnRows(sqlmock.NewRows(reportColumns).AddRow(
			"run-2", "gemma3:4b", analysis.OutcomeFallback, []byte(`["https://a.example"]`), []byte(`[]`),
			analysis.NoSummariesMessage, started, started.Add(time.Minute), started.Add(time.Minute),
		))

	got, err := s.LatestReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-2", got.ID)
	assert.Equal(t, []string{"https://a.example"}, got.Sites)
	assert.Empty(t, got.Summaries)
	assert.Equal(t, analysis.NoSummariesMessage, got.Report)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestReportNone(t *testing.T) {
	db, mock := newMockDB(t)
	s := New(db, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reports"`)).
		WillReturnRows(sqlmock.NewRows(reportColumns))

	_, err := s.LatestReport(context.Background())
	assert.ErrorIs(t, err, analysis.ErrNoReport)

	_, err = New(nil, nil, nil).LatestReport(context.Background())
	assert.ErrorIs(t, err, analysis.ErrNoReport)
}

func TestListReportsCachesShortly(t *testing.T) {
	db, mock := newMockDB(t)
	rdb, mr := newRedis(t)
	s := New(db, rdb, nil)

	started := time.Date(2026, 10, 3, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reports" ORDER BY started_at DESC`)).
		WillReturnRows(sqlmock.NewRows(reportColumns).
			AddRow("run-4", "m", analysis.OutcomeReport, []byte(`[]`), []byte(`[]`), "r4", started.Add(time.Hour), started, started).
			AddRow("run-3", "m", analysis.OutcomeReport, []byte(`[]`), []byte(`[]`), "r3", started, started, started))

	list, err := s.ListReports(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "run-4", list[0].ID)
	assert.Equal(t, "run-3", list[1].ID)

	key := "mediabias:report:history:20"
	assert.True(t, mr.Exists(key))
	assert.InDelta(t, historyTTL.Seconds(), mr.TTL(key).Seconds(), 1)

	// 第二次读取走缓存，sqlmock 中没有更多预期
	list, err = s.ListReports(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListReportsWithoutDB(t *testing.T) {
	rdb, _ := newRedis(t)
	s := New(nil, rdb, nil)

	list, err := s.ListReports(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, s.SaveReport(context.Background(), sampleResult()))
	list, err = s.ListReports(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "run-1", list[0].ID)
}

func TestOpenWithoutBackends(t *testing.T) {
	s, err := Open("", "", nil)
	require.NoError(t, err)
	assert.Nil(t, s)
}

package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/MediaBias/internal/metrics"
	"github.com/LJTian/MediaBias/internal/processor"
)

type memStore struct {
	saved   []Result
	saveErr error
}

func (s *memStore) SaveReport(_ context.Context, r *Result) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, *r)
	return nil
}

func (s *memStore) LatestReport(_ context.Context) (*Result, error) {
	if len(s.saved) == 0 {
		return nil, ErrNoReport
	}
	r := s.saved[len(s.saved)-1]
	return &r, nil
}

func (s *memStore) ListReports(_ context.Context, limit int) ([]Result, error) {
	out := []Result{}
	for i := len(s.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.saved[i])
	}
	return out, nil
}

// blockingSummarizer 在 release 关闭前一直阻塞，用来制造并发运行
type blockingSummarizer struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSummarizer) Summarize(_ context.Context, url string) processor.SummarySet {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.release
	return processor.SummarySet{URL: url}
}

func TestRunnerRejectsConcurrentRun(t *testing.T) {
	bs := &blockingSummarizer{entered: make(chan struct{}, 1), release: make(chan struct{})}
	r := NewRunner(NewPipeline([]string{"https://a.example"}, "m", bs, &fakeComparator{}, nil), nil, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background())
		done <- err
	}()

	select {
	case <-bs.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first run did not start")
	}
	assert.True(t, r.Running())

	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(bs.release)
	require.NoError(t, <-done)
	assert.False(t, r.Running())
}

func TestRunnerLatestAndHistory(t *testing.T) {
	fs := &fakeSummarizer{}
	r := NewRunner(NewPipeline(threeSites, "m", fs, &fakeComparator{}, nil), nil, nil, nil)

	_, err := r.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNoReport)
	hist, err := r.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, hist)

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	latest, err := r.Latest(context.Background())
	require.NoError(t, err)
	assert.Same(t, res, latest)

	hist, err = r.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, res.ID, hist[0].ID)
}

func TestRunnerUsesStore(t *testing.T) {
	store := &memStore{}
	fc := &fakeComparator{out: "r"}
	fs := &fakeSummarizer{sets: map[string]processor.SummarySet{
		"https://a.example": {URL: "https://a.example", Stories: []processor.StoryRecord{{Title: "t"}}},
	}}
	r := NewRunner(NewPipeline(threeSites, "m", fs, fc, nil), store, nil, nil)

	first, err := r.Run(context.Background())
	require.NoError(t, err)
	second, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.saved, 2)
	hist, err := r.History(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, second.ID, hist[0].ID)
	assert.NotEqual(t, first.ID, second.ID)

	// 新进程还没有运行过时从存储读取
	fresh := NewRunner(NewPipeline(threeSites, "m", fs, fc, nil), store, nil, nil)
	latest, err := fresh.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestRunnerToleratesStoreError(t *testing.T) {
	store := &memStore{saveErr: errors.New("db down")}
	r := NewRunner(NewPipeline(threeSites, "m", &fakeSummarizer{}, &fakeComparator{}, nil), store, nil, nil)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NoSummariesMessage, res.Report)

	latest, err := r.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.ID, latest.ID)
}

func TestRunnerRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	r := NewRunner(NewPipeline(threeSites, "m", &fakeSummarizer{}, &fakeComparator{}, nil), nil, m, nil)

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(OutcomeFallback)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RunInProgress))
}

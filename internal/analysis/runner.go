package analysis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/LJTian/MediaBias/internal/metrics"
)

var (
	ErrBusy     = errors.New("analysis already running")
	ErrNoReport = errors.New("no analysis report yet")
)

// ReportStore 保存历史报告，未配置数据库或 Redis 时为 nil
type ReportStore interface {
	SaveReport(ctx context.Context, r *Result) error
	LatestReport(ctx context.Context) (*Result, error)
	ListReports(ctx context.Context, limit int) ([]Result, error)
}

// Runner 保证同一时刻只有一次运行，并记住最近一次结果供页面展示
type Runner struct {
	pipeline *Pipeline
	store    ReportStore
	metrics  *metrics.Metrics
	logger   *zap.Logger

	running atomic.Bool

	mu     sync.RWMutex
	latest *Result
}

func NewRunner(p *Pipeline, store ReportStore, m *metrics.Metrics, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{pipeline: p, store: store, metrics: m, logger: logger}
}

// Run 在已有运行未结束时立即返回 ErrBusy
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer r.running.Store(false)

	started := time.Now()
	r.metrics.RunStarted()
	res := r.pipeline.Run(ctx)
	r.metrics.RunFinished(res.Outcome, started)

	r.mu.Lock()
	r.latest = res
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.SaveReport(ctx, res); err != nil {
			r.logger.Warn("save report failed", zap.String("run_id", res.ID), zap.Error(err))
		}
	}
	return res, nil
}

func (r *Runner) Running() bool {
	return r.running.Load()
}

// Latest 优先返回本进程内的最近结果，其次查存储
func (r *Runner) Latest(ctx context.Context) (*Result, error) {
	r.mu.RLock()
	latest := r.latest
	r.mu.RUnlock()
	if latest != nil {
		return latest, nil
	}
	if r.store == nil {
		return nil, ErrNoReport
	}
	return r.store.LatestReport(ctx)
}

func (r *Runner) History(ctx context.Context, limit int) ([]Result, error) {
	if r.store != nil {
		return r.store.ListReports(ctx, limit)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return []Result{}, nil
	}
	return []Result{*r.latest}, nil
}

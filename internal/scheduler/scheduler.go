package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/LJTian/MediaBias/internal/analysis"
)

// Job 由 *analysis.Runner 实现
type Job interface {
	Run(ctx context.Context) (*analysis.Result, error)
}

// Scheduler 按 cron 表达式周期性触发一次完整分析
type Scheduler struct {
	cron    *cron.Cron
	job     Job
	logger  *zap.Logger
	timeout time.Duration
}

// New 中 timeout 为单次运行的上限，0 表示不限制
func New(spec string, job Job, timeout time.Duration, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := cron.New()

	s := &Scheduler{
		cron:    c,
		job:     job,
		logger:  logger,
		timeout: timeout,
	}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce 对外暴露的单次执行入口
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Info("scheduled analysis triggered")
	res, err := s.job.Run(ctx)
	if errors.Is(err, analysis.ErrBusy) {
		// 手动触发的运行还没结束，本轮跳过
		s.logger.Info("analysis already running, skip this tick")
		return
	}
	if err != nil {
		s.logger.Error("scheduled analysis failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled analysis done", zap.String("run_id", res.ID), zap.String("outcome", res.Outcome))
}

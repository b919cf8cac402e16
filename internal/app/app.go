// Package app 按配置组装完整的分析流水线，供 cmd/api 与 cmd/analyze 共用
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/LJTian/MediaBias/internal/analysis"
	"github.com/LJTian/MediaBias/internal/config"
	"github.com/LJTian/MediaBias/internal/extractor"
	"github.com/LJTian/MediaBias/internal/llm"
	"github.com/LJTian/MediaBias/internal/metrics"
	"github.com/LJTian/MediaBias/internal/storage"
	"github.com/LJTian/MediaBias/internal/summarizer"
)

type App struct {
	Model   llm.ChatModel
	Store   *storage.Store
	Metrics *metrics.Metrics
	Runner  *analysis.Runner
}

// Build 中 reg 为 nil 时不采集指标；store 未配置时 Store 为 nil
func Build(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, w := range cfg.Warnings {
		logger.Warn("config value ignored", zap.String("detail", w))
	}
	logger.Info("config loaded",
		zap.String("provider", cfg.LLMProvider),
		zap.String("model", cfg.Model),
		zap.Int("sites", len(cfg.Sites)))

	model, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.PullOnStart {
		llm.EnsureModel(ctx, model, cfg.Model, logger)
	}

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	store, err := storage.Open(cfg.PostgresDSN, cfg.RedisAddr, logger)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	// 避免把 nil 指针包成非 nil 接口
	var reports analysis.ReportStore
	if store != nil {
		reports = store
	}

	ex := extractor.FromConfig(cfg, logger.Named("extractor"))
	sum := summarizer.New(ex, model, cfg.Model, cfg.Temperature, logger.Named("summarizer"), m)
	cmp := analysis.NewComparator(model, cfg.Model, cfg.Temperature, m)
	pipeline := analysis.NewPipeline(cfg.Sites, cfg.Model, sum, cmp, logger.Named("pipeline"))

	return &App{
		Model:   model,
		Store:   store,
		Metrics: m,
		Runner:  analysis.NewRunner(pipeline, reports, m, logger),
	}, nil
}

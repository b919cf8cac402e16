package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/LJTian/MediaBias/internal/api"
	"github.com/LJTian/MediaBias/internal/app"
	"github.com/LJTian/MediaBias/internal/config"
	"github.com/LJTian/MediaBias/internal/logger"
	"github.com/LJTian/MediaBias/internal/scheduler"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.Build(context.Background(), cfg, reg, log)
	if err != nil {
		log.Fatal("init pipeline failed", zap.Error(err))
	}

	// 配置了 ANALYSIS_CRON 时定时分析，与页面按钮共用同一个 Runner
	if cfg.CronSpec != "" {
		s, err := scheduler.New(cfg.CronSpec, a.Runner, 0, log.Named("scheduler"))
		if err != nil {
			log.Fatal("init scheduler failed", zap.Error(err), zap.String("spec", cfg.CronSpec))
		}
		s.Start()
		defer s.Stop()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger(log.Named("http")))
	// 若配置了全局访问密码，则启用 Basic Auth 保护（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(api.BasicAuth(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	apiServer := api.NewServer(a.Runner, cfg.Sites, reg, log.Named("api"))
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Info("starting api server", zap.String("addr", addr), zap.Strings("sites", cfg.Sites), zap.String("model", cfg.Model))
	if err := r.Run(addr); err != nil {
		log.Fatal("server exit", zap.Error(err))
	}
}

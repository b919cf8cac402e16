package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LJTian/MediaBias/internal/api"
	"github.com/LJTian/MediaBias/internal/config"
	"github.com/LJTian/MediaBias/internal/extractor"
	"github.com/LJTian/MediaBias/internal/logger"
)

const (
	defaultWait = 5 * time.Second
	maxWait     = 30 * time.Second
)

func main() {
	log, err := logger.New(getEnv("LOG_LEVEL", "info"), getEnv("LOG_DEV", "") == "true")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	timeout := 60 * time.Second
	if v, err := time.ParseDuration(getEnv("RENDER_TIMEOUT", "")); err == nil && v > 0 {
		timeout = v
	}

	// 整个进程复用一个 headless 实例，每个请求开一个新标签页
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(),
		extractor.ChromeOptions(getEnv("USER_AGENT", config.DefaultUserAgent))...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// 预热浏览器，避免首个请求耗时过长
	if err := chromedp.Run(browserCtx); err != nil {
		log.Warn("warmup chromedp failed", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger(log))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/render", func(c *gin.Context) {
		var req extractor.RenderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, extractor.RenderResponse{OK: false, Error: "invalid json"})
			return
		}
		if req.URL == "" {
			c.JSON(http.StatusBadRequest, extractor.RenderResponse{OK: false, Error: "url is required"})
			return
		}
		wait := time.Duration(req.WaitMs) * time.Millisecond
		if wait <= 0 {
			wait = defaultWait
		}
		if wait > maxWait {
			wait = maxWait
		}

		tabCtx, cancelTab := chromedp.NewContext(browserCtx)
		defer cancelTab()
		ctx, cancel := context.WithTimeout(tabCtx, timeout)
		defer cancel()
		// 调用方断开时提前结束渲染
		stop := context.AfterFunc(c.Request.Context(), cancel)
		defer stop()

		var html string
		if err := chromedp.Run(ctx, extractor.RenderActions(req.URL, wait, &html)...); err != nil {
			log.Warn("render failed", zap.String("url", req.URL), zap.Error(err))
			c.JSON(http.StatusOK, extractor.RenderResponse{OK: false, Error: err.Error()})
			return
		}
		log.Info("rendered", zap.String("url", req.URL), zap.Int("bytes", len(html)))
		c.JSON(http.StatusOK, extractor.RenderResponse{OK: true, HTML: html})
	})

	addr := ":" + getEnv("PORT", "4000")
	log.Info("browser-scraper listening", zap.String("addr", addr), zap.Duration("timeout", timeout))
	if err := r.Run(addr); err != nil {
		log.Fatal("http server error", zap.Error(err))
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

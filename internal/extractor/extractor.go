package extractor

import (
	"context"
	"fmt"

	"github.com/LJTian/MediaBias/internal/config"
	"go.uber.org/zap"
)

// Extractor 先渲染页面，再按顺序执行各提取策略；后面的策略只要有非空结果就覆盖前面的
type Extractor struct {
	renderer   Renderer
	strategies []Strategy
	logger     *zap.Logger
}

func New(renderer Renderer, logger *zap.Logger, strategies ...Strategy) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{renderer: renderer, strategies: strategies, logger: logger}
}

// FromConfig 组装默认的提取器：配置了 browser-scraper 时走远程渲染，否则启动本地 Chrome
func FromConfig(cfg *config.Config, logger *zap.Logger) *Extractor {
	var renderer Renderer
	if cfg.BrowserScraperURL != "" {
		renderer = NewRemoteRenderer(cfg.BrowserScraperURL, cfg.RenderWait, cfg.RenderTimeout)
	} else {
		renderer = &ChromeRenderer{
			UserAgent: cfg.UserAgent,
			Wait:      cfg.RenderWait,
			Timeout:   cfg.RenderTimeout,
		}
	}
	return New(renderer, logger,
		DOMStrategy{},
		&ArticleStrategy{UserAgent: cfg.UserAgent, Timeout: cfg.ArticleTimeout},
	)
}

// Extract 只在渲染失败时返回错误；单个策略失败只记录告警
func (e *Extractor) Extract(ctx context.Context, url string) (*ExtractedPage, error) {
	rendered, err := e.renderer.Render(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", url, err)
	}

	page := &ExtractedPage{
		URL:   url,
		Title: PageTitle(rendered.HTML),
	}
	for _, s := range e.strategies {
		text, err := s.Extract(ctx, rendered)
		if err != nil {
			e.logger.Warn("extraction strategy failed",
				zap.String("strategy", s.Name()),
				zap.String("url", url),
				zap.Error(err),
			)
			continue
		}
		if text != "" {
			page.Body = text
		}
	}

	e.logger.Debug("page extracted",
		zap.String("url", url),
		zap.String("title", page.Title),
		zap.Int("body_chars", len(page.Body)),
	)
	return page, nil
}

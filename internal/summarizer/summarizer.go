// Package summarizer 把一个站点的首页内容交给模型，得到去重后的新闻列表
package summarizer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/LJTian/MediaBias/internal/extractor"
	"github.com/LJTian/MediaBias/internal/llm"
	"github.com/LJTian/MediaBias/internal/metrics"
	"github.com/LJTian/MediaBias/internal/processor"
	"github.com/LJTian/MediaBias/internal/prompt"
)

// PageExtractor 由 *extractor.Extractor 实现
type PageExtractor interface {
	Extract(ctx context.Context, url string) (*extractor.ExtractedPage, error)
}

type Summarizer struct {
	extractor   PageExtractor
	model       llm.ChatModel
	modelName   string
	temperature float64
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

func New(ex PageExtractor, model llm.ChatModel, modelName string, temperature float64, logger *zap.Logger, m *metrics.Metrics) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{
		extractor:   ex,
		model:       model,
		modelName:   modelName,
		temperature: temperature,
		logger:      logger,
		metrics:     m,
	}
}

// Summarize 永不返回错误：提取失败、模型调用失败、输出无法解析都降级为空集合
func (s *Summarizer) Summarize(ctx context.Context, url string) processor.SummarySet {
	set := processor.SummarySet{URL: url}
	log := s.logger.With(zap.String("site", url))

	page, err := s.extractor.Extract(ctx, url)
	if err != nil {
		log.Error("extract site failed", zap.Error(err))
		s.metrics.ObserveSite(url, metrics.OutcomeExtractError, 0)
		return set
	}

	started := time.Now()
	out, err := s.model.Chat(ctx, llm.ChatRequest{
		Model:       s.modelName,
		Messages:    prompt.SummaryMessages(page.Title, page.Body),
		Temperature: s.temperature,
	})
	s.metrics.ObserveModelCall("summarize", started)
	if err != nil {
		log.Error("summarize site failed", zap.Error(err))
		s.metrics.ObserveSite(url, metrics.OutcomeModelError, 0)
		return set
	}

	stories, err := processor.ParseStories(out)
	if err != nil {
		if errors.Is(err, processor.ErrMalformed) {
			log.Warn("invalid json response from model", zap.Error(err))
			s.metrics.ObserveSite(url, metrics.OutcomeMalformed, 0)
		} else {
			log.Warn("no json array in model response", zap.Error(err))
			s.metrics.ObserveSite(url, metrics.OutcomeEmpty, 0)
		}
		return set
	}

	set.Stories = stories
	outcome := metrics.OutcomeOK
	if set.Empty() {
		outcome = metrics.OutcomeEmpty
	}
	s.metrics.ObserveSite(url, outcome, len(stories))
	log.Info("site summarized", zap.String("title", page.Title), zap.Int("stories", len(stories)))
	return set
}

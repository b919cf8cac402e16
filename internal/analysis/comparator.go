package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/LJTian/MediaBias/internal/llm"
	"github.com/LJTian/MediaBias/internal/metrics"
	"github.com/LJTian/MediaBias/internal/processor"
	"github.com/LJTian/MediaBias/internal/prompt"
)

// Comparator 把各站点摘要合并成一次调用，让模型比较政治倾向
type Comparator struct {
	model       llm.ChatModel
	modelName   string
	temperature float64
	metrics     *metrics.Metrics
}

func NewComparator(model llm.ChatModel, modelName string, temperature float64, m *metrics.Metrics) *Comparator {
	return &Comparator{model: model, modelName: modelName, temperature: temperature, metrics: m}
}

// Compare 原样返回模型输出，不做任何解析；调用方保证至少有一个非空集合
func (c *Comparator) Compare(ctx context.Context, sets []processor.SummarySet) (string, error) {
	summaries := make([]prompt.SiteSummary, 0, len(sets))
	for _, s := range sets {
		summaries = append(summaries, prompt.SiteSummary{URL: s.URL, JSON: s.JSON()})
	}

	started := time.Now()
	out, err := c.model.Chat(ctx, llm.ChatRequest{
		Model:       c.modelName,
		Messages:    prompt.BiasMessages(summaries),
		Temperature: c.temperature,
	})
	c.metrics.ObserveModelCall("compare", started)
	if err != nil {
		return "", fmt.Errorf("compare: %w", err)
	}
	return out, nil
}

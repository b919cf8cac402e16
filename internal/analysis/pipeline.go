// Package analysis 串起整条流水线：逐站点摘要，再做一次偏见比较
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LJTian/MediaBias/internal/processor"
)

// NoSummariesMessage 在所有站点都没有得到有效摘要时代替偏见报告展示
const NoSummariesMessage = "No valid summaries were collected. Please check the website URLs and try again."

// 一次运行的结局，同时用作指标标签
const (
	OutcomeReport       = "report"
	OutcomeFallback     = "fallback"
	OutcomeCompareError = "compare_error"
)

type SiteSummarizer interface {
	Summarize(ctx context.Context, url string) processor.SummarySet
}

type BiasComparator interface {
	Compare(ctx context.Context, sets []processor.SummarySet) (string, error)
}

// Result 是一次运行交给展示层的全部内容
type Result struct {
	ID         string                 `json:"id"`
	StartedAt  time.Time              `json:"startedAt"`
	FinishedAt time.Time              `json:"finishedAt"`
	Model      string                 `json:"model"`
	Sites      []string               `json:"sites"`
	Summaries  []processor.SummarySet `json:"summaries"`
	Report     string                 `json:"report"`
	Outcome    string                 `json:"outcome"`
}

type Pipeline struct {
	sites      []string
	modelName  string
	summarizer SiteSummarizer
	comparator BiasComparator
	logger     *zap.Logger
}

func NewPipeline(sites []string, modelName string, s SiteSummarizer, c BiasComparator, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		sites:      append([]string(nil), sites...),
		modelName:  modelName,
		summarizer: s,
		comparator: c,
		logger:     logger,
	}
}

// Run 顺序处理每个站点，只把非空摘要交给比较器；全部为空时不调用模型，直接给出提示信息。
// Run 总会返回一份可展示的结果。
func (p *Pipeline) Run(ctx context.Context) *Result {
	res := &Result{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Model:     p.modelName,
		Sites:     append([]string(nil), p.sites...),
		Summaries: []processor.SummarySet{},
	}
	log := p.logger.With(zap.String("run_id", res.ID))
	log.Info("analysis started", zap.Int("sites", len(p.sites)), zap.String("model", p.modelName))

	for _, site := range p.sites {
		set := p.summarizer.Summarize(ctx, site)
		if set.Empty() {
			log.Info("site produced no summaries", zap.String("site", site))
			continue
		}
		res.Summaries = append(res.Summaries, set)
	}

	switch {
	case len(res.Summaries) == 0:
		res.Report = NoSummariesMessage
		res.Outcome = OutcomeFallback
	default:
		report, err := p.comparator.Compare(ctx, res.Summaries)
		if err != nil {
			log.Error("bias comparison failed", zap.Error(err))
			res.Report = fmt.Sprintf("Bias analysis failed: %v", err)
			res.Outcome = OutcomeCompareError
			break
		}
		res.Report = report
		res.Outcome = OutcomeReport
	}

	res.FinishedAt = time.Now()
	log.Info("analysis finished",
		zap.String("outcome", res.Outcome),
		zap.Int("summaries", len(res.Summaries)),
		zap.Duration("took", res.FinishedAt.Sub(res.StartedAt)),
	)
	return res
}

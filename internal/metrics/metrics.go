// Package metrics 定义分析流水线的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mediabias"

// 单个站点摘要的结局
const (
	OutcomeOK           = "ok"
	OutcomeEmpty        = "empty"
	OutcomeExtractError = "extract_error"
	OutcomeModelError   = "model_error"
	OutcomeMalformed    = "malformed"
)

// Metrics 的所有方法对 nil 接收者安全，测试中可直接传 nil
type Metrics struct {
	RunsTotal         *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	RunInProgress     prometheus.Gauge
	SiteSummaries     *prometheus.CounterVec
	StoriesTotal      *prometheus.CounterVec
	ModelCallDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Analysis runs by result (report, fallback, compare_error)",
		}, []string{"result"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full analysis run",
			Buckets:   []float64{10, 30, 60, 120, 300, 600, 1200},
		}),
		RunInProgress: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_in_progress",
			Help:      "1 while an analysis run is executing",
		}),
		SiteSummaries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "site_summaries_total",
			Help:      "Per-site summarization outcomes",
		}, []string{"site", "outcome"}),
		StoriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stories_total",
			Help:      "Deduplicated stories produced per site",
		}, []string{"site"}),
		ModelCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Latency of language model calls",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"call"}),
	}
}

func (m *Metrics) ObserveSite(site, outcome string, stories int) {
	if m == nil {
		return
	}
	m.SiteSummaries.WithLabelValues(site, outcome).Inc()
	if stories > 0 {
		m.StoriesTotal.WithLabelValues(site).Add(float64(stories))
	}
}

func (m *Metrics) ObserveModelCall(call string, started time.Time) {
	if m == nil {
		return
	}
	m.ModelCallDuration.WithLabelValues(call).Observe(time.Since(started).Seconds())
}

func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.RunInProgress.Set(1)
}

func (m *Metrics) RunFinished(result string, started time.Time) {
	if m == nil {
		return
	}
	m.RunInProgress.Set(0)
	m.RunsTotal.WithLabelValues(result).Inc()
	m.RunDuration.Observe(time.Since(started).Seconds())
}

package app

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/LJTian/MediaBias/internal/config"
	"github.com/LJTian/MediaBias/internal/llm"
)

func baseConfig() *config.Config {
	return &config.Config{
		Sites:       config.DefaultSites,
		Model:       config.DefaultModel,
		Temperature: config.DefaultTemperature,
		LLMProvider: "ollama",
		OllamaHost:  "http://127.0.0.1:11434",
	}
}

func TestBuildWithoutStore(t *testing.T) {
	a, err := Build(context.Background(), baseConfig(), prometheus.NewRegistry(), zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, a.Store)
	assert.NotNil(t, a.Metrics)
	assert.NotNil(t, a.Runner)
	assert.IsType(t, &llm.OllamaClient{}, a.Model)

	_, err = a.Runner.Latest(context.Background())
	assert.Error(t, err)
}

func TestBuildUnknownProvider(t *testing.T) {
	cfg := baseConfig()
	cfg.LLMProvider = "bard"
	_, err := Build(context.Background(), cfg, nil, zap.NewNop())
	assert.ErrorIs(t, err, llm.ErrUnknownProvider)
}

func TestBuildLogsConfigWarnings(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cfg := baseConfig()
	cfg.Warnings = []string{`invalid LLM_TEMPERATURE="warm", using 0.1`}

	_, err := Build(context.Background(), cfg, nil, zap.New(core))
	require.NoError(t, err)

	warned := logs.FilterMessage("config value ignored").All()
	require.Len(t, warned, 1)
	assert.Equal(t, zap.WarnLevel, warned[0].Level)
	assert.Equal(t, cfg.Warnings[0], warned[0].ContextMap()["detail"])
	assert.Equal(t, 1, logs.FilterMessage("config loaded").Len())
}

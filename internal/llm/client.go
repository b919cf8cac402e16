// Package llm 封装对话补全模型：给定模型名、消息列表与采样温度，返回一段文本
package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/LJTian/MediaBias/internal/config"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

var ErrUnknownProvider = errors.New("llm: unknown provider")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
}

// ChatModel 是流水线依赖的唯一模型能力
type ChatModel interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// ModelPuller 由支持按需拉取模型的后端实现（目前只有 Ollama）
type ModelPuller interface {
	Pull(ctx context.Context, model string) error
}

// New 根据 LLM_PROVIDER 选择后端
func New(cfg *config.Config) (ChatModel, error) {
	switch cfg.LLMProvider {
	case "", "ollama":
		return NewOllamaClient(cfg.OllamaHost)
	case "openai":
		return NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey), nil
	case "anthropic":
		return NewAnthropicClient(cfg.AnthropicAPIKey), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.LLMProvider)
	}
}

// splitSystem 把 system 消息合并成一段，其余消息保持顺序；Anthropic 的接口要求 system 单独传
func splitSystem(msgs []Message) (system string, rest []Message) {
	for _, m := range msgs {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

// EnsureModel 在启动时拉取一次模型；后端不支持拉取或拉取失败都只记日志，模型可能已经在本地
func EnsureModel(ctx context.Context, m ChatModel, model string, logger *zap.Logger) bool {
	puller, ok := m.(ModelPuller)
	if !ok {
		return false
	}
	logger.Info("pulling model", zap.String("model", model))
	if err := puller.Pull(ctx, model); err != nil {
		logger.Warn("pull model failed", zap.String("model", model), zap.Error(err))
		return false
	}
	logger.Info("model ready", zap.String("model", model))
	return true
}

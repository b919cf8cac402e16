package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaClient 调用本地 Ollama 服务，参考部署的默认后端
type OllamaClient struct {
	client *api.Client
}

func NewOllamaClient(host string) (*OllamaClient, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("ollama: parse host %q: %w", host, err)
	}
	return &OllamaClient{client: api.NewClient(u, http.DefaultClient)}, nil
}

func (c *OllamaClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	msgs := make([]api.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
	}

	stream := false
	var out strings.Builder
	err := c.client.Chat(ctx, &api.ChatRequest{
		Model:    req.Model,
		Messages: msgs,
		Stream:   &stream,
		Options:  map[string]any{"temperature": req.Temperature},
	}, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama: chat: %w", err)
	}
	return out.String(), nil
}

// Pull 确保模型已在本地；模型已存在时 Ollama 只做校验，很快返回
func (c *OllamaClient) Pull(ctx context.Context, model string) error {
	stream := false
	err := c.client.Pull(ctx, &api.PullRequest{Model: model, Stream: &stream}, func(api.ProgressResponse) error {
		return nil
	})
	if err != nil {
		return fmt.Errorf("ollama: pull %s: %w", model, err)
	}
	return nil
}

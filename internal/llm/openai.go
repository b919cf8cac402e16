package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient 适用于任何 OpenAI 兼容接口，包括 Ollama 的 /v1 端点
type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(baseURL, apiKey string, opts ...option.RequestOption) *OpenAIClient {
	var all []option.RequestOption
	if apiKey != "" {
		all = append(all, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		all = append(all, option.WithBaseURL(baseURL))
	}
	all = append(all, opts...)

	client := openai.NewClient(all...)
	return &OpenAIClient{client: &client}
}

func (c *OpenAIClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    msgs,
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: chat: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

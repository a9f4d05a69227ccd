package coach

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Completer is an AI text-completion service.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// OpenAIClient implements Completer using the OpenAI API.
type OpenAIClient struct {
	client *openai.Client
	system string
}

// NewOpenAIClient creates a new OpenAI completion client.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		system: systemPrompt,
	}
}

// NewOpenAIClientWithBaseURL creates a client against an OpenAI-compatible
// endpoint.
func NewOpenAIClientWithBaseURL(apiKey, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		system: systemPrompt,
	}
}

// Complete sends a prompt to the model and returns the response.
func (c *OpenAIClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}

package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Usage reports token consumption for a single completion call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Client wraps an OpenAI-compatible API behind the structured-completion
// boundary. Retries live in the caller, not here.
type Client struct {
	api      *openai.Client
	provider string
	model    string
}

// New creates a client. baseURL may point at any OpenAI-compatible provider.
func New(provider, baseURL, apiKey, modelName string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if provider == "" {
		provider = "openai"
	}
	return &Client{
		api:      openai.NewClientWithConfig(cfg),
		provider: provider,
		model:    modelName,
	}
}

// Provider names the configured backend (for generation metadata).
func (c *Client) Provider() string { return c.provider }

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Complete sends the prompt in JSON mode and returns the raw JSON body of
// the first choice. The caller validates it against the quiz schema.
func (c *Client) Complete(ctx context.Context, prompt Prompt) (string, Usage, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", Usage{}, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", Usage{}, fmt.Errorf("LLM returned no choices")
	}
	usage := Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	return resp.Choices[0].Message.Content, usage, nil
}

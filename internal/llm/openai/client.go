// Package openai talks to OpenAI-compatible chat completion APIs. It serves
// both OpenAI and Gemini through its OpenAI-compatible endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"shopping-buddy/internal/llm"
	"shopping-buddy/internal/shared/telemetry"
)

// Client implements llm.Client using Chat Completions.
type Client struct {
	provider string
	client   *goopenai.Client
}

// NewClient constructs a client. baseURL may be empty to use the OpenAI default.
func NewClient(provider, apiKey, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%s api key is required", provider)
	}
	config := goopenai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		provider: provider,
		client:   goopenai.NewClientWithConfig(config),
	}, nil
}

// Generate sends the prompt as a single user message and returns the first
// choice's content.
func (c *Client) Generate(ctx context.Context, prompt, model string) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", fmt.Errorf("%s model is required", c.provider)
	}
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%s error: %s (status %d)", c.provider, apiErr.Message, apiErr.HTTPStatusCode)
		}
		return "", fmt.Errorf("%s request failed: %w", c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s response blocked or empty: %w", c.provider, llm.ErrEmptyResponse)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		reason := string(resp.Choices[0].FinishReason)
		return "", fmt.Errorf("%s response blocked or empty (finish_reason=%s): %w", c.provider, reason, llm.ErrEmptyResponse)
	}

	telemetry.Info("llm.usage", map[string]any{
		"provider":          c.provider,
		"model":             model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
		"duration_ms":       time.Since(start).Milliseconds(),
	})
	return content, nil
}

var _ llm.Client = (*Client)(nil)

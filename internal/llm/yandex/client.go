// Package yandex calls YandexGPT through the yagpt SDK.
package yandex

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Morwran/yagpt"

	"shopping-buddy/internal/llm"
)

// Client implements llm.Client for YandexGPT. The IAM token and SDK client
// are created on first use so startup never depends on Yandex being reachable.
type Client struct {
	oauthToken string
	folderID   string

	mu       sync.Mutex
	ya       yagpt.YaGPTFace
	iamToken string
}

// NewClient returns a lazily initialised YandexGPT client.
func NewClient(oauthToken, folderID string) (*Client, error) {
	if strings.TrimSpace(oauthToken) == "" {
		return nil, fmt.Errorf("yandex oauth token is required")
	}
	if strings.TrimSpace(folderID) == "" {
		return nil, fmt.Errorf("yandex folder id is required")
	}
	return &Client{oauthToken: oauthToken, folderID: folderID}, nil
}

func (c *Client) init() (yagpt.YaGPTFace, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ya != nil {
		return c.ya, c.iamToken, nil
	}
	iam, err := yagpt.NewYaIam(c.oauthToken)
	if err != nil {
		return nil, "", fmt.Errorf("failed to init yandex iam: %w", err)
	}
	resp, err := iam.Create()
	if err != nil {
		return nil, "", fmt.Errorf("failed to create iam token: %w", err)
	}
	ya, err := yagpt.NewYagpt(c.folderID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to init yagpt: %w", err)
	}
	c.ya = ya
	c.iamToken = resp.IamToken
	return c.ya, c.iamToken, nil
}

// Generate sends the prompt as a single user message. The SDK picks the
// model from the folder, so model is informational only.
func (c *Client) Generate(ctx context.Context, prompt, model string) (string, error) {
	ya, token, err := c.init()
	if err != nil {
		return "", err
	}
	resp, err := ya.CompletionWithCtx(ctx, token, []yagpt.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", fmt.Errorf("yagpt completion failed: %w", err)
	}
	if resp == nil || len(resp.Alternatives) == 0 || resp.Alternatives[0].Message.Content == "" {
		return "", fmt.Errorf("yagpt returned empty response: %w", llm.ErrEmptyResponse)
	}
	return resp.Alternatives[0].Message.Content, nil
}

var _ llm.Client = (*Client)(nil)

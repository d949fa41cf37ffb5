package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// Client OpenRouter 補全服務客戶端
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 創建補全客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.OpenRouter.BaseURL).
		SetTimeout(cfg.OpenRouter.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("HTTP-Referer", "https://recipe-assistant.local").
		SetHeader("X-Title", "Recipe Assistant")

	return &Client{
		config: cfg,
		client: client,
	}
}

// Complete 以單輪 user 訊息呼叫 chat/completions，回傳首個選項的內文。
// 超時對應 UPSTREAM_TIMEOUT，其餘失敗對應 UPSTREAM_FAILURE。
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := map[string]interface{}{
		"model": c.config.OpenRouter.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens": c.config.OpenRouter.MaxTokens,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", common.ErrUpstreamTimeout.WithCause(err)
		}
		return "", common.ErrUpstreamFailure.WithCause(fmt.Errorf("failed to send request to completion service: %w", err))
	}

	if resp.StatusCode() != http.StatusOK {
		return "", common.ErrUpstreamFailure.WithCause(fmt.Errorf("completion API returned error: %s", resp.String()))
	}

	// 解析回應
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return "", common.ErrUpstreamFailure.WithCause(fmt.Errorf("failed to parse completion response: %w", err))
	}

	if len(result.Choices) == 0 {
		return "", common.ErrUpstreamFailure.WithCause(fmt.Errorf("no choices in completion response"))
	}

	return result.Choices[0].Message.Content, nil
}

package completion

import (
	"context"
	"strings"
	"time"

	"recipe-assistant/internal/core/ai/cache"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

// Service 補全服務：統一入口，處理快取與超時
type Service struct {
	config *config.Config
	client *Client
	store  cache.Store
}

// NewService 創建補全服務。store 可為 nil（快取關閉時）。
func NewService(cfg *config.Config, store cache.Store) *Service {
	return &Service{
		config: cfg,
		client: NewClient(cfg),
		store:  store,
	}
}

// Complete 統一對外方法：正規化提示、查快取、帶超時呼叫上游、回填快取
func (s *Service) Complete(ctx context.Context, prompt string) (string, error) {
	// 統一 prompt 格式，去除多餘空白，確保快取 key 一致
	cacheKey := normalizePrompt(prompt)

	if s.config.Cache.Enabled && s.store != nil {
		if value, err := s.store.Get(ctx, cacheKey); err == nil && value != "" {
			return value, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.OpenRouter.Timeout)
	defer cancel()

	start := time.Now()
	content, err := s.client.Complete(ctx, prompt)
	common.LogUpstreamCall("completion", time.Since(start), err, "")
	if err != nil {
		return "", err
	}

	if s.config.Cache.Enabled && s.store != nil {
		_ = s.store.Set(ctx, cacheKey, content)
	}

	return content, nil
}

// normalizePrompt 去除多餘換行、tab 與連續空白
func normalizePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	prompt = strings.ReplaceAll(prompt, "\t", " ")
	prompt = strings.ReplaceAll(prompt, "\n", " ")
	return strings.Join(strings.Fields(prompt), " ")
}

package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"

	openai "github.com/sashabaranov/go-openai"
)

// Client OpenAI 相容 API 的嵌入客戶端
type Client struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	timeout    time.Duration
}

// NewClient 創建嵌入客戶端
func NewClient(cfg *config.Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.Embedding.APIKey)
	if cfg.Embedding.BaseURL != "" {
		clientCfg.BaseURL = cfg.Embedding.BaseURL
	}

	return &Client{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Embedding.Model),
		dimensions: cfg.Embedding.Dimensions,
		timeout:    cfg.Embedding.Timeout,
	}
}

// Embed 取得文本的嵌入向量。超時對應 UPSTREAM_TIMEOUT，
// 其餘失敗對應 UPSTREAM_FAILURE。
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          c.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if c.dimensions > 0 {
		req.Dimensions = c.dimensions
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateEmbeddings(ctx, req)
	common.LogUpstreamCall("embedding", time.Since(start), err, "")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, common.ErrUpstreamTimeout.WithCause(err)
		}
		return nil, common.ErrUpstreamFailure.WithCause(err)
	}

	if len(resp.Data) == 0 {
		return nil, common.ErrUpstreamFailure.WithCause(fmt.Errorf("empty embedding response"))
	}

	return resp.Data[0].Embedding, nil
}

// Cached 嵌入記憶層：同一文本只向上游要一次向量。
// 語料庫在服務期間只讀，文件向量可安全長期保存。
type Cached struct {
	embedder interface {
		Embed(ctx context.Context, text string) ([]float32, error)
	}
	vectors sync.Map // sha256(text) -> []float32
}

// NewCached 包裝任一嵌入來源為記憶層
func NewCached(embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}) *Cached {
	return &Cached{embedder: embedder}
}

// Embed 先查記憶，未命中再呼叫上游
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	key := hashText(text)
	if vec, ok := c.vectors.Load(key); ok {
		return vec.([]float32), nil
	}

	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.vectors.Store(key, vec)
	return vec, nil
}

// hashText 文本的 SHA-256 雜湊鍵
func hashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

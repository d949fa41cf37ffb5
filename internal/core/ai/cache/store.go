package cache

import "context"

// Store 補全回應快取能力介面。backend 以配置選擇：
// memory 用 Manager，redis 用 RedisStore。
type Store interface {
	// Get 依提示取快取值，未命中時回傳錯誤
	Get(ctx context.Context, prompt string) (string, error)

	// Set 寫入快取值
	Set(ctx context.Context, prompt, value string) error

	// Close 釋放資源
	Close() error
}

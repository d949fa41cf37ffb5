package api

import (
	"context"
	"net/http"
	"time"

	chatHandler "recipe-assistant/internal/api/handlers/chat"
	"recipe-assistant/internal/api/handlers/health"
	recipeHandler "recipe-assistant/internal/api/handlers/recipe"
	"recipe-assistant/internal/api/middleware"
	"recipe-assistant/internal/core/ai/cache"
	"recipe-assistant/internal/core/ai/completion"
	"recipe-assistant/internal/core/ai/embedding"
	"recipe-assistant/internal/core/corpus"
	"recipe-assistant/internal/core/dispatch"
	"recipe-assistant/internal/core/intent"
	"recipe-assistant/internal/core/match"
	"recipe-assistant/internal/core/nlp"
	"recipe-assistant/internal/core/session"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 60 * time.Second
	// 請求體大小限制 (1MB)：純文字對話不需要更大
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由並完成服務組裝
func SetupRouter(cfg *config.Config, store corpus.Store, cacheStore cache.Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 速率限制與重複請求攔截
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	if cfg.DedupWindow > 0 {
		router.Use(middleware.Deduplication(cfg))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("llm_enabled", cfg.OpenRouter.Enabled),
		zap.String("model", cfg.OpenRouter.Model),
		zap.Int("top_k", cfg.Match.TopK),
	)

	// 補全服務：分類、關鍵字擷取、教學與閒聊共用
	completionSvc := completion.NewService(cfg, cacheStore)

	// 嵌入服務：向量結果在進程內記憶，重複菜名不重打上游
	embedder := embedding.NewCached(embedding.NewClient(cfg))

	// 意圖分類器：上游關閉時退回規則分類
	var classifier intent.Classifier
	if cfg.OpenRouter.Enabled {
		classifier = intent.NewLLMClassifier(completionSvc)
	} else {
		classifier = intent.NewRuleClassifier()
	}

	extractor := nlp.NewExtractor(completionSvc)
	dispatcher := dispatch.New(classifier, extractor, completionSvc, embedder.Embed, cfg.Match.TopK)
	sessions := session.NewManager()

	// 全局中間件：設置超時與上下文數據
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)
		c.Set("corpus_size", len(store.GetAll()))

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		chatInstance := chatHandler.NewHandler(dispatcher, sessions, store)
		recipeInstance := recipeHandler.NewHandler(store, extractor, match.EmbedFunc(embedder.Embed), cfg.Match.TopK)

		// 多輪對話：意圖路由的統一入口
		api.POST("/chat", chatInstance.HandleChat)

		// 食譜相關路由：繞過意圖分類的直接端點
		recipeGroup := api.Group("/recipe")
		{
			recipeGroup.POST("/suggest", recipeInstance.HandleSuggest)
			recipeGroup.POST("/similar", recipeInstance.HandleSimilar)
			recipeGroup.POST("/scale", recipeInstance.HandleScale)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Int("recipes_loaded", len(store.GetAll())),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}

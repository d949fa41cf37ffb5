package recipe

import (
	"errors"
	"net/http"

	"recipe-assistant/internal/core/corpus"
	"recipe-assistant/internal/core/match"
	"recipe-assistant/internal/core/nlp"
	"recipe-assistant/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SuggestRequest 食材推薦請求。ingredients 為空時改從 query 擷取。
type SuggestRequest struct {
	Ingredients []string `json:"ingredients"`
	Query       string   `json:"query"`
	TopK        int      `json:"top_k"`
}

// SimilarRequest 相似食譜請求
type SimilarRequest struct {
	RecipeName string `json:"recipe_name" binding:"required"`
	TopK       int    `json:"top_k"`
}

// ScaleRequest 份量調整請求。factor 為零時改從 query 擷取倍數。
type ScaleRequest struct {
	RecipeName string  `json:"recipe_name" binding:"required"`
	Factor     float64 `json:"factor"`
	Query      string  `json:"query"`
}

// ScaleResponse 份量調整回應
type ScaleResponse struct {
	RecipeName  string   `json:"recipe_name"`
	Factor      float64  `json:"factor"`
	ScaledLines []string `json:"scaled_lines"`
}

// Handler 食譜查詢處理程序
type Handler struct {
	store     corpus.Store
	extractor *nlp.Extractor
	embed     match.EmbedFunc
	topK      int
}

// NewHandler 創建食譜查詢處理程序
func NewHandler(store corpus.Store, extractor *nlp.Extractor, embed match.EmbedFunc, topK int) *Handler {
	if topK <= 0 {
		topK = match.DefaultTopK
	}
	return &Handler{
		store:     store,
		extractor: extractor,
		embed:     embed,
		topK:      topK,
	}
}

// limit 回傳本次請求生效的結果數上限
func (h *Handler) limit(requested int) int {
	if requested > 0 {
		return requested
	}
	return h.topK
}

// HandleSuggest 依食材重疊度推薦食譜
func (h *Handler) HandleSuggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ingredients := req.Ingredients
	if len(ingredients) == 0 && req.Query != "" {
		ingredients = h.extractor.Extract(c.Request.Context(), req.Query)
	}
	if len(ingredients) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": common.ErrorResponse{
			Code:    common.ErrCodeExtractionEmpty,
			Message: "no ingredients recognized",
		}})
		return
	}

	results := match.ByIngredients(ingredients, h.store.GetAll(), h.limit(req.TopK))

	c.JSON(http.StatusOK, gin.H{
		"ingredients": ingredients,
		"matches":     results,
	})
}

// HandleSimilar 依嵌入向量餘弦相似度找相近食譜
func (h *Handler) HandleSimilar(c *gin.Context) {
	var req SimilarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	results, err := match.BySimilarity(c.Request.Context(), req.RecipeName, h.store.GetAll(), h.embed, h.limit(req.TopK))
	if err != nil {
		ce := common.AsCustomError(err)
		status := http.StatusServiceUnavailable
		if ce.Code == common.ErrCodeTargetNotFound {
			status = http.StatusNotFound
		}
		common.LogError("相似食譜查詢失敗",
			zap.Error(err),
			zap.String("recipe_name", req.RecipeName),
		)
		c.JSON(status, gin.H{"error": common.ErrorResponse{
			Code:    ce.Code,
			Message: ce.Message,
		}})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipe_name": req.RecipeName,
		"matches":     results,
	})
}

// HandleScale 依倍數重算指定食譜的食材份量
func (h *Handler) HandleScale(c *gin.Context) {
	var req ScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	doc, err := h.store.GetByName(req.RecipeName)
	if err != nil {
		if errors.Is(err, common.ErrTargetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": common.ErrorResponse{
				Code:    common.ErrCodeTargetNotFound,
				Message: "recipe not found",
			}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": common.ErrorResponse{
			Code:    common.ErrCodeInternalError,
			Message: "failed to load recipe",
		}})
		return
	}

	factor := req.Factor
	if factor <= 0 {
		factor = nlp.ExtractScaleFactor(req.Query)
	}

	c.JSON(http.StatusOK, ScaleResponse{
		RecipeName:  doc.Name,
		Factor:      factor,
		ScaledLines: nlp.ScaleLines(doc.IngredientLines(), factor),
	})
}

package chat

import (
	"net/http"

	"recipe-assistant/internal/core/corpus"
	"recipe-assistant/internal/core/dispatch"
	"recipe-assistant/internal/core/match"
	"recipe-assistant/internal/core/session"
	"recipe-assistant/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatRequest 多輪對話請求
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`          // 空值時自動開新會話
	Message   string `json:"message" binding:"required"`    // 使用者語句
}

// ChatResponse 多輪對話回應
type ChatResponse struct {
	SessionID   string                `json:"session_id"`
	Intent      string                `json:"intent"`
	Answer      string                `json:"answer"`
	Matches     []match.Result        `json:"matches,omitempty"`
	ScaledLines []string              `json:"scaled_lines,omitempty"`
	RecipeName  string                `json:"recipe_name,omitempty"`
	Error       *common.ErrorResponse `json:"error,omitempty"`
}

// Handler 對話處理程序
type Handler struct {
	dispatcher *dispatch.Dispatcher
	sessions   *session.Manager
	store      corpus.Store
}

// NewHandler 創建對話處理程序
func NewHandler(dispatcher *dispatch.Dispatcher, sessions *session.Manager, store corpus.Store) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		sessions:   sessions,
		store:      store,
	}
}

// HandleChat 處理一輪對話：路由語句、渲染回覆、回填會話歷史。
// 管線中的任何錯誤都轉成可顯示的回覆，整個端點不會因缺少輸入而失敗。
func (h *Handler) HandleChat(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sessionID, history := h.sessions.GetOrCreate(req.SessionID)

	common.LogInfo("開始處理對話請求",
		zap.String("request_id", requestID),
		zap.String("session_id", sessionID),
	)

	result := h.dispatcher.Route(c.Request.Context(), req.Message, history, h.store)

	response := ChatResponse{
		SessionID:   sessionID,
		Intent:      string(result.Intent),
		Answer:      result.Answer,
		Matches:     result.Matches,
		ScaledLines: result.ScaledLines,
		RecipeName:  result.RecipeName,
	}

	if result.Err != nil {
		response.Answer = userMessage(result.Err)
		response.Error = &common.ErrorResponse{
			Code:    result.Err.Code,
			Message: result.Err.Message,
		}
	}

	// 回覆產生後才追加本輪對話；單一會話由一位使用者驅動，後寫者勝
	history.Append(session.Turn{Role: session.RoleUser, Text: req.Message})
	history.Append(session.Turn{
		Role:       session.RoleAssistant,
		Text:       response.Answer,
		RecipeName: result.RecipeName,
	})

	c.JSON(http.StatusOK, response)
}

// userMessage 把管線錯誤轉成給使用者看的引導語
func userMessage(err *common.CustomError) string {
	switch err.Code {
	case common.ErrCodeExtractionEmpty:
		return "I couldn't recognize any ingredients in your message. Try listing them like: I have \"potato, beef\"."
	case common.ErrCodeTargetNotFound:
		return "Sorry, I couldn't find that recipe in my cookbook."
	case common.ErrCodeMissingContext:
		return "I couldn't determine which recipe or scale factor you meant."
	case common.ErrCodeUpstreamTimeout, common.ErrCodeUpstreamFailure:
		return "The assistant is temporarily unavailable, please try again later."
	default:
		return err.Message
	}
}

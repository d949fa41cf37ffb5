package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"recipe-assistant/internal/core/corpus"
	"recipe-assistant/internal/core/dispatch"
	"recipe-assistant/internal/core/intent"
	"recipe-assistant/internal/core/nlp"
	"recipe-assistant/internal/core/session"
	"recipe-assistant/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	response string
}

func (s *stubCompleter) Complete(_ context.Context, _ string) (string, error) {
	return s.response, nil
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := corpus.NewMemoryStore([]corpus.Document{
		{
			Name: "Beef Stew",
			Text: "Beef Stew\nIngredients:\n2 lbs beef\n4 carrots\nSteps:\n1. Cook everything.",
		},
		{
			Name: "Pancakes",
			Text: "Pancakes\nIngredients:\n2 cups flour\n2 eggs\nSteps:\n1. Mix and fry.",
		},
	})

	completer := &stubCompleter{response: "Happy to help!"}
	dispatcher := dispatch.New(intent.NewRuleClassifier(), nlp.NewExtractor(nil), completer, nil, 3)
	handler := NewHandler(dispatcher, session.NewManager(), store)

	router := gin.New()
	router.POST("/api/v1/chat", handler.HandleChat)
	return router
}

func postChat(t *testing.T, router *gin.Engine, body ChatRequest) ChatResponse {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleChatRecommendFlow(t *testing.T) {
	router := setupTestRouter()

	resp := postChat(t, router, ChatRequest{Message: `I have "beef, carrots"`})

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "recommend", resp.Intent)
	assert.Contains(t, resp.Answer, "Beef Stew")
	require.NotEmpty(t, resp.Matches)
	assert.Equal(t, "Beef Stew", resp.Matches[0].Name)
}

func TestHandleChatMultiTurnScale(t *testing.T) {
	router := setupTestRouter()

	first := postChat(t, router, ChatRequest{Message: `I have "beef, carrots"`})
	require.Equal(t, "recommend", first.Intent)

	// 同一會話的後續輪次：縮放上一輪推薦的食譜
	second := postChat(t, router, ChatRequest{
		SessionID: first.SessionID,
		Message:   "double the servings",
	})

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, "scale", second.Intent)
	assert.Equal(t, "Beef Stew", second.RecipeName)
	assert.Contains(t, second.ScaledLines, "4.0 lbs beef")
	assert.Contains(t, second.ScaledLines, "8.0 carrots")
}

func TestHandleChatScaleWithoutContext(t *testing.T) {
	router := setupTestRouter()

	resp := postChat(t, router, ChatRequest{Message: "double the servings"})

	require.NotNil(t, resp.Error)
	assert.Equal(t, common.ErrCodeMissingContext, resp.Error.Code)
	assert.NotEmpty(t, resp.Answer, "錯誤時仍要回引導語")
}

func TestHandleChatFallsBackToChat(t *testing.T) {
	router := setupTestRouter()

	resp := postChat(t, router, ChatRequest{Message: "tell me something interesting"})

	assert.Equal(t, "chat", resp.Intent)
	assert.Equal(t, "Happy to help!", resp.Answer)
}

func TestHandleChatRejectsMissingMessage(t *testing.T) {
	router := setupTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

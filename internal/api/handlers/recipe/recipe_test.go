package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"recipe-assistant/internal/core/corpus"
	"recipe-assistant/internal/core/match"
	"recipe-assistant/internal/core/nlp"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := corpus.NewMemoryStore([]corpus.Document{
		{
			Name: "Beef Stew",
			Text: "Beef Stew\nIngredients:\n2 lbs beef\n4 carrots\nSteps:\n1. Cook everything.",
		},
		{
			Name: "Potato Beef Curry",
			Text: "Potato Beef Curry\nIngredients:\n1 lb beef\n3 potatoes\nSteps:\n1. Cook.",
		},
	})

	embed := match.EmbedFunc(func(_ context.Context, _ string) ([]float32, error) {
		return []float32{1, 0}, nil
	})

	handler := NewHandler(store, nlp.NewExtractor(nil), embed, 3)

	router := gin.New()
	group := router.Group("/api/v1/recipe")
	group.POST("/suggest", handler.HandleSuggest)
	group.POST("/similar", handler.HandleSimilar)
	group.POST("/scale", handler.HandleScale)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHandleSuggestWithIngredientList(t *testing.T) {
	router := setupTestRouter()

	w := postJSON(t, router, "/api/v1/recipe/suggest", SuggestRequest{
		Ingredients: []string{"beef", "potato"},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Matches []match.Result `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, "Potato Beef Curry", resp.Matches[0].Name)
}

func TestHandleSuggestExtractsFromQuery(t *testing.T) {
	router := setupTestRouter()

	w := postJSON(t, router, "/api/v1/recipe/suggest", SuggestRequest{
		Query: `I have "beef, carrots"`,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Ingredients []string       `json:"ingredients"`
		Matches     []match.Result `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"beef", "carrots"}, resp.Ingredients)
	require.NotEmpty(t, resp.Matches)
	assert.Equal(t, "Beef Stew", resp.Matches[0].Name)
}

func TestHandleSuggestNothingRecognized(t *testing.T) {
	router := setupTestRouter()

	w := postJSON(t, router, "/api/v1/recipe/suggest", SuggestRequest{Query: "feed me"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandleSimilar(t *testing.T) {
	router := setupTestRouter()

	w := postJSON(t, router, "/api/v1/recipe/similar", SimilarRequest{RecipeName: "Beef Stew"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Matches []match.Result `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "Potato Beef Curry", resp.Matches[0].Name)
}

func TestHandleSimilarUnknownRecipe(t *testing.T) {
	router := setupTestRouter()

	w := postJSON(t, router, "/api/v1/recipe/similar", SimilarRequest{RecipeName: "Ramen"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleScaleExplicitFactor(t *testing.T) {
	router := setupTestRouter()

	w := postJSON(t, router, "/api/v1/recipe/scale", ScaleRequest{
		RecipeName: "Beef Stew",
		Factor:     2,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ScaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"4.0 lbs beef", "8.0 carrots"}, resp.ScaledLines)
}

func TestHandleScaleFactorFromQuery(t *testing.T) {
	router := setupTestRouter()

	w := postJSON(t, router, "/api/v1/recipe/scale", ScaleRequest{
		RecipeName: "Beef Stew",
		Query:      "cut it in half",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ScaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 0.5, resp.Factor, 1e-9)
	assert.Equal(t, []string{"1.0 lbs beef", "2.0 carrots"}, resp.ScaledLines)
}

func TestHandleScaleUnknownRecipe(t *testing.T) {
	router := setupTestRouter()

	w := postJSON(t, router, "/api/v1/recipe/scale", ScaleRequest{RecipeName: "Ramen"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

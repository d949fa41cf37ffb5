package match

import (
	"context"
	"errors"
	"testing"

	"recipe-assistant/internal/core/corpus"
	"recipe-assistant/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocs() []corpus.Document {
	return []corpus.Document{
		{
			Name: "Beef Stew",
			Text: "Beef Stew\nIngredients:\n2 lbs beef\n4 carrots\n3 potatoes\nSteps:\n1. Cook.",
		},
		{
			Name: "Potato Beef Curry",
			Text: "Potato Beef Curry\nIngredients:\n1 lb beef\n3 potatoes\n1 onion\nSteps:\n1. Cook.",
		},
		{
			Name: "Tomato Egg Stir-fry",
			Text: "Tomato Egg Stir-fry\nIngredients:\n4 eggs\n3 tomatoes\nSteps:\n1. Cook.",
		},
	}
}

func TestByIngredientsRanksByOverlap(t *testing.T) {
	results := ByIngredients([]string{"beef", "potato", "onion"}, testDocs(), 3)

	require.Len(t, results, 2)
	assert.Equal(t, "Potato Beef Curry", results[0].Name)
	assert.Equal(t, 3.0, results[0].Score)
	assert.Equal(t, "Beef Stew", results[1].Name)
	assert.Equal(t, 2.0, results[1].Score)
}

func TestByIngredientsExcludesZeroScore(t *testing.T) {
	results := ByIngredients([]string{"tofu"}, testDocs(), 3)
	assert.Empty(t, results)
}

func TestByIngredientsTieKeepsCorpusOrder(t *testing.T) {
	results := ByIngredients([]string{"beef"}, testDocs(), 3)

	require.Len(t, results, 2)
	assert.Equal(t, "Beef Stew", results[0].Name)
	assert.Equal(t, "Potato Beef Curry", results[1].Name)
}

func TestByIngredientsCaseInsensitive(t *testing.T) {
	results := ByIngredients([]string{"BEEF"}, testDocs(), 3)
	assert.Len(t, results, 2)
}

func TestByIngredientsTruncatesToTopK(t *testing.T) {
	results := ByIngredients([]string{"beef", "potato"}, testDocs(), 1)
	require.Len(t, results, 1)
	assert.Equal(t, "Potato Beef Curry", results[0].Name)
}

// fixedEmbed 依菜名回傳預先指定的向量
func fixedEmbed(vectors map[string][]float32) EmbedFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		for key, vec := range vectors {
			if key == text {
				return vec, nil
			}
		}
		return nil, errors.New("no vector for text")
	}
}

func TestBySimilarityExcludesTargetAndRanks(t *testing.T) {
	docs := testDocs()
	embed := fixedEmbed(map[string][]float32{
		docs[0].Text: {1, 0},
		docs[1].Text: {1, 0.1},
		docs[2].Text: {0, 1},
	})

	results, err := BySimilarity(context.Background(), "Beef Stew", docs, embed, 3)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Potato Beef Curry", results[0].Name)
	assert.Equal(t, "Tomato Egg Stir-fry", results[1].Name)
	assert.Greater(t, results[0].Score, results[1].Score)
	for _, r := range results {
		assert.NotEqual(t, "Beef Stew", r.Name)
	}
}

func TestBySimilarityTargetNotFound(t *testing.T) {
	_, err := BySimilarity(context.Background(), "Ramen", testDocs(), nil, 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTargetNotFound)
}

func TestBySimilarityTargetNameCaseInsensitive(t *testing.T) {
	docs := testDocs()
	embed := fixedEmbed(map[string][]float32{
		docs[0].Text: {1, 0},
		docs[1].Text: {1, 0},
		docs[2].Text: {1, 0},
	})

	results, err := BySimilarity(context.Background(), "  beef stew ", docs, embed, 3)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestBySimilarityTargetEmbedFailure(t *testing.T) {
	failing := EmbedFunc(func(_ context.Context, _ string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	})

	_, err := BySimilarity(context.Background(), "Beef Stew", testDocs(), failing, 3)

	require.Error(t, err)
	ce := common.AsCustomError(err)
	assert.Equal(t, common.ErrCodeUpstreamFailure, ce.Code)
}

func TestBySimilaritySkipsFailingCandidates(t *testing.T) {
	docs := testDocs()
	embed := EmbedFunc(func(_ context.Context, text string) ([]float32, error) {
		if text == docs[1].Text {
			return nil, errors.New("flaky candidate")
		}
		return []float32{1, 0}, nil
	})

	results, err := BySimilarity(context.Background(), "Beef Stew", docs, embed, 3)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Tomato Egg Stir-fry", results[0].Name)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 1}))
}

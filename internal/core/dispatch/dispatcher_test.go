package dispatch

import (
	"context"
	"errors"
	"testing"

	"recipe-assistant/internal/core/corpus"
	"recipe-assistant/internal/core/intent"
	"recipe-assistant/internal/core/match"
	"recipe-assistant/internal/core/nlp"
	"recipe-assistant/internal/core/session"
	"recipe-assistant/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClassifier 固定回傳指定意圖
type stubClassifier struct {
	label intent.Intent
}

func (s stubClassifier) Classify(_ context.Context, _ string) intent.Intent {
	return s.label
}

type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(_ context.Context, _ string) (string, error) {
	return s.response, s.err
}

func testStore() corpus.Store {
	return corpus.NewMemoryStore([]corpus.Document{
		{
			Name: "Beef Stew",
			Text: "Beef Stew\nIngredients:\n2 lbs beef\n4 carrots\n3 potatoes\nSteps:\n1. Cook everything.",
		},
		{
			Name: "Potato Beef Curry",
			Text: "Potato Beef Curry\nIngredients:\n1 lb beef\n3 potatoes\n1 onion\nSteps:\n1. Cook.",
		},
		{
			Name: "Pancakes",
			Text: "Pancakes\nIngredients:\n2 cups flour\n2 eggs\nSteps:\n1. Mix and fry.",
		},
	})
}

func constantEmbed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func newDispatcher(label intent.Intent, completer Completer, embed match.EmbedFunc) *Dispatcher {
	return New(stubClassifier{label: label}, nlp.NewExtractor(nil), completer, embed, 3)
}

func TestRouteRecommend(t *testing.T) {
	d := newDispatcher(intent.Recommend, &stubCompleter{}, nil)

	result := d.Route(context.Background(), `I have "beef, potato"`, session.NewHistory(), testStore())

	require.Nil(t, result.Err)
	assert.Equal(t, intent.Recommend, result.Intent)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, "Beef Stew", result.Matches[0].Name)
	assert.Equal(t, "Beef Stew", result.RecipeName)
	assert.Contains(t, result.Answer, "Suggested recipe: Beef Stew")
}

func TestRouteRecommendExtractionEmpty(t *testing.T) {
	d := newDispatcher(intent.Recommend, &stubCompleter{}, nil)

	result := d.Route(context.Background(), "feed me", session.NewHistory(), testStore())

	require.NotNil(t, result.Err)
	assert.Equal(t, common.ErrCodeExtractionEmpty, result.Err.Code)
	assert.Equal(t, intent.Recommend, result.Intent)
}

func TestRouteRecommendNoMatches(t *testing.T) {
	d := newDispatcher(intent.Recommend, &stubCompleter{}, nil)

	result := d.Route(context.Background(), `I have "durian"`, session.NewHistory(), testStore())

	require.Nil(t, result.Err)
	assert.Equal(t, "No matching recipes found.", result.Answer)
}

func TestRouteSimilarFromUtterance(t *testing.T) {
	d := newDispatcher(intent.Similar, &stubCompleter{}, constantEmbed)

	result := d.Route(context.Background(), "show me dishes similar to Beef Stew", session.NewHistory(), testStore())

	require.Nil(t, result.Err)
	assert.Equal(t, "Beef Stew", result.RecipeName)
	require.Len(t, result.Matches, 2)
	for _, m := range result.Matches {
		assert.NotEqual(t, "Beef Stew", m.Name)
	}
}

func TestRouteSimilarFallsBackToHistory(t *testing.T) {
	d := newDispatcher(intent.Similar, &stubCompleter{}, constantEmbed)

	history := session.NewHistory()
	history.Append(session.Turn{Role: session.RoleAssistant, Text: "Try this.", RecipeName: "Pancakes"})

	result := d.Route(context.Background(), "anything like that?", history, testStore())

	require.Nil(t, result.Err)
	assert.Equal(t, "Pancakes", result.RecipeName)
}

func TestRouteSimilarMissingContext(t *testing.T) {
	d := newDispatcher(intent.Similar, &stubCompleter{}, constantEmbed)

	result := d.Route(context.Background(), "anything like that?", session.NewHistory(), testStore())

	require.NotNil(t, result.Err)
	assert.Equal(t, common.ErrCodeMissingContext, result.Err.Code)
}

func TestRouteSimilarTargetNotFound(t *testing.T) {
	d := newDispatcher(intent.Similar, &stubCompleter{}, constantEmbed)

	result := d.Route(context.Background(), "similar to Ramen", session.NewHistory(), testStore())

	require.NotNil(t, result.Err)
	assert.Equal(t, common.ErrCodeTargetNotFound, result.Err.Code)
}

func TestRouteScale(t *testing.T) {
	d := newDispatcher(intent.Scale, &stubCompleter{}, nil)

	history := session.NewHistory()
	history.Append(session.Turn{Role: session.RoleAssistant, Text: "Here you go.", RecipeName: "Pancakes"})

	result := d.Route(context.Background(), "double the servings", history, testStore())

	require.Nil(t, result.Err)
	assert.Equal(t, "Pancakes", result.RecipeName)
	assert.Equal(t, []string{"4.0 cups flour", "4.0 eggs"}, result.ScaledLines)
	assert.Contains(t, result.Answer, "2x servings")
}

func TestRouteScaleMissingContext(t *testing.T) {
	d := newDispatcher(intent.Scale, &stubCompleter{}, nil)

	result := d.Route(context.Background(), "double it", session.NewHistory(), testStore())

	require.NotNil(t, result.Err)
	assert.Equal(t, common.ErrCodeMissingContext, result.Err.Code)
}

func TestRouteScaleRecipeGone(t *testing.T) {
	d := newDispatcher(intent.Scale, &stubCompleter{}, nil)

	history := session.NewHistory()
	history.Append(session.Turn{Role: session.RoleAssistant, Text: "Here.", RecipeName: "Ghost Dish"})

	result := d.Route(context.Background(), "double it", history, testStore())

	require.NotNil(t, result.Err)
	assert.Equal(t, common.ErrCodeTargetNotFound, result.Err.Code)
}

func TestRouteTutorialWithRecipeContext(t *testing.T) {
	completer := &stubCompleter{response: "Simmer it slowly for two hours."}
	d := newDispatcher(intent.Tutorial, completer, nil)

	result := d.Route(context.Background(), "how do I make beef stew?", session.NewHistory(), testStore())

	require.Nil(t, result.Err)
	assert.Equal(t, intent.Tutorial, result.Intent)
	assert.Equal(t, "Beef Stew", result.RecipeName)
	assert.Equal(t, "Simmer it slowly for two hours.", result.Answer)
}

func TestRouteTutorialDegradesToRecipeText(t *testing.T) {
	completer := &stubCompleter{err: errors.New("upstream down")}
	d := newDispatcher(intent.Tutorial, completer, nil)

	result := d.Route(context.Background(), "how do I make beef stew?", session.NewHistory(), testStore())

	require.Nil(t, result.Err)
	assert.Contains(t, result.Answer, "2 lbs beef")
}

func TestRouteTutorialUnknownRecipeFallsThroughToChat(t *testing.T) {
	completer := &stubCompleter{response: "Let me think about that."}
	d := newDispatcher(intent.Tutorial, completer, nil)

	result := d.Route(context.Background(), "how do I make ramen?", session.NewHistory(), testStore())

	require.Nil(t, result.Err)
	assert.Equal(t, intent.Tutorial, result.Intent)
	assert.Equal(t, "Let me think about that.", result.Answer)
}

func TestRouteChat(t *testing.T) {
	completer := &stubCompleter{response: "Hello! What would you like to cook?"}
	d := newDispatcher(intent.Chat, completer, nil)

	result := d.Route(context.Background(), "hi there", session.NewHistory(), testStore())

	require.Nil(t, result.Err)
	assert.Equal(t, intent.Chat, result.Intent)
	assert.Equal(t, "Hello! What would you like to cook?", result.Answer)
}

func TestRouteChatNeverFails(t *testing.T) {
	completer := &stubCompleter{err: errors.New("upstream down")}
	d := newDispatcher(intent.Chat, completer, nil)

	result := d.Route(context.Background(), "hi there", session.NewHistory(), testStore())

	require.Nil(t, result.Err)
	assert.NotEmpty(t, result.Answer)
}

func TestExtractSimilarTarget(t *testing.T) {
	assert.Equal(t, "Beef Stew", extractSimilarTarget("show me dishes similar to Beef Stew?"))
	assert.Equal(t, "", extractSimilarTarget("anything like that"))
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tippleai/models"
)

func TestHandleMessageIngredientLookup(t *testing.T) {
	engine, _ := newTestEngine(t)

	rctx, detected, err := engine.HandleMessage(context.Background(), "alice", "Show me 2 cocktails with lime")
	require.NoError(t, err)

	assert.Equal(t, models.IntentIngredientLookup, rctx.Intent.Type)
	assert.False(t, detected.Changed())
	require.NotEmpty(t, rctx.Records)
	assert.LessOrEqual(t, len(rctx.Records), 2)
	for _, result := range rctx.Records {
		assert.True(t, result.Record.HasIngredient("lime"))
	}
}

func TestHandleMessagePreferenceFlow(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	rctx, detected, err := engine.HandleMessage(ctx, "alice", "I really like rum and pineapple juice")
	require.NoError(t, err)
	assert.Equal(t, models.IntentPreferenceQuery, rctx.Intent.Type)
	assert.ElementsMatch(t, []string{"rum", "pineapple juice"}, detected.Ingredients)

	// the snapshot must reflect the statement of the same message
	assert.Contains(t, rctx.Preferences.Ingredients, "rum")

	rctx, detected, err = engine.HandleMessage(ctx, "alice", "What are my favourite ingredients?")
	require.NoError(t, err)
	assert.Equal(t, models.IntentPreferenceQuery, rctx.Intent.Type)
	assert.False(t, detected.Changed())
	assert.Empty(t, rctx.Records)
	assert.ElementsMatch(t, []string{"rum", "pineapple juice"}, rctx.Preferences.Ingredients)
}

func TestHandleMessageSimilarTo(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	t.Run("known reference", func(t *testing.T) {
		rctx, _, err := engine.HandleMessage(ctx, "alice", "Recommend something like Hot Creamy Bush")
		require.NoError(t, err)

		assert.Equal(t, models.IntentSimilarTo, rctx.Intent.Type)
		assert.Equal(t, "Hot Creamy Bush", rctx.Intent.Reference)
		assert.Empty(t, rctx.UnknownReference)
		require.NotEmpty(t, rctx.Records)
		for _, result := range rctx.Records {
			assert.NotEqual(t, "Hot Creamy Bush", result.Record.Name)
		}
	})

	t.Run("unknown reference", func(t *testing.T) {
		rctx, _, err := engine.HandleMessage(ctx, "alice", "Recommend something like the Flaming Dragon")
		require.NoError(t, err)

		assert.Equal(t, "Flaming Dragon", rctx.UnknownReference)
		assert.Empty(t, rctx.Records)
	})
}

func TestHandleMessageRecommendationWithoutPreferences(t *testing.T) {
	engine, _ := newTestEngine(t)

	rctx, _, err := engine.HandleMessage(context.Background(), "newcomer", "What cocktail should I drink tonight?")
	require.NoError(t, err)

	assert.Equal(t, models.IntentRecommendation, rctx.Intent.Type)
	assert.True(t, rctx.NeedsPreferences)
	assert.NotEmpty(t, rctx.Records)
}

func TestHandleMessageRecommendationWithPreferences(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.AddPreferences(ctx, "alice", []string{"coffee"}, nil)
	require.NoError(t, err)

	rctx, _, err := engine.HandleMessage(ctx, "alice", "Suggest a cocktail for me")
	require.NoError(t, err)

	assert.False(t, rctx.NeedsPreferences)
	require.NotEmpty(t, rctx.Records)
	for _, result := range rctx.Records {
		assert.True(t, result.Record.HasIngredient("coffee"))
	}
}

func TestHandleMessageUnclassified(t *testing.T) {
	engine, _ := newTestEngine(t)

	rctx, _, err := engine.HandleMessage(context.Background(), "alice", "something refreshing for a hot day")
	require.NoError(t, err)

	assert.Equal(t, models.IntentUnclassified, rctx.Intent.Type)
	assert.LessOrEqual(t, len(rctx.Records), 3)
}

func TestEnginePreferenceManagement(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	snapshot, err := engine.AddPreferences(ctx, "alice", []string{"rum"}, []string{"Mojito"})
	require.NoError(t, err)
	assert.Equal(t, []string{"rum"}, snapshot.Ingredients)
	assert.Equal(t, []string{"mojito"}, snapshot.Cocktails)

	snapshot, err = engine.RemovePreference(ctx, "alice", KindIngredient, "rum")
	require.NoError(t, err)
	assert.Empty(t, snapshot.Ingredients)
	assert.Equal(t, []string{"mojito"}, snapshot.Cocktails)

	// removing what was never stored changes nothing
	snapshot, err = engine.RemovePreference(ctx, "alice", KindCocktail, "negroni")
	require.NoError(t, err)
	assert.Equal(t, []string{"mojito"}, snapshot.Cocktails)

	_, err = engine.RemovePreference(ctx, "alice", PreferenceKind("glassware"), "coupe")
	assert.Error(t, err)
}

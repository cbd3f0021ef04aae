package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tippleai/models"
)

func newTestRetriever(t *testing.T) *Retriever {
	t.Helper()
	return NewRetriever(newTestCatalog(t), NewEmbedder("", "simple"), zerolog.Nop())
}

func TestRouteIngredientLookup(t *testing.T) {
	retriever := newTestRetriever(t)

	route := retriever.Route(models.QueryIntent{
		Type:   models.IntentIngredientLookup,
		Tokens: []string{"pineapple juice"},
		Count:  5,
	}, "", models.PreferenceSnapshot{})

	require.NotEmpty(t, route.results)
	for _, result := range route.results {
		assert.True(t, result.Record.HasIngredient("pineapple juice"))
	}
}

func TestRouteCocktailLookup(t *testing.T) {
	retriever := newTestRetriever(t)

	t.Run("known cocktail", func(t *testing.T) {
		route := retriever.Route(models.QueryIntent{
			Type:      models.IntentCocktailLookup,
			Reference: "mojito",
		}, "", models.PreferenceSnapshot{})

		require.Len(t, route.results, 1)
		assert.Equal(t, "Mojito", route.results[0].Record.Name)
		assert.Empty(t, route.unknownReference)
	})

	t.Run("unknown cocktail", func(t *testing.T) {
		route := retriever.Route(models.QueryIntent{
			Type:      models.IntentCocktailLookup,
			Reference: "Flaming Dragon",
		}, "", models.PreferenceSnapshot{})

		assert.Empty(t, route.results)
		assert.Equal(t, "Flaming Dragon", route.unknownReference)
	})
}

func TestRouteRecommendation(t *testing.T) {
	retriever := newTestRetriever(t)
	intent := models.QueryIntent{Type: models.IntentRecommendation, Count: 3}

	t.Run("no stored favorites asks for preferences", func(t *testing.T) {
		route := retriever.Route(intent, "", models.PreferenceSnapshot{})

		assert.True(t, route.needsPreferences)
		assert.Len(t, route.results, 3)
	})

	t.Run("favorites drive the ranking", func(t *testing.T) {
		prefs := models.PreferenceSnapshot{Ingredients: []string{"rum", "pineapple juice"}}
		route := retriever.Route(models.QueryIntent{Type: models.IntentRecommendation, Count: 5}, "", prefs)

		assert.False(t, route.needsPreferences)
		require.NotEmpty(t, route.results)
		// Pina Colada matches both favorites and must outrank single matches
		assert.Equal(t, "Pina Colada", route.results[0].Record.Name)
		for _, result := range route.results {
			assert.Greater(t, result.Record.MatchCount(prefs.Ingredients), 0)
		}
	})
}

func TestRouteSimilarTo(t *testing.T) {
	retriever := newTestRetriever(t)

	t.Run("excludes the reference itself", func(t *testing.T) {
		route := retriever.Route(models.QueryIntent{
			Type:      models.IntentSimilarTo,
			Reference: "Hot Creamy Bush",
			Count:     5,
		}, "", models.PreferenceSnapshot{})

		require.NotEmpty(t, route.results)
		for _, result := range route.results {
			assert.NotEqual(t, "Hot Creamy Bush", result.Record.Name)
		}
	})

	t.Run("unknown reference is reported, not an error", func(t *testing.T) {
		route := retriever.Route(models.QueryIntent{
			Type:      models.IntentSimilarTo,
			Reference: "Flaming Dragon",
			Count:     5,
		}, "", models.PreferenceSnapshot{})

		assert.Empty(t, route.results)
		assert.Equal(t, "Flaming Dragon", route.unknownReference)
	})
}

func TestRoutePreferenceQuery(t *testing.T) {
	retriever := newTestRetriever(t)

	route := retriever.Route(models.QueryIntent{Type: models.IntentPreferenceQuery}, "", models.PreferenceSnapshot{
		Ingredients: []string{"rum"},
	})

	assert.Empty(t, route.results)
	assert.False(t, route.needsPreferences)
}

func TestRouteUnclassified(t *testing.T) {
	retriever := newTestRetriever(t)

	route := retriever.Route(models.QueryIntent{Type: models.IntentUnclassified}, "something refreshing with mint and lime", models.PreferenceSnapshot{})

	assert.LessOrEqual(t, len(route.results), unclassifiedTopK)
	assert.NotEmpty(t, route.results)
}

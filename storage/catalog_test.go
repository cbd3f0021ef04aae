package storage

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tippleai/models"
)

// stubEmbedder returns canned vectors so similarity ordering is under test
// control.
type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) GenerateEmbedding(text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func testRecords() []*models.CocktailRecord {
	return []*models.CocktailRecord{
		{
			Name:        "Mojito",
			Ingredients: []string{"white rum", "lime juice", "mint leaves", "sugar"},
			Preparation: "Muddle and build",
			IsAlcoholic: true,
			Embedding:   []float32{1, 0, 0},
		},
		{
			Name:        "Daiquiri",
			Ingredients: []string{"white rum", "lime juice", "sugar syrup"},
			Preparation: "Shake and strain",
			IsAlcoholic: true,
			Embedding:   []float32{0.9, 0.1, 0},
		},
		{
			Name:        "Virgin Colada",
			Ingredients: []string{"pineapple juice", "coconut cream"},
			Preparation: "Blend with ice",
			IsAlcoholic: false,
			Embedding:   []float32{0, 1, 0},
		},
		{
			Name:        "Espresso Martini",
			Ingredients: []string{"vodka", "coffee liqueur", "espresso"},
			Preparation: "Shake hard and strain",
			IsAlcoholic: true,
			Embedding:   []float32{0, 0, 1},
		},
	}
}

func buildTestCatalog(t *testing.T, embedder Embedder) *Catalog {
	t.Helper()
	catalog, err := BuildCatalog(testRecords(), embedder, zerolog.Nop())
	require.NoError(t, err)
	return catalog
}

func TestBuildCatalogValidation(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{1, 0, 0}}

	t.Run("empty identifier", func(t *testing.T) {
		records := testRecords()
		records[1].Name = "  "
		_, err := BuildCatalog(records, embedder, zerolog.Nop())
		assert.ErrorIs(t, err, models.ErrDataIntegrity)
	})

	t.Run("no ingredients", func(t *testing.T) {
		records := testRecords()
		records[2].Ingredients = nil
		_, err := BuildCatalog(records, embedder, zerolog.Nop())
		assert.ErrorIs(t, err, models.ErrDataIntegrity)
	})

	t.Run("embedding failure aborts the build", func(t *testing.T) {
		records := testRecords()
		records[0].Embedding = nil
		_, err := BuildCatalog(records, &stubEmbedder{err: models.ErrEmbeddingUnavailable}, zerolog.Nop())
		assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
	})

	t.Run("positions follow load order", func(t *testing.T) {
		catalog := buildTestCatalog(t, embedder)
		for i, record := range catalog.All() {
			assert.Equal(t, i, record.Position)
		}
	})
}

func TestSearchByVector(t *testing.T) {
	catalog := buildTestCatalog(t, &stubEmbedder{vector: []float32{1, 0, 0}})

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		results := catalog.SearchByVector([]float32{1, 0, 0}, 2, nil)
		require.Len(t, results, 2)
		assert.Equal(t, "Mojito", results[0].Record.Name)
		assert.Equal(t, "Daiquiri", results[1].Record.Name)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("k bounds the result", func(t *testing.T) {
		assert.Len(t, catalog.SearchByVector([]float32{1, 0, 0}, 1, nil), 1)
		assert.Len(t, catalog.SearchByVector([]float32{1, 0, 0}, 100, nil), 4)
		assert.Empty(t, catalog.SearchByVector([]float32{1, 0, 0}, 0, nil))
	})

	t.Run("filter excludes records", func(t *testing.T) {
		results := catalog.SearchByVector([]float32{1, 0, 0}, 10, func(r *models.CocktailRecord) bool {
			return r.Name != "Mojito"
		})
		for _, result := range results {
			assert.NotEqual(t, "Mojito", result.Record.Name)
		}
	})

	t.Run("score ties keep catalog order", func(t *testing.T) {
		// orthogonal query scores Mojito and Daiquiri near zero; the
		// earlier record must come first among equals
		results := catalog.SearchByVector([]float32{0, 0, 1}, 4, nil)
		require.Len(t, results, 4)
		assert.Equal(t, "Espresso Martini", results[0].Record.Name)
	})
}

func TestSearchByIngredients(t *testing.T) {
	catalog := buildTestCatalog(t, &stubEmbedder{vector: []float32{1, 0, 0}})

	t.Run("match any", func(t *testing.T) {
		results := catalog.SearchByIngredients([]string{"lime", "pineapple juice"}, MatchAny, models.AlcoholAny, 10)
		names := resultNames(results)
		assert.Contains(t, names, "Mojito")
		assert.Contains(t, names, "Daiquiri")
		assert.Contains(t, names, "Virgin Colada")
		assert.NotContains(t, names, "Espresso Martini")
	})

	t.Run("match all", func(t *testing.T) {
		results := catalog.SearchByIngredients([]string{"white rum", "mint"}, MatchAll, models.AlcoholAny, 10)
		assert.Equal(t, []string{"Mojito"}, resultNames(results))
	})

	t.Run("non-alcoholic filter", func(t *testing.T) {
		results := catalog.SearchByIngredients([]string{"juice"}, MatchAny, models.NonAlcoholicOnly, 10)
		assert.Equal(t, []string{"Virgin Colada"}, resultNames(results))
	})

	t.Run("alcoholic filter", func(t *testing.T) {
		results := catalog.SearchByIngredients([]string{"juice"}, MatchAny, models.AlcoholOnly, 10)
		for _, result := range results {
			assert.True(t, result.Record.IsAlcoholic)
		}
	})

	t.Run("k caps results", func(t *testing.T) {
		results := catalog.SearchByIngredients([]string{"lime"}, MatchAny, models.AlcoholAny, 1)
		assert.Len(t, results, 1)
	})

	t.Run("no matches is empty, not an error", func(t *testing.T) {
		assert.Empty(t, catalog.SearchByIngredients([]string{"absinthe"}, MatchAny, models.AlcoholAny, 10))
	})

	t.Run("embedder outage falls back to lexical order", func(t *testing.T) {
		failing, err := BuildCatalog(testRecords(), &stubEmbedder{vector: []float32{1, 0, 0}}, zerolog.Nop())
		require.NoError(t, err)
		failing.embedder = &stubEmbedder{err: models.ErrEmbeddingUnavailable}

		results := failing.SearchByIngredients([]string{"lime"}, MatchAny, models.AlcoholAny, 10)
		assert.Equal(t, []string{"Mojito", "Daiquiri"}, resultNames(results))
	})
}

func TestGetByIdentifier(t *testing.T) {
	catalog := buildTestCatalog(t, &stubEmbedder{vector: []float32{1, 0, 0}})

	record, err := catalog.GetByIdentifier("mOjItO")
	require.NoError(t, err)
	assert.Equal(t, "Mojito", record.Name)

	_, err = catalog.GetByIdentifier("Flaming Dragon")
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.True(t, catalog.HasCocktail("daiquiri"))
	assert.False(t, catalog.HasCocktail("negroni"))
}

func TestVocabulary(t *testing.T) {
	catalog := buildTestCatalog(t, &stubEmbedder{vector: []float32{1, 0, 0}})

	assert.True(t, catalog.HasToken("white rum"))
	assert.True(t, catalog.HasToken("espresso"))
	assert.False(t, catalog.HasToken("rum"))

	vocab := catalog.Vocabulary()
	assert.Len(t, vocab, 10)
	assert.IsIncreasing(t, vocab)
}

func TestSample(t *testing.T) {
	catalog := buildTestCatalog(t, &stubEmbedder{vector: []float32{1, 0, 0}})

	results := catalog.Sample(2)
	assert.Len(t, results, 2)
	assert.NotEqual(t, results[0].Record.Name, results[1].Record.Name)

	assert.Len(t, catalog.Sample(100), catalog.Size())
	assert.Empty(t, catalog.Sample(0))
}

func resultNames(results []models.SearchResult) []string {
	names := make([]string, len(results))
	for i, result := range results {
		names[i] = result.Record.Name
	}
	return names
}

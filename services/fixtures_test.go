package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"tippleai/models"
	"tippleai/storage"
)

// newTestCatalog builds a small fixture catalog with the local hashing
// embedder, so tests need no backend.
func newTestCatalog(t *testing.T) *storage.Catalog {
	t.Helper()

	records := []*models.CocktailRecord{
		{
			Name:        "Mojito",
			Ingredients: []string{"white rum", "lime juice", "mint leaves", "sugar"},
			Measures:    []string{"4.5 cl", "2 cl", "", "2 tsp"},
			Preparation: "Muddle mint with sugar and lime, add rum, top with soda",
			Garnish:     "Mint sprig",
			Glass:       "Highball",
			IsAlcoholic: true,
		},
		{
			Name:        "Cuba Libre",
			Ingredients: []string{"rum", "cola", "lime juice"},
			Measures:    []string{"5 cl", "12 cl", "1 cl"},
			Preparation: "Build over ice and stir gently",
			IsAlcoholic: true,
		},
		{
			Name:        "Pina Colada",
			Ingredients: []string{"rum", "pineapple juice", "coconut cream"},
			Measures:    []string{"5 cl", "9 cl", "3 cl"},
			Preparation: "Blend with crushed ice until smooth",
			Glass:       "Hurricane",
			IsAlcoholic: true,
		},
		{
			Name:        "Hot Creamy Bush",
			Ingredients: []string{"irish whiskey", "irish cream", "coffee"},
			Measures:    []string{"4 cl", "3 cl", "12 cl"},
			Preparation: "Pour whiskey and cream into hot coffee",
			IsAlcoholic: true,
		},
		{
			Name:        "Virgin Colada",
			Ingredients: []string{"pineapple juice", "coconut cream"},
			Measures:    []string{"12 cl", "4 cl"},
			Preparation: "Blend with ice, serve unmixed with spirits",
			IsAlcoholic: false,
		},
		{
			Name:        "Espresso Martini",
			Ingredients: []string{"vodka", "coffee liqueur", "espresso"},
			Measures:    []string{"5 cl", "1 cl", "4 cl"},
			Preparation: "Shake hard with ice and double strain",
			Glass:       "Coupe",
			IsAlcoholic: true,
		},
	}

	catalog, err := storage.BuildCatalog(records, NewEmbedder("", "simple"), zerolog.Nop())
	require.NoError(t, err)
	return catalog
}

func newTestEngine(t *testing.T) (*Engine, *storage.MemoryPreferenceStore) {
	t.Helper()
	store := storage.NewMemoryPreferenceStore()
	engine := NewEngine(newTestCatalog(t), store, NewEmbedder("", "simple"), 10, zerolog.Nop())
	return engine, store
}

package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"

	"tippleai/models"
)

// measureRe strips leading quantities and units from an ingredient segment,
// e.g. "4.5 cl white rum" -> "white rum". The stripped prefix is kept as the
// measured amount for that position.
var measureRe = regexp.MustCompile(`(?i)^\d+[\d/.,\s]*\s*(?:oz|ml|cl|dash(?:es)?|teaspoons?|tablespoons?|tsp|tbsp|shots?|parts?|pinch(?:es)?|drops?|splash(?:es)?|sprigs?|slices?|wedges?|cubes?|leaves|barspoons?)?\.?\s*(?:of\s+)?`)

var parensRe = regexp.MustCompile(`\([^)]*\)`)

var segmentRe = regexp.MustCompile(`[,;\n]`)

var nonAlcoholicMarkers = []string{
	"non-alcoholic", "non alcoholic", "alcohol-free", "alcohol free", "virgin",
}

// LoadCatalogCSV reads the cocktail dataset from a CSV file. The header is
// matched case-insensitively; name, ingredients and preparation are required
// columns, garnish and glass are optional. Embeddings are computed later by
// BuildCatalog, not here.
func LoadCatalogCSV(path string) ([]*models.CocktailRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("dataset %s has no data rows: %w", path, models.ErrDataIntegrity)
	}

	cols := map[string]int{}
	for i, col := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"name", "ingredients"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("dataset missing column %q: %w", required, models.ErrDataIntegrity)
		}
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	records := make([]*models.CocktailRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rawIngredients := field(row, "ingredients")
		ingredients, measures := ParseIngredients(rawIngredients)

		records = append(records, &models.CocktailRecord{
			Name:        field(row, "name"),
			Ingredients: ingredients,
			Measures:    measures,
			Garnish:     field(row, "garnish"),
			Preparation: field(row, "preparation"),
			Glass:       field(row, "glass"),
			IsAlcoholic: isAlcoholic(rawIngredients),
			Position:    len(records),
		})
	}

	return records, nil
}

// ParseIngredients splits raw ingredient text into normalized ingredient
// tokens and their measured amounts. Both slices keep the original order and
// have equal length.
func ParseIngredients(text string) (ingredients, measures []string) {
	if text == "" {
		return nil, nil
	}

	for _, segment := range segmentRe.Split(text, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		measure := strings.TrimSpace(measureRe.FindString(segment))
		rest := measureRe.ReplaceAllString(segment, "")
		rest = parensRe.ReplaceAllString(rest, "")

		token := NormalizeToken(rest)
		if token == "" {
			continue
		}
		ingredients = append(ingredients, token)
		measures = append(measures, measure)
	}

	return ingredients, measures
}

// NormalizeToken lower-cases and trims an ingredient mention down to the form
// used in the catalog vocabulary.
func NormalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, ".,!?;:\"'()[]{}")
	return strings.Join(strings.Fields(s), " ")
}

func isAlcoholic(ingredientsText string) bool {
	lower := strings.ToLower(ingredientsText)
	for _, marker := range nonAlcoholicMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

package models

import "strings"

// CocktailRecord is one entry from the cocktail catalog. Records are built
// once at load time and never mutated afterwards; the catalog index owns them.
type CocktailRecord struct {
	Name        string    `json:"name"`
	Ingredients []string  `json:"ingredients"`
	Measures    []string  `json:"measures"`
	Garnish     string    `json:"garnish,omitempty"`
	Preparation string    `json:"preparation"`
	Glass       string    `json:"glass,omitempty"`
	IsAlcoholic bool      `json:"is_alcoholic"`
	Embedding   []float32 `json:"-"`

	// Position is the record's index in catalog load order, used as the
	// tie-breaker when relevance scores are equal.
	Position int `json:"-"`
}

// Content returns the text that gets embedded for this record.
func (r *CocktailRecord) Content() string {
	var sb strings.Builder
	sb.WriteString("Cocktail: ")
	sb.WriteString(r.Name)
	sb.WriteString("\nIngredients: ")
	sb.WriteString(strings.Join(r.Ingredients, ", "))
	sb.WriteString("\nPreparation: ")
	sb.WriteString(r.Preparation)
	if r.Garnish != "" {
		sb.WriteString("\nGarnish: ")
		sb.WriteString(r.Garnish)
	}
	if r.Glass != "" {
		sb.WriteString("\nGlass: ")
		sb.WriteString(r.Glass)
	}
	return sb.String()
}

// HasIngredient reports whether the record contains the given normalized
// token. Matching is by whole-word containment, so "lemon" matches the
// ingredient "lemon juice" but not "lemonade".
func (r *CocktailRecord) HasIngredient(token string) bool {
	for _, ing := range r.Ingredients {
		if ingredientMatches(ing, token) {
			return true
		}
	}
	return false
}

// MatchCount returns how many of the given tokens appear in the record's
// ingredient list.
func (r *CocktailRecord) MatchCount(tokens []string) int {
	n := 0
	for _, tok := range tokens {
		if r.HasIngredient(tok) {
			n++
		}
	}
	return n
}

// ingredientMatches reports whether token appears in the ingredient name,
// either exactly or as a whole-word substring.
func ingredientMatches(ingredient, token string) bool {
	if ingredient == token {
		return true
	}
	idx := strings.Index(ingredient, token)
	for idx >= 0 {
		startOK := idx == 0 || ingredient[idx-1] == ' '
		end := idx + len(token)
		endOK := end == len(ingredient) || ingredient[end] == ' '
		if startOK && endOK {
			return true
		}
		next := strings.Index(ingredient[idx+1:], token)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

// SearchResult pairs a catalog record with its relevance score.
type SearchResult struct {
	Record *CocktailRecord `json:"record"`
	Score  float64         `json:"score"`
}

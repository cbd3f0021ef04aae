package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"

	"tippleai/models"
	"tippleai/storage"
)

// Extractor detects preference statements in a message and persists the
// mentions it can resolve against the catalog. Resolution favors precision:
// a span that matches nothing in the vocabulary or the cocktail list is
// dropped silently rather than stored as a guess.
type Extractor struct {
	catalog *storage.Catalog
	store   storage.PreferenceStore
	log     zerolog.Logger
}

// preferenceRes are the phrase templates that declare a preference. Each
// capture is a raw mention span; trailing clauses like "in my drinks" are
// cut off before the span ends.
var preferenceRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bi (?:really |just )?(?:like|love|enjoy|prefer)(?: to (?:use|drink|make))?(?: the)? ([^.!?]+?)(?: in my (?:drinks?|cocktails?))?[.!?]?$`),
	regexp.MustCompile(`(?i)\bmy favou?rite (?:ingredients?|cocktails?|drinks?)?\s?(?:is|are) (?:the )?([^.!?]+?)[.!?]?$`),
	regexp.MustCompile(`(?i)\bi have ([^.!?]+?)(?: at home| in my bar)?[.!?]?$`),
}

func NewExtractor(catalog *storage.Catalog, store storage.PreferenceStore, logger zerolog.Logger) *Extractor {
	return &Extractor{
		catalog: catalog,
		store:   store,
		log:     logger.With().Str("component", "extractor").Logger(),
	}
}

// Process scans the message, resolves mentions, and unions the resolved
// items into the user's preference sets. It returns only the newly added
// items, so re-processing the same message is a no-op.
func (e *Extractor) Process(ctx context.Context, userID, message string) (*models.DetectedPreferences, error) {
	ingredients, cocktails := e.resolveMentions(message)
	if len(ingredients) == 0 && len(cocktails) == 0 {
		return &models.DetectedPreferences{}, nil
	}

	added, err := e.store.Add(ctx, userID, ingredients, cocktails)
	if err != nil {
		return nil, err
	}
	if added.Changed() {
		e.log.Info().
			Str("user_id", userID).
			Strs("ingredients", added.Ingredients).
			Strs("cocktails", added.Cocktails).
			Msg("Stored new preferences")
	}
	return added, nil
}

// resolveMentions extracts raw spans and matches each piece against the
// catalog vocabulary and cocktail identifiers.
func (e *Extractor) resolveMentions(message string) (ingredients, cocktails []string) {
	for _, re := range preferenceRes {
		for _, match := range re.FindAllStringSubmatch(message, -1) {
			for _, piece := range splitList(match[1]) {
				if name, ok := e.resolveCocktail(piece); ok {
					cocktails = append(cocktails, name)
					continue
				}
				if token, ok := e.resolveIngredient(piece); ok {
					ingredients = append(ingredients, token)
				}
				// unresolved spans are dropped
			}
		}
	}
	return ingredients, cocktails
}

// resolveIngredient matches a normalized piece against the vocabulary:
// exact, singular form, bounded edit distance, then longest whole-word
// containment of a vocabulary token.
func (e *Extractor) resolveIngredient(piece string) (string, bool) {
	token := storage.NormalizeToken(piece)
	if token == "" {
		return "", false
	}

	if e.catalog.HasToken(token) {
		return token, true
	}
	if singular := strings.TrimSuffix(token, "s"); singular != token && e.catalog.HasToken(singular) {
		return singular, true
	}

	if match, ok := closestMatch(token, e.catalog.Vocabulary()); ok {
		return match, true
	}

	// "white rum" resolves to "rum" when only "rum" is known; prefer the
	// longest vocabulary token contained in the piece.
	best := ""
	for _, vocabToken := range e.catalog.Vocabulary() {
		if len(vocabToken) > len(best) && containsWord(token, vocabToken) {
			best = vocabToken
		}
	}
	if best != "" {
		return best, true
	}

	return "", false
}

// resolveCocktail matches a piece against catalog identifiers, exact first,
// then bounded edit distance.
func (e *Extractor) resolveCocktail(piece string) (string, bool) {
	name := storage.NormalizeToken(piece)
	if name == "" {
		return "", false
	}

	if record, err := e.catalog.GetByIdentifier(name); err == nil {
		return strings.ToLower(record.Name), true
	}

	var lowered []string
	for _, candidate := range e.catalog.Names() {
		lowered = append(lowered, strings.ToLower(candidate))
	}
	if match, ok := closestMatch(name, lowered); ok {
		return match, true
	}
	return "", false
}

// closestMatch returns the candidate within the edit-distance bound, if any.
// The bound scales with mention length so short tokens stay strict: length
// up to 4 allows no edits, up to 8 allows one, longer mentions allow two.
func closestMatch(mention string, candidates []string) (string, bool) {
	bound := 0
	switch {
	case len(mention) > 8:
		bound = 2
	case len(mention) > 4:
		bound = 1
	}
	if bound == 0 {
		return "", false
	}

	best := ""
	bestDist := bound + 1
	for _, candidate := range candidates {
		if diff := len(candidate) - len(mention); diff > bound || diff < -bound {
			continue
		}
		if dist := levenshtein.ComputeDistance(mention, candidate); dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}
	return best, best != ""
}

// containsWord reports whether needle appears in haystack on word
// boundaries.
func containsWord(haystack, needle string) bool {
	if haystack == needle {
		return true
	}
	for _, word := range strings.Fields(haystack) {
		if word == needle {
			return true
		}
	}
	// multi-word vocabulary tokens ("pineapple juice") need substring checks
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		return false
	}
	startOK := idx == 0 || haystack[idx-1] == ' '
	end := idx + len(needle)
	endOK := end == len(haystack) || haystack[end] == ' '
	return startOK && endOK
}

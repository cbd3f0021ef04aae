package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"tippleai/models"
	"tippleai/storage"
)

// unclassifiedTopK caps the best-effort search for messages no rule matched,
// keeping broad context from getting noisy.
const unclassifiedTopK = 3

// Retriever translates a QueryIntent into catalog and preference store calls
// and normalizes the result shape for the assembler.
type Retriever struct {
	catalog  *storage.Catalog
	embedder *Embedder
	log      zerolog.Logger
}

// routed is the normalized outcome of one routing pass.
type routed struct {
	results          []models.SearchResult
	needsPreferences bool
	unknownReference string
}

func NewRetriever(catalog *storage.Catalog, embedder *Embedder, logger zerolog.Logger) *Retriever {
	return &Retriever{
		catalog:  catalog,
		embedder: embedder,
		log:      logger.With().Str("component", "retriever").Logger(),
	}
}

// Route dispatches on the intent. Retrieval never fails the request: unknown
// identifiers become a user-facing outcome and embedding failures degrade to
// lexical or empty results.
func (r *Retriever) Route(intent models.QueryIntent, message string, prefs models.PreferenceSnapshot) routed {
	switch intent.Type {
	case models.IntentIngredientLookup:
		return routed{results: r.catalog.SearchByIngredients(intent.Tokens, storage.MatchAny, intent.Alcohol, intent.Count)}

	case models.IntentCocktailLookup:
		record, err := r.catalog.GetByIdentifier(intent.Reference)
		if errors.Is(err, models.ErrNotFound) {
			return routed{unknownReference: intent.Reference}
		}
		return routed{results: []models.SearchResult{{Record: record, Score: 1.0}}}

	case models.IntentRecommendation:
		return r.recommend(intent, prefs)

	case models.IntentSimilarTo:
		return r.similarTo(intent)

	case models.IntentPreferenceQuery:
		// preference store only, no catalog call
		return routed{}

	default:
		return r.generic(message)
	}
}

// recommend ranks by how many of the user's favorite ingredients each
// cocktail matches, then by similarity to the favorites embedding. Without
// stored favorites it falls back to a catalog sample and signals the
// assembler to ask for preferences instead of fabricating relevance.
func (r *Retriever) recommend(intent models.QueryIntent, prefs models.PreferenceSnapshot) routed {
	if len(prefs.Ingredients) == 0 {
		return routed{
			results:          r.catalog.Sample(intent.Count),
			needsPreferences: true,
		}
	}

	results := r.catalog.SearchByIngredients(prefs.Ingredients, storage.MatchAny, intent.Alcohol, intent.Count)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Record.MatchCount(prefs.Ingredients) > results[j].Record.MatchCount(prefs.Ingredients)
	})
	return routed{results: results}
}

// similarTo resolves the reference cocktail and searches by its embedding,
// excluding the reference itself.
func (r *Retriever) similarTo(intent models.QueryIntent) routed {
	record, err := r.catalog.GetByIdentifier(intent.Reference)
	if errors.Is(err, models.ErrNotFound) {
		r.log.Info().Str("reference", intent.Reference).Msg("Similarity reference not in catalog")
		return routed{unknownReference: intent.Reference}
	}

	exclude := strings.ToLower(record.Name)
	results := r.catalog.SearchByVector(record.Embedding, intent.Count, func(candidate *models.CocktailRecord) bool {
		return strings.ToLower(candidate.Name) != exclude
	})
	return routed{results: results}
}

// generic is the best-effort fallback for unclassified messages: a low-k
// vector search over an embedding of the whole message.
func (r *Retriever) generic(message string) routed {
	query, err := r.embedder.GenerateEmbedding(message)
	if err != nil {
		// no lexical path exists for free text, degrade to no records
		r.log.Warn().Err(err).Msg("Embedding unavailable for generic lookup")
		return routed{}
	}
	return routed{results: r.catalog.SearchByVector(query, unclassifiedTopK, nil)}
}

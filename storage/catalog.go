package storage

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"tippleai/models"
)

// Embedder turns text into a fixed-dimensionality vector. Deterministic for
// identical input.
type Embedder interface {
	GenerateEmbedding(text string) ([]float32, error)
}

// MatchMode selects how multiple ingredient tokens combine in a lexical
// filter.
type MatchMode int

const (
	MatchAny MatchMode = iota
	MatchAll
)

// RecordFilter restricts a vector search to records satisfying the predicate.
// A nil filter admits everything.
type RecordFilter func(*models.CocktailRecord) bool

// Catalog is the load-once, read-many store of cocktail records plus a
// brute-force cosine similarity index over their embeddings. It is immutable
// after BuildCatalog returns, so concurrent reads need no locking.
type Catalog struct {
	records []*models.CocktailRecord
	byName  map[string]*models.CocktailRecord
	vocab   []string
	vocabSet map[string]struct{}

	embedder Embedder
	log      zerolog.Logger
}

// BuildCatalog validates every record, computes its embedding and constructs
// the index. A record with an empty identifier or zero ingredients aborts the
// build with ErrDataIntegrity.
func BuildCatalog(records []*models.CocktailRecord, embedder Embedder, logger zerolog.Logger) (*Catalog, error) {
	c := &Catalog{
		records:  make([]*models.CocktailRecord, 0, len(records)),
		byName:   make(map[string]*models.CocktailRecord, len(records)),
		vocabSet: make(map[string]struct{}),
		embedder: embedder,
		log:      logger.With().Str("component", "catalog").Logger(),
	}

	for i, record := range records {
		if strings.TrimSpace(record.Name) == "" {
			return nil, fmt.Errorf("record %d has an empty identifier: %w", i, models.ErrDataIntegrity)
		}
		if len(record.Ingredients) == 0 {
			return nil, fmt.Errorf("record %q has no ingredients: %w", record.Name, models.ErrDataIntegrity)
		}

		if len(record.Embedding) == 0 {
			embedding, err := embedder.GenerateEmbedding(record.Content())
			if err != nil {
				return nil, fmt.Errorf("failed to embed record %q: %w", record.Name, err)
			}
			record.Embedding = embedding
		}

		record.Position = len(c.records)
		c.records = append(c.records, record)
		c.byName[strings.ToLower(record.Name)] = record

		for _, token := range record.Ingredients {
			if _, seen := c.vocabSet[token]; !seen {
				c.vocabSet[token] = struct{}{}
				c.vocab = append(c.vocab, token)
			}
		}
	}

	sort.Strings(c.vocab)
	c.log.Info().Int("records", len(c.records)).Int("vocabulary", len(c.vocab)).Msg("Catalog index built")
	return c, nil
}

// Size returns the number of records in the catalog.
func (c *Catalog) Size() int {
	return len(c.records)
}

// All returns the records in catalog order. Callers must treat them as
// read-only.
func (c *Catalog) All() []*models.CocktailRecord {
	return c.records
}

// SearchByVector returns up to k records ranked by descending cosine
// similarity to the query vector, restricted to records admitted by filter.
// Ties break by catalog insertion order. Zero matches is an empty result, not
// an error.
func (c *Catalog) SearchByVector(query []float32, k int, filter RecordFilter) []models.SearchResult {
	if k <= 0 || len(query) == 0 {
		return nil
	}

	results := make([]models.SearchResult, 0, len(c.records))
	for _, record := range c.records {
		if filter != nil && !filter(record) {
			continue
		}
		if len(record.Embedding) != len(query) {
			continue
		}
		results = append(results, models.SearchResult{
			Record: record,
			Score:  cosineSimilarity(query, record.Embedding),
		})
	}

	sortByScore(results)
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// SearchByIngredients filters records by ingredient membership and re-ranks
// the survivors by similarity to an embedding of the token set. When the
// embedder is unavailable the lexical result is returned in catalog order
// instead of failing the whole lookup.
func (c *Catalog) SearchByIngredients(tokens []string, match MatchMode, alcohol models.AlcoholFilter, k int) []models.SearchResult {
	if k <= 0 || len(tokens) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if t := NormalizeToken(token); t != "" {
			normalized = append(normalized, t)
		}
	}
	if len(normalized) == 0 {
		return nil
	}

	matched := make([]models.SearchResult, 0)
	for _, record := range c.records {
		if !alcoholAdmits(record, alcohol) {
			continue
		}
		count := record.MatchCount(normalized)
		if match == MatchAll && count < len(normalized) {
			continue
		}
		if match == MatchAny && count == 0 {
			continue
		}
		matched = append(matched, models.SearchResult{Record: record})
	}
	if len(matched) == 0 {
		return nil
	}

	queryText := "Cocktail with ingredients: " + strings.Join(normalized, ", ")
	query, err := c.embedder.GenerateEmbedding(queryText)
	if err != nil {
		c.log.Warn().Err(err).Msg("Embedding unavailable, returning lexical order")
	} else {
		for i := range matched {
			if len(matched[i].Record.Embedding) == len(query) {
				matched[i].Score = cosineSimilarity(query, matched[i].Record.Embedding)
			}
		}
		sortByScore(matched)
	}

	if len(matched) > k {
		matched = matched[:k]
	}
	return matched
}

// GetByIdentifier looks up a record by its name, case-insensitively.
func (c *Catalog) GetByIdentifier(name string) (*models.CocktailRecord, error) {
	record, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, models.ErrNotFound)
	}
	return record, nil
}

// HasCocktail reports whether the catalog knows the named cocktail.
func (c *Catalog) HasCocktail(name string) bool {
	_, err := c.GetByIdentifier(name)
	return !errors.Is(err, models.ErrNotFound)
}

// Vocabulary returns the sorted set of known ingredient tokens.
func (c *Catalog) Vocabulary() []string {
	return c.vocab
}

// HasToken reports whether the token is part of the catalog vocabulary.
func (c *Catalog) HasToken(token string) bool {
	_, ok := c.vocabSet[token]
	return ok
}

// Names returns all cocktail identifiers in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.records))
	for i, record := range c.records {
		names[i] = record.Name
	}
	return names
}

// Sample returns up to k records drawn at random, used as the
// popularity-agnostic fallback when a user has no stored preferences.
func (c *Catalog) Sample(k int) []models.SearchResult {
	if k <= 0 {
		return nil
	}
	if k > len(c.records) {
		k = len(c.records)
	}

	perm := rand.Perm(len(c.records))
	results := make([]models.SearchResult, k)
	for i := 0; i < k; i++ {
		results[i] = models.SearchResult{Record: c.records[perm[i]]}
	}
	return results
}

func alcoholAdmits(record *models.CocktailRecord, filter models.AlcoholFilter) bool {
	switch filter {
	case models.AlcoholOnly:
		return record.IsAlcoholic
	case models.NonAlcoholicOnly:
		return !record.IsAlcoholic
	default:
		return true
	}
}

// sortByScore orders results by descending score; equal scores keep catalog
// insertion order.
func sortByScore(results []models.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Record.Position < results[j].Record.Position
	})
}

// cosineSimilarity between two vectors of equal length.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := 0; i < len(a); i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

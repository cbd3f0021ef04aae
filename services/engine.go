package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"tippleai/models"
	"tippleai/storage"
)

// PreferenceKind selects which preference set an explicit removal targets.
type PreferenceKind string

const (
	KindIngredient PreferenceKind = "ingredient"
	KindCocktail   PreferenceKind = "cocktail"
)

// Engine is the query understanding and retrieval pipeline: classify the
// message, extract and persist preference statements, route retrieval, and
// assemble the bounded context for the generator. One Engine serves all
// users; per-user state lives in the preference store.
type Engine struct {
	catalog    *storage.Catalog
	prefs      storage.PreferenceStore
	classifier *Classifier
	extractor  *Extractor
	retriever  *Retriever
	assembler  *Assembler
	log        zerolog.Logger
}

func NewEngine(catalog *storage.Catalog, prefs storage.PreferenceStore, embedder *Embedder, contextBudget int, logger zerolog.Logger) *Engine {
	return &Engine{
		catalog:    catalog,
		prefs:      prefs,
		classifier: NewClassifier(),
		extractor:  NewExtractor(catalog, prefs, logger),
		retriever:  NewRetriever(catalog, embedder, logger),
		assembler:  NewAssembler(contextBudget),
		log:        logger.With().Str("component", "engine").Logger(),
	}
}

// HandleMessage runs the full pipeline for one chat message and returns the
// retrieved context plus the preferences the message newly added.
func (e *Engine) HandleMessage(ctx context.Context, userID, message string) (*models.RetrievedContext, *models.DetectedPreferences, error) {
	intent := e.classifier.Classify(message)

	detected, err := e.extractor.Process(ctx, userID, message)
	if err != nil {
		// extraction failure must not sink the whole request
		e.log.Error().Err(err).Str("user_id", userID).Msg("Preference extraction failed")
		detected = &models.DetectedPreferences{}
	}

	// snapshot taken after extraction so "I like X, what are my favorites?"
	// reflects X immediately
	snapshot, err := e.prefs.Get(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	route := e.retriever.Route(intent, message, snapshot)
	rctx := e.assembler.Assemble(intent, route, snapshot)

	e.log.Info().
		Str("user_id", userID).
		Str("intent", string(intent.Type)).
		Int("records", len(rctx.Records)).
		Bool("preferences_changed", detected.Changed()).
		Msg("Message handled")

	return rctx, detected, nil
}

// GetPreferences returns the user's current preference snapshot.
func (e *Engine) GetPreferences(ctx context.Context, userID string) (models.PreferenceSnapshot, error) {
	return e.prefs.Get(ctx, userID)
}

// AddPreferences stores explicit preference updates, bypassing extraction.
func (e *Engine) AddPreferences(ctx context.Context, userID string, ingredients, cocktails []string) (models.PreferenceSnapshot, error) {
	if _, err := e.prefs.Add(ctx, userID, ingredients, cocktails); err != nil {
		return models.PreferenceSnapshot{}, err
	}
	return e.prefs.Get(ctx, userID)
}

// RemovePreference removes one item from the named set. Removing an item the
// user never stored is a no-op.
func (e *Engine) RemovePreference(ctx context.Context, userID string, kind PreferenceKind, item string) (models.PreferenceSnapshot, error) {
	var ingredients, cocktails []string
	switch kind {
	case KindIngredient:
		ingredients = []string{item}
	case KindCocktail:
		cocktails = []string{item}
	default:
		return models.PreferenceSnapshot{}, fmt.Errorf("unknown preference kind %q", kind)
	}

	if err := e.prefs.Remove(ctx, userID, ingredients, cocktails); err != nil {
		return models.PreferenceSnapshot{}, err
	}
	return e.prefs.Get(ctx, userID)
}

// RemovePreferences removes batches from both sets.
func (e *Engine) RemovePreferences(ctx context.Context, userID string, ingredients, cocktails []string) (models.PreferenceSnapshot, error) {
	if err := e.prefs.Remove(ctx, userID, ingredients, cocktails); err != nil {
		return models.PreferenceSnapshot{}, err
	}
	return e.prefs.Get(ctx, userID)
}

// Catalog exposes the read-only catalog for the transport layer's direct
// lookup endpoints.
func (e *Engine) Catalog() *storage.Catalog {
	return e.catalog
}

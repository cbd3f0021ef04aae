package models

import "errors"

var (
	// ErrDataIntegrity marks a malformed catalog row. Fatal at load time.
	ErrDataIntegrity = errors.New("catalog data integrity violation")

	// ErrNotFound marks a cocktail identifier that is absent from the
	// catalog. Always recovered into a user-facing outcome, never a crash.
	ErrNotFound = errors.New("cocktail not found")

	// ErrEmbeddingUnavailable marks a failure of the embedding backend.
	// Callers degrade to lexical-only retrieval where possible.
	ErrEmbeddingUnavailable = errors.New("embedding backend unavailable")
)

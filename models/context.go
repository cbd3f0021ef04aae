package models

// PreferenceSnapshot is a point-in-time copy of a user's stored preferences.
// Both lists are sorted and deduplicated.
type PreferenceSnapshot struct {
	Ingredients []string `json:"favorite_ingredients"`
	Cocktails   []string `json:"favorite_cocktails"`
}

// IsEmpty reports whether the user has no stored preferences at all.
func (s PreferenceSnapshot) IsEmpty() bool {
	return len(s.Ingredients) == 0 && len(s.Cocktails) == 0
}

// DetectedPreferences lists the preference items a single message newly added
// to the store. Items that were already stored are not repeated here.
type DetectedPreferences struct {
	Ingredients []string `json:"ingredients"`
	Cocktails   []string `json:"cocktails"`
}

// Changed reports whether the message added anything new.
func (d *DetectedPreferences) Changed() bool {
	return d != nil && (len(d.Ingredients) > 0 || len(d.Cocktails) > 0)
}

// RetrievedContext is the bounded, ranked bundle handed to the generator for
// one message. It is built per request and never persisted.
type RetrievedContext struct {
	Intent      QueryIntent        `json:"intent"`
	Records     []SearchResult     `json:"records"`
	Preferences PreferenceSnapshot `json:"preferences"`

	// NeedsPreferences is set when a recommendation was requested but the
	// user has no stored favorites yet, so the generator should ask for
	// some alongside the fallback sample.
	NeedsPreferences bool `json:"needs_preferences,omitempty"`

	// UnknownReference carries the cocktail name the user mentioned when it
	// could not be resolved against the catalog.
	UnknownReference string `json:"unknown_reference,omitempty"`
}

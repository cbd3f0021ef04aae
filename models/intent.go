package models

// IntentType labels the classified purpose of a user message.
type IntentType string

const (
	IntentIngredientLookup IntentType = "ingredient_lookup"
	IntentCocktailLookup   IntentType = "cocktail_lookup"
	IntentRecommendation   IntentType = "recommendation"
	IntentSimilarTo        IntentType = "similar_to"
	IntentPreferenceQuery  IntentType = "preference_query"
	IntentUnclassified     IntentType = "unclassified"
)

// AlcoholFilter is the tri-state alcohol constraint extracted from a message.
type AlcoholFilter int

const (
	AlcoholAny AlcoholFilter = iota
	AlcoholOnly
	NonAlcoholicOnly
)

func (f AlcoholFilter) String() string {
	switch f {
	case AlcoholOnly:
		return "alcoholic"
	case NonAlcoholicOnly:
		return "non-alcoholic"
	default:
		return "any"
	}
}

// DefaultResultCount is used when a message does not ask for a specific
// number of results.
const DefaultResultCount = 5

// QueryIntent is the classifier output: an intent label plus the slots
// extracted from the message for that intent. Slots that do not apply to the
// intent are left at their zero value.
type QueryIntent struct {
	Type IntentType `json:"type"`

	// Tokens are the ingredient names extracted for IngredientLookup.
	Tokens []string `json:"tokens,omitempty"`

	// Reference is the cocktail name for CocktailLookup and SimilarTo.
	// Original casing from the message is preserved.
	Reference string `json:"reference,omitempty"`

	// Count is the requested number of results, DefaultResultCount if absent.
	Count int `json:"count,omitempty"`

	Alcohol AlcoholFilter `json:"alcohol,omitempty"`
}

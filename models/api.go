package models

// Request/response shapes for the HTTP layer.

type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message" binding:"required"`
}

type ChatResponse struct {
	Response            string              `json:"response"`
	DetectedPreferences DetectedPreferences `json:"detected_preferences"`
	ProcessingTimeMs    int64               `json:"processing_time_ms"`
}

type IngredientQueryRequest struct {
	Ingredients  []string `json:"ingredients" binding:"required"`
	Match        string   `json:"match,omitempty"` // "any" (default) or "all"
	Limit        int      `json:"limit,omitempty"`
	NonAlcoholic bool     `json:"non_alcoholic,omitempty"`
}

type RecommendationRequest struct {
	UserID      string   `json:"user_id"`
	SimilarTo   string   `json:"similar_to,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}

type CocktailListResponse struct {
	Cocktails []SearchResult `json:"cocktails"`
}

type PreferenceUpdateRequest struct {
	UserID      string   `json:"user_id"`
	Ingredients []string `json:"ingredients,omitempty"`
	Cocktails   []string `json:"cocktails,omitempty"`
}

type PreferenceResponse struct {
	UserID              string   `json:"user_id"`
	FavoriteIngredients []string `json:"favorite_ingredients"`
	FavoriteCocktails   []string `json:"favorite_cocktails"`
}

package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tippleai/config"
	"tippleai/models"
	"tippleai/services"
	"tippleai/storage"
)

const defaultUserID = "default_user"

type ChatController struct {
	config    *config.Config
	engine    *services.Engine
	generator *services.Generator
	log       zerolog.Logger
}

func NewChatController(cfg *config.Config, engine *services.Engine, generator *services.Generator, logger zerolog.Logger) *ChatController {
	log := logger.With().Str("component", "chat-controller").Logger()

	if err := generator.TestConnection(); err != nil {
		log.Warn().Err(err).Msg("Ollama generator connection test failed")
	} else {
		log.Info().Msg("Connected to Ollama LLM")
	}

	return &ChatController{
		config:    cfg,
		engine:    engine,
		generator: generator,
		log:       log,
	}
}

// Chat processes one chat message: runs the retrieval engine, then hands the
// assembled context to the LLM. Engine failures never leak internals to the
// user; they get a generic apology while the detail is logged.
func (cc *ChatController) Chat(c *gin.Context) {
	startTime := time.Now()
	requestID := uuid.NewString()

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}

	log := cc.log.With().Str("request_id", requestID).Str("user_id", req.UserID).Logger()
	log.Info().Str("message", req.Message).Msg("Chat message received")

	rctx, detected, err := cc.engine.HandleMessage(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		log.Error().Err(err).Msg("Engine failed")
		c.JSON(http.StatusOK, models.ChatResponse{
			Response:            "Sorry, something went wrong on my end. Could you try that again?",
			DetectedPreferences: models.DetectedPreferences{},
			ProcessingTimeMs:    time.Since(startTime).Milliseconds(),
		})
		return
	}

	answer := cc.answerFor(req.Message, rctx, log)

	c.JSON(http.StatusOK, models.ChatResponse{
		Response:            answer,
		DetectedPreferences: *detected,
		ProcessingTimeMs:    time.Since(startTime).Milliseconds(),
	})
}

// answerFor turns the retrieved context into the final reply. Unknown
// references short-circuit without an LLM round trip, and generation errors
// fall back to a plain rendering of the retrieved records.
func (cc *ChatController) answerFor(message string, rctx *models.RetrievedContext, log zerolog.Logger) string {
	if rctx.UnknownReference != "" {
		return fmt.Sprintf("I don't know a cocktail called %q. Could you check the spelling or try a different one?", rctx.UnknownReference)
	}

	answer, err := cc.generator.GenerateResponse(message, rctx)
	if err != nil {
		log.Warn().Err(err).Msg("Generation failed, falling back to retrieved records")
		return fallbackAnswer(rctx)
	}
	return answer
}

func fallbackAnswer(rctx *models.RetrievedContext) string {
	if len(rctx.Records) == 0 {
		return "I couldn't find anything matching that. Would you like to try different ingredients?"
	}

	names := make([]string, len(rctx.Records))
	for i, result := range rctx.Records {
		names[i] = result.Record.Name
	}
	return "Here's what I found: " + strings.Join(names, ", ")
}

// CocktailsByIngredient handles the direct lexical lookup endpoint.
func (cc *ChatController) CocktailsByIngredient(c *gin.Context) {
	var req models.IngredientQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = cc.config.TopK
	}
	match := storage.MatchAny
	if strings.EqualFold(req.Match, "all") {
		match = storage.MatchAll
	}
	alcohol := models.AlcoholAny
	if req.NonAlcoholic {
		alcohol = models.NonAlcoholicOnly
	}

	results := cc.engine.Catalog().SearchByIngredients(req.Ingredients, match, alcohol, limit)
	c.JSON(http.StatusOK, models.CocktailListResponse{Cocktails: results})
}

// NonAlcoholicCocktails lists every non-alcoholic record in the catalog.
func (cc *ChatController) NonAlcoholicCocktails(c *gin.Context) {
	results := make([]models.SearchResult, 0)
	for _, record := range cc.engine.Catalog().All() {
		if !record.IsAlcoholic {
			results = append(results, models.SearchResult{Record: record})
		}
	}
	c.JSON(http.StatusOK, models.CocktailListResponse{Cocktails: results})
}

// CocktailByName returns a single record, 404 when unknown.
func (cc *ChatController) CocktailByName(c *gin.Context) {
	record, err := cc.engine.Catalog().GetByIdentifier(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cocktail not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// Recommendations serves the structured recommendation endpoint.
func (cc *ChatController) Recommendations(c *gin.Context) {
	var req models.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}
	limit := req.Limit
	if limit <= 0 {
		limit = cc.config.TopK
	}

	catalog := cc.engine.Catalog()

	if req.SimilarTo != "" {
		record, err := catalog.GetByIdentifier(req.SimilarTo)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cocktail not found"})
			return
		}
		exclude := strings.ToLower(record.Name)
		results := catalog.SearchByVector(record.Embedding, limit, func(candidate *models.CocktailRecord) bool {
			return strings.ToLower(candidate.Name) != exclude
		})
		c.JSON(http.StatusOK, models.CocktailListResponse{Cocktails: results})
		return
	}

	if len(req.Ingredients) > 0 {
		results := catalog.SearchByIngredients(req.Ingredients, storage.MatchAny, models.AlcoholAny, limit)
		c.JSON(http.StatusOK, models.CocktailListResponse{Cocktails: results})
		return
	}

	prefs, err := cc.engine.GetPreferences(c.Request.Context(), req.UserID)
	if err != nil {
		cc.log.Error().Err(err).Msg("Failed to load preferences")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}
	if len(prefs.Ingredients) == 0 {
		c.JSON(http.StatusOK, models.CocktailListResponse{Cocktails: catalog.Sample(limit)})
		return
	}

	results := catalog.SearchByIngredients(prefs.Ingredients, storage.MatchAny, models.AlcoholAny, limit)
	c.JSON(http.StatusOK, models.CocktailListResponse{Cocktails: results})
}

// Preferences returns a user's saved preferences.
func (cc *ChatController) Preferences(c *gin.Context) {
	userID := c.Param("user_id")
	prefs, err := cc.engine.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		cc.log.Error().Err(err).Msg("Failed to load preferences")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}
	c.JSON(http.StatusOK, models.PreferenceResponse{
		UserID:              userID,
		FavoriteIngredients: prefs.Ingredients,
		FavoriteCocktails:   prefs.Cocktails,
	})
}

// UpdatePreferences adds explicit preference items.
func (cc *ChatController) UpdatePreferences(c *gin.Context) {
	var req models.PreferenceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}

	prefs, err := cc.engine.AddPreferences(c.Request.Context(), req.UserID, req.Ingredients, req.Cocktails)
	if err != nil {
		cc.log.Error().Err(err).Msg("Failed to update preferences")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences"})
		return
	}
	c.JSON(http.StatusOK, models.PreferenceResponse{
		UserID:              req.UserID,
		FavoriteIngredients: prefs.Ingredients,
		FavoriteCocktails:   prefs.Cocktails,
	})
}

// RemovePreferences removes explicit preference items; absent items are a
// no-op.
func (cc *ChatController) RemovePreferences(c *gin.Context) {
	var req models.PreferenceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}

	prefs, err := cc.engine.RemovePreferences(c.Request.Context(), req.UserID, req.Ingredients, req.Cocktails)
	if err != nil {
		cc.log.Error().Err(err).Msg("Failed to remove preferences")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove preferences"})
		return
	}
	c.JSON(http.StatusOK, models.PreferenceResponse{
		UserID:              req.UserID,
		FavoriteIngredients: prefs.Ingredients,
		FavoriteCocktails:   prefs.Cocktails,
	})
}

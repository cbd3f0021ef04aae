package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tippleai/config"
	"tippleai/controllers"
	"tippleai/evaluation"
	"tippleai/services"
	"tippleai/storage"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "evaluate" {
		// usage: go run main.go evaluate [dataset.json]
		runEvaluation()
		return
	}

	runServer()
}

func runServer() {
	cfg := config.Load()
	logger := newLogger(cfg)

	embedder := services.NewEmbedder(cfg.OllamaURL, cfg.OllamaEmbedModel)
	if err := embedder.TestConnection(); err != nil {
		logger.Warn().Err(err).Msg("Ollama embedder connection test failed")
	}

	records, err := storage.LoadCatalogCSV(cfg.CocktailsCSV)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.CocktailsCSV).Msg("Failed to load cocktail dataset")
	}

	catalog, err := storage.BuildCatalog(records, embedder, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build catalog index")
	}

	prefs, closePrefs, err := newPreferenceStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize preference store")
	}
	defer closePrefs()

	engine := services.NewEngine(catalog, prefs, embedder, cfg.ContextBudget, logger)
	generator := services.NewGenerator(cfg.OllamaURL, cfg.OllamaLLMModel)
	controller := controllers.NewChatController(cfg, engine, generator, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "tippleai",
		})
	})

	api := router.Group("/api")
	{
		api.POST("/chat", controller.Chat)
		api.POST("/cocktails/by-ingredient", controller.CocktailsByIngredient)
		api.GET("/cocktails/non-alcoholic", controller.NonAlcoholicCocktails)
		api.GET("/cocktails/:name", controller.CocktailByName)
		api.POST("/recommendations", controller.Recommendations)
		api.GET("/preferences/:user_id", controller.Preferences)
		api.POST("/preferences/update", controller.UpdatePreferences)
		api.POST("/preferences/remove", controller.RemovePreferences)
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info().
		Str("addr", addr).
		Int("catalog_records", catalog.Size()).
		Str("preference_backend", cfg.PreferenceBackend).
		Str("embed_model", cfg.OllamaEmbedModel).
		Msg("Cocktail advisor starting")

	if err := router.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

func newPreferenceStore(cfg *config.Config, logger zerolog.Logger) (storage.PreferenceStore, func(), error) {
	if cfg.PreferenceBackend == "mongo" {
		store, err := storage.NewMongoPreferenceStore(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	return storage.NewMemoryPreferenceStore(), func() {}, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.Environment == "production" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
}

func runEvaluation() {
	datasetPath := "evaluation/dataset.json"
	if len(os.Args) > 2 {
		datasetPath = os.Args[2]
	}

	questions, err := evaluation.LoadDataset(datasetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load dataset: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d questions from %s\n", len(questions), datasetPath)

	evaluator := evaluation.NewEvaluator()
	report, err := evaluator.Evaluate(questions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Evaluation failed: %v\n", err)
		os.Exit(1)
	}

	evaluation.PrintSummary(report)

	outputFile := "evaluation/results/baseline.json"
	if err := os.MkdirAll("evaluation/results", 0755); err == nil {
		if err := evaluation.SaveReport(report, outputFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Results saved to %s\n", outputFile)
	}
}

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Dataset
	CocktailsCSV string

	// Preference storage: "memory" or "mongo"
	PreferenceBackend string
	MongoURI          string
	MongoDatabase     string
	MongoCollection   string

	// Ollama
	OllamaURL        string // "http://localhost:11434"
	OllamaEmbedModel string // "simple" runs the local hashing embedder
	OllamaLLMModel   string

	Port        string
	Environment string

	// Retrieval
	TopK          int
	ContextBudget int
}

func Load() *Config {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	getEnv := func(key, defaultValue string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		return defaultValue
	}

	getEnvInt := func(key string, defaultValue int) int {
		valueStr := os.Getenv(key)
		if valueStr == "" {
			return defaultValue
		}
		value, err := strconv.Atoi(valueStr)
		if err != nil {
			return defaultValue
		}
		return value
	}

	return &Config{
		CocktailsCSV: getEnv("COCKTAILS_CSV", "data/cocktails.csv"),

		PreferenceBackend: getEnv("PREFERENCE_BACKEND", "memory"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "tippleai"),
		MongoCollection:   getEnv("MONGO_COLLECTION", "preferences"),

		// Ollama
		OllamaURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaEmbedModel: getEnv("OLLAMA_EMBEDDING_MODEL", "simple"),
		OllamaLLMModel:   getEnv("OLLAMA_LLM_MODEL", "llama3.2:3b"),

		// Application settings
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Retrieval
		TopK:          getEnvInt("TOP_K", 5),
		ContextBudget: getEnvInt("CONTEXT_BUDGET", 10),
	}
}

// Package config loads the orchestrator's environment-variable driven
// configuration, mirroring the get-env-with-default style used
// throughout the rest of this codebase's ancestry.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	App        AppConfig
	Providers  ProvidersConfig
	Search     SearchConfig
	Translate  TranslateConfig
	Embedding  EmbeddingConfig
	RAG        RAGConfig
	Dedup      DedupConfig
	TestMode   TestModeConfig
}

type DatabaseConfig struct {
	Host, User, Password, DBName, SSLMode string
	Port                                  int
}

type RedisConfig struct {
	Host, Password string
	Port, DB       int
}

type AppConfig struct {
	Name, Environment, LogLevel string
}

// ProvidersConfig lists the search providers participating in C9, in
// the order they are tried.
type ProvidersConfig struct {
	Order   []string
	APIKeys map[string]string
}

type SearchConfig struct {
	Languages            []string
	MinCallsPerQuery     int
	MaxCallsPerQuery     int
	MinQualityToStop     float64
	AdaptiveEnabled      bool
	MaxWorkers           int
	MinInterCallDelay    time.Duration
	MaxRequestsPerMinute int
	MaxRetries           int
	HTTPTimeout          time.Duration
	StuckRecoveryAfter   time.Duration
	StuckRecoveryEvery   time.Duration
}

type TranslateConfig struct {
	GatewayURL     string
	GatewayAPIKey  string
	FreeModels     []string
	PremiumModels  []string
	ValidationMin  int // minimum rune length below which validation is skipped
}

type EmbeddingConfig struct {
	GatewayURL    string
	GatewayAPIKey string
	Model         string
	Dimension     int
	BatchSize     int
	TokenCap      int
}

type RAGConfig struct {
	Enabled                bool
	SimilarityThreshold    float64
	SimilarityThresholdDedup float64
	TopK                   int
}

type DedupConfig struct {
	JaccardThreshold float64
}

type TestModeConfig struct {
	Enabled bool
	Limit   int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "research_orchestrator"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		App: AppConfig{
			Name:        getEnv("APP_NAME", "research-orchestrator"),
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Providers: ProvidersConfig{
			Order: getEnvAsList("PROVIDER_ORDER", []string{"serper", "tavily", "exa", "jina", "perplexity"}),
			APIKeys: map[string]string{
				"serper":     getEnv("SERPER_API_KEY", ""),
				"tavily":     getEnv("TAVILY_API_KEY", ""),
				"exa":        getEnv("EXA_API_KEY", ""),
				"jina":       getEnv("JINA_API_KEY", ""),
				"perplexity": getEnv("PERPLEXITY_API_KEY", ""),
			},
		},
		Search: SearchConfig{
			Languages:            getEnvAsList("LANGUAGES", []string{"pt", "en", "es", "fr", "de", "it", "ar", "ko", "he"}),
			MinCallsPerQuery:     getEnvAsInt("MIN_CALLS_PER_QUERY", 2),
			MaxCallsPerQuery:     getEnvAsInt("MAX_CALLS_PER_QUERY", 8),
			MinQualityToStop:     getEnvAsFloat("MIN_QUALITY_TO_STOP", 0.75),
			AdaptiveEnabled:      getEnvAsBool("ADAPTIVE_SEARCH_ENABLED", false),
			MaxWorkers:           getEnvAsInt("MAX_WORKERS", 5),
			MinInterCallDelay:    getEnvAsDuration("MIN_INTER_CALL_DELAY", time.Second),
			MaxRequestsPerMinute: getEnvAsInt("MAX_REQUESTS_PER_MINUTE", 60),
			MaxRetries:           getEnvAsInt("MAX_RETRIES", 3),
			HTTPTimeout:          getEnvAsDuration("HTTP_TIMEOUT", 60*time.Second),
			StuckRecoveryAfter:   getEnvAsDuration("STUCK_RECOVERY_AFTER", 15*time.Minute),
			StuckRecoveryEvery:   getEnvAsDuration("STUCK_RECOVERY_EVERY", 5*time.Minute),
		},
		Translate: TranslateConfig{
			GatewayURL:    getEnv("LLM_GATEWAY_URL", "https://openrouter.ai/api/v1"),
			GatewayAPIKey: getEnv("LLM_GATEWAY_API_KEY", ""),
			FreeModels:    getEnvAsList("TRANSLATION_MODELS_FREE", []string{"meta-llama/llama-3.1-8b-instruct:free", "google/gemma-2-9b-it:free"}),
			PremiumModels: getEnvAsList("TRANSLATION_MODELS_PREMIUM", []string{"openai/gpt-4o-mini", "anthropic/claude-3-haiku"}),
			ValidationMin: getEnvAsInt("TRANSLATION_VALIDATION_MIN_LEN", 8),
		},
		Embedding: EmbeddingConfig{
			GatewayURL:    getEnv("EMBEDDING_GATEWAY_URL", "https://api.openai.com/v1"),
			GatewayAPIKey: getEnv("EMBEDDING_GATEWAY_API_KEY", ""),
			Model:         getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Dimension:     getEnvAsInt("EMBEDDING_DIMENSION", 1536),
			BatchSize:     getEnvAsInt("EMBEDDING_BATCH_SIZE", 20),
			TokenCap:      getEnvAsInt("EMBEDDING_TOKEN_CAP", 8000),
		},
		RAG: RAGConfig{
			Enabled:                  getEnvAsBool("RAG_ENABLED", true),
			SimilarityThreshold:      getEnvAsFloat("RAG_SIMILARITY_THRESHOLD", 0.7),
			SimilarityThresholdDedup: getEnvAsFloat("RAG_SIMILARITY_THRESHOLD_DEDUP", 0.85),
			TopK:                     getEnvAsInt("RAG_TOP_K", 5),
		},
		Dedup: DedupConfig{
			JaccardThreshold: getEnvAsFloat("DEDUP_JACCARD_THRESHOLD", 0.80),
		},
		TestMode: TestModeConfig{
			Enabled: getEnvAsBool("TEST_MODE_ENABLED", false),
			Limit:   getEnvAsInt("TEST_MODE_LIMIT", 10),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

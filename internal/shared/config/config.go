package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	LLMProvider     string
	LLMModel        string
	ScoringModel    string
	DatabaseURL     string
	Env             string

	// Fallback policy knobs. These materially affect award outcomes, so
	// they are configurable rather than baked into the calculators.
	FallbackSupportRate     float64
	FallbackConfidence      float64
	ContradictionPenaltyPer float64
	MaxContradictionPenalty float64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		LLMProvider:     getEnv("LLM_PROVIDER", "openai"),
		LLMModel:        getEnv("LLM_MODEL", ""),
		ScoringModel:    getEnv("LLM_SCORING_MODEL", ""),
		DatabaseURL:     dbURL,
		Env:             env,

		FallbackSupportRate:     getEnvFloat("FALLBACK_SUPPORT_RATE", 0.5),
		FallbackConfidence:      getEnvFloat("FALLBACK_CONFIDENCE", 0.5),
		ContradictionPenaltyPer: getEnvFloat("CONTRADICTION_PENALTY_PER", 0.05),
		MaxContradictionPenalty: getEnvFloat("MAX_CONTRADICTION_PENALTY", 0.3),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 || val > 1 {
		log.Printf("config: ignoring invalid %s=%q", key, raw)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

// Package config loads server configuration from environment variables,
// optionally layered with a YAML deployment profile.
package config

import (
	"os"
	"strconv"
)

// Config holds server configuration.
type Config struct {
	Port     string
	LogLevel string

	// DatabasePath is the SQLite file path. Empty selects the in-memory store.
	DatabasePath string

	// RedisAddr enables the Redis reputation backend when non-empty.
	RedisAddr string
	RedisDB   int

	// AnalyzerMode selects the claim analyzer: "heuristic", "llm" or
	// "ensemble".
	AnalyzerMode string
	LLMBaseURL   string
	LLMAPIKey    string
	LLMModel     string

	// JWTSecret enables token auth when non-empty.
	JWTSecret string

	RateLimitRPS   int
	RateLimitBurst int

	ChainDifficulty int

	// OTLPEndpoint enables telemetry export when non-empty.
	OTLPEndpoint string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:            envOr("PORT", "8080"),
		LogLevel:        envOr("LOG_LEVEL", "INFO"),
		DatabasePath:    os.Getenv("DATABASE_PATH"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisDB:         envIntOr("REDIS_DB", 0),
		AnalyzerMode:    envOr("ANALYZER_MODE", "heuristic"),
		LLMBaseURL:      os.Getenv("LLM_BASE_URL"),
		LLMAPIKey:       os.Getenv("LLM_API_KEY"),
		LLMModel:        envOr("LLM_MODEL", "gpt-4o-mini"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		RateLimitRPS:    envIntOr("RATE_LIMIT_RPS", 20),
		RateLimitBurst:  envIntOr("RATE_LIMIT_BURST", 40),
		ChainDifficulty: envIntOr("CHAIN_DIFFICULTY", 2),
		OTLPEndpoint:    os.Getenv("OTLP_ENDPOINT"),
	}
}

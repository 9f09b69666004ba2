package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Restaurant identity
	RestaurantName string
	TableLabel     string
	MaxPartySize   int

	// LLM gateway
	LLMProvider   string // "gemini" or "openai"
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	LLMTimeout    time.Duration

	// Dialogue memory
	RedisAddr     string
	RedisPassword string
	DialogueTTL   time.Duration

	// Transports
	TelegramToken string
	NatsURL       string
	NatsSubject   string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RestaurantName: getEnv("RESTAURANT_NAME", "Hafta3 Restaurant"),
		TableLabel:     getEnv("TABLE_LABEL", "Table 5 (window side)"),
		MaxPartySize:   getEnvAsInt("MAX_PARTY_SIZE", 6),

		LLMProvider:   strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "gemini"))),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:    getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		DialogueTTL:   getEnvAsDuration("DIALOGUE_TTL", 30*time.Minute),

		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		NatsURL:       getEnv("NATS_URL", ""),
		NatsSubject:   getEnv("NATS_SUBJECT", "chat.message"),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

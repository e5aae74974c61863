package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration for the crisis-response service.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string
	RedisAddr   string
	RedisPassword string
	RedisTLS      bool

	DefaultRegion string

	ModelProvider   string // "bedrock" | "gemini" | "none"
	BedrockModelID  string
	GeminiAPIKey    string
	GeminiModelID   string
	ModelTimeout    time.Duration

	AdminAPIToken string

	VerificationJobInterval  time.Duration
	VerificationStaleAfter   time.Duration
	DegradedRecheckInterval  time.Duration

	AWSRegion           string
	AWSEndpointOverride string

	IngestQueueURL      string
	IngestOutputPath    string
	IngestPollWaitSecs  int32
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DefaultRegion: getEnv("DEFAULT_REGION", "GLOBAL"),

		ModelProvider:  getEnv("MODEL_PROVIDER", "none"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", ""),
		ModelTimeout:   getEnvAsDuration("MODEL_TIMEOUT", 8*time.Second),

		AdminAPIToken: getEnv("ADMIN_API_TOKEN", ""),

		VerificationJobInterval: getEnvAsDuration("VERIFICATION_JOB_INTERVAL", 30*24*time.Hour),
		VerificationStaleAfter:  getEnvAsDuration("VERIFICATION_STALE_AFTER", 30*24*time.Hour),
		DegradedRecheckInterval: getEnvAsDuration("DEGRADED_RECHECK_INTERVAL", 24*time.Hour),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		IngestQueueURL:     getEnv("INGEST_QUEUE_URL", ""),
		IngestOutputPath:   getEnv("INGEST_OUTPUT_PATH", "corpus/ingested.jsonl"),
		IngestPollWaitSecs: int32(getEnvAsInt("INGEST_POLL_WAIT_SECONDS", 10)),
	}
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
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

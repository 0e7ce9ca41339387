package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// LLM provider selection: "groq", "bedrock", or "gemini". The actor and
	// the judge share a provider but may use different models.
	LLMProvider      string
	FallbackProvider string

	GroqAPIKey  string
	GroqBaseURL string

	GeminiAPIKey  string
	GeminiModelID string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	BedrockModelID      string

	ActorModel  string
	JudgeModel  string
	Temperature float32
	MaxTokens   int32
	LLMTimeout  time.Duration

	TrainFile string
	EvalFile  string
	OutputDir string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	TranscriptTTL time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LLMProvider:      getEnv("LLM_PROVIDER", "groq"),
		FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),

		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),

		ActorModel:  getEnv("MODEL_NAME", "llama-3.3-70b-versatile"),
		JudgeModel:  getEnv("EVAL_MODEL_NAME", ""),
		Temperature: getEnvAsFloat32("TEMPERATURE", 0.7),
		MaxTokens:   int32(getEnvAsInt("MAX_TOKENS", 1024)),
		LLMTimeout:  getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),

		TrainFile: getEnv("TRAIN_FILE", "data/train.jsonl"),
		EvalFile:  getEnv("EVAL_FILE", "data/evaluation.jsonl"),
		OutputDir: getEnv("OUTPUT_DIR", "."),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		TranscriptTTL: getEnvAsDuration("TRANSCRIPT_TTL", 7*24*time.Hour),
	}
}

// JudgeModelOrDefault returns the judge model, falling back to the actor
// model when EVAL_MODEL_NAME is unset.
func (c *Config) JudgeModelOrDefault() string {
	if c.JudgeModel != "" {
		return c.JudgeModel
	}
	return c.ActorModel
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
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

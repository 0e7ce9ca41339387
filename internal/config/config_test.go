package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "groq", cfg.LLMProvider)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.GroqBaseURL)
	assert.Equal(t, float32(0.7), cfg.Temperature)
	assert.Equal(t, int32(1024), cfg.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "bedrock")
	t.Setenv("TEMPERATURE", "0.2")
	t.Setenv("MAX_TOKENS", "512")
	t.Setenv("LLM_TIMEOUT", "90s")
	t.Setenv("EVAL_MODEL_NAME", "judge-model")

	cfg := Load()

	assert.Equal(t, "bedrock", cfg.LLMProvider)
	assert.Equal(t, float32(0.2), cfg.Temperature)
	assert.Equal(t, int32(512), cfg.MaxTokens)
	assert.Equal(t, 90*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "judge-model", cfg.JudgeModel)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("TEMPERATURE", "hot")
	t.Setenv("MAX_TOKENS", "many")
	t.Setenv("LLM_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, float32(0.7), cfg.Temperature)
	assert.Equal(t, int32(1024), cfg.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
}

func TestJudgeModelOrDefault(t *testing.T) {
	cfg := &Config{ActorModel: "actor-model"}
	assert.Equal(t, "actor-model", cfg.JudgeModelOrDefault())

	cfg.JudgeModel = "judge-model"
	assert.Equal(t, "judge-model", cfg.JudgeModelOrDefault())
}

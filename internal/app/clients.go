// Package app wires configuration, LLM backends, datasets, and stores into
// the run service used by both the CLI and the HTTP API.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/rolebench-ai/rolebench/internal/config"
	"github.com/rolebench-ai/rolebench/internal/llm"
	"github.com/rolebench-ai/rolebench/pkg/logging"
)

// BuildClient selects the completion backend from config and optionally
// wraps it with a fallback provider. The returned cleanup closes any
// backend connections and is safe to call once.
func BuildClient(ctx context.Context, cfg *config.Config, logger *logging.Logger) (llm.Client, func(), error) {
	primary, closePrimary, err := buildProvider(ctx, cfg, cfg.LLMProvider)
	if err != nil {
		return nil, nil, fmt.Errorf("app: primary provider %q: %w", cfg.LLMProvider, err)
	}

	if cfg.FallbackProvider == "" || cfg.FallbackProvider == cfg.LLMProvider {
		return withTimeout(primary, cfg.LLMTimeout), closePrimary, nil
	}

	fallback, closeFallback, err := buildProvider(ctx, cfg, cfg.FallbackProvider)
	if err != nil {
		logger.Warn("fallback provider unavailable, continuing without it",
			"provider", cfg.FallbackProvider, "error", err)
		return withTimeout(primary, cfg.LLMTimeout), closePrimary, nil
	}

	client := llm.NewFallbackClient(primary, fallback, logger.Logger)
	cleanup := func() {
		closePrimary()
		closeFallback()
	}
	return withTimeout(client, cfg.LLMTimeout), cleanup, nil
}

// timeoutClient bounds each completion call independently so one hung
// request cannot stall a whole batch.
type timeoutClient struct {
	inner   llm.Client
	timeout time.Duration
}

func (c timeoutClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.inner.Complete(ctx, req)
}

func withTimeout(client llm.Client, timeout time.Duration) llm.Client {
	if timeout <= 0 {
		return client
	}
	return timeoutClient{inner: client, timeout: timeout}
}

func buildProvider(ctx context.Context, cfg *config.Config, name string) (llm.Client, func(), error) {
	noop := func() {}

	switch name {
	case "groq":
		client, err := llm.NewGroqClient(llm.GroqConfig{
			APIKey:  cfg.GroqAPIKey,
			BaseURL: cfg.GroqBaseURL,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, noop, nil

	case "bedrock":
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.AWSRegion),
		}
		if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		api := bedrockruntime.NewFromConfig(awsCfg, func(o *bedrockruntime.Options) {
			if cfg.AWSEndpointOverride != "" {
				o.BaseEndpoint = aws.String(cfg.AWSEndpointOverride)
			}
		})
		return llm.NewBedrockClient(api), noop, nil

	case "gemini":
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider %q", name)
	}
}

// actorModel picks the model id the actor conversation should request.
func actorModel(cfg *config.Config) string {
	if cfg.LLMProvider == "bedrock" && cfg.BedrockModelID != "" {
		return cfg.BedrockModelID
	}
	return cfg.ActorModel
}

// Package judge evaluates actor responses with a second LLM. Each call runs
// in a fresh single-purpose session so no evaluation can leak context into
// the next one, and the model's free-text output is parsed into a Verdict
// that downstream code can rely on regardless of how malformed the text is.
package judge

import (
	"context"
	"log/slog"

	"github.com/rolebench-ai/rolebench/internal/llm"
	"github.com/rolebench-ai/rolebench/internal/prompt"
	"github.com/rolebench-ai/rolebench/internal/session"
)

// Input carries everything the judge rubric needs to assess one answer.
// HarmfulResponse and SafetyAnchoredResponse are reference behaviors from
// the evaluation dataset and may be absent.
type Input struct {
	Role                   string
	Question               string
	ActorResponse          string
	RiskCategory           string
	HarmfulResponse        string
	SafetyAnchoredResponse string
}

// Judge scores actor responses against the role-play safety rubric.
type Judge struct {
	client      llm.Client
	model       string
	maxTokens   int32
	temperature float32
	logger      *slog.Logger
}

// New builds a Judge. The client must not be nil.
func New(client llm.Client, model string, maxTokens int32, temperature float32, logger *slog.Logger) *Judge {
	if client == nil {
		panic("judge: nil llm client")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Judge{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Evaluate runs one judge call and parses the result. A transport or API
// failure is not an error to the caller: it yields a Verdict with ParseOK
// false, both labels false, and the failure text preserved in RawText so
// batch output stays inspectable.
func (j *Judge) Evaluate(ctx context.Context, in Input) Verdict {
	sess := session.New()
	sess.SetInstruction(prompt.JudgeSystemPrompt)

	userPrompt, err := prompt.Render(prompt.JudgeTemplate, map[string]string{
		"role":                     in.Role,
		"question":                 in.Question,
		"actor_response":           in.ActorResponse,
		"risk_category":            orDefault(in.RiskCategory, "unspecified"),
		"harmful_response":         orDefault(in.HarmfulResponse, "N/A"),
		"safety_anchored_response": orDefault(in.SafetyAnchoredResponse, "N/A"),
	})
	if err != nil {
		j.logger.Error("judge prompt render failed", "error", err)
		return Verdict{RawText: err.Error()}
	}
	if err := sess.Append(llm.ChatRoleUser, userPrompt, nil); err != nil {
		return Verdict{RawText: err.Error()}
	}

	system, messages := sess.Messages()
	resp, err := j.client.Complete(ctx, llm.Request{
		Model:       j.model,
		System:      system,
		Messages:    messages,
		MaxTokens:   j.maxTokens,
		Temperature: j.temperature,
	})
	if err != nil {
		j.logger.Error("judge completion failed", "role", in.Role, "error", err)
		return Verdict{RawText: err.Error()}
	}

	v := parseVerdict(resp.Text)
	if !v.ParseOK {
		j.logger.Warn("judge output had no evaluation body", "role", in.Role)
	}
	if v.LabelsRepaired {
		j.logger.Warn("judge emitted conflicting labels, kept refusal", "role", in.Role)
	}
	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

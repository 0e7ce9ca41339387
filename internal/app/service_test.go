package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolebench-ai/rolebench/internal/config"
	"github.com/rolebench-ai/rolebench/internal/llm"
	"github.com/rolebench-ai/rolebench/internal/prompt"
	"github.com/rolebench-ai/rolebench/pkg/logging"
)

type scriptClient struct {
	requests  []llm.Request
	responses []llm.Response
	errs      []error
}

func (s *scriptClient) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	i := len(s.requests)
	s.requests = append(s.requests, req)
	if i < len(s.errs) && s.errs[i] != nil {
		return llm.Response{}, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return llm.Response{}, errors.New("script: no response configured")
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const trainFixture = `{"role":"State Regulator","question":"tq1","harmful_response":"hr","safety_anchored_response":"sr","risk_category":"rc"}
{"role":"Civil Society (NGO)","question":"other role","harmful_response":"hr","safety_anchored_response":"sr","risk_category":"rc"}
`

const evalFixture = `{"id":"q-001","category":"land rights","question":"eq1","risk_type":"displacement"}
`

func testConfig(t *testing.T) *config.Config {
	cfg := config.Load()
	cfg.TrainFile = writeFixture(t, "train.jsonl", trainFixture)
	cfg.EvalFile = writeFixture(t, "evaluation.jsonl", evalFixture)
	cfg.ActorModel = "actor-model"
	cfg.JudgeModel = "judge-model"
	return cfg
}

func TestRunBatchTrainsThenEvaluates(t *testing.T) {
	// One training exemplar matches the role, then one question means one
	// actor call and one judge call.
	client := &scriptClient{responses: []llm.Response{
		{Text: "Acknowledged."},
		{Text: "The permits were renewed under protest."},
		{Text: "[EVALUATION]Candid about the protest.[/EVALUATION][LABELS]is_refusal: false\nis_attack_success: false[/LABELS]"},
	}}
	svc := NewService(testConfig(t), client, logging.Default(), nil)

	result, err := svc.RunBatch(context.Background(), prompt.RoleRegulator, false)

	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalQuestions)
	assert.Equal(t, 1, result.Completed)
	require.Len(t, client.requests, 3)
	// The exemplar for the other role is filtered out of the training pass.
	assert.Contains(t, client.requests[0].Messages[0].Content, "tq1")
	assert.NotContains(t, client.requests[0].Messages[0].Content, "other role")
	// The evaluation call carries the training exchange in its history.
	assert.Len(t, client.requests[1].Messages, 3)
}

func TestRunBatchPromptOnlySkipsTraining(t *testing.T) {
	client := &scriptClient{responses: []llm.Response{
		{Text: "An answer."},
		{Text: "[EVALUATION]ok[/EVALUATION][LABELS]is_refusal: false\nis_attack_success: false[/LABELS]"},
	}}
	svc := NewService(testConfig(t), client, logging.Default(), nil)

	result, err := svc.RunBatch(context.Background(), prompt.RoleRegulator, true)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Completed)
	require.Len(t, client.requests, 2)
	// The first request is the evaluation question itself, not an exemplar.
	assert.Contains(t, client.requests[0].Messages[0].Content, "eq1")
}

func TestRunBatchMissingEvalFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.EvalFile = filepath.Join(t.TempDir(), "missing.jsonl")
	svc := NewService(cfg, &scriptClient{}, logging.Default(), nil)

	_, err := svc.RunBatch(context.Background(), prompt.RoleRegulator, false)

	require.Error(t, err)
}

func TestRunSingle(t *testing.T) {
	client := &scriptClient{responses: []llm.Response{
		{Text: "A direct stance."},
		{Text: "[EVALUATION]measured[/EVALUATION][LABELS]is_refusal: false\nis_attack_success: false[/LABELS]"},
	}}
	svc := NewService(testConfig(t), client, logging.Default(), nil)

	record, err := svc.RunSingle(context.Background(), prompt.RoleNGO, "What is at stake here?", true)

	require.NoError(t, err)
	assert.Equal(t, "single", record.ID)
	assert.Equal(t, "A direct stance.", record.Response)
	assert.Equal(t, prompt.RoleNGO, record.Role)
}

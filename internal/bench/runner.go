package bench

import (
	"context"
	"log/slog"
	"time"

	"github.com/rolebench-ai/rolebench/internal/dataset"
	"github.com/rolebench-ai/rolebench/internal/judge"
	"github.com/rolebench-ai/rolebench/internal/observability/metrics"
	"github.com/rolebench-ai/rolebench/internal/prompt"
)

// Runner asks a primed actor the evaluation questions and has the judge
// score every answer.
type Runner struct {
	judge   *judge.Judge
	logger  *slog.Logger
	metrics *metrics.BenchMetrics
	now     func() time.Time
}

// NewRunner builds a Runner. metrics may be nil.
func NewRunner(j *judge.Judge, logger *slog.Logger, m *metrics.BenchMetrics) *Runner {
	if j == nil {
		panic("bench: nil judge")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{judge: j, logger: logger, metrics: m, now: time.Now}
}

// RunBatch processes the questions sequentially. A failed actor call skips
// that question; a failed judge call still yields a record, with both labels
// false and the failure text preserved, so the batch output stays complete
// enough to inspect.
func (r *Runner) RunBatch(ctx context.Context, actor *Actor, questions []dataset.EvalQuestion) BatchResult {
	result := BatchResult{
		Role:           actor.Role(),
		TotalQuestions: len(questions),
		Results:        make([]EvaluationRecord, 0, len(questions)),
	}

	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("batch cancelled", "role", actor.Role(), "completed", result.Completed, "error", err)
			return result
		}

		r.logger.Info("evaluating question", "role", actor.Role(), "id", q.ID, "progress", i+1, "total", len(questions))
		record, ok := r.runOne(ctx, actor, q)
		if !ok {
			continue
		}
		result.Results = append(result.Results, record)
		result.Completed++
	}

	r.logger.Info("batch complete",
		"role", actor.Role(),
		"total_questions", result.TotalQuestions,
		"completed", result.Completed)
	return result
}

// RunSingle evaluates one ad-hoc question against the primed actor.
func (r *Runner) RunSingle(ctx context.Context, actor *Actor, question string) (EvaluationRecord, bool) {
	return r.runOne(ctx, actor, dataset.EvalQuestion{
		ID:       "single",
		Category: "interactive",
		Question: question,
		RiskType: "unspecified",
	})
}

func (r *Runner) runOne(ctx context.Context, actor *Actor, q dataset.EvalQuestion) (EvaluationRecord, bool) {
	start := r.now()

	userPrompt, err := prompt.Render(prompt.EvaluationTemplate, map[string]string{"question": q.Question})
	if err != nil {
		r.logger.Error("evaluation prompt render failed", "id", q.ID, "error", err)
		r.metrics.ObserveQuestion(actor.Role(), "render_failed")
		return EvaluationRecord{}, false
	}

	answer, err := actor.Exchange(ctx, userPrompt)
	if err != nil {
		r.logger.Warn("actor call failed, skipping question", "role", actor.Role(), "id", q.ID, "error", err)
		r.metrics.ObserveQuestion(actor.Role(), "actor_failed")
		return EvaluationRecord{}, false
	}

	verdict := r.judge.Evaluate(ctx, judge.Input{
		Role:                   actor.Role(),
		Question:               q.Question,
		ActorResponse:          answer,
		RiskCategory:           q.RiskType,
		HarmfulResponse:        q.HarmfulResponse,
		SafetyAnchoredResponse: q.SafetyAnchoredResponse,
	})
	if !verdict.ParseOK {
		r.metrics.ObserveJudgeParseFailure()
	}
	if verdict.LabelsRepaired {
		r.metrics.ObserveJudgeLabelRepair()
	}

	r.metrics.ObserveQuestion(actor.Role(), "completed")
	r.metrics.ObserveQuestionLatency(actor.Role(), r.now().Sub(start).Seconds())

	// A failed judge call has no evaluation body; keep its raw output (the
	// error text) in the record so the batch file explains the gap.
	evalText := verdict.EvaluationText
	if !verdict.ParseOK && evalText == "" {
		evalText = verdict.RawText
	}

	return EvaluationRecord{
		ID:                q.ID,
		Category:          q.Category,
		Question:          q.Question,
		RiskType:          q.RiskType,
		Role:              actor.Role(),
		Response:          answer,
		EthicalEvalText:   evalText,
		EthicalEvalResult: verdict.Conclusion,
		IsRefusal:         verdict.IsRefusal,
		IsAttackSuccess:   verdict.IsAttackSuccess,
		ParseOK:           verdict.ParseOK,
	}, true
}

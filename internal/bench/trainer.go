package bench

import (
	"context"
	"log/slog"

	"github.com/rolebench-ai/rolebench/internal/dataset"
	"github.com/rolebench-ai/rolebench/internal/observability/metrics"
	"github.com/rolebench-ai/rolebench/internal/prompt"
)

// TrainingOutcome counts how the priming pass went. Failed exemplars are
// logged and skipped; they never abort the run.
type TrainingOutcome struct {
	Attempted int
	Succeeded int
	Failed    int
}

// Trainer primes an actor with contrastive exemplars before evaluation.
type Trainer struct {
	logger  *slog.Logger
	metrics *metrics.BenchMetrics
}

// NewTrainer builds a Trainer. metrics may be nil.
func NewTrainer(logger *slog.Logger, m *metrics.BenchMetrics) *Trainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{logger: logger, metrics: m}
}

// Train shows the actor each exemplar in order and collects its
// acknowledgements into the shared transcript. Best effort throughout: a
// failed exemplar is counted and the loop moves on, so partial priming
// still produces a usable actor.
func (t *Trainer) Train(ctx context.Context, actor *Actor, exemplars []dataset.Exemplar) TrainingOutcome {
	outcome := TrainingOutcome{Attempted: len(exemplars)}

	for i, ex := range exemplars {
		text, err := prompt.Render(prompt.TrainingTemplate, map[string]string{
			"role":                     ex.Role,
			"question":                 ex.Question,
			"harmful_response":         ex.HarmfulResponse,
			"safety_anchored_response": ex.SafetyAnchoredResponse,
			"risk_category":            ex.RiskCategory,
		})
		if err != nil {
			t.logger.Error("training exemplar render failed", "role", actor.Role(), "index", i, "error", err)
			t.metrics.ObserveTrainingFailure(actor.Role())
			outcome.Failed++
			continue
		}

		if _, err := actor.Exchange(ctx, text); err != nil {
			t.logger.Warn("training exemplar call failed, continuing",
				"role", actor.Role(), "index", i, "error", err)
			t.metrics.ObserveTrainingFailure(actor.Role())
			outcome.Failed++
			continue
		}
		outcome.Succeeded++
	}

	t.logger.Info("training pass complete",
		"role", actor.Role(),
		"attempted", outcome.Attempted,
		"succeeded", outcome.Succeeded,
		"failed", outcome.Failed)
	return outcome
}

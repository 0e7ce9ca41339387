package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rolebench-ai/rolebench/internal/bench"
	"github.com/rolebench-ai/rolebench/internal/config"
	"github.com/rolebench-ai/rolebench/internal/dataset"
	"github.com/rolebench-ai/rolebench/internal/judge"
	"github.com/rolebench-ai/rolebench/internal/llm"
	"github.com/rolebench-ai/rolebench/internal/observability/metrics"
	"github.com/rolebench-ai/rolebench/internal/results"
	"github.com/rolebench-ai/rolebench/pkg/logging"
)

// Service runs role-conditioned evaluations end to end: prime the actor,
// ask the questions, judge the answers, persist what came out.
type Service struct {
	cfg     *config.Config
	client  llm.Client
	logger  *logging.Logger
	metrics *metrics.BenchMetrics

	store       *results.PostgresStore
	transcripts *results.TranscriptStore
}

// NewService builds a Service. metrics may be nil; stores are attached
// separately because the CLI runs fine without them.
func NewService(cfg *config.Config, client llm.Client, logger *logging.Logger, m *metrics.BenchMetrics) *Service {
	if cfg == nil {
		panic("app: nil config")
	}
	if client == nil {
		panic("app: nil llm client")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{cfg: cfg, client: client, logger: logger, metrics: m}
}

// SetResultStores attaches optional persistence. Either argument may be nil.
func (s *Service) SetResultStores(store *results.PostgresStore, transcripts *results.TranscriptStore) {
	s.store = store
	s.transcripts = transcripts
}

// RunBatch evaluates every question in the configured evaluation file
// against the named role and persists the outcome when stores are attached.
func (s *Service) RunBatch(ctx context.Context, role string, promptOnly bool) (bench.BatchResult, error) {
	questions, err := dataset.LoadQuestions(s.cfg.EvalFile)
	if err != nil {
		return bench.BatchResult{}, err
	}
	if len(questions) == 0 {
		return bench.BatchResult{}, errors.New("app: evaluation file has no questions")
	}

	actor, err := s.prepareActor(ctx, role, promptOnly)
	if err != nil {
		return bench.BatchResult{}, err
	}

	runner := bench.NewRunner(s.newJudge(), s.logger.Logger, s.metrics)
	result := runner.RunBatch(ctx, actor, questions)

	s.persist(ctx, actor, promptOnly, result)
	return result, nil
}

// RunSingle evaluates one ad-hoc question against the named role.
func (s *Service) RunSingle(ctx context.Context, role, question string, promptOnly bool) (bench.EvaluationRecord, error) {
	actor, err := s.prepareActor(ctx, role, promptOnly)
	if err != nil {
		return bench.EvaluationRecord{}, err
	}

	runner := bench.NewRunner(s.newJudge(), s.logger.Logger, s.metrics)
	record, ok := runner.RunSingle(ctx, actor, question)
	if !ok {
		return bench.EvaluationRecord{}, fmt.Errorf("app: question could not be evaluated for role %q", role)
	}
	return record, nil
}

// prepareActor seeds the persona conversation and, unless promptOnly is
// set, primes it with the role's training exemplars.
func (s *Service) prepareActor(ctx context.Context, role string, promptOnly bool) (*bench.Actor, error) {
	actor := bench.NewActor(s.client, role, actorModel(s.cfg), s.cfg.MaxTokens, s.cfg.Temperature)
	if promptOnly {
		s.logger.Info("prompt-only mode, skipping training pass", "role", role)
		return actor, nil
	}

	exemplars, err := dataset.LoadExemplars(s.cfg.TrainFile)
	if err != nil {
		return nil, err
	}
	roleExemplars := dataset.FilterByRole(exemplars, role)
	if len(roleExemplars) == 0 {
		s.logger.Warn("no training exemplars for role, actor runs unprimed", "role", role)
		return actor, nil
	}

	trainer := bench.NewTrainer(s.logger.Logger, s.metrics)
	trainer.Train(ctx, actor, roleExemplars)
	return actor, nil
}

func (s *Service) newJudge() *judge.Judge {
	// The judge runs deterministic scoring, so temperature stays at zero.
	return judge.New(s.client, s.cfg.JudgeModelOrDefault(), s.cfg.MaxTokens, 0, s.logger.Logger)
}

// persist is best effort: a storage failure is logged but never fails the
// run, since the caller still holds the full result in memory.
func (s *Service) persist(ctx context.Context, actor *bench.Actor, promptOnly bool, result bench.BatchResult) {
	if s.store == nil {
		return
	}

	runID, err := s.store.SaveRun(ctx, promptOnly, result)
	if err != nil {
		s.logger.Error("saving run failed", "role", result.Role, "error", err)
		return
	}
	s.logger.Info("run persisted", "run_id", runID, "role", result.Role)

	if s.transcripts == nil {
		return
	}
	if err := s.transcripts.Archive(ctx, runID, actor.Transcript()); err != nil {
		s.logger.Error("archiving transcript failed", "run_id", runID, "error", err)
	}
}

// Package results persists finished evaluation runs: relational storage for
// the structured records and a Redis archive for raw transcripts.
package results

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rolebench-ai/rolebench/internal/bench"
)

// ErrRunNotFound indicates the requested run id has no stored row.
var ErrRunNotFound = errors.New("results: run not found")

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// StoredRun is the run-level row.
type StoredRun struct {
	ID             uuid.UUID `json:"id"`
	Role           string    `json:"role"`
	PromptOnly     bool      `json:"prompt_only"`
	TotalQuestions int       `json:"total_questions"`
	Completed      int       `json:"completed"`
	CreatedAt      time.Time `json:"created_at"`
}

// PostgresStore writes runs and their per-question records.
type PostgresStore struct {
	db DB
}

// NewPostgresStore initializes a store backed by a pgx pool.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("results: pgx pool required")
	}
	return &PostgresStore{db: db}
}

// SaveRun inserts the run and all of its records in one transaction and
// returns the generated run id.
func (s *PostgresStore) SaveRun(ctx context.Context, promptOnly bool, result bench.BatchResult) (uuid.UUID, error) {
	runID := uuid.New()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("results: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO eval_runs (id, role, prompt_only, total_questions, completed)
		VALUES ($1, $2, $3, $4, $5)
	`, runID, result.Role, promptOnly, result.TotalQuestions, result.Completed); err != nil {
		return uuid.Nil, fmt.Errorf("results: insert run: %w", err)
	}

	for pos, rec := range result.Results {
		if _, err := tx.Exec(ctx, `
			INSERT INTO eval_results (
				id, run_id, position, question_id, category, question, risk_type, role,
				response, ethical_eval_text, ethical_eval_result,
				is_refusal, is_attack_success, parse_ok
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`, uuid.New(), runID, pos, rec.ID, rec.Category, rec.Question, rec.RiskType, rec.Role,
			rec.Response, rec.EthicalEvalText, rec.EthicalEvalResult,
			rec.IsRefusal, rec.IsAttackSuccess, rec.ParseOK); err != nil {
			return uuid.Nil, fmt.Errorf("results: insert record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("results: commit: %w", err)
	}
	return runID, nil
}

// GetRun fetches one run's summary row.
func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*StoredRun, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, role, prompt_only, total_questions, completed, created_at
		FROM eval_runs
		WHERE id = $1
	`, id)

	var run StoredRun
	if err := row.Scan(&run.ID, &run.Role, &run.PromptOnly, &run.TotalQuestions, &run.Completed, &run.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("results: select run: %w", err)
	}
	return &run, nil
}

// ListRecords fetches a run's per-question records in batch order. Rows of
// one run share a transaction timestamp, so ordering uses the explicit
// position column.
func (s *PostgresStore) ListRecords(ctx context.Context, runID uuid.UUID) ([]bench.EvaluationRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT question_id, category, question, risk_type, role,
		       response, ethical_eval_text, ethical_eval_result,
		       is_refusal, is_attack_success, parse_ok
		FROM eval_results
		WHERE run_id = $1
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("results: select records: %w", err)
	}
	defer rows.Close()

	var out []bench.EvaluationRecord
	for rows.Next() {
		var rec bench.EvaluationRecord
		if err := rows.Scan(
			&rec.ID, &rec.Category, &rec.Question, &rec.RiskType, &rec.Role,
			&rec.Response, &rec.EthicalEvalText, &rec.EthicalEvalResult,
			&rec.IsRefusal, &rec.IsAttackSuccess, &rec.ParseOK,
		); err != nil {
			return nil, fmt.Errorf("results: scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("results: iterate records: %w", err)
	}
	return out, nil
}

// Package handlers exposes the evaluation run API over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rolebench-ai/rolebench/internal/bench"
	"github.com/rolebench-ai/rolebench/pkg/logging"
)

// RunStatus tracks a run job through its lifecycle.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunJob is one asynchronous evaluation run.
type RunJob struct {
	ID         uuid.UUID          `json:"id"`
	Role       string             `json:"role"`
	PromptOnly bool               `json:"prompt_only"`
	Status     RunStatus          `json:"status"`
	Error      string             `json:"error,omitempty"`
	Result     *bench.BatchResult `json:"result,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// JobStore keeps run jobs in memory. Runs are long (minutes of LLM calls),
// so the API starts them asynchronously and clients poll by id.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*RunJob
}

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[uuid.UUID]*RunJob)}
}

func (s *JobStore) Create(role string, promptOnly bool) *RunJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	job := &RunJob{
		ID:         uuid.New(),
		Role:       role,
		PromptOnly: promptOnly,
		Status:     RunStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.jobs[job.ID] = job
	return job
}

// Update mutates a job under the store lock.
func (s *JobStore) Update(id uuid.UUID, fn func(*RunJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
		job.UpdatedAt = time.Now().UTC()
	}
}

// Get returns a copy so callers never race with updates.
func (s *JobStore) Get(id uuid.UUID) (RunJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return RunJob{}, false
	}
	return *job, true
}

// BatchRunner is the slice of the run service the handler needs.
type BatchRunner interface {
	RunBatch(ctx context.Context, role string, promptOnly bool) (bench.BatchResult, error)
}

// RunsHandler starts evaluation runs and reports their progress.
type RunsHandler struct {
	runner BatchRunner
	store  *JobStore
	logger *logging.Logger

	// runTimeout bounds one background run end to end.
	runTimeout time.Duration
}

// NewRunsHandler creates the handler. runner must not be nil.
func NewRunsHandler(runner BatchRunner, store *JobStore, logger *logging.Logger, runTimeout time.Duration) *RunsHandler {
	if runner == nil {
		panic("handlers: nil batch runner")
	}
	if store == nil {
		store = NewJobStore()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if runTimeout <= 0 {
		runTimeout = 30 * time.Minute
	}
	return &RunsHandler{runner: runner, store: store, logger: logger, runTimeout: runTimeout}
}

type startRunRequest struct {
	Role       string `json:"role"`
	PromptOnly bool   `json:"prompt_only"`
}

// StartRun launches a run in the background and returns 202 with the job id.
func (h *RunsHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	var req startRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Role = strings.TrimSpace(req.Role)
	if req.Role == "" {
		writeError(w, http.StatusBadRequest, "role is required")
		return
	}

	job := h.store.Create(req.Role, req.PromptOnly)
	go h.execute(job.ID, req.Role, req.PromptOnly)

	h.logger.Info("run accepted", "job_id", job.ID, "role", req.Role, "prompt_only", req.PromptOnly)
	writeJSON(w, http.StatusAccepted, job)
}

// GetRun reports one job's current state.
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	job, ok := h.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *RunsHandler) execute(id uuid.UUID, role string, promptOnly bool) {
	ctx, cancel := context.WithTimeout(context.Background(), h.runTimeout)
	defer cancel()

	h.store.Update(id, func(j *RunJob) { j.Status = RunStatusRunning })

	result, err := h.runner.RunBatch(ctx, role, promptOnly)
	if err != nil {
		h.logger.Error("background run failed", "job_id", id, "role", role, "error", err)
		h.store.Update(id, func(j *RunJob) {
			j.Status = RunStatusFailed
			j.Error = err.Error()
		})
		return
	}

	h.store.Update(id, func(j *RunJob) {
		j.Status = RunStatusCompleted
		j.Result = &result
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

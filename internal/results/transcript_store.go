package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/rolebench-ai/rolebench/internal/session"
)

const transcriptKeyPrefix = "rolebench:transcript:"

// TranscriptStore archives raw actor transcripts in Redis so a run's exact
// conversation can be replayed after the fact. Entries expire after the
// configured TTL; the relational rows are the durable record.
type TranscriptStore struct {
	client *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewTranscriptStore initializes the archive. A zero ttl means entries
// never expire.
func NewTranscriptStore(client *redis.Client, ttl time.Duration) *TranscriptStore {
	if client == nil {
		panic("results: redis client required")
	}
	return &TranscriptStore{
		client: client,
		ttl:    ttl,
		tracer: otel.Tracer("rolebench/results"),
	}
}

// Archive stores one run's transcript as a list of JSON-encoded turns.
func (s *TranscriptStore) Archive(ctx context.Context, runID uuid.UUID, turns []session.Turn) error {
	ctx, span := s.tracer.Start(ctx, "transcript.archive")
	defer span.End()

	if len(turns) == 0 {
		return nil
	}

	key := transcriptKeyPrefix + runID.String()
	values := make([]any, 0, len(turns))
	for _, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("results: marshal turn: %w", err)
		}
		values = append(values, data)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.RPush(ctx, key, values...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("results: archive transcript: %w", err)
	}
	return nil
}

// Fetch returns the archived transcript, or nil when none exists.
func (s *TranscriptStore) Fetch(ctx context.Context, runID uuid.UUID) ([]session.Turn, error) {
	ctx, span := s.tracer.Start(ctx, "transcript.fetch")
	defer span.End()

	raw, err := s.client.LRange(ctx, transcriptKeyPrefix+runID.String(), 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("results: fetch transcript: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	turns := make([]session.Turn, 0, len(raw))
	for _, item := range raw {
		var turn session.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("results: decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

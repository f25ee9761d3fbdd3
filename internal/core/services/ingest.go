package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/ports/driven"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/ports/driving"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestOrchestrator = (*IngestService)(nil)

// DefaultEmbedBatchSize bounds how many unit bodies are sent to the
// embedding service per batch call.
const DefaultEmbedBatchSize = 32

// IngestService runs the one-way ingestion flow: export client →
// normalizer → index store. A failed run leaves previously indexed
// data untouched; nothing from an incomplete fetch is committed.
type IngestService struct {
	exporter  driven.ExportClient
	embedder  driven.EmbeddingService
	index     driven.IndexStore
	batchSize int
}

// NewIngestService creates a new ingestion orchestrator.
func NewIngestService(
	exporter driven.ExportClient,
	embedder driven.EmbeddingService,
	index driven.IndexStore,
) *IngestService {
	return &IngestService{
		exporter:  exporter,
		embedder:  embedder,
		index:     index,
		batchSize: DefaultEmbedBatchSize,
	}
}

// SetBatchSize overrides the embedding batch size. Values below 1 are
// ignored.
func (s *IngestService) SetBatchSize(n int) {
	if n >= 1 {
		s.batchSize = n
	}
}

// Ingest validates the token, fetches the complete highlight archive,
// normalizes it, embeds every unit, and upserts the result into the
// index in one atomic batch. Returns the unit and skipped counts.
func (s *IngestService) Ingest(ctx context.Context, token string) (domain.IngestStats, error) {
	logger.Section("Ingestion")
	started := time.Now().UTC()

	// Fail on a bad token before committing to the full paginated fetch.
	if err := s.exporter.Validate(ctx, token); err != nil {
		return domain.IngestStats{}, fmt.Errorf("validating export token: %w", err)
	}

	sources, err := s.exporter.FetchAll(ctx, token)
	if err != nil {
		return domain.IngestStats{}, fmt.Errorf("fetching highlight export: %w", err)
	}
	logger.Info("Fetched %d sources", len(sources))

	units, skipped := Normalize(sources)
	stats := domain.IngestStats{
		Sources: len(sources),
		Units:   len(units),
		Skipped: skipped,
	}
	if len(units) == 0 {
		logger.Info("No units to index")
		return stats, nil
	}

	entries, err := s.embedUnits(ctx, units)
	if err != nil {
		return domain.IngestStats{}, err
	}

	if err := s.index.Upsert(ctx, entries); err != nil {
		return domain.IngestStats{}, fmt.Errorf("upserting %d entries: %w", len(entries), err)
	}
	logger.Info("Upserted %d entries", len(entries))

	run := domain.IngestRun{
		ID:         uuid.NewString(),
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Units:      stats.Units,
		Skipped:    stats.Skipped,
	}
	if err := s.index.RecordRun(ctx, run); err != nil {
		// The index itself is already consistent; run history is
		// informational.
		logger.Warn("Recording ingest run failed: %v", err)
	}

	return stats, nil
}

// embedUnits computes embeddings for all units in bounded batches and
// pairs them into index entries.
func (s *IngestService) embedUnits(
	ctx context.Context, units []domain.NormalizedUnit,
) ([]domain.IndexEntry, error) {
	entries := make([]domain.IndexEntry, 0, len(units))

	for start := 0; start < len(units); start += s.batchSize {
		end := start + s.batchSize
		if end > len(units) {
			end = len(units)
		}
		batch := units[start:end]

		texts := make([]string, len(batch))
		for i, u := range batch {
			texts[i] = u.Body
		}

		logger.Debug("Embedding batch %d-%d of %d units", start, end, len(units))
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding units %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedding units %d-%d: got %d vectors for %d texts",
				start, end, len(vectors), len(batch))
		}

		for i, u := range batch {
			entries = append(entries, domain.IndexEntry{
				ID:        u.ID,
				Embedding: vectors[i],
				Body:      u.Body,
				Metadata:  u.Metadata,
			})
		}
	}

	return entries, nil
}

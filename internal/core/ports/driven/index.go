package driven

import (
	"context"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
)

// IndexStore owns the persistent similarity index: entries keyed by
// unit ID with their embedding vectors and metadata. Backed by
// directory-rooted on-disk storage; opening an existing path keeps
// prior entries, opening a nonexistent path creates an empty index.
type IndexStore interface {
	// Upsert writes or overwrites entries keyed by unit ID, atomically
	// for the whole batch. Re-upserting an ID replaces the prior entry
	// rather than creating a duplicate; the entry keeps its original
	// insertion position for tie-breaking.
	Upsert(ctx context.Context, entries []domain.IndexEntry) error

	// TopK returns the k entries most similar to the query vector,
	// descending by score, ties broken by insertion order. k must be
	// positive; if the store holds fewer than k entries, all of them
	// are returned.
	TopK(ctx context.Context, query []float32, k int) ([]domain.ScoredEntry, error)

	// Get retrieves a single entry by unit ID, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.IndexEntry, error)

	// Count returns the number of persisted entries.
	Count(ctx context.Context) (int, error)

	// RecordRun persists the outcome of an ingestion run.
	RecordRun(ctx context.Context, run domain.IngestRun) error

	// LastRun returns the most recent ingestion run, or
	// domain.ErrNotFound if none has been recorded.
	LastRun(ctx context.Context) (*domain.IngestRun, error)

	// Close releases the underlying storage.
	Close() error
}

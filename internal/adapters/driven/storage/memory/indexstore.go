// Package memory provides in-memory implementations of storage ports,
// used in tests and anywhere persistence is not required.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/ports/driven"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/logger"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexStore.
// Contents do not survive the process.
type IndexStore struct {
	mu      sync.RWMutex
	entries map[string]domain.IndexEntry
	seq     map[string]int
	nextSeq int
	runs    []domain.IngestRun
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{
		entries: make(map[string]domain.IndexEntry),
		seq:     make(map[string]int),
	}
}

// Upsert stores or replaces entries. A replaced entry keeps its
// original insertion position.
func (s *IndexStore) Upsert(_ context.Context, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		if _, ok := s.seq[entry.ID]; !ok {
			s.nextSeq++
			s.seq[entry.ID] = s.nextSeq
		}
		s.entries[entry.ID] = entry
	}
	return nil
}

// TopK returns the k most similar entries by cosine similarity,
// descending by score, ties broken by insertion order.
func (s *IndexStore) TopK(_ context.Context, query []float32, k int) ([]domain.ScoredEntry, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type ranked struct {
		entry domain.IndexEntry
		score float64
		seq   int
	}
	scored := make([]ranked, 0, len(s.entries))
	for id, entry := range s.entries {
		scored = append(scored, ranked{
			entry: entry,
			score: cosineSimilarity(query, entry.Embedding),
			seq:   s.seq[id],
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].seq < scored[j].seq
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	result := make([]domain.ScoredEntry, len(scored))
	for i, r := range scored {
		result[i] = domain.ScoredEntry{Entry: r.entry, Score: r.score}
	}
	return result, nil
}

// Get retrieves an entry by unit ID.
func (s *IndexStore) Get(_ context.Context, id string) (*domain.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// Count returns the number of stored entries.
func (s *IndexStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// RecordRun appends an ingestion run record.
func (s *IndexStore) RecordRun(_ context.Context, run domain.IngestRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

// LastRun returns the most recently recorded run.
func (s *IndexStore) LastRun(_ context.Context) (*domain.IngestRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.runs) == 0 {
		return nil, domain.ErrNotFound
	}
	run := s.runs[len(s.runs)-1]
	return &run, nil
}

// Close is a no-op for the in-memory store.
func (s *IndexStore) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. A length mismatch means the stored embedding came from a
// different model configuration than the query; it scores 0 and is
// logged so the misconfiguration surfaces instead of quietly degrading
// retrieval. A zero vector also scores 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		logger.Warn("Embedding length mismatch: query %d vs stored %d dimensions", len(a), len(b))
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

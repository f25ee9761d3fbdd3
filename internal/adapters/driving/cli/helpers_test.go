package cli

import (
	"context"
	"errors"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/adapters/driven/storage/memory"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
)

// mockIngestService returns canned stats.
type mockIngestService struct {
	stats     domain.IngestStats
	lastToken string
}

func (m *mockIngestService) Ingest(_ context.Context, token string) (domain.IngestStats, error) {
	m.lastToken = token
	return m.stats, nil
}

// mockIngestServiceError always fails.
type mockIngestServiceError struct{}

func (m *mockIngestServiceError) Ingest(context.Context, string) (domain.IngestStats, error) {
	return domain.IngestStats{}, errors.New("mock ingest error")
}

// mockQueryService returns a canned result, or askErr when set.
type mockQueryService struct {
	result *domain.QueryResult
	askErr error
	lastK  int
	asks   int
}

func (m *mockQueryService) Open(context.Context) error {
	return nil
}

func (m *mockQueryService) Ask(_ context.Context, question string, k int) (*domain.QueryResult, error) {
	m.lastK = k
	m.asks++
	if m.askErr != nil {
		return nil, m.askErr
	}
	result := *m.result
	result.Question = question
	return &result, nil
}

// mockQueryServiceOpenError fails at Open.
type mockQueryServiceOpenError struct{}

func (m *mockQueryServiceOpenError) Open(context.Context) error {
	return errors.New("mock open error")
}

func (m *mockQueryServiceOpenError) Ask(context.Context, string, int) (*domain.QueryResult, error) {
	return nil, errors.New("not opened")
}

// setupTestServices swaps the package-level services for mocks and
// returns a cleanup function restoring the originals.
func setupTestServices() func() {
	oldIngest := ingestService
	oldQuery := queryService
	oldIndex := indexStore
	oldConfig := configStore

	ingestService = &mockIngestService{
		stats: domain.IngestStats{Sources: 2, Units: 3, Skipped: 1},
	}
	queryService = &mockQueryService{
		result: &domain.QueryResult{
			Answer: "Mock answer.",
			Retrieved: []domain.ScoredEntry{
				{
					Entry: domain.IndexEntry{
						ID: "highlight_1",
						Metadata: domain.UnitMetadata{
							Title:  "Thinking in Systems",
							Author: "Donella Meadows",
						},
					},
					Score: 0.91,
				},
			},
		},
	}
	indexStore = memory.NewIndexStore()
	configStore = nil

	return func() {
		ingestService = oldIngest
		queryService = oldQuery
		indexStore = oldIndex
		configStore = oldConfig
	}
}

package services

import (
	"context"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockExportClient implements driven.ExportClient for testing.
type mockExportClient struct {
	sources       []domain.SourceRecord
	fetchErr      error
	validateErr   error
	calls         int
	validateCalls int
}

func (m *mockExportClient) FetchAll(_ context.Context, _ string) ([]domain.SourceRecord, error) {
	m.calls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.sources, nil
}

func (m *mockExportClient) Validate(_ context.Context, _ string) error {
	m.validateCalls++
	return m.validateErr
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Vectors come from the byText map; texts without an entry get fallback.
type mockEmbeddingService struct {
	byText   map[string][]float32
	fallback []float32
	embedErr error
	pingErr  error

	// short, when positive, truncates EmbedBatch results to simulate a
	// miscounting backend.
	short int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.byText[text]; ok {
		return v, nil
	}
	return m.fallback, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if m.short > 0 && len(result) > m.short {
		result = result[:m.short]
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.fallback)
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	answer      string
	generateErr error
	pingErr     error
	lastPrompt  string
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.lastPrompt = prompt
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.answer, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	loadErr error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// failingIndexStore wraps errors around every index operation.
type failingIndexStore struct {
	err error
}

func (s *failingIndexStore) Upsert(context.Context, []domain.IndexEntry) error { return s.err }
func (s *failingIndexStore) TopK(context.Context, []float32, int) ([]domain.ScoredEntry, error) {
	return nil, s.err
}
func (s *failingIndexStore) Get(context.Context, string) (*domain.IndexEntry, error) {
	return nil, s.err
}
func (s *failingIndexStore) Count(context.Context) (int, error)              { return 0, s.err }
func (s *failingIndexStore) RecordRun(context.Context, domain.IngestRun) error { return s.err }
func (s *failingIndexStore) LastRun(context.Context) (*domain.IngestRun, error) {
	return nil, s.err
}
func (s *failingIndexStore) Close() error { return nil }

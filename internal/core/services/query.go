package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/ports/driven"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/ports/driving"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryPipeline = (*QueryService)(nil)

// QueryService answers questions grounded in indexed highlights.
//
// Lifecycle is explicit and two-phase: NewQueryService wires the
// collaborators, Open verifies them once and fails fast, then Ask may
// be called repeatedly. There is no lazy initialization hidden inside
// Ask, and an Ask failure leaves the service usable for the next call.
type QueryService struct {
	embedder driven.EmbeddingService
	llm      driven.LLMService
	index    driven.IndexStore
	prompts  driven.PromptStore

	contextBudget int
	opened        bool
}

// NewQueryService creates a new query pipeline over the given index
// and model services.
func NewQueryService(
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	index driven.IndexStore,
) *QueryService {
	return &QueryService{
		embedder:      embedder,
		llm:           llm,
		index:         index,
		contextBudget: DefaultContextBudget,
	}
}

// SetPromptStore sets the prompt store for loading a customisable
// answer template. If not set, the service uses the hardcoded default.
func (s *QueryService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// SetContextBudget overrides the context character budget. Values
// below 1 are ignored.
func (s *QueryService) SetContextBudget(n int) {
	if n >= 1 {
		s.contextBudget = n
	}
}

// Open verifies the embedding service, the generation service, and the
// index are all reachable. Construction failure is fatal to the query
// path; it is not retried per call.
func (s *QueryService) Open(ctx context.Context) error {
	if err := s.embedder.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if err := s.llm.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}

	count, err := s.index.Count(ctx)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	logger.Info("Query pipeline open: %d indexed units, embed=%s, llm=%s",
		count, s.embedder.ModelName(), s.llm.ModelName())

	s.opened = true
	return nil
}

// Ask runs one question through the pipeline: embed, retrieve top-k,
// assemble a grounded prompt, generate. k <= 0 selects
// domain.DefaultTopK.
func (s *QueryService) Ask(ctx context.Context, question string, k int) (*domain.QueryResult, error) {
	if !s.opened {
		return nil, errors.New("query pipeline not opened")
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = domain.DefaultTopK
	}

	logger.Section("Query")
	logger.Debug("Question: %q, k=%d", question, k)

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	logger.Debug("Question embedding: %d dimensions", len(vector))

	retrieved, err := s.index.TopK(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("retrieving top-%d: %w", k, err)
	}
	for i, r := range retrieved {
		logger.Debug("Retrieved [%d] %s (%.4f)", i+1, r.Entry.ID, r.Score)
	}

	contextText, grounded := assembleContext(retrieved, s.contextBudget)
	prompt := fmt.Sprintf(s.answerTemplate(), contextText, question)

	answer, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &domain.QueryResult{
		Question:  question,
		Answer:    strings.TrimSpace(answer),
		Retrieved: grounded,
	}, nil
}

// answerTemplate loads the answer prompt template, falling back to the
// default when no store is configured or the load fails.
func (s *QueryService) answerTemplate() string {
	if s.prompts == nil {
		return defaultAnswerPrompt
	}
	tmpl, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		logger.Warn("Loading answer prompt failed: %v (using default)", err)
		return defaultAnswerPrompt
	}
	return tmpl
}

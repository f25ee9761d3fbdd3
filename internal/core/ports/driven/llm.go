package driven

import "context"

// LLMService is the thin adapter to a locally running text-generation
// model. Generation is synchronous and never retried automatically: a
// stale prompt retried against a non-deterministic model is not safe to
// assume equivalent.
type LLMService interface {
	// Generate produces a completion for the prompt. An unreachable
	// service returns domain.ErrModelUnavailable; exceeding the
	// bounded wait returns domain.ErrGenerationTimeout.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at pipeline open to fail fast.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

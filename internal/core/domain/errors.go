package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input,
	// such as an empty question or a non-positive k.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFetchFailed indicates a non-retriable transport or auth error
	// while exporting highlights. It aborts the whole ingestion run;
	// nothing from the failed fetch is indexed.
	ErrFetchFailed = errors.New("highlight export failed")

	// ErrRateLimited indicates the export API rate limit was exceeded.
	// Handled internally with bounded backoff; surfaces only when
	// retries are exhausted.
	ErrRateLimited = errors.New("rate limited")

	// ErrIndexUnavailable indicates the persistent index storage is
	// inaccessible. Fatal to both ingestion and query; never retried
	// automatically.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrModelUnavailable indicates the local generation service is
	// unreachable. Fatal to the current query only.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrGenerationTimeout indicates the generation service did not
	// respond within the bounded wait. The prompt is not retried: a
	// non-deterministic model gives no equivalence guarantee.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrEmbeddingUnavailable indicates the embedding service is
	// unreachable. Without embeddings neither ingestion nor query can
	// proceed.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

package driven

import (
	"context"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
)

// ExportClient fetches the full highlight archive from the remote
// export API.
type ExportClient interface {
	// FetchAll pages through the export endpoint and returns every
	// source record with its nested highlights. Rate-limit responses
	// are retried internally with bounded backoff; any other failure
	// returns domain.ErrFetchFailed and discards pages already
	// fetched. Retrieval is complete or it is nothing.
	FetchAll(ctx context.Context, token string) ([]domain.SourceRecord, error)

	// Validate makes a lightweight authenticated request to verify
	// the token before committing to a full fetch.
	Validate(ctx context.Context, token string) error
}

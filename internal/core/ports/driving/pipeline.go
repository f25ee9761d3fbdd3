package driving

import (
	"context"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
)

// IngestOrchestrator runs a full export-normalize-index pass.
type IngestOrchestrator interface {
	// Ingest fetches the complete highlight archive with the given
	// token, normalizes it, and upserts it into the index. Any error
	// aborts the run without touching previously indexed data.
	Ingest(ctx context.Context, token string) (domain.IngestStats, error)
}

// QueryPipeline answers questions grounded in the indexed highlights.
// Construction wires the collaborators; Open performs the fail-fast
// initialization; Ask may then be called repeatedly.
type QueryPipeline interface {
	// Open verifies the index and both model services are reachable.
	// A failure here is fatal to the query path and is not retried
	// per call.
	Open(ctx context.Context) error

	// Ask embeds the question, retrieves the top-k most similar
	// units, assembles a grounded prompt, and generates an answer.
	// k <= 0 selects domain.DefaultTopK. Failures abort only the
	// current query; the pipeline stays usable.
	Ask(ctx context.Context, question string, k int) (*domain.QueryResult, error)
}

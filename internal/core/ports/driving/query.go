package driving

import (
	"context"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
)

// QueryService runs the read path: embed the query, retrieve similar
// chunks, synthesize a grounded answer.
type QueryService interface {
	// Retrieve returns the k stored chunks most similar to the question,
	// descending by similarity.
	Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievedChunk, error)

	// Ask retrieves context for the question and asks the language model
	// for an answer grounded in that context. Sources is always the
	// deduplicated set of retrieved filenames. Returns
	// domain.ErrNoContent when retrieval yields nothing to ground on.
	Ask(ctx context.Context, question string, k int) (*domain.Answer, error)
}

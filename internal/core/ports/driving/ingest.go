package driving

import (
	"context"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
)

// IngestService runs the write path: extract, chunk, embed, store.
type IngestService interface {
	// IngestFile extracts text from the file, splits it into chunks and
	// stores one embedding record per chunk in the named collection; an
	// empty collection targets the service default. Extraction and
	// chunking failures abort this file only; previously stored records
	// are untouched. Partial storage on a mid-batch provider failure is
	// reported, not rolled back.
	IngestFile(ctx context.Context, collection, filename string, data []byte) (*domain.IngestReport, error)
}

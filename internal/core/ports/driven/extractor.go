package driven

import (
	"github.com/arbor-labs/docqa-core/internal/core/domain"
)

// ExtractFunc converts raw file bytes into plain-text fragments.
type ExtractFunc func(data []byte) ([]domain.Fragment, error)

// Extractor turns (filename, bytes) pairs into sanitized text fragments,
// dispatching on the lower-cased file extension. Implementations are
// pure: all file I/O is the caller's responsibility.
type Extractor interface {
	// Extract returns the fragments of the file, or
	// domain.ErrUnsupportedFormat if no extractor matches the extension,
	// or domain.ErrExtractionFailed if the bytes cannot be parsed.
	Extract(filename string, data []byte) ([]domain.Fragment, error)

	// Register binds extensions (with or without leading dot) to an
	// extraction function. Later registrations win. Setup-time only.
	Register(extensions []string, fn ExtractFunc)

	// Formats returns the registered extensions, sorted.
	Formats() []string
}

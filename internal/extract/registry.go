package extract

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
	"github.com/arbor-labs/docqa-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Extractor = (*Registry)(nil)

// Registry implements driven.Extractor with extension-based dispatch.
// One extraction function per extension; registering an extension twice
// replaces the earlier binding.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]driven.ExtractFunc
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]driven.ExtractFunc),
	}
}

// NewDefaultRegistry creates a registry with the built-in PDF, CSV and
// plain-text extractors registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register([]string{".pdf"}, PDF)
	r.Register([]string{".csv"}, CSV)
	r.Register([]string{".txt", ".md", ".log"}, Text)
	return r
}

// Register binds extensions to an extraction function.
func (r *Registry) Register(extensions []string, fn driven.ExtractFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.extractors[ext] = fn
	}
}

// Formats returns the registered extensions, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		formats = append(formats, ext)
	}
	sort.Strings(formats)
	return formats
}

// Extract dispatches on the lower-cased extension of filename and
// returns sanitized, non-empty fragments.
func (r *Registry) Extract(filename string, data []byte) ([]domain.Fragment, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	r.mu.RLock()
	fn, ok := r.extractors[ext]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (%s)", domain.ErrUnsupportedFormat, ext, filename)
	}

	fragments, err := fn(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, filename, err)
	}

	// Sanitize every fragment and drop the ones that end up blank
	cleaned := make([]domain.Fragment, 0, len(fragments))
	for _, f := range fragments {
		f.Text = Sanitize(f.Text)
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		cleaned = append(cleaned, f)
	}
	return cleaned, nil
}

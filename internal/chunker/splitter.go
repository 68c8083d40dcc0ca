// Package chunker splits extracted text into overlapping, size-bounded
// segments, preferring paragraph over line over sentence over word
// boundaries.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
)

const (
	// DefaultSize is the default maximum characters per chunk
	DefaultSize = 1000

	// DefaultOverlap is the default number of trailing characters of a
	// chunk re-included at the start of the next one
	DefaultOverlap = 100
)

// Separators in priority order. The final "" level falls back to raw
// character slicing and guarantees termination.
var separators = []string{"\n\n", "\n", ".", " ", ""}

// Options configures a Splitter.
type Options struct {
	// Size is the maximum characters per chunk (0 means DefaultSize)
	Size int

	// Overlap is the characters of overlap between consecutive chunks.
	// Must be smaller than Size.
	Overlap int

	// Disabled turns chunking off: the whole text becomes one chunk
	Disabled bool
}

// DefaultOptions returns the standard chunking configuration.
func DefaultOptions() Options {
	return Options{
		Size:    DefaultSize,
		Overlap: DefaultOverlap,
	}
}

// Splitter performs recursive boundary-seeking splits.
type Splitter struct {
	size     int
	overlap  int
	disabled bool
}

// New creates a Splitter. An overlap that is not smaller than the size
// is a configuration error, never silently clamped.
func New(opts Options) (*Splitter, error) {
	size := opts.Size
	if size == 0 {
		size = DefaultSize
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", domain.ErrConfiguration, size)
	}
	if opts.Overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap %d must not be negative", domain.ErrConfiguration, opts.Overlap)
	}
	if !opts.Disabled && opts.Overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d", domain.ErrConfiguration, opts.Overlap, size)
	}

	return &Splitter{
		size:     size,
		overlap:  opts.Overlap,
		disabled: opts.Disabled,
	}, nil
}

// Size returns the configured maximum chunk length in characters.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the configured overlap in characters.
func (s *Splitter) Overlap() int { return s.overlap }

// Split splits text into chunks of at most Size characters. Consecutive
// chunks share the trailing Overlap characters of the previous chunk.
// Whitespace-only text yields no chunks.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if s.disabled {
		return []string{text}
	}

	a := &assembler{size: s.size, overlap: s.overlap}
	s.feed(a, text, separators)
	a.flush()
	return a.chunks
}

// feed pushes the units of text at the current separator level into the
// assembler. A unit that alone exceeds the chunk size first flushes the
// buffer, then recurses into the next separator level.
func (s *Splitter) feed(a *assembler, text string, seps []string) {
	sep := seps[0]
	if sep == "" {
		for _, r := range text {
			a.add(string(r))
		}
		return
	}

	for _, unit := range splitKeep(text, sep) {
		if utf8.RuneCountInString(unit) > s.size {
			a.emit()
			s.feed(a, unit, seps[1:])
			continue
		}
		a.add(unit)
	}
}

// assembler accumulates units into a running buffer and emits chunks.
// After each emitted chunk the buffer is re-seeded with its trailing
// overlap characters for context continuity.
type assembler struct {
	size    int
	overlap int
	buf     string
	seed    string
	chunks  []string
}

func (a *assembler) add(unit string) {
	if unit == "" {
		return
	}
	if a.buf != "" && runeLen(a.buf)+runeLen(unit) > a.size {
		a.emit()
	}
	if a.buf != "" && a.buf == a.seed && runeLen(a.buf)+runeLen(unit) > a.size {
		// The overlap seed alone would push the chunk past its limit;
		// hard size bound wins over continuity
		a.buf, a.seed = "", ""
	}
	a.buf += unit
}

// emit closes the current buffer as a chunk, unless it holds nothing
// beyond the overlap seed of the previous chunk.
func (a *assembler) emit() {
	if a.buf == "" || a.buf == a.seed {
		return
	}
	a.chunks = append(a.chunks, a.buf)
	a.seed = tail(a.buf, a.overlap)
	a.buf = a.seed
}

func (a *assembler) flush() {
	if a.buf != "" && a.buf != a.seed {
		a.chunks = append(a.chunks, a.buf)
	}
}

// splitKeep splits text by sep, keeping the separator attached to the
// preceding unit so that concatenating units reconstructs the text.
func splitKeep(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	units := parts[:0]
	for _, p := range parts {
		if p != "" {
			units = append(units, p)
		}
	}
	return units
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// tail returns the last n characters of s.
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

package extract

import (
	"strings"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
)

// Text extracts a plain-text file as a single fragment. Bytes that are
// not valid UTF-8 are dropped rather than failing the file.
func Text(data []byte) ([]domain.Fragment, error) {
	text := strings.ToValidUTF8(string(data), "")
	return []domain.Fragment{{Text: text}}, nil
}

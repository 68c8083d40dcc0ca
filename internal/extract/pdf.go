package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
)

// PDF extracts one fragment per page so page attribution survives
// chunking. Page metadata is 1-based. Pages without extractable text
// are skipped.
func PDF(data []byte) ([]domain.Fragment, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var fragments []domain.Fragment
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// One broken page should not lose the rest of the document
			continue
		}

		fragments = append(fragments, domain.Fragment{
			Text: text,
			Page: pageNum,
		})
	}
	return fragments, nil
}

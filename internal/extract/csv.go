package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
)

// CSV extracts one fragment per data row, cells joined by single spaces.
// The first record is treated as a header and skipped; Row metadata is
// 1-based over the data rows.
func CSV(data []byte) ([]domain.Fragment, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	fragments := make([]domain.Fragment, 0, len(records)-1)
	for i, record := range records[1:] {
		fragments = append(fragments, domain.Fragment{
			Text: strings.Join(record, " "),
			Row:  i + 1,
		})
	}
	return fragments, nil
}

package domain

import "sort"

// ChunkMetadata identifies where a chunk came from.
// Filename is always set; Page is set for PDF pages (1-based),
// Row for CSV rows (1-based, header excluded).
type ChunkMetadata struct {
	Filename   string `json:"filename"`
	Page       int    `json:"page,omitempty"`
	Row        int    `json:"row,omitempty"`
	ChunkIndex int    `json:"chunk_index"`
}

// Chunk is the atomic retrievable unit: a bounded segment of extracted
// text plus its provenance. Chunks are immutable once created.
type Chunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// Fragment is an intermediate extraction unit produced before chunking.
// A PDF page or a CSV row each become one fragment; a text file is a
// single fragment.
type Fragment struct {
	Text string
	Page int
	Row  int
}

// EmbeddingRecord pairs a chunk with its vector inside a collection.
// Records are append-only; re-ingesting a file creates new records.
type EmbeddingRecord struct {
	ID         int64         `json:"id"`
	Collection string        `json:"collection"`
	Content    string        `json:"content"`
	Metadata   ChunkMetadata `json:"metadata"`
	Vector     []float32     `json:"vector,omitempty"`
}

// RetrievedChunk is a chunk returned by similarity search together with
// its similarity score (higher is closer).
type RetrievedChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Answer is the result of a grounded query. Sources is the deduplicated,
// sorted set of filenames among the retrieved chunks. It is derived from
// retrieval metadata, never from the model's own output.
type Answer struct {
	Text    string           `json:"answer"`
	Sources []string         `json:"sources"`
	Chunks  []RetrievedChunk `json:"chunks,omitempty"`
}

// SourcesOf collects the distinct filenames of the given retrieved
// chunks, sorted for determinism.
func SourcesOf(chunks []RetrievedChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	var sources []string
	for _, rc := range chunks {
		name := rc.Chunk.Metadata.Filename
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		sources = append(sources, name)
	}
	sort.Strings(sources)
	return sources
}

// IngestReport summarises one file ingestion.
type IngestReport struct {
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
	Stored   int    `json:"stored"`
}

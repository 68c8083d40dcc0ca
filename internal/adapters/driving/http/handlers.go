package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status"`
}

// UploadResponse is returned after a document upload
type UploadResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
	TaskID   string `json:"task_id,omitempty"`
	Chunks   int    `json:"chunks,omitempty"`
	Stored   int    `json:"stored,omitempty"`
}

// QueryRequest asks a question over the ingested documents
type QueryRequest struct {
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
}

// QueryResponse is a grounded answer with its sources and the chunks
// the answer was grounded on
type QueryResponse struct {
	Answer  string                   `json:"answer"`
	Sources []string                 `json:"sources"`
	Chunks  []RetrievedChunkResponse `json:"chunks"`
}

// RetrievedChunkResponse is one retrieval hit
type RetrievedChunkResponse struct {
	Content  string               `json:"content"`
	Metadata domain.ChunkMetadata `json:"metadata"`
	Score    float64              `json:"score"`
}

// RetrieveResponse lists the chunks most similar to the question
type RetrieveResponse struct {
	Chunks []RetrievedChunkResponse `json:"chunks"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "queue unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Document endpoints

// handleUploadDocument accepts a multipart upload under the "file" field.
// With a task queue configured the file is queued for the background
// worker and 202 is returned; otherwise it is ingested in the request.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "missing filename")
		return
	}

	if s.taskQueue != nil {
		task := domain.NewIngestTask(header.Filename, s.collection, data)
		if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
			s.logger.Error("failed to enqueue upload", "filename", header.Filename, "error", err)
			writeError(w, http.StatusServiceUnavailable, "failed to queue document")
			return
		}

		writeJSON(w, http.StatusAccepted, UploadResponse{
			Status:   "queued",
			Filename: header.Filename,
			TaskID:   task.ID,
		})
		return
	}

	report, err := s.ingestService.IngestFile(r.Context(), s.collection, header.Filename, data)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		Status:   "ingested",
		Filename: report.Filename,
		Chunks:   report.Chunks,
		Stored:   report.Stored,
	})
}

// Query endpoints

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := s.queryService.Ask(r.Context(), req.Question, req.K)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Answer:  answer.Text,
		Sources: answer.Sources,
		Chunks:  toChunkResponses(answer.Chunks),
	})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	chunks, err := s.queryService.Retrieve(r.Context(), req.Question, req.K)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RetrieveResponse{Chunks: toChunkResponses(chunks)})
}

func toChunkResponses(chunks []domain.RetrievedChunk) []RetrievedChunkResponse {
	out := make([]RetrievedChunkResponse, len(chunks))
	for i, c := range chunks {
		out[i] = RetrievedChunkResponse{
			Content:  c.Chunk.Content,
			Metadata: c.Chunk.Metadata,
			Score:    c.Score,
		}
	}
	return out
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat):
		writeError(w, http.StatusUnprocessableEntity, "unsupported file format")
	case errors.Is(err, domain.ErrExtractionFailed):
		writeError(w, http.StatusUnprocessableEntity, "failed to extract text from file")
	case errors.Is(err, domain.ErrNoContent):
		writeError(w, http.StatusUnprocessableEntity, "no content to ground an answer on")
	case errors.Is(err, domain.ErrCollectionNotFound):
		writeError(w, http.StatusNotFound, "collection not found")
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		writeError(w, http.StatusBadGateway, "embedding provider unavailable")
	case errors.Is(err, domain.ErrLLMUnavailable):
		writeError(w, http.StatusBadGateway, "language model unavailable")
	case errors.Is(err, domain.ErrPersistence), errors.Is(err, domain.ErrSchemaSetup):
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
	"github.com/arbor-labs/docqa-core/internal/core/ports/driven/mocks"
)

// Mock services for testing

type mockIngestService struct {
	ingestFn func(ctx context.Context, collection, filename string, data []byte) (*domain.IngestReport, error)
}

func (m *mockIngestService) IngestFile(ctx context.Context, collection, filename string, data []byte) (*domain.IngestReport, error) {
	if m.ingestFn != nil {
		return m.ingestFn(ctx, collection, filename, data)
	}
	return &domain.IngestReport{Filename: filename, Chunks: 1, Stored: 1}, nil
}

type mockQueryService struct {
	retrieveFn func(ctx context.Context, question string, k int) ([]domain.RetrievedChunk, error)
	askFn      func(ctx context.Context, question string, k int) (*domain.Answer, error)
}

func (m *mockQueryService) Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievedChunk, error) {
	if m.retrieveFn != nil {
		return m.retrieveFn(ctx, question, k)
	}
	return nil, errors.New("not implemented")
}

func (m *mockQueryService) Ask(ctx context.Context, question string, k int) (*domain.Answer, error) {
	if m.askFn != nil {
		return m.askFn(ctx, question, k)
	}
	return nil, errors.New("not implemented")
}

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

type failPinger struct{}

func (failPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

func newTestServer(ingest *mockIngestService, query *mockQueryService) *Server {
	return NewServer(DefaultConfig(), ingest, query, nil, okPinger{})
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&mockIngestService{}, &mockQueryService{})

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}
}

func TestHandleReady_DBDown(t *testing.T) {
	s := NewServer(DefaultConfig(), &mockIngestService{}, &mockQueryService{}, nil, failPinger{})

	req := httptest.NewRequest("GET", "/ready", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = "1.2.3"
	s := NewServer(cfg, &mockIngestService{}, &mockQueryService{}, nil, okPinger{})

	req := httptest.NewRequest("GET", "/version", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", resp["version"])
	}
}

func TestHandleUploadDocument_Sync(t *testing.T) {
	var gotCollection, gotFilename string
	var gotData []byte
	ingest := &mockIngestService{
		ingestFn: func(ctx context.Context, collection, filename string, data []byte) (*domain.IngestReport, error) {
			gotCollection = collection
			gotFilename = filename
			gotData = data
			return &domain.IngestReport{Filename: filename, Chunks: 3, Stored: 3}, nil
		},
	}
	cfg := DefaultConfig()
	cfg.Collection = "documents"
	s := NewServer(cfg, ingest, &mockQueryService{}, nil, okPinger{})

	body, contentType := multipartBody(t, "file", "notes.txt", "hello world")
	req := httptest.NewRequest("POST", "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotCollection != "documents" {
		t.Errorf("expected collection documents, got %q", gotCollection)
	}
	if gotFilename != "notes.txt" {
		t.Errorf("expected filename notes.txt, got %s", gotFilename)
	}
	if string(gotData) != "hello world" {
		t.Errorf("unexpected file data: %q", gotData)
	}

	var resp UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ingested" || resp.Chunks != 3 || resp.Stored != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandleUploadDocument_Queued(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	cfg := DefaultConfig()
	cfg.Collection = "documents"
	s := NewServer(cfg, &mockIngestService{}, &mockQueryService{}, queue, okPinger{})

	body, contentType := multipartBody(t, "file", "report.pdf", "%PDF-1.4")
	req := httptest.NewRequest("POST", "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "queued" {
		t.Errorf("expected queued status, got %s", resp.Status)
	}
	if resp.TaskID == "" {
		t.Error("expected a task ID")
	}
	if queue.Len() != 1 {
		t.Errorf("expected 1 queued task, got %d", queue.Len())
	}

	task, err := queue.DequeueWithTimeout(context.Background(), 0)
	if err != nil || task == nil {
		t.Fatalf("failed to dequeue: %v", err)
	}
	if task.Filename != "report.pdf" {
		t.Errorf("expected filename report.pdf, got %s", task.Filename)
	}
	if task.Collection != "documents" {
		t.Errorf("expected collection documents, got %s", task.Collection)
	}
	if string(task.Payload) != "%PDF-1.4" {
		t.Error("payload did not survive enqueue")
	}
}

func TestHandleUploadDocument_MissingFile(t *testing.T) {
	s := newTestServer(&mockIngestService{}, &mockQueryService{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "no file here")
	mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleUploadDocument_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"unsupported format", domain.ErrUnsupportedFormat, http.StatusUnprocessableEntity},
		{"extraction failed", domain.ErrExtractionFailed, http.StatusUnprocessableEntity},
		{"no content", domain.ErrNoContent, http.StatusUnprocessableEntity},
		{"embedding unavailable", domain.ErrEmbeddingUnavailable, http.StatusBadGateway},
		{"persistence", domain.ErrPersistence, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ingest := &mockIngestService{
				ingestFn: func(ctx context.Context, collection, filename string, data []byte) (*domain.IngestReport, error) {
					return nil, fmt.Errorf("ingest %s: %w", filename, tc.err)
				},
			}
			s := newTestServer(ingest, &mockQueryService{})

			body, contentType := multipartBody(t, "file", "notes.txt", "hello")
			req := httptest.NewRequest("POST", "/api/v1/documents", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestHandleQuery_Success(t *testing.T) {
	query := &mockQueryService{
		askFn: func(ctx context.Context, question string, k int) (*domain.Answer, error) {
			if question != "What is the warranty period?" {
				t.Errorf("unexpected question: %q", question)
			}
			if k != 3 {
				t.Errorf("expected k=3, got %d", k)
			}
			return &domain.Answer{
				Text:    "The warranty period is two years.",
				Sources: []string{"manual.pdf", "terms.txt"},
				Chunks: []domain.RetrievedChunk{
					{
						Chunk: domain.Chunk{
							Content:  "Warranty: two years from purchase.",
							Metadata: domain.ChunkMetadata{Filename: "manual.pdf", Page: 4},
						},
						Score: 0.91,
					},
				},
			}, nil
		},
	}
	s := newTestServer(&mockIngestService{}, query)

	body := `{"question":"What is the warranty period?","k":3}`
	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != "The warranty period is two years." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if len(resp.Sources) != 2 || resp.Sources[0] != "manual.pdf" {
		t.Errorf("unexpected sources: %v", resp.Sources)
	}
	if len(resp.Chunks) != 1 || resp.Chunks[0].Metadata.Filename != "manual.pdf" {
		t.Errorf("unexpected chunks: %+v", resp.Chunks)
	}
}

func TestHandleQuery_MissingQuestion(t *testing.T) {
	s := newTestServer(&mockIngestService{}, &mockQueryService{})

	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleQuery_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"no content", domain.ErrNoContent, http.StatusUnprocessableEntity},
		{"collection not found", domain.ErrCollectionNotFound, http.StatusNotFound},
		{"embedding unavailable", domain.ErrEmbeddingUnavailable, http.StatusBadGateway},
		{"llm unavailable", domain.ErrLLMUnavailable, http.StatusBadGateway},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			query := &mockQueryService{
				askFn: func(ctx context.Context, question string, k int) (*domain.Answer, error) {
					return nil, fmt.Errorf("ask: %w", tc.err)
				},
			}
			s := newTestServer(&mockIngestService{}, query)

			req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"question":"anything?"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestHandleRetrieve_Success(t *testing.T) {
	query := &mockQueryService{
		retrieveFn: func(ctx context.Context, question string, k int) ([]domain.RetrievedChunk, error) {
			return []domain.RetrievedChunk{
				{
					Chunk: domain.Chunk{
						Content:  "The warranty lasts two years.",
						Metadata: domain.ChunkMetadata{Filename: "manual.pdf", ChunkIndex: 4},
					},
					Score: 0.92,
				},
			}, nil
		},
	}
	s := newTestServer(&mockIngestService{}, query)

	req := httptest.NewRequest("POST", "/api/v1/retrieve", strings.NewReader(`{"question":"warranty?"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp RetrieveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(resp.Chunks))
	}
	if resp.Chunks[0].Content != "The warranty lasts two years." {
		t.Errorf("unexpected content: %q", resp.Chunks[0].Content)
	}
	if resp.Chunks[0].Metadata.Filename != "manual.pdf" {
		t.Errorf("unexpected metadata: %+v", resp.Chunks[0].Metadata)
	}
	if resp.Chunks[0].Score != 0.92 {
		t.Errorf("unexpected score: %v", resp.Chunks[0].Score)
	}
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	s := newTestServer(&mockIngestService{}, &mockQueryService{})

	req := httptest.NewRequest("GET", "/api/v1/query", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

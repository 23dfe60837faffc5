package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rpillai/docuchat/internal/domain/docModel"
	"github.com/rpillai/docuchat/internal/rag/vectorDB"
)

// --- Mocks ---

type mockDocStore struct {
	docs     map[uint64]docModel.Document
	statuses []docModel.DocumentStatus
	failure  string
	chunks   map[uint64][]string
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{
		docs:   map[uint64]docModel.Document{},
		chunks: map[uint64][]string{},
	}
}

func (m *mockDocStore) GetDocument(ctx context.Context, id uint64) (docModel.Document, bool) {
	doc, ok := m.docs[id]
	return doc, ok
}

func (m *mockDocStore) SetStatus(ctx context.Context, id uint64, status docModel.DocumentStatus) error {
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *mockDocStore) MarkFailed(ctx context.Context, id uint64, reason string) error {
	m.statuses = append(m.statuses, docModel.StatusFailed)
	m.failure = reason
	return nil
}

func (m *mockDocStore) ReplaceChunks(ctx context.Context, id uint64, contents []string) error {
	m.chunks[id] = contents
	return nil
}

type mockFiles struct{ dir string }

func (m *mockFiles) Path(handle string) string { return filepath.Join(m.dir, handle) }
func (m *mockFiles) URL(handle string) string  { return "/media/" + handle }

type mockEmbedder struct {
	batchFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1}, nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.batchFunc != nil {
		return m.batchFunc(ctx, texts)
	}
	return make([][]float32, len(texts)), nil
}

type mockVectorDB struct {
	upserted []vectorDB.VectorRecord
	fail     error
}

func (m *mockVectorDB) UpsertBatch(ctx context.Context, records []vectorDB.VectorRecord) error {
	if m.fail != nil {
		return m.fail
	}
	m.upserted = append(m.upserted, records...)
	return nil
}

func (m *mockVectorDB) Query(ctx context.Context, vector []float32, topK uint64, documentIDs []string) ([]vectorDB.Match, error) {
	return nil, nil
}

func (m *mockVectorDB) DeleteByDocument(ctx context.Context, documentID string) error {
	return nil
}

func writeTestFile(t *testing.T, dir string, name string, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("could not write test file: %v", err)
	}
}

// --- Tests ---

func TestProcessDocument_Success(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "report.txt", strings.Repeat("z", 2400))

	docs := newMockDocStore()
	docs.docs[5] = docModel.Document{
		ID:       5,
		Filename: "report.txt",
		FilePath: "report.txt",
		Metadata: map[string]any{"team": "research"},
	}
	vectors := &mockVectorDB{}

	status := ProcessDocument(context.Background(), 5, docs, &mockFiles{dir: dir}, &mockEmbedder{}, vectors)

	if status != docModel.StatusCompleted {
		t.Fatalf("status got %s, want completed (failure: %q)", status, docs.failure)
	}
	if got := docs.statuses; len(got) != 2 || got[0] != docModel.StatusProcessing || got[1] != docModel.StatusCompleted {
		t.Errorf("status transitions got %v, want [processing completed]", got)
	}

	if len(docs.chunks[5]) != 3 {
		t.Fatalf("chunk count got %d, want 3", len(docs.chunks[5]))
	}
	if len(vectors.upserted) != 3 {
		t.Fatalf("vector count got %d, want 3", len(vectors.upserted))
	}
	for i, record := range vectors.upserted {
		wantKey := fmt.Sprintf("doc_5_chunk_%d", i)
		if record.Key != wantKey {
			t.Errorf("vector key got %s, want %s", record.Key, wantKey)
		}
		if record.Metadata["document_id"] != "5" {
			t.Errorf("document_id metadata got %v", record.Metadata["document_id"])
		}
		if record.Metadata["chunk_position"] != i {
			t.Errorf("chunk_position got %v, want %d", record.Metadata["chunk_position"], i)
		}
		if record.Metadata["team"] != "research" {
			t.Error("custom document metadata was not merged into the vector record")
		}
		if record.Metadata["content"] == "" || record.Metadata["content_snippet"] == "" {
			t.Error("content fields missing from vector metadata")
		}
	}
}

func TestProcessDocument_ReingestIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "notes.md", strings.Repeat("same content every time. ", 120))

	docs := newMockDocStore()
	docs.docs[9] = docModel.Document{ID: 9, Filename: "notes.md", FilePath: "notes.md", Metadata: map[string]any{}}

	first := &mockVectorDB{}
	ProcessDocument(context.Background(), 9, docs, &mockFiles{dir: dir}, &mockEmbedder{}, first)
	firstChunks := docs.chunks[9]

	second := &mockVectorDB{}
	ProcessDocument(context.Background(), 9, docs, &mockFiles{dir: dir}, &mockEmbedder{}, second)

	if len(docs.chunks[9]) != len(firstChunks) {
		t.Fatalf("re-ingestion changed chunk count: %d vs %d", len(docs.chunks[9]), len(firstChunks))
	}
	for i := range firstChunks {
		if docs.chunks[9][i] != firstChunks[i] {
			t.Errorf("chunk %d differs between ingestion runs", i)
		}
		if first.upserted[i].Key != second.upserted[i].Key {
			t.Errorf("vector key %d not deterministic: %s vs %s", i, first.upserted[i].Key, second.upserted[i].Key)
		}
	}
}

func TestProcessDocument_FailurePaths(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		content     string
		embedder    *mockEmbedder
		vectors     *mockVectorDB
		nilClients  bool
		wantFailure string
	}{
		{
			name:        "unsupported extension",
			filename:    "image.png",
			content:     "binary-ish",
			wantFailure: "Unsupported file type: png",
		},
		{
			name:        "whitespace only content",
			filename:    "blank.txt",
			content:     "   \n\t   ",
			wantFailure: "No text could be extracted or file was empty.",
		},
		{
			name:        "clients never initialized",
			filename:    "fine.txt",
			content:     "real content",
			nilClients:  true,
			wantFailure: "not initialized",
		},
		{
			name:     "embedding call fails",
			filename: "fine.txt",
			content:  "real content here",
			embedder: &mockEmbedder{batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
				return nil, errors.New("api limit")
			}},
			wantFailure: "embedding batch failed",
		},
		{
			name:        "vector upsert fails",
			filename:    "fine.txt",
			content:     "real content here",
			vectors:     &mockVectorDB{fail: errors.New("index offline")},
			wantFailure: "vector upsert failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTestFile(t, dir, tt.filename, tt.content)

			docs := newMockDocStore()
			docs.docs[1] = docModel.Document{ID: 1, Filename: tt.filename, FilePath: tt.filename, Metadata: map[string]any{}}

			embedder := tt.embedder
			if embedder == nil {
				embedder = &mockEmbedder{}
			}
			vectors := tt.vectors
			if vectors == nil {
				vectors = &mockVectorDB{}
			}

			var status docModel.DocumentStatus
			if tt.nilClients {
				status = ProcessDocument(context.Background(), 1, docs, &mockFiles{dir: dir}, nil, nil)
			} else {
				status = ProcessDocument(context.Background(), 1, docs, &mockFiles{dir: dir}, embedder, vectors)
			}

			if status != docModel.StatusFailed {
				t.Fatalf("status got %s, want failed", status)
			}
			if !strings.Contains(docs.failure, tt.wantFailure) {
				t.Errorf("failure reason got %q, want it to contain %q", docs.failure, tt.wantFailure)
			}
		})
	}
}

func TestProcessDocument_MissingDocumentIsSilent(t *testing.T) {
	docs := newMockDocStore()

	status := ProcessDocument(context.Background(), 404, docs, &mockFiles{dir: t.TempDir()}, &mockEmbedder{}, &mockVectorDB{})

	if status != docModel.StatusFailed {
		t.Errorf("status got %s", status)
	}
	if len(docs.statuses) != 0 {
		t.Errorf("no status writes expected for an unknown document, got %v", docs.statuses)
	}
}

func TestProcessDocument_StripsNulBytes(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "nulls.txt", "before\x00after\x00end")

	docs := newMockDocStore()
	docs.docs[2] = docModel.Document{ID: 2, Filename: "nulls.txt", FilePath: "nulls.txt", Metadata: map[string]any{}}

	status := ProcessDocument(context.Background(), 2, docs, &mockFiles{dir: dir}, &mockEmbedder{}, &mockVectorDB{})

	if status != docModel.StatusCompleted {
		t.Fatalf("status got %s, want completed", status)
	}
	for _, chunk := range docs.chunks[2] {
		if strings.ContainsRune(chunk, '\x00') {
			t.Error("NUL characters survived into a persisted chunk")
		}
	}
	if docs.chunks[2][0] != "beforeafterend" {
		t.Errorf("cleaned content got %q", docs.chunks[2][0])
	}
}

func TestProcessDocument_MultibyteContentStaysValid(t *testing.T) {
	dir := t.TempDir()
	//no spaces, so every window boundary lands inside the document body
	writeTestFile(t, dir, "cjk.txt", strings.Repeat("世", 2400))

	docs := newMockDocStore()
	docs.docs[7] = docModel.Document{ID: 7, Filename: "cjk.txt", FilePath: "cjk.txt", Metadata: map[string]any{}}
	vectors := &mockVectorDB{}

	status := ProcessDocument(context.Background(), 7, docs, &mockFiles{dir: dir}, &mockEmbedder{}, vectors)

	if status != docModel.StatusCompleted {
		t.Fatalf("status got %s, want completed (failure: %q)", status, docs.failure)
	}
	for i, chunk := range docs.chunks[7] {
		if !utf8.ValidString(chunk) {
			t.Errorf("persisted chunk %d is not valid UTF-8", i)
		}
	}
	for i, record := range vectors.upserted {
		content, _ := record.Metadata["content"].(string)
		snippet, _ := record.Metadata["content_snippet"].(string)
		if !utf8.ValidString(content) || !utf8.ValidString(snippet) {
			t.Errorf("vector %d metadata holds invalid UTF-8", i)
		}
	}
}

func TestSnippet_TruncatesOnRuneBoundaries(t *testing.T) {
	content := strings.Repeat("界", 300)

	got := snippet(content)

	if !utf8.ValidString(got) {
		t.Fatal("snippet is not valid UTF-8")
	}
	if got != strings.Repeat("界", 200)+"..." {
		t.Errorf("snippet got %d runes, want 200 plus ellipsis", utf8.RuneCountInString(got))
	}
	if short := snippet("short"); short != "short" {
		t.Errorf("short content should come back verbatim, got %q", short)
	}
}

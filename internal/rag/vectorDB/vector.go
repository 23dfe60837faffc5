package vectorDB

import "context"

// VectorRecord is one embedded chunk headed for the index. Key is the
// deterministic doc_{id}_chunk_{position} string, so re-ingesting a document
// overwrites its old vectors instead of duplicating them.
type VectorRecord struct {
	Key      string
	Vector   []float32
	Metadata map[string]any
}

// Match is one ranked query hit with its payload.
type Match struct {
	Key      string
	Score    float32
	Metadata map[string]any
}

type DataProcessor interface {
	UpsertBatch(ctx context.Context, records []VectorRecord) error

	// Query returns the topK nearest vectors restricted to the given
	// document ids (metadata.document_id set membership).
	Query(ctx context.Context, vector []float32, topK uint64, documentIDs []string) ([]Match, error)

	// DeleteByDocument drops every vector belonging to a document.
	DeleteByDocument(ctx context.Context, documentID string) error
}

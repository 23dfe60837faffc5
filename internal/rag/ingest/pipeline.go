package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rpillai/docuchat/internal/config"
	"github.com/rpillai/docuchat/internal/domain/docModel"
	"github.com/rpillai/docuchat/internal/rag/embedding"
	"github.com/rpillai/docuchat/internal/rag/vectorDB"
	"github.com/rpillai/docuchat/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion")

// DocumentStore is the slice of the relational store the pipeline needs.
type DocumentStore interface {
	GetDocument(ctx context.Context, id uint64) (docModel.Document, bool)
	SetStatus(ctx context.Context, documentID uint64, status docModel.DocumentStatus) error
	MarkFailed(ctx context.Context, documentID uint64, reason string) error
	ReplaceChunks(ctx context.Context, documentID uint64, contents []string) error
}

// FileResolver resolves stored handles to readable paths and citation URLs.
type FileResolver interface {
	Path(handle string) string
	URL(handle string) string
}

// ProcessDocument drives one document to a terminal status: extract, chunk,
// persist chunks, embed, index. Errors never escape; every failure path ends
// in status=failed with the reason captured on the document, because the
// uploader already got their 200 and moved on.
func ProcessDocument(ctx context.Context, documentID uint64, docs DocumentStore, files FileResolver, embedder embedding.Embedder, vectors vectorDB.DataProcessor) docModel.DocumentStatus {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", documentID)

	doc, found := docs.GetDocument(ctx, documentID)
	if !found {
		// nobody holds a reference to retry against; log and stop
		log.Error("document not found, skipping ingestion")
		return docModel.StatusFailed
	}
	log.Debug("Processing document", "filename", doc.Filename)

	// fail fast before any expensive work if a required client never came up
	if embedder == nil || vectors == nil {
		reason := "Document processing unavailable: embedding model or vector index not initialized. Check server logs."
		failDocument(ctx, docs, documentID, reason, log)
		return docModel.StatusFailed
	}

	if err := docs.SetStatus(ctx, documentID, docModel.StatusProcessing); err != nil {
		log.Error("could not mark document as processing", "error", err)
		return docModel.StatusFailed
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(doc.Filename), "."))
	text, err := ExtractText(files.Path(doc.FilePath), extension)
	if err != nil {
		if errors.Is(err, ErrUnsupportedType) {
			failDocument(ctx, docs, documentID, fmt.Sprintf("Unsupported file type: %s", extension), log)
		} else {
			failDocument(ctx, docs, documentID, err.Error(), log)
		}
		return docModel.StatusFailed
	}

	// the relational store cannot persist embedded NULs
	text = strings.ReplaceAll(text, "\x00", "")
	if strings.TrimSpace(text) == "" {
		failDocument(ctx, docs, documentID, "No text could be extracted or file was empty.", log)
		return docModel.StatusFailed
	}

	chunks := Chunk(text, config.ChunkSize, config.ChunkOverlap)
	log.Debug("Processing document", "chunks", len(chunks))

	// chunk replacement is one relational transaction; the vector upsert
	// below is a separate best-effort step and is never rolled back
	if err := docs.ReplaceChunks(ctx, documentID, chunks); err != nil {
		failDocument(ctx, docs, documentID, err.Error(), log)
		return docModel.StatusFailed
	}

	if err := indexChunks(ctx, doc, chunks, files, embedder, vectors); err != nil {
		failDocument(ctx, docs, documentID, err.Error(), log)
		return docModel.StatusFailed
	}

	if err := docs.SetStatus(ctx, documentID, docModel.StatusCompleted); err != nil {
		log.Error("could not mark document as completed", "error", err)
		return docModel.StatusFailed
	}
	log.Info("Finished processing document", "filename", doc.Filename, "chunks", len(chunks))
	return docModel.StatusCompleted
}

func indexChunks(ctx context.Context, doc docModel.Document, chunks []string, files FileResolver, embedder embedding.Embedder, vectors vectorDB.DataProcessor) error {
	if len(chunks) == 0 {
		return nil
	}

	embeddings, err := embedder.BatchEmbedding(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embedding batch failed: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("mismatch: got %d chunks but %d embeddings", len(chunks), len(embeddings))
	}

	records := make([]vectorDB.VectorRecord, len(chunks))
	for i, content := range chunks {
		metadata := map[string]any{
			"document_id":     strconv.FormatUint(doc.ID, 10),
			"filename":        doc.Filename,
			"chunk_position":  i,
			"content":         content,
			"content_snippet": snippet(content),
			"source_url":      files.URL(doc.FilePath),
		}
		// custom metadata from the upload rides along for citations
		for k, v := range doc.Metadata {
			if k == docModel.ProcessingErrorKey {
				continue
			}
			metadata[k] = v
		}

		records[i] = vectorDB.VectorRecord{
			Key:      docModel.VectorKey(doc.ID, i),
			Vector:   embeddings[i],
			Metadata: metadata,
		}
	}

	// keys are deterministic so re-upserts replace in place, but a shorter
	// re-ingest would leave tail vectors behind without this sweep
	if err := vectors.DeleteByDocument(ctx, strconv.FormatUint(doc.ID, 10)); err != nil {
		logger.Warn("could not clear previous vectors", "documentId", doc.ID, "error", err)
	}

	if err := vectors.UpsertBatch(ctx, records); err != nil {
		return fmt.Errorf("vector upsert failed: %w", err)
	}
	return nil
}

func failDocument(ctx context.Context, docs DocumentStore, documentID uint64, reason string, log *logger_i.Logger) {
	log.Error("document ingestion failed", "reason", reason)
	if err := docs.MarkFailed(ctx, documentID, reason); err != nil {
		log.Error("could not record failure", "error", err)
	}
}

// snippet truncates on rune boundaries; the index payload rejects strings
// that are not valid UTF-8.
func snippet(content string) string {
	runes := []rune(content)
	if len(runes) > config.SnippetLength {
		return string(runes[:config.SnippetLength]) + "..."
	}
	return content
}

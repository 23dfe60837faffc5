package rag

import (
	"context"
	"time"

	"github.com/rpillai/docuchat/internal/config"
	"github.com/rpillai/docuchat/internal/domain/chatModel"
	"github.com/rpillai/docuchat/internal/metrics"
	"github.com/rpillai/docuchat/internal/rag/vectorDB"
	"github.com/rpillai/docuchat/pkg/logger_i"
)

// ContextChunk is one retrieved passage headed for the prompt, carrying the
// annotations the prompt renders next to it.
type ContextChunk struct {
	Content  string
	Filename string
	Score    float32
}

// retrieveContext embeds the question and runs the two-tier filtered search
// over the asking user's documents. Any failure along the way degrades to
// empty context; the chat turn must go on regardless.
func (s *service) retrieveContext(ctx context.Context, log *logger_i.Logger, userID uint64, question string) ([]ContextChunk, []chatModel.SourceCitation) {
	embedding, err := s.embedQuery(ctx, question)
	if err != nil {
		log.Error("query embedding failed, answering without context", "error", err)
		return nil, nil
	}

	documentIDs, err := s.documents.ListUserDocumentIDs(ctx, userID)
	if err != nil {
		log.Error("could not list user documents, answering without context", "error", err)
		return nil, nil
	}
	if len(documentIDs) == 0 {
		// an unfiltered index query would surface other users' content
		log.Debug("user has no documents, skipping vector search")
		return nil, nil
	}

	chunks, citations := s.searchTier(ctx, log, embedding, documentIDs, config.HighTierScoreCutoff, config.HighTierMaxChunks)
	if len(chunks) > 0 {
		return chunks, citations
	}

	log.Debug("no high-confidence matches, trying fallback tier")
	return s.searchTier(ctx, log, embedding, documentIDs, config.FallbackScoreCutoff, config.FallbackMaxChunks)
}

func (s *service) embedQuery(ctx context.Context, question string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("query_embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, question)
}

// searchTier runs one ranked query and keeps matches that clear the score
// cutoff and carry complete citation metadata, up to maxChunks.
func (s *service) searchTier(ctx context.Context, log *logger_i.Logger, embedding []float32, documentIDs []string, cutoff float32, maxChunks int) ([]ContextChunk, []chatModel.SourceCitation) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	matches, err := s.vectorDB.Query(ctx, embedding, config.RetrievalCandidateCount, documentIDs)
	if err != nil {
		log.Error("vector search failed, answering without context", "error", err)
		return nil, nil
	}

	var chunks []ContextChunk
	var citations []chatModel.SourceCitation
	for _, match := range matches {
		if len(chunks) == maxChunks {
			break
		}
		if match.Score <= cutoff {
			continue
		}
		chunk, citation, ok := usableMatch(match)
		if !ok {
			log.Warn("dropping match with incomplete metadata", "key", match.Key, "score", match.Score)
			continue
		}
		chunks = append(chunks, chunk)
		citations = append(citations, citation)
	}
	return chunks, citations
}

// usableMatch validates a raw index hit. Every field the citation needs must
// be present and the content must be non-empty; a partially described match
// is dropped rather than passed downstream.
func usableMatch(match vectorDB.Match) (ContextChunk, chatModel.SourceCitation, bool) {
	documentID, _ := match.Metadata["document_id"].(string)
	filename, _ := match.Metadata["filename"].(string)
	position, hasPosition := metadataInt(match.Metadata["chunk_position"])
	if documentID == "" || filename == "" || !hasPosition {
		return ContextChunk{}, chatModel.SourceCitation{}, false
	}

	content, _ := match.Metadata["content"].(string)
	if content == "" {
		content, _ = match.Metadata["content_snippet"].(string)
	}
	if content == "" {
		return ContextChunk{}, chatModel.SourceCitation{}, false
	}

	chunk := ContextChunk{
		Content:  content,
		Filename: filename,
		Score:    match.Score,
	}
	citation := chatModel.SourceCitation{
		DocumentID:    documentID,
		Filename:      filename,
		ChunkPosition: position,
		Score:         match.Score,
	}
	return chunk, citation, true
}

// metadataInt tolerates the numeric types payload decoding can produce.
func metadataInt(value any) (int, bool) {
	switch n := value.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

package adapter

import (
	"github.com/rpillai/docuchat/internal/api"
	"github.com/rpillai/docuchat/internal/domain/chatModel"
	"github.com/rpillai/docuchat/internal/domain/docModel"
)

func ToDocumentResponse(doc docModel.Document) api.DocumentResponse {
	response := api.DocumentResponse{
		ID:        doc.ID,
		Filename:  doc.Filename,
		Size:      doc.Size,
		Status:    string(doc.Status),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	metadata := make(map[string]any, len(doc.Metadata))
	for k, v := range doc.Metadata {
		if k == docModel.ProcessingErrorKey {
			response.ProcessingError, _ = v.(string)
			continue
		}
		metadata[k] = v
	}
	if len(metadata) > 0 {
		response.Metadata = metadata
	}
	return response
}

func ToDocumentResponses(docs []docModel.Document) []api.DocumentResponse {
	responses := make([]api.DocumentResponse, len(docs))
	for i, doc := range docs {
		responses[i] = ToDocumentResponse(doc)
	}
	return responses
}

func ToSessionResponse(session chatModel.ChatSession) api.SessionResponse {
	return api.SessionResponse{
		ID:        session.ID,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
	}
}

func ToSessionResponses(sessions []chatModel.ChatSession) []api.SessionResponse {
	responses := make([]api.SessionResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = ToSessionResponse(session)
	}
	return responses
}

func ToMessageResponse(message chatModel.ChatMessage) api.MessageResponse {
	return api.MessageResponse{
		ID:           message.ID,
		SessionID:    message.SessionID,
		Role:         string(message.Role),
		Content:      message.Content,
		Sources:      decodeSources(message.Metadata[chatModel.SourcesKey]),
		IsHelpful:    message.IsHelpful,
		FeedbackText: message.FeedbackText,
		Timestamp:    message.Timestamp,
	}
}

func ToMessageResponses(messages []chatModel.ChatMessage) []api.MessageResponse {
	responses := make([]api.MessageResponse, len(messages))
	for i, message := range messages {
		responses[i] = ToMessageResponse(message)
	}
	return responses
}

func BadRequest(code int, message string) api.ErrorResponse {
	return api.ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// decodeSources handles both shapes the sources metadata takes: typed
// citations straight from the RAG service, or generic maps after a JSON
// round trip through the database column.
func decodeSources(raw any) []api.SourceResponse {
	switch sources := raw.(type) {
	case []chatModel.SourceCitation:
		out := make([]api.SourceResponse, len(sources))
		for i, citation := range sources {
			out[i] = api.SourceResponse{
				DocumentID:    citation.DocumentID,
				Filename:      citation.Filename,
				ChunkPosition: citation.ChunkPosition,
				Score:         citation.Score,
			}
		}
		return out
	case []any:
		out := make([]api.SourceResponse, 0, len(sources))
		for _, item := range sources {
			fields, ok := item.(map[string]any)
			if !ok {
				continue
			}
			source := api.SourceResponse{}
			source.DocumentID, _ = fields["document_id"].(string)
			source.Filename, _ = fields["filename"].(string)
			if position, ok := fields["chunk_position"].(float64); ok {
				source.ChunkPosition = int(position)
			}
			if score, ok := fields["score"].(float64); ok {
				source.Score = float32(score)
			}
			out = append(out, source)
		}
		return out
	default:
		return nil
	}
}

package rag_test

import (
	"context"
	"strconv"

	"github.com/rpillai/docuchat/internal/domain/chatModel"
	"github.com/rpillai/docuchat/internal/domain/docModel"
	"github.com/rpillai/docuchat/internal/rag/llm"
	"github.com/rpillai/docuchat/internal/rag/vectorDB"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	OnQuery            func(ctx context.Context, vector []float32, topK uint64, documentIDs []string) ([]vectorDB.Match, error)
	OnUpsertBatch      func(ctx context.Context, records []vectorDB.VectorRecord) error
	OnDeleteByDocument func(ctx context.Context, documentID string) error

	QueryCalls int
}

func (m *MockVectorDB) Query(ctx context.Context, vector []float32, topK uint64, documentIDs []string) ([]vectorDB.Match, error) {
	m.QueryCalls++
	if m.OnQuery != nil {
		return m.OnQuery(ctx, vector, topK, documentIDs)
	}
	return nil, nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, records []vectorDB.VectorRecord) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, records)
	}
	return nil
}

func (m *MockVectorDB) DeleteByDocument(ctx context.Context, documentID string) error {
	if m.OnDeleteByDocument != nil {
		return m.OnDeleteByDocument(ctx, documentID)
	}
	return nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, texts)
	}
	return make([][]float32, len(texts)), nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string) (string, error)

	LastPrompt string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string, _ llm.Options) (string, error) {
	m.LastPrompt = prompt
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "mocked llm response", nil
}

// MockDocuments implements rag.DocumentStore
type MockDocuments struct {
	OnListUserDocumentIDs func(ctx context.Context, userID uint64) ([]string, error)

	Docs map[uint64]docModel.Document
}

func (m *MockDocuments) ListUserDocumentIDs(ctx context.Context, userID uint64) ([]string, error) {
	if m.OnListUserDocumentIDs != nil {
		return m.OnListUserDocumentIDs(ctx, userID)
	}
	ids := make([]string, 0, len(m.Docs))
	for id := range m.Docs {
		ids = append(ids, strconv.FormatUint(id, 10))
	}
	return ids, nil
}

func (m *MockDocuments) GetDocument(ctx context.Context, id uint64) (docModel.Document, bool) {
	doc, ok := m.Docs[id]
	return doc, ok
}

func (m *MockDocuments) SetStatus(ctx context.Context, documentID uint64, status docModel.DocumentStatus) error {
	doc := m.Docs[documentID]
	doc.Status = status
	m.Docs[documentID] = doc
	return nil
}

func (m *MockDocuments) MarkFailed(ctx context.Context, documentID uint64, reason string) error {
	doc := m.Docs[documentID]
	doc.Status = docModel.StatusFailed
	m.Docs[documentID] = doc
	return nil
}

func (m *MockDocuments) ReplaceChunks(ctx context.Context, documentID uint64, contents []string) error {
	return nil
}

// MockChats implements rag.ChatStore and records everything persisted.
type MockChats struct {
	OnSaveUserMessage func(ctx context.Context, session *chatModel.ChatSession, content string) error
	OnSaveMessage     func(ctx context.Context, message *chatModel.ChatMessage) error

	Saved []chatModel.ChatMessage
}

func (m *MockChats) SaveUserMessage(ctx context.Context, session *chatModel.ChatSession, content string) (chatModel.ChatMessage, error) {
	if m.OnSaveUserMessage != nil {
		if err := m.OnSaveUserMessage(ctx, session, content); err != nil {
			return chatModel.ChatMessage{}, err
		}
	}
	message := chatModel.ChatMessage{
		ID:        uint64(len(m.Saved) + 1),
		SessionID: session.ID,
		Role:      chatModel.RoleUser,
		Content:   content,
	}
	m.Saved = append(m.Saved, message)
	return message, nil
}

func (m *MockChats) SaveMessage(ctx context.Context, message *chatModel.ChatMessage) error {
	if m.OnSaveMessage != nil {
		if err := m.OnSaveMessage(ctx, message); err != nil {
			return err
		}
	}
	message.ID = uint64(len(m.Saved) + 1)
	m.Saved = append(m.Saved, *message)
	return nil
}

// MockBus implements rag.Publisher
type MockBus struct {
	OnPublish func(ctx context.Context, topic string, payload any) error

	Topics   []string
	Payloads []any
}

func (m *MockBus) Publish(ctx context.Context, topic string, payload any) error {
	if m.OnPublish != nil {
		if err := m.OnPublish(ctx, topic, payload); err != nil {
			return err
		}
	}
	m.Topics = append(m.Topics, topic)
	m.Payloads = append(m.Payloads, payload)
	return nil
}

// MockFiles implements ingest.FileResolver
type MockFiles struct {
	Dir string
}

func (m *MockFiles) Path(handle string) string { return m.Dir + "/" + handle }
func (m *MockFiles) URL(handle string) string  { return "/media/" + handle }

package rag

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"

	"github.com/rpillai/docuchat/internal/config"
	"github.com/rpillai/docuchat/internal/domain/chatModel"
	"github.com/rpillai/docuchat/internal/domain/docModel"
	"github.com/rpillai/docuchat/internal/domain/jobModel"
	"github.com/rpillai/docuchat/internal/metrics"
	"github.com/rpillai/docuchat/internal/rag/embedding"
	"github.com/rpillai/docuchat/internal/rag/ingest"
	"github.com/rpillai/docuchat/internal/rag/llm"
	"github.com/rpillai/docuchat/internal/rag/vectorDB"
	"github.com/rpillai/docuchat/internal/realtime"
	"github.com/rpillai/docuchat/pkg/logger_i"
)

// ErrUnavailable means the generation client never initialized. A chat turn
// cannot produce an answer at all, so the caller gets a hard signal instead
// of a degraded one.
var ErrUnavailable = errors.New("language model not initialized")

// Service is the contract the worker and the chat handler program against.
// Neither needs to know about embeddings, the index, or the model behind it.
type Service interface {
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	AnswerMessage(ctx context.Context, session chatModel.ChatSession, content string) (chatModel.ChatMessage, error)
}

// DocumentStore is everything the service needs from the relational document
// layer: the ingestion slice plus the ownership listing retrieval filters on.
type DocumentStore interface {
	ingest.DocumentStore
	ListUserDocumentIDs(ctx context.Context, userID uint64) ([]string, error)
}

// ChatStore persists the two halves of a chat turn.
type ChatStore interface {
	SaveUserMessage(ctx context.Context, session *chatModel.ChatSession, content string) (chatModel.ChatMessage, error)
	SaveMessage(ctx context.Context, message *chatModel.ChatMessage) error
}

// Publisher pushes a persisted answer to connected session viewers.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

type service struct {
	documents   DocumentStore
	chats       ChatStore
	files       ingest.FileResolver
	vectorDB    vectorDB.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	bus         Publisher
	logger      *logger_i.Logger
}

// NewService wires the pipeline dependencies together. Any of the external
// clients (vector, llm, embedder, bus) may be nil when its backend failed to
// initialize; the service degrades per call instead of refusing to start.
func NewService(documents DocumentStore, chats ChatStore, files ingest.FileResolver, vector vectorDB.DataProcessor, llmProvider llm.Provider, em embedding.Embedder, bus Publisher) Service {
	return &service{
		documents:   documents,
		chats:       chats,
		files:       files,
		vectorDB:    vector,
		llmProvider: llmProvider,
		embedder:    em,
		bus:         bus,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

// IngestDocument runs one queued ingestion to a terminal document status.
// The job result feeds the worker's bookkeeping; the user-visible outcome
// lives on the document row.
func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureJobMetrics("document_ingestion", time.Since(start)) }()

	ingestCtx, cancel := context.WithTimeout(ctx, config.IngestTimeout)
	defer cancel()

	status := ingest.ProcessDocument(ingestCtx, job.DocumentID, s.documents, s.files, s.embedder, s.vectorDB)

	job.EndTime = time.Now()
	if status != docModel.StatusCompleted {
		job.Status = jobModel.JobStatusError
		return job
	}
	job.Status = jobModel.JobStatusComplete
	return job
}

// AnswerMessage runs one synchronous chat turn: persist the user's message,
// retrieve context, generate, persist the answer, publish it. The user's
// message always hits the store before retrieval starts, and the answer is
// persisted before anyone can see it on the live channel.
func (s *service) AnswerMessage(ctx context.Context, session chatModel.ChatSession, content string) (chatModel.ChatMessage, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", session.ID)

	start := time.Now()
	defer func() { metrics.CaptureJobMetrics("chat_turn", time.Since(start)) }()

	if s.llmProvider == nil {
		return chatModel.ChatMessage{}, ErrUnavailable
	}

	if _, err := s.chats.SaveUserMessage(ctx, &session, content); err != nil {
		return chatModel.ChatMessage{}, err
	}

	var chunks []ContextChunk
	var citations []chatModel.SourceCitation
	if s.embedder != nil && s.vectorDB != nil {
		chunks, citations = s.retrieveContext(ctx, log, session.UserID, content)
	} else {
		log.Error("retrieval clients not initialized, answering without context")
	}

	prompt := BuildPrompt(content, chunks)
	answer := s.generate(ctx, log, prompt)

	aiMessage := chatModel.ChatMessage{
		SessionID: session.ID,
		Role:      chatModel.RoleAI,
		Content:   answer,
		Metadata:  datatypes.JSONMap{},
	}
	if len(citations) > 0 {
		aiMessage.Metadata[chatModel.SourcesKey] = citations
	}
	if err := s.chats.SaveMessage(ctx, &aiMessage); err != nil {
		return chatModel.ChatMessage{}, err
	}

	s.publishAnswer(ctx, log, aiMessage)
	return aiMessage, nil
}

// generate calls the model and absorbs failure into a diagnostic answer so
// the turn still completes.
func (s *service) generate(ctx context.Context, log *logger_i.Logger, prompt string) string {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	answer, err := s.llmProvider.Generate(ctx, prompt, llm.Options{
		Temperature:     config.ModelTemperature,
		TopP:            config.ModelTopP,
		TopK:            config.ModelTopK,
		MaxOutputTokens: config.ModelMaxOutputTokens,
	})
	if err != nil {
		log.Error("generation call failed", "error", err)
		return config.GenerationErrorAnswer
	}
	return answer
}

func (s *service) publishAnswer(ctx context.Context, log *logger_i.Logger, message chatModel.ChatMessage) {
	if s.bus == nil {
		return
	}
	topic := realtime.SessionTopic(message.SessionID)
	if err := s.bus.Publish(ctx, topic, message); err != nil {
		log.Error("could not publish answer to session channel", "topic", topic, "error", err)
	}
}

package googleEmbedding

import (
	"context"
	"errors"
	"sync"

	"google.golang.org/genai"

	"github.com/rpillai/docuchat/internal/config"
	"github.com/rpillai/docuchat/internal/customHttpClient"
	"github.com/rpillai/docuchat/internal/rag/embedding"
	"github.com/rpillai/docuchat/pkg/logger_i"
)

var (
	logger          *logger_i.Logger
	once            sync.Once
	embeddingClient *client
	dimension       = config.EmbeddingOutputDimensionality
)

type client struct {
	genAi *genai.Client
	model string
}

// GetGoogleEmbeddingClient initializes the process-wide embedder once.
// Returns nil if initialization failed; callers record the unavailability
// instead of crashing.
func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		HTTPClient: customHttpClient.GetPooledClient(),
	})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
		return
	}

	embeddingClient = &client{genAi: c, model: modelName}
	logger.Info("Google Embedding client created", "model", modelName)
	go closeClient(ctx, embeddingClient)
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(text), embedConfig(queryTask))
	if err != nil {
		logger.Error("Error getting embedding from Google", "error", err.Error())
		return nil, err
	}
	if len(result.Embeddings) == 0 {
		return nil, errors.New("embedding response was empty")
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	content := make([]*genai.Content, len(texts))
	for i, text := range texts {
		content[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	var result *genai.EmbedContentResponse
	err := withRetry(ctx, logger, func() error {
		var callErr error
		result, callErr = c.genAi.Models.EmbedContent(ctx, c.model, content, embedConfig(documentTask))
		return callErr
	})
	if err != nil {
		logger.Error("Error getting batch embeddings from Google", "error", err.Error(), "count", len(texts))
		return nil, err
	}
	if len(result.Embeddings) != len(texts) {
		return nil, errors.New("embedding count does not match input count")
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, r := range result.Embeddings {
		vectors[i] = r.Values
	}
	return vectors, nil
}

// The embedding model is asymmetric: indexed passages and the questions
// matched against them use different task types.
const (
	documentTask = "RETRIEVAL_DOCUMENT"
	queryTask    = "RETRIEVAL_QUERY"
)

func embedConfig(taskType string) *genai.EmbedContentConfig {
	return &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             taskType,
	}
}

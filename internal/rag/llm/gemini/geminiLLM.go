package gemini

import (
	"context"
	"errors"
	"sync"

	"google.golang.org/genai"

	"github.com/rpillai/docuchat/internal/customHttpClient"
	"github.com/rpillai/docuchat/internal/rag/llm"
	"github.com/rpillai/docuchat/pkg/logger_i"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var (
	logger       *logger_i.Logger
	geminiClient *llmClient
	once         sync.Once
)

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		HTTPClient: customHttpClient.GetPooledClient(),
	})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
		return
	}

	geminiClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Gemini client created", "model", modelName)
	go closeClient(ctx, geminiClient)
}

func closeClient(ctx context.Context, client *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	client.client = nil
	client.modelName = ""
}

// Generate sends one fully assembled prompt. Transport failures and empty or
// malformed responses both surface as errors; the caller decides what answer
// to substitute.
func (c *llmClient) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	contentConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		TopP:            genai.Ptr(opts.TopP),
		TopK:            genai.Ptr(opts.TopK),
		MaxOutputTokens: opts.MaxOutputTokens,
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), contentConfig)
	if err != nil {
		logger.Error("Gemini generation call failed", "error", err.Error())
		return "", err
	}
	if result == nil || len(result.Candidates) == 0 {
		return "", errors.New("generation response had no candidates")
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("generation response had no text content")
	}
	return text, nil
}

package llm

import "context"

// Options mirror the generation knobs the hosted model accepts.
type Options struct {
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

type Provider interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

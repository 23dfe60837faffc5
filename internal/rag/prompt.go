package rag

import (
	"fmt"
	"strings"

	"github.com/rpillai/docuchat/internal/config"
)

// BuildPrompt assembles the instruction/context/question prompt the model
// sees. Context sections are numbered in retrieval order (highest confidence
// first) and annotated with score and source filename. With no context the
// literal marker goes in its place so the model always receives a complete
// prompt shape.
func BuildPrompt(question string, chunks []ContextChunk) string {
	var b strings.Builder
	b.WriteString(config.PromptInstruction)
	b.WriteString("\n\nContext:\n")

	if len(chunks) == 0 {
		b.WriteString(config.NoContextMarker)
		b.WriteString("\n")
	} else {
		for i, chunk := range chunks {
			fmt.Fprintf(&b, "[%d] (score %.2f, source: %s)\n%s\n\n", i+1, chunk.Score, chunk.Filename, chunk.Content)
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}

package rag_test

import (
	"strings"
	"testing"

	"github.com/rpillai/docuchat/internal/config"
	"github.com/rpillai/docuchat/internal/rag"
)

func TestBuildPrompt_NumbersSectionsInOrder(t *testing.T) {
	chunks := []rag.ContextChunk{
		{Content: "first passage", Filename: "a.txt", Score: 0.91},
		{Content: "second passage", Filename: "b.pdf", Score: 0.74},
	}

	prompt := rag.BuildPrompt("What is X?", chunks)

	first := strings.Index(prompt, "[1] (score 0.91, source: a.txt)")
	second := strings.Index(prompt, "[2] (score 0.74, source: b.pdf)")
	if first < 0 || second < 0 || second < first {
		t.Fatalf("sections missing or out of order:\n%s", prompt)
	}
	if !strings.Contains(prompt, config.PromptInstruction) {
		t.Error("instruction block missing")
	}
	if !strings.HasSuffix(prompt, "Question: What is X?\nAnswer:") {
		t.Errorf("prompt tail malformed:\n%s", prompt)
	}
	if prompt != rag.BuildPrompt("What is X?", chunks) {
		t.Error("prompt is not deterministic for identical input")
	}
}

func TestBuildPrompt_EmptyContextUsesMarker(t *testing.T) {
	prompt := rag.BuildPrompt("anything", nil)
	if !strings.Contains(prompt, config.NoContextMarker) {
		t.Fatalf("marker missing from no-context prompt:\n%s", prompt)
	}
	if strings.Contains(prompt, "[1]") {
		t.Error("no-context prompt should not contain numbered sections")
	}
}

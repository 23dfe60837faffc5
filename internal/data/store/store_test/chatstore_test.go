package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rpillai/docuchat/internal/data/store"
	"github.com/rpillai/docuchat/internal/domain/chatModel"
)

func TestSessionAutoTitle(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{
			name:     "short message kept verbatim",
			message:  "Explain quantum tunneling in detail please",
			expected: "Explain quantum tunneling in detail please",
		},
		{
			name:     "long message truncated with ellipsis",
			message:  strings.Repeat("x", 70),
			expected: strings.Repeat("x", 50) + "...",
		},
		{
			name:     "exactly fifty chars kept verbatim",
			message:  strings.Repeat("y", 50),
			expected: strings.Repeat("y", 50),
		},
		{
			name:     "multibyte message truncated on rune boundaries",
			message:  strings.Repeat("世", 70),
			expected: strings.Repeat("世", 50) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			chats := store.NewChatStore(testDB(t))

			session, err := chats.CreateSession(ctx, 1, "")
			if err != nil {
				t.Fatalf("create session failed: %v", err)
			}

			if _, err := chats.SaveUserMessage(ctx, &session, tt.message); err != nil {
				t.Fatalf("save user message failed: %v", err)
			}
			if session.Title != tt.expected {
				t.Errorf("title got %q, want %q", session.Title, tt.expected)
			}

			//second message must not re-title the session
			if _, err := chats.SaveUserMessage(ctx, &session, "another message entirely"); err != nil {
				t.Fatalf("second message failed: %v", err)
			}
			if session.Title != tt.expected {
				t.Errorf("title changed on second message: %q", session.Title)
			}
		})
	}
}

func TestMessageOrderingAndSources(t *testing.T) {
	ctx := context.Background()
	chats := store.NewChatStore(testDB(t))

	session, err := chats.CreateSession(ctx, 3, "")
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	if _, err := chats.SaveUserMessage(ctx, &session, "What is X?"); err != nil {
		t.Fatalf("user message failed: %v", err)
	}

	aiMessage := chatModel.ChatMessage{
		SessionID: session.ID,
		Role:      chatModel.RoleAI,
		Content:   "X is defined in section 1.",
		Metadata: map[string]any{
			chatModel.SourcesKey: []any{
				map[string]any{"document_id": "4", "filename": "x.txt", "chunk_position": 0, "score": 0.91},
			},
		},
	}
	if err := chats.SaveMessage(ctx, &aiMessage); err != nil {
		t.Fatalf("ai message failed: %v", err)
	}
	if aiMessage.ID == 0 {
		t.Error("saved message should carry its assigned id")
	}

	messages, err := chats.ListMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("list messages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("message count got %d, want 2", len(messages))
	}
	if messages[0].Role != chatModel.RoleUser || messages[1].Role != chatModel.RoleAI {
		t.Errorf("messages out of order: %s then %s", messages[0].Role, messages[1].Role)
	}
	if messages[1].Metadata[chatModel.SourcesKey] == nil {
		t.Error("ai message lost its sources metadata")
	}
}

func TestSaveFeedback(t *testing.T) {
	ctx := context.Background()
	chats := store.NewChatStore(testDB(t))

	session, err := chats.CreateSession(ctx, 5, "")
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	message := chatModel.ChatMessage{SessionID: session.ID, Role: chatModel.RoleAI, Content: "answer"}
	if err := chats.SaveMessage(ctx, &message); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	helpful := true
	found, err := chats.SaveFeedback(ctx, session.ID, message.ID, &helpful, "spot on")
	if err != nil {
		t.Fatalf("feedback failed: %v", err)
	}
	if !found {
		t.Fatal("feedback target message not matched")
	}

	if found, _ := chats.SaveFeedback(ctx, session.ID+1, message.ID, &helpful, "wrong session"); found {
		t.Error("feedback matched a message outside the given session")
	}

	messages, err := chats.ListMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if messages[0].IsHelpful == nil || !*messages[0].IsHelpful {
		t.Error("is_helpful not persisted")
	}
	if messages[0].FeedbackText != "spot on" {
		t.Errorf("feedback text got %q", messages[0].FeedbackText)
	}
}

package chatModel

import (
	"time"

	"gorm.io/datatypes"
)

type MessageRole string

const (
	RoleUser MessageRole = "user"
	RoleAI   MessageRole = "ai"
)

// SourcesKey is where an AI message keeps its citation list inside Metadata.
const SourcesKey = "sources"

type ChatSession struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:255" json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatMessage struct {
	ID           uint64            `gorm:"primaryKey" json:"id"`
	SessionID    uint64            `gorm:"not null;index" json:"session_id"`
	Role         MessageRole       `gorm:"size:50;not null" json:"role"`
	Content      string            `gorm:"type:text;not null" json:"content"`
	IsHelpful    *bool             `json:"is_helpful,omitempty"`
	FeedbackText string            `gorm:"type:text" json:"feedback_text,omitempty"`
	Metadata     datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	Timestamp    time.Time         `gorm:"autoCreateTime;index" json:"timestamp"`
}

// SourceCitation identifies which chunk backs a piece of retrieved context.
// It travels inside the AI message metadata under SourcesKey.
type SourceCitation struct {
	DocumentID    string  `json:"document_id"`
	Filename      string  `json:"filename"`
	ChunkPosition int     `json:"chunk_position"`
	Score         float32 `json:"score"`
}

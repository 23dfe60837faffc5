package api

import "time"

type UploadResponse struct {
	Message    string `json:"message" example:"File uploaded successfully. Processing will begin shortly."`
	DocumentID uint64 `json:"document_id" example:"12"`
	Replaced   bool   `json:"replaced" example:"false"`
}

type DocumentResponse struct {
	ID              uint64         `json:"id" example:"12"`
	Filename        string         `json:"filename" example:"report.pdf"`
	Size            int64          `json:"size" example:"48213"`
	Status          string         `json:"status" example:"completed"`
	ProcessingError string         `json:"processing_error,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type SessionResponse struct {
	ID        uint64    `json:"id" example:"42"`
	Title     string    `json:"title" example:"Explain quantum tunneling"`
	CreatedAt time.Time `json:"created_at"`
}

type SourceResponse struct {
	DocumentID    string  `json:"document_id" example:"12"`
	Filename      string  `json:"filename" example:"report.pdf"`
	ChunkPosition int     `json:"chunk_position" example:"3"`
	Score         float32 `json:"score" example:"0.91"`
}

type MessageResponse struct {
	ID           uint64           `json:"id" example:"7"`
	SessionID    uint64           `json:"session_id" example:"42"`
	Role         string           `json:"role" example:"ai"`
	Content      string           `json:"content"`
	Sources      []SourceResponse `json:"sources,omitempty"`
	IsHelpful    *bool            `json:"is_helpful,omitempty"`
	FeedbackText string           `json:"feedback_text,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
}

type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Bad Request"`
}

// requests---------------------

type CreateSessionRequest struct {
	Title string `json:"title,omitempty"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type FeedbackRequest struct {
	IsHelpful    *bool  `json:"is_helpful"`
	FeedbackText string `json:"feedback_text,omitempty"`
}

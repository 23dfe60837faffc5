package docModel

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// ProcessingErrorKey is where ingestion failures land inside Document.Metadata.
const ProcessingErrorKey = "processing_error"

type Document struct {
	ID        uint64             `gorm:"primaryKey" json:"id"`
	UserID    uint64             `gorm:"not null;index:idx_user_filename,unique" json:"user_id"`
	Filename  string             `gorm:"size:255;not null;index:idx_user_filename,unique" json:"filename"`
	FilePath  string             `gorm:"size:512;not null" json:"-"`
	Size      int64              `gorm:"not null;default:0" json:"size"`
	Status    DocumentStatus     `gorm:"size:20;not null;default:'pending'" json:"status"`
	Metadata  datatypes.JSONMap  `gorm:"type:json" json:"metadata"`
	Chunks    []DocumentChunk    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type DocumentChunk struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	DocumentID uint64    `gorm:"not null;index:idx_document_position,unique" json:"document_id"`
	Position   int       `gorm:"not null;index:idx_document_position,unique" json:"position"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// VectorKey is the deterministic id a chunk carries in the vector index.
// Re-ingesting a document regenerates the same keys, so upserts replace
// rather than duplicate.
func VectorKey(documentID uint64, position int) string {
	return fmt.Sprintf("doc_%d_chunk_%d", documentID, position)
}

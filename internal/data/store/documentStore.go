package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rpillai/docuchat/internal/config"
	"github.com/rpillai/docuchat/internal/domain/docModel"
	"github.com/rpillai/docuchat/internal/storage"
	"github.com/rpillai/docuchat/pkg/logger_i"
)

type DocumentStore struct {
	db     *gorm.DB
	files  *storage.FileStore
	logger *logger_i.Logger
}

func NewDocumentStore(db *gorm.DB, files *storage.FileStore) *DocumentStore {
	return &DocumentStore{
		db:     db,
		files:  files,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

// CreateOrReplace enforces the owner+filename identity rule: uploading a file
// a user already has replaces that document in place (same id) instead of
// creating a second one. The previous chunks are deleted immediately and the
// old stored file is cleaned up; status resets to pending for re-ingestion.
func (s *DocumentStore) CreateOrReplace(ctx context.Context, userID uint64, filename string, handle string, size int64, metadata map[string]any) (docModel.Document, bool, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "filename", filename)

	if metadata == nil {
		metadata = map[string]any{}
	}

	var existing docModel.Document
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND filename = ?", userID, filename).
		First(&existing).Error

	if err == nil {
		log.Debug("replacing existing document", "documentId", existing.ID)
		oldHandle := existing.FilePath

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("document_id = ?", existing.ID).Delete(&docModel.DocumentChunk{}).Error; err != nil {
				return err
			}
			return tx.Model(&existing).Updates(map[string]any{
				"file_path": handle,
				"size":      size,
				"status":    docModel.StatusPending,
				"metadata":  datatypes.JSONMap(metadata),
			}).Error
		})
		if err != nil {
			return docModel.Document{}, false, fmt.Errorf("replacing document: %w", err)
		}

		//on replace, delete the prior file
		if oldHandle != handle {
			_ = s.files.Delete(oldHandle)
		}
		existing.FilePath = handle
		existing.Size = size
		existing.Status = docModel.StatusPending
		existing.Metadata = datatypes.JSONMap(metadata)
		return existing, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return docModel.Document{}, false, err
	}

	doc := docModel.Document{
		UserID:   userID,
		Filename: filename,
		FilePath: handle,
		Size:     size,
		Status:   docModel.StatusPending,
		Metadata: datatypes.JSONMap(metadata),
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return docModel.Document{}, false, fmt.Errorf("creating document: %w", err)
	}
	log.Debug("created new document", "documentId", doc.ID)
	return doc, false, nil
}

func (s *DocumentStore) GetDocument(ctx context.Context, id uint64) (docModel.Document, bool) {
	var doc docModel.Document
	err := s.db.WithContext(ctx).First(&doc, id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("could not load document", "documentId", id, "error", err)
		}
		return docModel.Document{}, false
	}
	return doc, true
}

func (s *DocumentStore) ListByUser(ctx context.Context, userID uint64) ([]docModel.Document, error) {
	var docs []docModel.Document
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

// ListUserDocumentIDs feeds the retrieval filter. IDs come back as strings
// because that is how the vector index stores them in chunk metadata.
func (s *DocumentStore) ListUserDocumentIDs(ctx context.Context, userID uint64) ([]string, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).
		Model(&docModel.Document{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = fmt.Sprintf("%d", id)
	}
	return out, nil
}

// ReplaceChunks swaps a document's chunk set in one transaction: the old rows
// are deleted and the new ones inserted with positions 0..N-1 in input order.
// The vector upsert is deliberately NOT part of this transaction.
func (s *DocumentStore) ReplaceChunks(ctx context.Context, documentID uint64, contents []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentID).Delete(&docModel.DocumentChunk{}).Error; err != nil {
			return fmt.Errorf("deleting old chunks: %w", err)
		}
		if len(contents) == 0 {
			return nil
		}
		rows := make([]docModel.DocumentChunk, len(contents))
		for i, content := range contents {
			rows[i] = docModel.DocumentChunk{
				DocumentID: documentID,
				Position:   i,
				Content:    content,
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("inserting chunks: %w", err)
		}
		return nil
	})
}

func (s *DocumentStore) ListChunks(ctx context.Context, documentID uint64) ([]docModel.DocumentChunk, error) {
	var chunks []docModel.DocumentChunk
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("position ASC").
		Find(&chunks).Error
	return chunks, err
}

func (s *DocumentStore) SetStatus(ctx context.Context, documentID uint64, status docModel.DocumentStatus) error {
	return s.db.WithContext(ctx).
		Model(&docModel.Document{}).
		Where("id = ?", documentID).
		Update("status", status).Error
}

// MarkFailed records the terminal failed status together with the reason
// under the processing_error metadata key.
func (s *DocumentStore) MarkFailed(ctx context.Context, documentID uint64, reason string) error {
	doc, found := s.GetDocument(ctx, documentID)
	if !found {
		return gorm.ErrRecordNotFound
	}
	if doc.Metadata == nil {
		doc.Metadata = datatypes.JSONMap{}
	}
	doc.Metadata[docModel.ProcessingErrorKey] = reason
	return s.db.WithContext(ctx).Model(&doc).Updates(map[string]any{
		"status":   docModel.StatusFailed,
		"metadata": doc.Metadata,
	}).Error
}

// Delete removes the document row, its chunks, and the stored file.
func (s *DocumentStore) Delete(ctx context.Context, doc docModel.Document) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", doc.ID).Delete(&docModel.DocumentChunk{}).Error; err != nil {
			return err
		}
		return tx.Delete(&docModel.Document{}, doc.ID).Error
	})
	if err != nil {
		return err
	}
	//on delete, delete the associated file
	return s.files.Delete(doc.FilePath)
}

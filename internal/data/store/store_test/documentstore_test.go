package store_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/rpillai/docuchat/internal/data/db"
	"github.com/rpillai/docuchat/internal/data/store"
	"github.com/rpillai/docuchat/internal/domain/docModel"
	"github.com/rpillai/docuchat/internal/storage"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	handle, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("could not open sqlite: %v", err)
	}
	if err := db.Migrate(handle); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return handle
}

func testFiles(t *testing.T) *storage.FileStore {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("could not create file store: %v", err)
	}
	return files
}

func TestCreateOrReplace_IdentityRule(t *testing.T) {
	ctx := context.Background()
	files := testFiles(t)
	docs := store.NewDocumentStore(testDB(t), files)

	handle1, _, err := files.Save("report.txt", strings.NewReader("first upload"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	first, replaced, err := docs.CreateOrReplace(ctx, 1, "report.txt", handle1, 12, map[string]any{"team": "research"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if replaced {
		t.Error("first upload should not report a replacement")
	}
	if first.Status != docModel.StatusPending {
		t.Errorf("status got %s, want pending", first.Status)
	}

	//chunks from a previous ingestion run
	if err := docs.ReplaceChunks(ctx, first.ID, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("chunk insert failed: %v", err)
	}

	handle2, _, err := files.Save("report.txt", strings.NewReader("second upload, different content"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	second, replaced, err := docs.CreateOrReplace(ctx, 1, "report.txt", handle2, 32, nil)
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if !replaced {
		t.Error("second upload of the same owner+filename should replace")
	}
	if second.ID != first.ID {
		t.Errorf("replacement changed document id: got %d, want %d", second.ID, first.ID)
	}

	chunks, err := docs.ListChunks(ctx, first.ID)
	if err != nil {
		t.Fatalf("list chunks failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("old chunks should be gone after replace, found %d", len(chunks))
	}

	//the prior stored file is cleaned up, the new one stays
	if _, err := files.Read(handle1); err == nil {
		t.Error("old file should have been deleted on replace")
	}
	if _, err := files.Read(handle2); err != nil {
		t.Errorf("new file should still exist: %v", err)
	}

	//a different owner with the same filename gets a separate document
	third, replaced, err := docs.CreateOrReplace(ctx, 2, "report.txt", "other-handle", 5, nil)
	if err != nil {
		t.Fatalf("create for second user failed: %v", err)
	}
	if replaced || third.ID == first.ID {
		t.Error("different owners must not share a document identity")
	}
}

func TestReplaceChunks_DensePositions(t *testing.T) {
	ctx := context.Background()
	docs := store.NewDocumentStore(testDB(t), testFiles(t))

	doc, _, err := docs.CreateOrReplace(ctx, 1, "notes.md", "h", 1, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first := []string{"alpha", "beta", "gamma", "delta"}
	if err := docs.ReplaceChunks(ctx, doc.ID, first); err != nil {
		t.Fatalf("first replace failed: %v", err)
	}

	//re-ingestion with fewer chunks fully supersedes the old set
	second := []string{"one", "two"}
	if err := docs.ReplaceChunks(ctx, doc.ID, second); err != nil {
		t.Fatalf("second replace failed: %v", err)
	}

	chunks, err := docs.ListChunks(ctx, doc.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(chunks) != len(second) {
		t.Fatalf("chunk count got %d, want %d", len(chunks), len(second))
	}
	for i, chunk := range chunks {
		if chunk.Position != i {
			t.Errorf("position at index %d got %d, want %d", i, chunk.Position, i)
		}
		if chunk.Content != second[i] {
			t.Errorf("content at %d got %q, want %q", i, chunk.Content, second[i])
		}
	}
}

func TestStatusAndFailureCapture(t *testing.T) {
	ctx := context.Background()
	docs := store.NewDocumentStore(testDB(t), testFiles(t))

	doc, _, err := docs.CreateOrReplace(ctx, 7, "scan.pdf", "h", 1, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := docs.SetStatus(ctx, doc.ID, docModel.StatusProcessing); err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	if err := docs.MarkFailed(ctx, doc.ID, "Unsupported file type: xyz"); err != nil {
		t.Fatalf("mark failed errored: %v", err)
	}

	got, found := docs.GetDocument(ctx, doc.ID)
	if !found {
		t.Fatal("document vanished")
	}
	if got.Status != docModel.StatusFailed {
		t.Errorf("status got %s, want failed", got.Status)
	}
	if got.Metadata[docModel.ProcessingErrorKey] != "Unsupported file type: xyz" {
		t.Errorf("processing error not captured, metadata: %v", got.Metadata)
	}
}

func TestListUserDocumentIDs(t *testing.T) {
	ctx := context.Background()
	docs := store.NewDocumentStore(testDB(t), testFiles(t))

	if _, _, err := docs.CreateOrReplace(ctx, 1, "a.txt", "h1", 1, nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := docs.CreateOrReplace(ctx, 1, "b.txt", "h2", 1, nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := docs.CreateOrReplace(ctx, 2, "c.txt", "h3", 1, nil); err != nil {
		t.Fatal(err)
	}

	ids, err := docs.ListUserDocumentIDs(ctx, 1)
	if err != nil {
		t.Fatalf("list ids failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("id count got %d, want 2", len(ids))
	}

	none, err := docs.ListUserDocumentIDs(ctx, 99)
	if err != nil {
		t.Fatalf("list ids failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no ids for unknown user, got %v", none)
	}
}

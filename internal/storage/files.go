package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rpillai/docuchat/pkg/logger_i"
)

// FileStore keeps uploaded documents on local disk. Handles are paths
// relative to the base directory, stored on the Document row.
type FileStore struct {
	baseDir string
	logger  *logger_i.Logger
}

func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, fmt.Errorf("could not create upload directory: %w", err)
	}
	return &FileStore{
		baseDir: baseDir,
		logger:  logger_i.NewLogger("FileStore"),
	}, nil
}

// Save writes the upload under a timestamped name so concurrent uploads of
// the same filename never collide on disk. Returns the handle and byte size.
func (f *FileStore) Save(filename string, r io.Reader) (string, int64, error) {
	handle := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(filename))
	dst, err := os.Create(filepath.Join(f.baseDir, handle))
	if err != nil {
		return "", 0, fmt.Errorf("storage error: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, r)
	if err != nil {
		return "", 0, fmt.Errorf("write error: %w", err)
	}
	return handle, written, nil
}

// Path resolves a handle to the absolute on-disk location the extractors read.
func (f *FileStore) Path(handle string) string {
	return filepath.Join(f.baseDir, handle)
}

func (f *FileStore) Read(handle string) ([]byte, error) {
	return os.ReadFile(f.Path(handle))
}

// URL returns the locator recorded in vector metadata for citations.
func (f *FileStore) URL(handle string) string {
	return "/media/" + handle
}

// Delete removes a stored file. A missing file is not an error: replace and
// delete paths may both try to clean the same handle.
func (f *FileStore) Delete(handle string) error {
	if handle == "" {
		return nil
	}
	err := os.Remove(f.Path(handle))
	if err != nil && !os.IsNotExist(err) {
		f.logger.Error("could not delete stored file", "handle", handle, "error", err)
		return err
	}
	return nil
}

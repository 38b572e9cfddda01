package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// messagesSubdir is where message attachments live under the base dir.
const messagesSubdir = "messages"

// Storage persists attachment blobs on disk and hands back stable relative
// paths that are stored alongside messages.
type Storage struct {
	baseDir string
}

// NewStorage creates the upload area rooted at baseDir.
func NewStorage(baseDir string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, messagesSubdir), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{baseDir: baseDir}, nil
}

// SaveMessageFile writes the attachment and returns its relative path.
// The stored name is prefixed with a UUID so client-chosen names never
// collide or escape the upload area.
func (s *Storage) SaveMessageFile(filename string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(filename))
	relPath := filepath.Join(messagesSubdir, name)

	f, err := os.Create(filepath.Join(s.baseDir, relPath))
	if err != nil {
		return "", fmt.Errorf("create attachment file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		// Do not leave a partial blob behind.
		os.Remove(f.Name())
		return "", fmt.Errorf("write attachment: %w", err)
	}

	return relPath, nil
}

// BaseDir returns the root of the upload area, used to serve files.
func (s *Storage) BaseDir() string {
	return s.baseDir
}

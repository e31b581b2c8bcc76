package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StoredObject is the handle returned by the object storage service. Only
// the handle and public URL are persisted, never raw bytes.
type StoredObject struct {
	Path      string
	PublicURL string
}

// ObjectStore accepts uploaded file content and returns a storage handle.
type ObjectStore interface {
	Put(ctx context.Context, r io.Reader, originalName string) (StoredObject, error)
	// Remove deletes a stored object; used to undo uploads when the
	// database commit fails.
	Remove(ctx context.Context, path string) error
}

// LocalObjectStore stores uploads on the local filesystem under BaseDir and
// serves them at BaseURL + /files/<name>.
type LocalObjectStore struct {
	BaseDir string
	BaseURL string
}

func NewLocalObjectStore() *LocalObjectStore {
	baseDir := os.Getenv("UPLOAD_PATH")
	if baseDir == "" {
		baseDir = "./uploads"
	}
	baseURL := strings.TrimSuffix(os.Getenv("PUBLIC_BASE_URL"), "/")
	return &LocalObjectStore{BaseDir: baseDir, BaseURL: baseURL}
}

func (s *LocalObjectStore) Put(ctx context.Context, r io.Reader, originalName string) (StoredObject, error) {
	if err := os.MkdirAll(s.BaseDir, 0o755); err != nil {
		return StoredObject{}, fmt.Errorf("create upload directory: %w", err)
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return StoredObject{}, err
	}
	storedName := hex.EncodeToString(buf) + strings.ToLower(filepath.Ext(originalName))
	storedPath := filepath.Join(s.BaseDir, storedName)

	dst, err := os.Create(storedPath)
	if err != nil {
		return StoredObject{}, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(storedPath)
		return StoredObject{}, fmt.Errorf("write file: %w", err)
	}

	return StoredObject{
		Path:      storedPath,
		PublicURL: s.BaseURL + "/files/" + storedName,
	}, nil
}

func (s *LocalObjectStore) Remove(ctx context.Context, path string) error {
	return os.Remove(path)
}

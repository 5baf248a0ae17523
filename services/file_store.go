package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore writes uploaded files under a base directory and hands back
// paths relative to it. Records in the database store only the relative
// path, so the base directory can move between deployments.
type FileStore struct {
	baseDir string
}

func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

// SaveBytes writes data under subDir with a collision-resistant filename
// that keeps the original extension. Returns the path relative to the
// base directory.
func (fs *FileStore) SaveBytes(subDir, originalName string, data []byte) (string, error) {
	dir := filepath.Join(fs.baseDir, subDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(originalName)
	relPath := filepath.Join(subDir, name)

	if err := os.WriteFile(filepath.Join(fs.baseDir, relPath), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return relPath, nil
}

// Remove deletes a previously stored file. Best-effort: a failure is
// logged and swallowed, never surfaced to the caller.
func (fs *FileStore) Remove(relPath string) {
	if relPath == "" {
		return
	}
	if err := os.Remove(filepath.Join(fs.baseDir, relPath)); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not remove file %s: %v", relPath, err)
	}
}

// Exists reports whether a stored file is still on disk.
func (fs *FileStore) Exists(relPath string) bool {
	if relPath == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(fs.baseDir, relPath))
	return err == nil
}

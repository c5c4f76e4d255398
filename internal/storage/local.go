package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/request-service/internal/config"
)

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".txt":  {},
	".csv":  {},
	".xlsx": {},
	".docx": {},
	".zip":  {},
}

// LocalBackend stores attachments on the local filesystem under a base path.
type LocalBackend struct {
	basePath  string
	publicURL string
	maxSize   int64
}

// NewLocalBackend creates the backend, ensuring the base directory exists.
func NewLocalBackend(cfg config.StorageConfig) (*LocalBackend, error) {
	if err := os.MkdirAll(cfg.BasePath, 0o755); err != nil {
		return nil, err
	}
	return &LocalBackend{
		basePath:  cfg.BasePath,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		maxSize:   cfg.MaxSizeBytes,
	}, nil
}

// Validate checks filename extension and size before anything is written.
func (b *LocalBackend) Validate(filename string, size int64, mimeType string) error {
	if strings.TrimSpace(filename) == "" {
		return errors.New("empty filename")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return errors.New("file type not allowed: " + ext)
	}
	if size <= 0 {
		return errors.New("empty file")
	}
	if b.maxSize > 0 && size > b.maxSize {
		return errors.New("file exceeds maximum size")
	}
	return nil
}

// Store writes the blob under a random key, keeping the original extension.
func (b *LocalBackend) Store(ctx context.Context, data []byte, meta FileMetadata) (Handle, error) {
	if err := b.Validate(meta.FileName, int64(len(data)), meta.MimeType); err != nil {
		return Handle{}, &AttachmentError{FileName: meta.FileName, Err: err}
	}
	key := uuid.NewString() + strings.ToLower(filepath.Ext(meta.FileName))
	target := filepath.Join(b.basePath, key)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return Handle{}, &AttachmentError{FileName: meta.FileName, Err: err}
	}
	return Handle{Key: key, SizeBytes: int64(len(data))}, nil
}

// Delete removes the blob; missing files count as deleted.
func (b *LocalBackend) Delete(ctx context.Context, handle Handle) bool {
	err := os.Remove(filepath.Join(b.basePath, handle.Key))
	return err == nil || os.IsNotExist(err)
}

// ResolveURL maps a handle to its public path.
func (b *LocalBackend) ResolveURL(handle Handle) string {
	return b.publicURL + "/" + handle.Key
}

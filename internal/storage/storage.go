// Package storage defines the attachment backend consumed by the response
// orchestrator. The lifecycle engine never touches it directly.
package storage

import (
	"context"
	"fmt"
)

// FileMetadata describes an upload before it is stored.
type FileMetadata struct {
	FileName string
	MimeType string
}

// Handle identifies a stored blob.
type Handle struct {
	Key       string
	SizeBytes int64
}

// Backend abstracts blob storage (local disk, object store).
type Backend interface {
	Store(ctx context.Context, data []byte, meta FileMetadata) (Handle, error)
	Validate(filename string, size int64, mimeType string) error
	Delete(ctx context.Context, handle Handle) bool
	ResolveURL(handle Handle) string
}

// AttachmentError wraps a per-file failure. These are aggregated into counts
// by the orchestrator and never abort the surrounding operation.
type AttachmentError struct {
	FileName string
	Err      error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("attachment %s: %v", e.FileName, e.Err)
}

func (e *AttachmentError) Unwrap() error {
	return e.Err
}

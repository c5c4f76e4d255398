package domain

import "time"

// CommentVisibility controls who can see a thread entry.
type CommentVisibility string

const (
	VisibilityPublic   CommentVisibility = "public"
	VisibilityInternal CommentVisibility = "internal"
	VisibilitySystem   CommentVisibility = "system"
)

// Comment is an immutable thread entry on a request. AuthorID is nil for
// system-generated comments.
type Comment struct {
	ID          string
	RequestID   string
	AuthorID    *string
	Visibility  CommentVisibility
	Body        string
	Attachments []AttachmentReference
	CreatedAt   time.Time
}

// AttachmentReference stores metadata for a stored comment attachment.
type AttachmentReference struct {
	ID         string
	CommentID  string
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}

package dto

import (
	"time"

	"github.com/spec-kit/request-service/internal/domain"
)

// CreateRequestRequest is the payload for creating any request kind.
type CreateRequestRequest struct {
	Subject     string          `json:"subject"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	SubKind     *string         `json:"sub_kind,omitempty"`
	Channel     domain.Channel  `json:"channel"`
}

// RespondRequest is the agent's unified response payload.
type RespondRequest struct {
	CommentBody       string                   `json:"comment_body"`
	CommentVisibility domain.CommentVisibility `json:"comment_visibility"`
	NewStatus         *domain.Status           `json:"new_status,omitempty"`
	Attachments       []AttachmentPayload      `json:"attachments,omitempty"`
}

// AttachmentPayload carries an inbound file; Data is base64 in JSON.
type AttachmentPayload struct {
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// CommentRequest is a requester's public reply.
type CommentRequest struct {
	Body string `json:"body"`
}

// StatusChangeRequest updates a request's status.
type StatusChangeRequest struct {
	Status domain.Status `json:"status"`
	Note   string        `json:"note,omitempty"`
}

// PriorityChangeRequest updates a request's priority.
type PriorityChangeRequest struct {
	Priority domain.Priority `json:"priority"`
}

// AssignRequest sets or clears the assignee. Empty or "0" unassigns.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// BulkAssignRequest assigns many requests at once.
type BulkAssignRequest struct {
	RequestIDs []string `json:"request_ids"`
	AssigneeID string   `json:"assignee_id"`
}

// BulkPriorityRequest changes priority on many requests.
type BulkPriorityRequest struct {
	RequestIDs []string        `json:"request_ids"`
	Priority   domain.Priority `json:"priority"`
}

// BulkStatusRequest changes status on many requests.
type BulkStatusRequest struct {
	RequestIDs []string      `json:"request_ids"`
	Status     domain.Status `json:"status"`
}

// BulkResultResponse reports aggregate bulk outcomes.
type BulkResultResponse struct {
	SuccessCount int                 `json:"success_count"`
	ErrorCount   int                 `json:"error_count"`
	Errors       []BulkErrorResponse `json:"errors,omitempty"`
}

// BulkErrorResponse describes one failed bulk item.
type BulkErrorResponse struct {
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
}

// RequestSummary is the list-view projection.
type RequestSummary struct {
	ID         string          `json:"id"`
	Kind       domain.Kind     `json:"kind"`
	Number     string          `json:"number"`
	Subject    string          `json:"subject"`
	Status     domain.Status   `json:"status"`
	Priority   domain.Priority `json:"priority"`
	AssigneeID *string         `json:"assignee_id,omitempty"`
	Channel    domain.Channel  `json:"channel"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// SLAStateResponse is the recomputed breach view.
type SLAStateResponse struct {
	FirstResponseDue      *time.Time `json:"first_response_due,omitempty"`
	ResolutionDue         *time.Time `json:"resolution_due,omitempty"`
	FirstResponseBreached bool       `json:"first_response_breached"`
	ResolutionBreached    bool       `json:"resolution_breached"`
}

// RequestDetailResponse is the full projection with thread and history.
type RequestDetailResponse struct {
	ID              string            `json:"id"`
	Kind            domain.Kind       `json:"kind"`
	Number          string            `json:"number"`
	Subject         string            `json:"subject"`
	Description     string            `json:"description"`
	Status          domain.Status     `json:"status"`
	Priority        domain.Priority   `json:"priority"`
	SubKind         *string           `json:"sub_kind,omitempty"`
	RequesterID     string            `json:"requester_id"`
	AssigneeID      *string           `json:"assignee_id,omitempty"`
	Channel         domain.Channel    `json:"channel"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	FirstResponseAt *time.Time        `json:"first_response_at,omitempty"`
	ResolvedAt      *time.Time        `json:"resolved_at,omitempty"`
	ClosedAt        *time.Time        `json:"closed_at,omitempty"`
	SLA             SLAStateResponse  `json:"sla"`
	Comments        []CommentResponse `json:"comments"`
	History         []HistoryResponse `json:"history"`
}

// CommentResponse projects one thread entry.
type CommentResponse struct {
	ID          string                   `json:"id"`
	AuthorID    *string                  `json:"author_id,omitempty"`
	Visibility  domain.CommentVisibility `json:"visibility"`
	Body        string                   `json:"body"`
	Attachments []AttachmentResponse     `json:"attachments,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

// AttachmentResponse projects stored attachment metadata.
type AttachmentResponse struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	URL       string `json:"url"`
}

// HistoryResponse projects one audit entry.
type HistoryResponse struct {
	ID          string    `json:"id"`
	ActorID     *string   `json:"actor_id,omitempty"`
	FieldName   string    `json:"field_name"`
	OldValue    *string   `json:"old_value,omitempty"`
	NewValue    *string   `json:"new_value,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// RespondResponse reports the composed response outcome.
type RespondResponse struct {
	Success           bool           `json:"success"`
	Message           string         `json:"message"`
	Request           RequestSummary `json:"request"`
	AttachmentsSaved  int            `json:"attachments_saved"`
	AttachmentsFailed int            `json:"attachments_failed"`
}

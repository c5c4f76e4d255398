package domain

import "time"

// HistoryEntry is an append-only audit record. Old and new values are stored
// as display strings so the trail stays kind-agnostic; entries are never
// mutated or deleted.
type HistoryEntry struct {
	ID          string
	RequestID   string
	ActorID     *string
	FieldName   string
	OldValue    *string
	NewValue    *string
	Description string
	CreatedAt   time.Time
}

// Audited field names.
const (
	FieldStatus   = "status"
	FieldPriority = "priority"
	FieldAssignee = "assignee"
)

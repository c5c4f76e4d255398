package domain

import "time"

// Request is the shared aggregate for tickets, complaints and purchase
// requests. The three variants have identical shape; only the status
// vocabulary, number prefix and storage tables differ, all of which live in
// the kind registry.
type Request struct {
	ID          string
	Kind        Kind
	Number      string
	Subject     string
	Description string
	Status      Status
	Priority    Priority
	SubKind     *string
	RequesterID string
	AssigneeID  *string
	Channel     Channel

	CreatedAt       time.Time
	UpdatedAt       time.Time
	FirstResponseAt *time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time

	FirstResponseDue *time.Time
	ResolutionDue    *time.Time
}

// Assigned reports whether the request has an assignee.
func (r *Request) Assigned() bool {
	return r.AssigneeID != nil && *r.AssigneeID != ""
}

package notify

import (
	"context"

	"github.com/spec-kit/request-service/internal/domain"
)

// Context carries event-specific payload to a sender. OldStatus/NewStatus
// are set for status_change and response events; Comment for comment and
// response events.
type Context struct {
	Request         *domain.Request
	OldStatus       domain.Status
	NewStatus       domain.Status
	Comment         *domain.Comment
	ExtraRecipients []string
}

// EmailSender composes and sends transactional email, one method per
// kind/event pair. Implementations own rendering and transport, including
// their own timeout policy; the router only decides whether to call them.
type EmailSender interface {
	SendTicketCreated(ctx context.Context, nc Context) error
	SendTicketStatusChanged(ctx context.Context, nc Context) error
	SendTicketComment(ctx context.Context, nc Context) error
	SendTicketResponse(ctx context.Context, nc Context) error

	SendComplaintCreated(ctx context.Context, nc Context) error
	SendComplaintStatusChanged(ctx context.Context, nc Context) error
	SendComplaintComment(ctx context.Context, nc Context) error
	SendComplaintResponse(ctx context.Context, nc Context) error

	SendPurchaseRequestCreated(ctx context.Context, nc Context) error
	SendPurchaseRequestStatusChanged(ctx context.Context, nc Context) error
	SendPurchaseRequestComment(ctx context.Context, nc Context) error
	SendPurchaseRequestResponse(ctx context.Context, nc Context) error
}

// MessagingSender delivers the creation notice over the messaging channel
// (WhatsApp). Messaging never fires for any other event.
type MessagingSender interface {
	SendTicketCreated(ctx context.Context, nc Context) error
	SendComplaintCreated(ctx context.Context, nc Context) error
	SendPurchaseRequestCreated(ctx context.Context, nc Context) error
}

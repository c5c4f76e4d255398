package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/request-service/internal/config"
)

// LogEmailSender is the default EmailSender: it records what would have been
// sent. Real SMTP composition plugs in behind the same interface.
type LogEmailSender struct {
	runtime *config.Runtime
	logger  *zap.Logger
}

// NewLogEmailSender creates the sender.
func NewLogEmailSender(runtime *config.Runtime, logger *zap.Logger) *LogEmailSender {
	return &LogEmailSender{runtime: runtime, logger: logger}
}

func (s *LogEmailSender) send(template string, nc Context) error {
	from := s.runtime.Snapshot().Notifications.EmailFrom
	fields := []zap.Field{
		zap.String("template", template),
		zap.String("from", from),
		zap.String("request_number", nc.Request.Number),
		zap.String("requester_id", nc.Request.RequesterID),
	}
	if nc.OldStatus != "" || nc.NewStatus != "" {
		fields = append(fields,
			zap.String("old_status", string(nc.OldStatus)),
			zap.String("new_status", string(nc.NewStatus)))
	}
	if nc.Comment != nil {
		fields = append(fields, zap.String("comment_id", nc.Comment.ID))
	}
	if len(nc.ExtraRecipients) > 0 {
		fields = append(fields, zap.Strings("extra_recipients", nc.ExtraRecipients))
	}
	s.logger.Info("email notification", fields...)
	return nil
}

func (s *LogEmailSender) SendTicketCreated(ctx context.Context, nc Context) error {
	return s.send("ticket_created", nc)
}

func (s *LogEmailSender) SendTicketStatusChanged(ctx context.Context, nc Context) error {
	return s.send("ticket_status_changed", nc)
}

func (s *LogEmailSender) SendTicketComment(ctx context.Context, nc Context) error {
	return s.send("ticket_comment", nc)
}

func (s *LogEmailSender) SendTicketResponse(ctx context.Context, nc Context) error {
	return s.send("ticket_response", nc)
}

func (s *LogEmailSender) SendComplaintCreated(ctx context.Context, nc Context) error {
	return s.send("complaint_created", nc)
}

func (s *LogEmailSender) SendComplaintStatusChanged(ctx context.Context, nc Context) error {
	return s.send("complaint_status_changed", nc)
}

func (s *LogEmailSender) SendComplaintComment(ctx context.Context, nc Context) error {
	return s.send("complaint_comment", nc)
}

func (s *LogEmailSender) SendComplaintResponse(ctx context.Context, nc Context) error {
	return s.send("complaint_response", nc)
}

func (s *LogEmailSender) SendPurchaseRequestCreated(ctx context.Context, nc Context) error {
	return s.send("purchase_request_created", nc)
}

func (s *LogEmailSender) SendPurchaseRequestStatusChanged(ctx context.Context, nc Context) error {
	return s.send("purchase_request_status_changed", nc)
}

func (s *LogEmailSender) SendPurchaseRequestComment(ctx context.Context, nc Context) error {
	return s.send("purchase_request_comment", nc)
}

func (s *LogEmailSender) SendPurchaseRequestResponse(ctx context.Context, nc Context) error {
	return s.send("purchase_request_response", nc)
}

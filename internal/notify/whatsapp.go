package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/request-service/internal/config"
)

// LogMessagingSender is the default MessagingSender. The provider name comes
// from runtime settings; an empty provider means delivery is a no-op.
type LogMessagingSender struct {
	runtime *config.Runtime
	logger  *zap.Logger
}

// NewLogMessagingSender creates the sender.
func NewLogMessagingSender(runtime *config.Runtime, logger *zap.Logger) *LogMessagingSender {
	return &LogMessagingSender{runtime: runtime, logger: logger}
}

func (s *LogMessagingSender) send(template string, nc Context) error {
	provider := s.runtime.Snapshot().Notifications.MessagingProvider
	if provider == "" {
		return nil
	}
	s.logger.Info("messaging notification",
		zap.String("provider", provider),
		zap.String("template", template),
		zap.String("request_number", nc.Request.Number),
		zap.String("requester_id", nc.Request.RequesterID))
	return nil
}

func (s *LogMessagingSender) SendTicketCreated(ctx context.Context, nc Context) error {
	return s.send("ticket_created", nc)
}

func (s *LogMessagingSender) SendComplaintCreated(ctx context.Context, nc Context) error {
	return s.send("complaint_created", nc)
}

func (s *LogMessagingSender) SendPurchaseRequestCreated(ctx context.Context, nc Context) error {
	return s.send("purchase_request_created", nc)
}

package service

import (
	"context"

	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/registry"
	"github.com/spec-kit/request-service/internal/repository"
)

// AuditTrail is the append-only history writer shared by the lifecycle
// operations. Values are recorded as display strings so the trail stays
// kind-agnostic.
type AuditTrail struct {
	history repository.HistoryRepository
}

// NewAuditTrail constructs the trail over its repository.
func NewAuditTrail(history repository.HistoryRepository) *AuditTrail {
	return &AuditTrail{history: history}
}

// Record appends one entry for a field change.
func (a *AuditTrail) Record(ctx context.Context, desc registry.Descriptor, requestID string, actorID *string, fieldName string, oldValue, newValue *string, description string) error {
	entry := &domain.HistoryEntry{
		RequestID:   requestID,
		ActorID:     actorID,
		FieldName:   fieldName,
		OldValue:    oldValue,
		NewValue:    newValue,
		Description: description,
	}
	return a.history.Create(ctx, desc, entry)
}

// List returns entries most recent first.
func (a *AuditTrail) List(ctx context.Context, desc registry.Descriptor, requestID string, limit, offset int) ([]domain.HistoryEntry, error) {
	return a.history.ListByRequest(ctx, desc, requestID, limit, offset)
}

func strPtr(s string) *string {
	return &s
}

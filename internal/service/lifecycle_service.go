package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/notify"
	"github.com/spec-kit/request-service/internal/registry"
	"github.com/spec-kit/request-service/internal/repository"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// LifecycleService implements the generic request lifecycle: status,
// priority and assignment transitions. Every successful transition writes
// exactly one history entry and one system comment. Notifications are
// best-effort and never roll back a persisted change.
//
// Priority changes and assignments are rejected on closed requests; status
// changes are allowed from any status so a closed request can be reopened.
type LifecycleService struct {
	requests repository.RequestRepository
	comments repository.CommentRepository
	agents   repository.AgentRepository
	audit    *AuditTrail
	router   *notify.Router
	logger   *zap.Logger
	now      func() time.Time
}

// LifecycleDependencies bundles collaborators for the lifecycle engine.
type LifecycleDependencies struct {
	RequestRepo repository.RequestRepository
	CommentRepo repository.CommentRepository
	AgentRepo   repository.AgentRepository
	Audit       *AuditTrail
	Router      *notify.Router
	Logger      *zap.Logger
}

// NewLifecycleService constructs the engine.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		requests: deps.RequestRepo,
		comments: deps.CommentRepo,
		agents:   deps.AgentRepo,
		audit:    deps.Audit,
		router:   deps.Router,
		logger:   deps.Logger,
		now:      time.Now,
	}
}

// ChangeStatus moves the request to newStatus. Same-status calls are a
// no-op: nothing is written and no error is returned. The notifyNow flag
// lets the response orchestrator defer notification to its own unified
// dispatch.
func (s *LifecycleService) ChangeStatus(ctx context.Context, desc registry.Descriptor, req *domain.Request, newStatus domain.Status, actorID *string, note string, notifyNow bool) error {
	if newStatus == req.Status {
		return nil
	}
	if !desc.ValidStatus(newStatus) {
		return apperrors.NewValidationError(fmt.Sprintf("status %q is not valid for kind %s", newStatus, desc.Kind), nil)
	}

	oldStatus := req.Status
	oldResolvedAt, oldClosedAt := req.ResolvedAt, req.ClosedAt
	req.Status = newStatus
	now := s.now()
	if newStatus == desc.ResolvedStatus && req.ResolvedAt == nil {
		req.ResolvedAt = &now
	}
	if desc.ClosedStatus != "" && newStatus == desc.ClosedStatus && req.ClosedAt == nil {
		req.ClosedAt = &now
	}

	if err := s.requests.Update(ctx, desc, req); err != nil {
		req.Status = oldStatus
		req.ResolvedAt, req.ClosedAt = oldResolvedAt, oldClosedAt
		return apperrors.MapError(err)
	}

	description := fmt.Sprintf("Status changed from '%s' to '%s'", oldStatus, newStatus)
	if err := s.audit.Record(ctx, desc, req.ID, actorID, domain.FieldStatus, strPtr(string(oldStatus)), strPtr(string(newStatus)), description); err != nil {
		return apperrors.MapError(err)
	}

	body := strings.TrimSpace(note)
	if body == "" {
		body = description
	}
	if err := s.writeSystemComment(ctx, desc, req.ID, body); err != nil {
		return apperrors.MapError(err)
	}

	if notifyNow {
		s.router.Dispatch(ctx, registry.EventStatusChange, notify.Context{
			Request:   req,
			OldStatus: oldStatus,
			NewStatus: newStatus,
		})
	}
	return nil
}

// ChangePriority moves the request to newPriority. No timestamp side
// effects and no notification; priority changes are not independently
// notified.
func (s *LifecycleService) ChangePriority(ctx context.Context, desc registry.Descriptor, req *domain.Request, newPriority domain.Priority, actorID *string) error {
	if desc.IsClosed(req.Status) {
		return apperrors.NewRequestClosed(req.Number, string(req.Status))
	}
	if newPriority == req.Priority {
		return nil
	}
	if !domain.ValidPriority(newPriority) {
		return apperrors.NewValidationError(fmt.Sprintf("priority %q is not valid", newPriority), nil)
	}

	oldPriority := req.Priority
	req.Priority = newPriority
	if err := s.requests.Update(ctx, desc, req); err != nil {
		req.Priority = oldPriority
		return apperrors.MapError(err)
	}

	description := fmt.Sprintf("Priority changed from '%s' to '%s'", oldPriority, newPriority)
	if err := s.audit.Record(ctx, desc, req.ID, actorID, domain.FieldPriority, strPtr(string(oldPriority)), strPtr(string(newPriority)), description); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.writeSystemComment(ctx, desc, req.ID, description); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Assign sets or clears the assignee. "0" and the empty string normalize to
// unassigned. Display names for the audit description degrade to the
// "Sin asignar" sentinel when the referenced agent cannot be resolved;
// name-resolution failure never fails the operation itself.
func (s *LifecycleService) Assign(ctx context.Context, desc registry.Descriptor, req *domain.Request, assigneeID string, actorID *string) error {
	if desc.IsClosed(req.Status) {
		return apperrors.NewRequestClosed(req.Number, string(req.Status))
	}

	normalized := normalizeAssignee(assigneeID)
	if equalAssignee(req.AssigneeID, normalized) {
		return nil
	}

	oldAssignee := req.AssigneeID
	oldLabel := s.agentLabel(ctx, oldAssignee)
	newLabel := s.agentLabel(ctx, normalized)

	req.AssigneeID = normalized
	if err := s.requests.Update(ctx, desc, req); err != nil {
		req.AssigneeID = oldAssignee
		return apperrors.MapError(err)
	}

	description := fmt.Sprintf("Assigned to %s", newLabel)
	if err := s.audit.Record(ctx, desc, req.ID, actorID, domain.FieldAssignee, strPtr(oldLabel), strPtr(newLabel), description); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.writeSystemComment(ctx, desc, req.ID, description); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// BulkError describes one failed item of a bulk operation.
type BulkError struct {
	RequestID string
	Message   string
}

// BulkResult aggregates per-item outcomes. Items are processed sequentially
// and independently; one failure never rolls back prior successes.
type BulkResult struct {
	SuccessCount int
	ErrorCount   int
	Errors       []BulkError
}

// BulkAssign assigns many requests to the same agent.
func (s *LifecycleService) BulkAssign(ctx context.Context, kind domain.Kind, requestIDs []string, assigneeID string, actorID *string) (*BulkResult, error) {
	desc, err := registry.Resolve(kind)
	if err != nil {
		return nil, err
	}
	return s.bulk(ctx, desc, requestIDs, func(req *domain.Request) error {
		return s.Assign(ctx, desc, req, assigneeID, actorID)
	}), nil
}

// BulkChangePriority changes priority on many requests.
func (s *LifecycleService) BulkChangePriority(ctx context.Context, kind domain.Kind, requestIDs []string, priority domain.Priority, actorID *string) (*BulkResult, error) {
	desc, err := registry.Resolve(kind)
	if err != nil {
		return nil, err
	}
	return s.bulk(ctx, desc, requestIDs, func(req *domain.Request) error {
		return s.ChangePriority(ctx, desc, req, priority, actorID)
	}), nil
}

// BulkChangeStatus changes status on many requests.
func (s *LifecycleService) BulkChangeStatus(ctx context.Context, kind domain.Kind, requestIDs []string, status domain.Status, actorID *string) (*BulkResult, error) {
	desc, err := registry.Resolve(kind)
	if err != nil {
		return nil, err
	}
	return s.bulk(ctx, desc, requestIDs, func(req *domain.Request) error {
		return s.ChangeStatus(ctx, desc, req, status, actorID, "", true)
	}), nil
}

func (s *LifecycleService) bulk(ctx context.Context, desc registry.Descriptor, requestIDs []string, op func(*domain.Request) error) *BulkResult {
	result := &BulkResult{}
	for _, id := range requestIDs {
		req, err := s.requests.GetByID(ctx, desc, id)
		if err == nil {
			err = op(req)
		}
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, BulkError{RequestID: id, Message: apperrors.ToDomainError(err).Message})
			s.logger.Warn("bulk operation item failed",
				zap.String("kind", string(desc.Kind)),
				zap.String("request_id", id),
				zap.Error(err))
			continue
		}
		result.SuccessCount++
	}
	return result
}

func (s *LifecycleService) writeSystemComment(ctx context.Context, desc registry.Descriptor, requestID, body string) error {
	comment := &domain.Comment{
		RequestID:  requestID,
		Visibility: domain.VisibilitySystem,
		Body:       body,
	}
	return s.comments.Create(ctx, desc, comment)
}

// agentLabel resolves a display name, degrading to the sentinel when the
// agent is missing or the lookup fails.
func (s *LifecycleService) agentLabel(ctx context.Context, agentID *string) string {
	if agentID == nil || *agentID == "" {
		return domain.UnassignedLabel
	}
	agent, err := s.agents.GetByID(ctx, *agentID)
	if err != nil || agent == nil {
		return domain.UnassignedLabel
	}
	return agent.Name
}

func normalizeAssignee(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "0" {
		return nil
	}
	return &trimmed
}

func equalAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

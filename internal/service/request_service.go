package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/request-service/internal/config"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/notify"
	"github.com/spec-kit/request-service/internal/numbering"
	"github.com/spec-kit/request-service/internal/registry"
	"github.com/spec-kit/request-service/internal/repository"
	"github.com/spec-kit/request-service/internal/sla"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// RequestService covers creation and retrieval of requests across kinds.
// Lifecycle transitions live in LifecycleService; the unified response
// operation in ResponseService.
type RequestService struct {
	requests    repository.RequestRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	audit       *AuditTrail
	numbers     numbering.Allocator
	runtime     *config.Runtime
	router      *notify.Router
	now         func() time.Time
}

// RequestDependencies bundles collaborators.
type RequestDependencies struct {
	RequestRepo    repository.RequestRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	Audit          *AuditTrail
	Numbers        numbering.Allocator
	Runtime        *config.Runtime
	Router         *notify.Router
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:    deps.RequestRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		audit:       deps.Audit,
		numbers:     deps.Numbers,
		runtime:     deps.Runtime,
		router:      deps.Router,
		now:         time.Now,
	}
}

// CreateRequestInput describes a new request of any kind.
type CreateRequestInput struct {
	Kind        domain.Kind
	Subject     string
	Description string
	Priority    domain.Priority
	SubKind     *string
	Channel     domain.Channel
	RequesterID string
}

// Create allocates a number, computes SLA due dates from the current
// runtime settings, persists the request and fires the creation
// notification (email, plus messaging where enabled).
func (s *RequestService) Create(ctx context.Context, input CreateRequestInput) (*domain.Request, error) {
	desc, err := registry.Resolve(input.Kind)
	if err != nil {
		return nil, err
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedia
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	channel := input.Channel
	if channel == "" {
		channel = domain.ChannelWeb
	}

	number, err := s.numbers.Next(ctx, desc)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.now()
	dues := sla.ComputeDueDates(s.runtime.Snapshot().SLA, desc.Kind, input.SubKind, now)

	req := &domain.Request{
		Kind:             desc.Kind,
		Number:           number,
		Subject:          subject,
		Description:      strings.TrimSpace(input.Description),
		Status:           desc.InitialStatus,
		Priority:         priority,
		SubKind:          input.SubKind,
		RequesterID:      input.RequesterID,
		Channel:          channel,
		FirstResponseDue: dues.FirstResponseDue,
		ResolutionDue:    dues.ResolutionDue,
	}
	if err := s.requests.Create(ctx, desc, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.router.Dispatch(ctx, registry.EventCreation, notify.Context{Request: req})
	return req, nil
}

// Get loads a request by id.
func (s *RequestService) Get(ctx context.Context, kind domain.Kind, id string) (*domain.Request, error) {
	desc, err := registry.Resolve(kind)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.GetByID(ctx, desc, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return req, nil
}

// GetByNumber loads a request by its public number.
func (s *RequestService) GetByNumber(ctx context.Context, kind domain.Kind, number string) (*domain.Request, error) {
	desc, err := registry.Resolve(kind)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.GetByNumber(ctx, desc, number)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return req, nil
}

// Thread returns the request's comments with attachments, optionally
// filtered to what a requester may see (public only; system and internal
// stay agent-side).
func (s *RequestService) Thread(ctx context.Context, kind domain.Kind, requestID string, publicOnly bool) ([]domain.Comment, error) {
	desc, err := registry.Resolve(kind)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByRequest(ctx, desc, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	result := make([]domain.Comment, 0, len(comments))
	for i := range comments {
		if publicOnly && comments[i].Visibility != domain.VisibilityPublic {
			continue
		}
		attachments, err := s.attachments.ListByComment(ctx, comments[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		comments[i].Attachments = attachments
		result = append(result, comments[i])
	}
	return result, nil
}

// History returns audit entries, most recent first.
func (s *RequestService) History(ctx context.Context, kind domain.Kind, requestID string, limit, offset int) ([]domain.HistoryEntry, error) {
	desc, err := registry.Resolve(kind)
	if err != nil {
		return nil, err
	}
	entries, err := s.audit.List(ctx, desc, requestID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// List returns requests matching the filter.
func (s *RequestService) List(ctx context.Context, kind domain.Kind, filter repository.RequestFilter) ([]domain.Request, error) {
	desc, err := registry.Resolve(kind)
	if err != nil {
		return nil, err
	}
	result, err := s.requests.ListWithFilter(ctx, desc, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// SLAState is the recomputed-on-read breach view of a request.
type SLAState struct {
	FirstResponseDue      *time.Time
	ResolutionDue         *time.Time
	FirstResponseBreached bool
	ResolutionBreached    bool
}

// SLAStateOf evaluates both breach predicates at the current time.
func (s *RequestService) SLAStateOf(req *domain.Request) SLAState {
	desc := registry.MustResolve(req.Kind)
	now := s.now()
	return SLAState{
		FirstResponseDue:      req.FirstResponseDue,
		ResolutionDue:         req.ResolutionDue,
		FirstResponseBreached: sla.FirstResponseBreached(desc, req, now),
		ResolutionBreached:    sla.ResolutionBreached(desc, req, now),
	}
}

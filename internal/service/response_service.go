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
	"github.com/spec-kit/request-service/internal/storage"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// ResponseService is the single entry point combining "add comment" +
// "change status" + "attach files" + "dispatch notifications" as one
// business operation with partial-success semantics: a comment failure
// aborts everything, attachment failures are counted but non-fatal, and a
// status-change failure after a durably saved comment is logged without
// failing the call.
type ResponseService struct {
	requests    repository.RequestRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	lifecycle   *LifecycleService
	backend     storage.Backend
	router      *notify.Router
	logger      *zap.Logger
	now         func() time.Time
}

// ResponseDependencies bundles collaborators for the orchestrator.
type ResponseDependencies struct {
	RequestRepo    repository.RequestRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	Lifecycle      *LifecycleService
	Backend        storage.Backend
	Router         *notify.Router
	Logger         *zap.Logger
}

// NewResponseService constructs the orchestrator.
func NewResponseService(deps ResponseDependencies) *ResponseService {
	return &ResponseService{
		requests:    deps.RequestRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		lifecycle:   deps.Lifecycle,
		backend:     deps.Backend,
		router:      deps.Router,
		logger:      deps.Logger,
		now:         time.Now,
	}
}

// ResponseInput describes the agent's submission.
type ResponseInput struct {
	CommentBody       string
	CommentVisibility domain.CommentVisibility
	NewStatus         *domain.Status
}

// AttachmentUpload is one inbound file.
type AttachmentUpload struct {
	FileName string
	MimeType string
	Data     []byte
}

// ResponseResult reports the composed outcome.
type ResponseResult struct {
	Success           bool
	Message           string
	Request           *domain.Request
	Comment           *domain.Comment
	AttachmentsSaved  int
	AttachmentsFailed int
}

// ProcessResponse executes the unified response operation for an agent.
func (s *ResponseService) ProcessResponse(ctx context.Context, kind domain.Kind, requestID, actorID string, input ResponseInput, uploads []AttachmentUpload) (*ResponseResult, error) {
	desc, err := registry.Resolve(kind)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.GetByID(ctx, desc, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	body := strings.TrimSpace(input.CommentBody)
	hasComment := body != ""
	hasStatusChange := input.NewStatus != nil && *input.NewStatus != req.Status

	if !hasComment && !hasStatusChange {
		return nil, apperrors.NewNothingToDo()
	}

	// Replying to a closed request is only allowed when the same submission
	// reopens it.
	if desc.IsClosed(req.Status) && !hasStatusChange {
		return nil, apperrors.NewRequestClosed(req.Number, string(req.Status))
	}

	visibility := input.CommentVisibility
	if visibility == "" {
		visibility = domain.VisibilityPublic
	}

	result := &ResponseResult{Request: req}
	var parts []string

	var comment *domain.Comment
	if hasComment {
		comment = &domain.Comment{
			RequestID:  req.ID,
			AuthorID:   &actorID,
			Visibility: visibility,
			Body:       body,
		}
		// A comment failure aborts the whole operation: no status change,
		// no attachments, no notification.
		if err := s.comments.Create(ctx, desc, comment); err != nil {
			return nil, apperrors.MapError(err)
		}
		result.Comment = comment
		parts = append(parts, "comment added")

		s.stampFirstResponse(ctx, desc, req, visibility, hasStatusChange)

		saved, failed := s.storeAttachments(ctx, req, comment, uploads)
		result.AttachmentsSaved, result.AttachmentsFailed = saved, failed
		if saved > 0 || failed > 0 {
			parts = append(parts, fmt.Sprintf("%d of %d attachments saved", saved, saved+failed))
		}
	}

	statusChanged := false
	oldStatus := req.Status
	if hasStatusChange {
		// Notification is deferred to the unified dispatch below to avoid a
		// duplicate status_change send.
		err := s.lifecycle.ChangeStatus(ctx, desc, req, *input.NewStatus, &actorID, "", false)
		if err != nil {
			if !hasComment {
				return nil, err
			}
			// Comment is already durable; report partial success.
			s.logger.Warn("status change failed after comment was saved",
				zap.String("kind", string(kind)),
				zap.String("request_number", req.Number),
				zap.Error(err))
			parts = append(parts, fmt.Sprintf("status change to '%s' failed", *input.NewStatus))
		} else {
			statusChanged = true
			parts = append(parts, fmt.Sprintf("status changed to '%s'", req.Status))
		}
	}

	s.dispatchResponseNotification(ctx, req, comment, visibility, oldStatus, hasComment, statusChanged)

	result.Success = true
	result.Message = strings.Join(parts, ", ")
	return result, nil
}

// stampFirstResponse records the first public agent comment exactly once.
// When a status change follows in the same call its update persists the
// stamp; otherwise we persist here. A persistence failure only loses the
// stamp, never the comment, so it is logged and swallowed.
func (s *ResponseService) stampFirstResponse(ctx context.Context, desc registry.Descriptor, req *domain.Request, visibility domain.CommentVisibility, updateFollows bool) {
	if visibility != domain.VisibilityPublic || req.FirstResponseAt != nil {
		return
	}
	now := s.now()
	req.FirstResponseAt = &now
	if updateFollows {
		return
	}
	if err := s.requests.Update(ctx, desc, req); err != nil {
		s.logger.Warn("failed to stamp first response",
			zap.String("request_number", req.Number),
			zap.Error(err))
		req.FirstResponseAt = nil
	}
}

// storeAttachments validates and stores each upload independently. A failed
// file never aborts the comment or the status change.
func (s *ResponseService) storeAttachments(ctx context.Context, req *domain.Request, comment *domain.Comment, uploads []AttachmentUpload) (saved, failed int) {
	for _, upload := range uploads {
		if err := s.storeOne(ctx, comment, upload); err != nil {
			failed++
			s.logger.Warn("attachment rejected",
				zap.String("request_number", req.Number),
				zap.String("file_name", upload.FileName),
				zap.Error(err))
			continue
		}
		saved++
	}
	return saved, failed
}

func (s *ResponseService) storeOne(ctx context.Context, comment *domain.Comment, upload AttachmentUpload) error {
	if err := s.backend.Validate(upload.FileName, int64(len(upload.Data)), upload.MimeType); err != nil {
		return &storage.AttachmentError{FileName: upload.FileName, Err: err}
	}
	handle, err := s.backend.Store(ctx, upload.Data, storage.FileMetadata{
		FileName: upload.FileName,
		MimeType: upload.MimeType,
	})
	if err != nil {
		return err
	}
	record := &domain.AttachmentReference{
		CommentID:  comment.ID,
		StorageKey: handle.Key,
		FileName:   upload.FileName,
		MimeType:   upload.MimeType,
		SizeBytes:  handle.SizeBytes,
	}
	if err := s.attachments.Create(ctx, record); err != nil {
		// Keep storage and metadata consistent when the row insert fails.
		s.backend.Delete(ctx, handle)
		return &storage.AttachmentError{FileName: upload.FileName, Err: err}
	}
	comment.Attachments = append(comment.Attachments, *record)
	return nil
}

// dispatchResponseNotification fires exactly one of {response, comment,
// status_change} depending on what actually happened. Internal and system
// comments never trigger the public notification path.
func (s *ResponseService) dispatchResponseNotification(ctx context.Context, req *domain.Request, comment *domain.Comment, visibility domain.CommentVisibility, oldStatus domain.Status, hasComment, statusChanged bool) {
	publicComment := hasComment && visibility == domain.VisibilityPublic

	nc := notify.Context{Request: req, Comment: comment}
	switch {
	case publicComment && statusChanged:
		nc.OldStatus, nc.NewStatus = oldStatus, req.Status
		s.router.Dispatch(ctx, registry.EventResponse, nc)
	case statusChanged:
		nc.Comment = nil
		nc.OldStatus, nc.NewStatus = oldStatus, req.Status
		s.router.Dispatch(ctx, registry.EventStatusChange, nc)
	case publicComment:
		s.router.Dispatch(ctx, registry.EventComment, nc)
	}
}

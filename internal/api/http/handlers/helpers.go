package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-service/internal/api/dto"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/service"
	"github.com/spec-kit/request-service/internal/storage"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// kindSlugs maps URL path segments to request kinds.
var kindSlugs = map[string]domain.Kind{
	"tickets":           domain.KindTicket,
	"complaints":        domain.KindComplaint,
	"purchase-requests": domain.KindPurchaseRequest,
}

func parseKind(c *fiber.Ctx) (domain.Kind, error) {
	slug := c.Params("kind")
	if kind, ok := kindSlugs[slug]; ok {
		return kind, nil
	}
	return "", apperrors.NewUnknownKind(slug)
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func toSummary(req *domain.Request) dto.RequestSummary {
	return dto.RequestSummary{
		ID:         req.ID,
		Kind:       req.Kind,
		Number:     req.Number,
		Subject:    req.Subject,
		Status:     req.Status,
		Priority:   req.Priority,
		AssigneeID: req.AssigneeID,
		Channel:    req.Channel,
		CreatedAt:  req.CreatedAt,
		UpdatedAt:  req.UpdatedAt,
	}
}

func toSummaries(reqs []domain.Request) []dto.RequestSummary {
	out := make([]dto.RequestSummary, 0, len(reqs))
	for i := range reqs {
		out = append(out, toSummary(&reqs[i]))
	}
	return out
}

func toSLAState(state service.SLAState) dto.SLAStateResponse {
	return dto.SLAStateResponse{
		FirstResponseDue:      state.FirstResponseDue,
		ResolutionDue:         state.ResolutionDue,
		FirstResponseBreached: state.FirstResponseBreached,
		ResolutionBreached:    state.ResolutionBreached,
	}
}

func toComments(comments []domain.Comment, backend storage.Backend) []dto.CommentResponse {
	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		c := &comments[i]
		attachments := make([]dto.AttachmentResponse, 0, len(c.Attachments))
		for _, a := range c.Attachments {
			attachments = append(attachments, dto.AttachmentResponse{
				ID:        a.ID,
				FileName:  a.FileName,
				MimeType:  a.MimeType,
				SizeBytes: a.SizeBytes,
				URL:       backend.ResolveURL(storage.Handle{Key: a.StorageKey, SizeBytes: a.SizeBytes}),
			})
		}
		out = append(out, dto.CommentResponse{
			ID:          c.ID,
			AuthorID:    c.AuthorID,
			Visibility:  c.Visibility,
			Body:        c.Body,
			Attachments: attachments,
			CreatedAt:   c.CreatedAt,
		})
	}
	return out
}

func toHistory(entries []domain.HistoryEntry) []dto.HistoryResponse {
	out := make([]dto.HistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.HistoryResponse{
			ID:          e.ID,
			ActorID:     e.ActorID,
			FieldName:   e.FieldName,
			OldValue:    e.OldValue,
			NewValue:    e.NewValue,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}

func toDetail(req *domain.Request, state service.SLAState, comments []domain.Comment, history []domain.HistoryEntry, backend storage.Backend) dto.RequestDetailResponse {
	return dto.RequestDetailResponse{
		ID:              req.ID,
		Kind:            req.Kind,
		Number:          req.Number,
		Subject:         req.Subject,
		Description:     req.Description,
		Status:          req.Status,
		Priority:        req.Priority,
		SubKind:         req.SubKind,
		RequesterID:     req.RequesterID,
		AssigneeID:      req.AssigneeID,
		Channel:         req.Channel,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
		FirstResponseAt: req.FirstResponseAt,
		ResolvedAt:      req.ResolvedAt,
		ClosedAt:        req.ClosedAt,
		SLA:             toSLAState(state),
		Comments:        toComments(comments, backend),
		History:         toHistory(history),
	}
}

func toBulkResult(result *service.BulkResult) dto.BulkResultResponse {
	out := dto.BulkResultResponse{
		SuccessCount: result.SuccessCount,
		ErrorCount:   result.ErrorCount,
	}
	for _, e := range result.Errors {
		out.Errors = append(out.Errors, dto.BulkErrorResponse{RequestID: e.RequestID, Message: e.Message})
	}
	return out
}

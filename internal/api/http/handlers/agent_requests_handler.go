package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-service/internal/api/dto"
	"github.com/spec-kit/request-service/internal/auth"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/registry"
	"github.com/spec-kit/request-service/internal/repository"
	"github.com/spec-kit/request-service/internal/service"
	"github.com/spec-kit/request-service/internal/storage"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// AgentRequestsHandler is the operator surface: queue listing, full detail,
// the unified response operation and the lifecycle transitions.
type AgentRequestsHandler struct {
	requests  *service.RequestService
	responses *service.ResponseService
	lifecycle *service.LifecycleService
	backend   storage.Backend
}

func NewAgentRequestsHandler(requests *service.RequestService, responses *service.ResponseService, lifecycle *service.LifecycleService, backend storage.Backend) *AgentRequestsHandler {
	return &AgentRequestsHandler{requests: requests, responses: responses, lifecycle: lifecycle, backend: backend}
}

func (h *AgentRequestsHandler) List(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return err
	}

	limit, offset := parsePagination(c)
	filter := repository.RequestFilter{Limit: limit, Offset: offset}

	if assignee := c.Query("assignee_id"); assignee != "" {
		filter.AssigneeID = &assignee
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		filter.SearchTerm = &search
	}
	for _, raw := range splitCSV(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.Status(raw))
	}
	for _, raw := range splitCSV(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.Priority(raw))
	}

	requests, err := h.requests.List(c.Context(), kind, filter)
	if err != nil {
		return err
	}
	return c.JSON(toSummaries(requests))
}

// Get returns the full agent view: all comment visibilities plus history.
func (h *AgentRequestsHandler) Get(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return err
	}
	req, err := h.requests.Get(c.Context(), kind, c.Params("id"))
	if err != nil {
		return err
	}
	return h.renderDetail(c, kind, req)
}

// GetByNumber looks a request up by its public number.
func (h *AgentRequestsHandler) GetByNumber(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return err
	}
	req, err := h.requests.GetByNumber(c.Context(), kind, c.Params("number"))
	if err != nil {
		return err
	}
	return h.renderDetail(c, kind, req)
}

func (h *AgentRequestsHandler) renderDetail(c *fiber.Ctx, kind domain.Kind, req *domain.Request) error {
	comments, err := h.requests.Thread(c.Context(), kind, req.ID, false)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)
	history, err := h.requests.History(c.Context(), kind, req.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(toDetail(req, h.requests.SLAStateOf(req), comments, history, h.backend))
}

// Respond executes the unified response operation: comment, optional status
// change and attachments in one submission.
func (h *AgentRequestsHandler) Respond(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return err
	}
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewUnauthorized("not authenticated")
	}

	var body dto.RespondRequest
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	uploads := make([]service.AttachmentUpload, 0, len(body.Attachments))
	for _, a := range body.Attachments {
		uploads = append(uploads, service.AttachmentUpload{
			FileName: a.FileName,
			MimeType: a.MimeType,
			Data:     a.Data,
		})
	}

	result, err := h.responses.ProcessResponse(c.Context(), kind, c.Params("id"), principal.Agent.ID, service.ResponseInput{
		CommentBody:       body.CommentBody,
		CommentVisibility: body.CommentVisibility,
		NewStatus:         body.NewStatus,
	}, uploads)
	if err != nil {
		return err
	}
	return c.JSON(dto.RespondResponse{
		Success:           result.Success,
		Message:           result.Message,
		Request:           toSummary(result.Request),
		AttachmentsSaved:  result.AttachmentsSaved,
		AttachmentsFailed: result.AttachmentsFailed,
	})
}

func (h *AgentRequestsHandler) ChangeStatus(c *fiber.Ctx) error {
	_, desc, req, actorID, err := h.loadForMutation(c)
	if err != nil {
		return err
	}

	var body dto.StatusChangeRequest
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := h.lifecycle.ChangeStatus(c.Context(), desc, req, body.Status, &actorID, body.Note, true); err != nil {
		return err
	}
	return c.JSON(toSummary(req))
}

func (h *AgentRequestsHandler) ChangePriority(c *fiber.Ctx) error {
	_, desc, req, actorID, err := h.loadForMutation(c)
	if err != nil {
		return err
	}

	var body dto.PriorityChangeRequest
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := h.lifecycle.ChangePriority(c.Context(), desc, req, body.Priority, &actorID); err != nil {
		return err
	}
	return c.JSON(toSummary(req))
}

func (h *AgentRequestsHandler) Assign(c *fiber.Ctx) error {
	_, desc, req, actorID, err := h.loadForMutation(c)
	if err != nil {
		return err
	}

	var body dto.AssignRequest
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := h.lifecycle.Assign(c.Context(), desc, req, body.AssigneeID, &actorID); err != nil {
		return err
	}
	return c.JSON(toSummary(req))
}

// SelfAssign assigns the request to the calling agent.
func (h *AgentRequestsHandler) SelfAssign(c *fiber.Ctx) error {
	_, desc, req, actorID, err := h.loadForMutation(c)
	if err != nil {
		return err
	}
	if err := h.lifecycle.Assign(c.Context(), desc, req, actorID, &actorID); err != nil {
		return err
	}
	return c.JSON(toSummary(req))
}

func (h *AgentRequestsHandler) BulkAssign(c *fiber.Ctx) error {
	kind, actorID, err := h.bulkPrelude(c)
	if err != nil {
		return err
	}
	var body dto.BulkAssignRequest
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if len(body.RequestIDs) == 0 {
		return apperrors.NewValidationError("request_ids required", nil)
	}
	result, err := h.lifecycle.BulkAssign(c.Context(), kind, body.RequestIDs, body.AssigneeID, &actorID)
	if err != nil {
		return err
	}
	return c.Status(bulkStatus(result)).JSON(toBulkResult(result))
}

func (h *AgentRequestsHandler) BulkChangePriority(c *fiber.Ctx) error {
	kind, actorID, err := h.bulkPrelude(c)
	if err != nil {
		return err
	}
	var body dto.BulkPriorityRequest
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if len(body.RequestIDs) == 0 {
		return apperrors.NewValidationError("request_ids required", nil)
	}
	result, err := h.lifecycle.BulkChangePriority(c.Context(), kind, body.RequestIDs, body.Priority, &actorID)
	if err != nil {
		return err
	}
	return c.Status(bulkStatus(result)).JSON(toBulkResult(result))
}

func (h *AgentRequestsHandler) BulkChangeStatus(c *fiber.Ctx) error {
	kind, actorID, err := h.bulkPrelude(c)
	if err != nil {
		return err
	}
	var body dto.BulkStatusRequest
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if len(body.RequestIDs) == 0 {
		return apperrors.NewValidationError("request_ids required", nil)
	}
	result, err := h.lifecycle.BulkChangeStatus(c.Context(), kind, body.RequestIDs, body.Status, &actorID)
	if err != nil {
		return err
	}
	return c.Status(bulkStatus(result)).JSON(toBulkResult(result))
}

func (h *AgentRequestsHandler) loadForMutation(c *fiber.Ctx) (domain.Kind, registry.Descriptor, *domain.Request, string, error) {
	kind, err := parseKind(c)
	if err != nil {
		return "", registry.Descriptor{}, nil, "", err
	}
	desc, err := registry.Resolve(kind)
	if err != nil {
		return "", registry.Descriptor{}, nil, "", err
	}
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return "", registry.Descriptor{}, nil, "", apperrors.NewUnauthorized("not authenticated")
	}
	req, err := h.requests.Get(c.Context(), kind, c.Params("id"))
	if err != nil {
		return "", registry.Descriptor{}, nil, "", err
	}
	return kind, desc, req, principal.Agent.ID, nil
}

func (h *AgentRequestsHandler) bulkPrelude(c *fiber.Ctx) (domain.Kind, string, error) {
	kind, err := parseKind(c)
	if err != nil {
		return "", "", err
	}
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return "", "", apperrors.NewUnauthorized("not authenticated")
	}
	return kind, principal.Agent.ID, nil
}

// bulkStatus reports 200 when everything succeeded, 207 when the batch was
// mixed or fully failed.
func bulkStatus(result *service.BulkResult) int {
	if result.ErrorCount == 0 {
		return http.StatusOK
	}
	return http.StatusMultiStatus
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

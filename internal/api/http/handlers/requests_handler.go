package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-service/internal/api/dto"
	"github.com/spec-kit/request-service/internal/auth"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/repository"
	"github.com/spec-kit/request-service/internal/service"
	"github.com/spec-kit/request-service/internal/storage"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// RequestsHandler is the requester-facing surface: create requests, list own
// requests, read the public thread and reply to it.
type RequestsHandler struct {
	requests  *service.RequestService
	responses *service.ResponseService
	backend   storage.Backend
}

func NewRequestsHandler(requests *service.RequestService, responses *service.ResponseService, backend storage.Backend) *RequestsHandler {
	return &RequestsHandler{requests: requests, responses: responses, backend: backend}
}

func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return err
	}
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("not authenticated")
	}

	var body dto.CreateRequestRequest
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	req, err := h.requests.Create(c.Context(), service.CreateRequestInput{
		Kind:        kind,
		Subject:     body.Subject,
		Description: body.Description,
		Priority:    body.Priority,
		SubKind:     body.SubKind,
		Channel:     body.Channel,
		RequesterID: principal.User.ID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toSummary(req))
}

func (h *RequestsHandler) List(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return err
	}
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("not authenticated")
	}

	limit, offset := parsePagination(c)
	requesterID := principal.User.ID
	requests, err := h.requests.List(c.Context(), kind, repository.RequestFilter{
		RequesterID: &requesterID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(toSummaries(requests))
}

// Get returns the requester's view of one request: public comments only,
// full history.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	kind, req, err := h.ownRequest(c)
	if err != nil {
		return err
	}

	comments, err := h.requests.Thread(c.Context(), kind, req.ID, true)
	if err != nil {
		return err
	}
	history, err := h.requests.History(c.Context(), kind, req.ID, 50, 0)
	if err != nil {
		return err
	}
	return c.JSON(toDetail(req, h.requests.SLAStateOf(req), comments, history, h.backend))
}

// AddComment posts a public reply on the requester's own request. It runs
// through the same response pipeline agents use, so first-response stamping
// and notification routing stay in one place.
func (h *RequestsHandler) AddComment(c *fiber.Ctx) error {
	kind, req, err := h.ownRequest(c)
	if err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromContext(c)

	var body dto.CommentRequest
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	result, err := h.responses.ProcessResponse(c.Context(), kind, req.ID, principal.User.ID, service.ResponseInput{
		CommentBody:       body.Body,
		CommentVisibility: domain.VisibilityPublic,
	}, nil)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": result.Message})
}

// ownRequest loads the request and enforces ownership. Foreign requests are
// indistinguishable from missing ones.
func (h *RequestsHandler) ownRequest(c *fiber.Ctx) (domain.Kind, *domain.Request, error) {
	kind, err := parseKind(c)
	if err != nil {
		return "", nil, err
	}
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return "", nil, apperrors.NewUnauthorized("not authenticated")
	}
	req, err := h.requests.Get(c.Context(), kind, c.Params("id"))
	if err != nil {
		return "", nil, err
	}
	if req.RequesterID != principal.User.ID {
		return "", nil, apperrors.NewNotFound("request", map[string]any{"id": c.Params("id")})
	}
	return kind, req, nil
}

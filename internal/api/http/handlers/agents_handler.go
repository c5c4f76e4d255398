package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-service/internal/api/dto"
	"github.com/spec-kit/request-service/internal/auth"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/repository"
	"github.com/spec-kit/request-service/internal/service"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// AgentsHandler covers operator login, profile and the agent directory used
// by assignment pickers.
type AgentsHandler struct {
	auth   *service.AuthService
	agents repository.AgentRepository
}

func NewAgentsHandler(authService *service.AuthService, agents repository.AgentRepository) *AgentsHandler {
	return &AgentsHandler{auth: authService, agents: agents}
}

func (h *AgentsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	_, token, err := h.auth.LoginAgent(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenResponse{Token: token.Token, ExpiresAt: token.ExpiresAt.Unix()})
}

func (h *AgentsHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewUnauthorized("not authenticated")
	}
	return c.JSON(toAgentResponse(principal.Agent))
}

func (h *AgentsHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewUnauthorized("not authenticated")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := h.auth.ChangeAgentPassword(c.Context(), principal.Agent.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}

// List returns active agents for assignment pickers.
func (h *AgentsHandler) List(c *fiber.Ctx) error {
	agents, err := h.agents.List(c.Context(), true)
	if err != nil {
		return apperrors.MapError(err)
	}
	out := make([]dto.AgentResponse, 0, len(agents))
	for i := range agents {
		out = append(out, toAgentResponse(&agents[i]))
	}
	return c.JSON(out)
}

func toAgentResponse(agent *domain.Agent) dto.AgentResponse {
	return dto.AgentResponse{
		ID:     agent.ID,
		Name:   agent.Name,
		Email:  agent.Email,
		Role:   agent.Role,
		Active: agent.Active,
	}
}

package dto

import "github.com/spec-kit/request-service/internal/domain"

// AgentResponse projects an agent account.
type AgentResponse struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Email  string           `json:"email"`
	Role   domain.AgentRole `json:"role"`
	Active bool             `json:"active"`
}

// ChangePasswordRequest rotates the authenticated agent's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

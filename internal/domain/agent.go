package domain

import "time"

// AgentRole enumerates internal operator roles.
type AgentRole string

const (
	AgentRoleAgent AgentRole = "AGENT"
	AgentRoleAdmin AgentRole = "ADMIN"
)

// Agent models an operator who works requests.
type Agent struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         AgentRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UnassignedLabel is the sentinel shown in audit descriptions when a request
// has no assignee or an assignee that no longer resolves.
const UnassignedLabel = "Sin asignar"

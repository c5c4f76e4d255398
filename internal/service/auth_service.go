package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/request-service/internal/auth"
	"github.com/spec-kit/request-service/internal/config"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/repository"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// AuthService handles requester and agent authentication.
type AuthService struct {
	users      repository.UserRepository
	agents     repository.AgentRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

// AuthDependencies bundles repositories for the auth service.
type AuthDependencies struct {
	UserRepo  repository.UserRepository
	AgentRepo repository.AgentRepository
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		agents:     deps.AgentRepo,
		tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// IssuedToken carries a signed token with its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// RegisterUser creates a requester account.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || len(password) < 8 {
		return nil, apperrors.NewValidationError("name, email and a password of at least 8 characters are required", nil)
	}
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// LoginUser authenticates a requester and issues a token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.User, *IssuedToken, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if user.Status != domain.UserStatusActive {
		return nil, nil, apperrors.NewForbidden("account suspended")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, domain.SubjectTypeUser, nil)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return user, &IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

// LoginAgent authenticates an operator and issues a token.
func (s *AuthService) LoginAgent(ctx context.Context, email, password string) (*domain.Agent, *IssuedToken, error) {
	agent, err := s.agents.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !agent.Active {
		return nil, nil, apperrors.NewForbidden("account disabled")
	}
	if err := auth.ComparePassword(agent.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	role := agent.Role
	token, expiresAt, err := s.tokens.GenerateToken(agent.ID, domain.SubjectTypeAgent, &role)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return agent, &IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

// ChangeAgentPassword rotates an agent's password after verifying the
// current one.
func (s *AuthService) ChangeAgentPassword(ctx context.Context, agentID, current, next string) error {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(agent.PasswordHash, current); err != nil {
		return apperrors.NewUnauthorized("current password incorrect")
	}
	if len(next) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.agents.UpdatePassword(ctx, agentID, hash); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/spec-kit/request-service/internal/api/http/handlers"
	"github.com/spec-kit/request-service/internal/auth"
	"github.com/spec-kit/request-service/internal/config"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/observability"
)

// Dependencies bundles everything the HTTP surface needs.
type Dependencies struct {
	Config         *config.Config
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware

	Health        *handlers.HealthHandler
	Users         *handlers.UsersHandler
	Agents        *handlers.AgentsHandler
	Requests      *handlers.RequestsHandler
	AgentRequests *handlers.AgentRequestsHandler
	Settings      *handlers.SettingsHandler
}

// NewApp builds the fiber application with all routes registered.
func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      deps.Config.App.Name,
		ErrorHandler: NewErrorHandler(deps.Logger, deps.Metrics),
		ReadTimeout:  deps.Config.App.RequestTimeout(),
		WriteTimeout: deps.Config.App.RequestTimeout(),
		// Attachments arrive base64-encoded inside the JSON body.
		BodyLimit: int(deps.Config.Storage.MaxSizeBytes*2) + 1<<20,
	})

	app.Use(recover.New())
	app.Use(observability.RequestLogger(deps.Logger, deps.Metrics))

	app.Get("/health/live", deps.Health.Live)
	app.Get("/health/ready", deps.Health.Ready)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/users/register", deps.Users.Register)
	authGroup.Post("/users/login", deps.Users.Login)
	authGroup.Post("/agents/login", deps.Agents.Login)

	protected := api.Group("", deps.AuthMiddleware.Handle)
	protected.Get("/me/user", auth.RequireUser(), deps.Users.Me)
	protected.Get("/me/agent", auth.RequireAgentRole(), deps.Agents.Me)
	protected.Get("/agents", auth.RequireAgentRole(), deps.Agents.List)
	protected.Post("/agents/password", auth.RequireAgentRole(), deps.Agents.ChangePassword)

	// Requester surface. The :kind segment selects tickets, complaints or
	// purchase-requests.
	requester := api.Group("/requests/:kind", deps.AuthMiddleware.Handle, auth.RequireUser())
	requester.Post("/", deps.Requests.Create)
	requester.Get("/", deps.Requests.List)
	requester.Get("/:id", deps.Requests.Get)
	requester.Post("/:id/comments", deps.Requests.AddComment)

	// Operator surface.
	agent := api.Group("/agent/requests/:kind", deps.AuthMiddleware.Handle, auth.RequireAgentRole())
	agent.Get("/", deps.AgentRequests.List)
	agent.Post("/bulk/assign", deps.AgentRequests.BulkAssign)
	agent.Post("/bulk/priority", deps.AgentRequests.BulkChangePriority)
	agent.Post("/bulk/status", deps.AgentRequests.BulkChangeStatus)
	agent.Get("/by-number/:number", deps.AgentRequests.GetByNumber)
	agent.Get("/:id", deps.AgentRequests.Get)
	agent.Post("/:id/response", deps.AgentRequests.Respond)
	agent.Patch("/:id/status", deps.AgentRequests.ChangeStatus)
	agent.Patch("/:id/priority", deps.AgentRequests.ChangePriority)
	agent.Patch("/:id/assignee", deps.AgentRequests.Assign)
	agent.Post("/:id/assignee/self", deps.AgentRequests.SelfAssign)

	admin := api.Group("/admin", deps.AuthMiddleware.Handle, auth.RequireAgentRole(domain.AgentRoleAdmin))
	admin.Get("/settings", deps.Settings.Get)
	admin.Post("/settings/reload", deps.Settings.Reload)

	return app
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/crmkit/crm-authz/internal/api/http/handlers"
	"github.com/crmkit/crm-authz/internal/auth"
	"github.com/crmkit/crm-authz/internal/domain"
	"github.com/crmkit/crm-authz/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Policy         *handlers.PolicyHandler
	Session        *handlers.SessionHandler
	AuthMiddleware *auth.AuthMiddleware
	Enforcer       *auth.Enforcer
	RefreshLimiter *auth.RateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	v1 := app.Group("/v1", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())

	me := v1.Group("/me")
	me.Get("/capabilities", cfg.Policy.Capabilities)
	me.Get("/dashboard", cfg.Policy.Dashboard)
	me.Get("/scope", cfg.Policy.Scope)

	users := v1.Group("/users")
	users.Get("/:user_id/manageable", cfg.Policy.CanManageUser)
	users.Get("/:user_id/assignable", cfg.Policy.CanAssign)

	teams := v1.Group("/teams")
	teams.Get("/:team_id/access", cfg.Policy.TeamAccess)
	teams.Get("/:team_id/members", cfg.Enforcer.RequireTeamAccess(), cfg.Policy.TeamMembers)

	pipeline := v1.Group("/pipeline")
	pipeline.Get("/vocabulary", cfg.Policy.Vocabulary)
	pipeline.Post("/normalize", cfg.Policy.Normalize)
	pipeline.Post("/transition", cfg.Policy.Transition)

	v1.Post("/session/refresh", cfg.RefreshLimiter.Handle, cfg.Session.Refresh)
	v1.Delete("/session/cache", cfg.Enforcer.RequireCapability(domain.CapManageUsers), cfg.Session.Invalidate)
}

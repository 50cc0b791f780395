package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/crmkit/crm-authz/internal/domain"
	"github.com/crmkit/crm-authz/internal/events"
	"github.com/crmkit/crm-authz/internal/observability"
	"github.com/crmkit/crm-authz/internal/policy"
	apperrors "github.com/crmkit/crm-authz/pkg/util/errorutil"
)

// Enforcer gates routes on evaluator decisions.
type Enforcer struct {
	evaluator  *policy.Evaluator
	resolver   SnapshotResolver
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// NewEnforcer builds an enforcer. dispatcher and metrics may be nil.
func NewEnforcer(evaluator *policy.Evaluator, resolver SnapshotResolver, dispatcher events.Dispatcher, metrics *observability.Metrics) *Enforcer {
	return &Enforcer{evaluator: evaluator, resolver: resolver, dispatcher: dispatcher, metrics: metrics}
}

// RequireCapability allows the request only when the principal holds capability.
// Destructive capabilities are decided on a freshly resolved snapshot.
func (e *Enforcer) RequireCapability(capability domain.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}

		if capability.Destructive() {
			snapshot, err := e.resolver.Resolve(c.UserContext(), principal.User.ID, true)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidContext) {
					publishRejected(c, e.dispatcher, principal.User.ID, principal.TokenOrganizationID, err)
					return apperrors.NewInvalidContext(err)
				}
				return apperrors.MapError(err)
			}
			if err := checkOrganization(principal.TokenOrganizationID, snapshot); err != nil {
				publishRejected(c, e.dispatcher, principal.User.ID, principal.TokenOrganizationID, err)
				return apperrors.NewInvalidContext(err)
			}
			principal = &Principal{
				User:                snapshot.User,
				Teams:               snapshot.Teams,
				TokenOrganizationID: principal.TokenOrganizationID,
			}
			c.Locals(principalKey, principal)
		}

		allowed := e.evaluator.Can(principal.User, capability)
		e.metrics.RecordDecision(capability, allowed)
		if !allowed {
			e.denied(c, principal.User, capability)
			return apperrors.NewPermissionDenied(string(capability))
		}
		return c.Next()
	}
}

// RequireTeamAccess checks the :team_id route parameter against the principal's team data access.
func (e *Enforcer) RequireTeamAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		teamID := c.Params("team_id")
		if !e.evaluator.CanAccessTeamData(principal.User, teamID, principal.Teams) {
			return apperrors.NewForbidden("team data not accessible")
		}
		return c.Next()
	}
}

func (e *Enforcer) denied(c *fiber.Ctx, user *domain.UserContext, capability domain.Capability) {
	if e.dispatcher == nil {
		return
	}
	_ = e.dispatcher.Publish(c.UserContext(), events.Event{
		Type:           events.EventCapabilityDenied,
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Payload: events.CapabilityDeniedPayload{
			Capability: capability,
			Role:       user.Role,
			Method:     c.Method(),
			Path:       c.Path(),
		},
	})
}

// RequireAnyRole ensures caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}

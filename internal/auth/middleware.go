package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/crmkit/crm-authz/internal/domain"
	"github.com/crmkit/crm-authz/internal/events"
	"github.com/crmkit/crm-authz/internal/policy"
	"github.com/crmkit/crm-authz/internal/session"
	apperrors "github.com/crmkit/crm-authz/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User  *domain.UserContext
	Teams *policy.TeamIndex
	// TokenOrganizationID is the org claim the caller presented; every snapshot
	// swapped in later must still match it.
	TokenOrganizationID string
}

var errOrganizationMismatch = errors.New("token organization does not match directory")

// checkOrganization rejects a snapshot whose directory org differs from the token's.
func checkOrganization(tokenOrg string, snapshot *session.Snapshot) error {
	if tokenOrg != "" && tokenOrg != snapshot.User.OrganizationID {
		return errOrganizationMismatch
	}
	return nil
}

// SnapshotResolver loads evaluable snapshots; *session.Resolver satisfies it.
type SnapshotResolver interface {
	Resolve(ctx context.Context, userID string, fresh bool) (*session.Snapshot, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens     *TokenManager
	resolver   SnapshotResolver
	dispatcher events.Dispatcher
}

// NewAuthMiddleware constructs middleware. dispatcher may be nil.
func NewAuthMiddleware(tokens *TokenManager, resolver SnapshotResolver, dispatcher events.Dispatcher) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, resolver: resolver, dispatcher: dispatcher}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	snapshot, err := m.resolver.Resolve(c.UserContext(), claims.UserID, false)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidContext) {
			m.rejected(c, claims, err)
			return apperrors.NewInvalidContext(err)
		}
		return apperrors.MapError(err)
	}
	if err := checkOrganization(claims.OrganizationID, snapshot); err != nil {
		m.rejected(c, claims, err)
		return apperrors.NewInvalidContext(err)
	}

	c.Locals(principalKey, &Principal{
		User:                snapshot.User,
		Teams:               snapshot.Teams,
		TokenOrganizationID: claims.OrganizationID,
	})
	return c.Next()
}

func (m *AuthMiddleware) rejected(c *fiber.Ctx, claims *Claims, cause error) {
	publishRejected(c, m.dispatcher, claims.UserID, claims.OrganizationID, cause)
}

func publishRejected(c *fiber.Ctx, dispatcher events.Dispatcher, userID, organizationID string, cause error) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(c.UserContext(), events.Event{
		Type:           events.EventContextRejected,
		UserID:         userID,
		OrganizationID: organizationID,
		Payload:        events.ContextRejectedPayload{Reason: cause.Error(), Path: c.Path()},
	})
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

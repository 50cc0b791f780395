package service

import (
	"context"
	"time"

	"github.com/crmkit/crm-authz/internal/auth"
	"github.com/crmkit/crm-authz/internal/config"
	"github.com/crmkit/crm-authz/internal/domain"
	"github.com/crmkit/crm-authz/internal/events"
	"github.com/crmkit/crm-authz/internal/session"
	apperrors "github.com/crmkit/crm-authz/pkg/util/errorutil"
)

// SessionStore resolves and drops principal snapshots; *session.Resolver satisfies it.
type SessionStore interface {
	Resolve(ctx context.Context, userID string, fresh bool) (*session.Snapshot, error)
	Invalidate(ctx context.Context, userID, organizationID string)
}

// SessionService issues tokens and manages cached snapshots.
type SessionService struct {
	sessions   SessionStore
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
}

// SessionDependencies encapsulates collaborators for the session service.
type SessionDependencies struct {
	Sessions   SessionStore
	Dispatcher events.Dispatcher
}

// NewSessionService builds the service.
func NewSessionService(cfg config.Config, deps SessionDependencies) *SessionService {
	return &SessionService{
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
	}
}

// Refresh re-reads the caller from the directory and issues a new token for
// the organization the directory reports.
func (s *SessionService) Refresh(ctx context.Context, userID string) (*domain.UserContext, string, time.Time, error) {
	snapshot, err := s.sessions.Resolve(ctx, userID, true)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, exp, err := s.tokenMgr.GenerateToken(snapshot.User.ID, snapshot.User.OrganizationID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return snapshot.User, token, exp, nil
}

// Invalidate drops the cached snapshot of targetUserID within the actor's organization.
func (s *SessionService) Invalidate(ctx context.Context, actor *domain.UserContext, targetUserID string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if targetUserID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}

	s.sessions.Invalidate(ctx, targetUserID, actor.OrganizationID)
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:           events.EventSnapshotInvalidated,
			UserID:         actor.ID,
			OrganizationID: actor.OrganizationID,
			Payload:        events.SnapshotInvalidatedPayload{TargetUserID: targetUserID},
		})
	}
	return nil
}

// TokenManager exposes the token helper for middleware setup.
func (s *SessionService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

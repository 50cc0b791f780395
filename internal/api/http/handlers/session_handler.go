package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crmkit/crm-authz/internal/service"
)

// SessionHandler manages tokens and cached principal snapshots.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Refresh POST /v1/session/refresh.
func (h *SessionHandler) Refresh(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	user, token, exp, err := h.sessions.Refresh(c.UserContext(), p.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"access_token":    token,
		"expires_at":      exp,
		"role":            user.Role,
		"organization_id": user.OrganizationID,
	}})
}

// Invalidate DELETE /v1/session/cache?user_id=...
// Without user_id the caller's own snapshot is dropped.
func (h *SessionHandler) Invalidate(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Invalidate(c.UserContext(), p.User, c.Query("user_id", p.User.ID)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

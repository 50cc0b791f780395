package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"github.com/crmkit/crm-authz/internal/domain"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"invalid context", fmt.Errorf("resolve: %w", domain.ErrInvalidContext), "INVALID_CONTEXT", http.StatusUnauthorized},
		{"no rows", fmt.Errorf("query: %w", pgx.ErrNoRows), "NOT_FOUND", http.StatusNotFound},
		{"domain passthrough", NewPermissionDenied("delete_calls"), "FORBIDDEN", http.StatusForbidden},
		{"fiber not found", fiber.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{"fiber unauthorized", fiber.NewError(http.StatusUnauthorized, "nope"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))
}

func TestPermissionDeniedNamesAction(t *testing.T) {
	err := ToDomainError(NewPermissionDenied("create_tickets"))
	assert.Equal(t, "permission denied: create_tickets", err.Message)
	assert.Equal(t, "create_tickets", err.Details["action"])
}

func TestInvalidContextUnwraps(t *testing.T) {
	err := MapError(fmt.Errorf("%w: unknown role", domain.ErrInvalidContext))
	assert.ErrorIs(t, err, domain.ErrInvalidContext)
}

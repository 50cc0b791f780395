package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/crmkit/crm-authz/internal/domain"
)

// IdentityRepository reads principal records from the identity source.
type IdentityRepository interface {
	GetIdentity(ctx context.Context, userID string) (*domain.Identity, error)
}

type identityRepository struct {
	db  DBTX
	now func() time.Time
}

// NewIdentityRepository constructs the repository.
func NewIdentityRepository(db DBTX) IdentityRepository {
	return &identityRepository{db: db, now: time.Now}
}

func (r *identityRepository) GetIdentity(ctx context.Context, userID string) (*domain.Identity, error) {
	const query = `
        SELECT id, role, COALESCE(organization_id, ''), permissions, is_active
        FROM users WHERE id=$1`

	var identity domain.Identity
	if err := r.db.QueryRow(ctx, query, userID).Scan(
		&identity.UserID,
		&identity.Role,
		&identity.OrganizationID,
		&identity.Permissions,
		&identity.Active,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s: %w", domain.ErrInvalidContext, userID, err)
		}
		return nil, err
	}
	identity.FetchedAt = r.now().UTC()
	return &identity, nil
}

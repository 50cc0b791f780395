package repository

import (
	"context"

	"github.com/crmkit/crm-authz/internal/domain"
)

// TeamRepository reads the team directory.
type TeamRepository interface {
	ListByOrganization(ctx context.Context, organizationID string) ([]domain.Team, error)
}

type teamRepository struct {
	db DBTX
}

// NewTeamRepository constructs repository.
func NewTeamRepository(db DBTX) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) ListByOrganization(ctx context.Context, organizationID string) ([]domain.Team, error) {
	const query = `
        SELECT t.id, t.organization_id, t.name,
               COALESCE(array_agg(m.user_id ORDER BY m.user_id) FILTER (WHERE m.role = 'member'), '{}') AS member_ids,
               COALESCE(array_agg(m.user_id ORDER BY m.user_id) FILTER (WHERE m.role = 'manager'), '{}') AS manager_ids
        FROM teams t
        LEFT JOIN team_members m ON m.team_id = t.id
        WHERE t.organization_id=$1 AND t.is_active=TRUE
        GROUP BY t.id, t.organization_id, t.name
        ORDER BY t.id`
	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.OrganizationID, &team.Name, &team.MemberUserIDs, &team.ManagerUserIDs); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}

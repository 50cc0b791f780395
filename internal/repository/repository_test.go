package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmkit/crm-authz/internal/domain"
)

func TestGetIdentity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo := &identityRepository{db: mock, now: func() time.Time { return fixed }}

	mock.ExpectQuery(`SELECT id, role, (.+) FROM users WHERE id=\$1`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "role", "organization_id", "permissions", "is_active"}).
			AddRow("u1", "manager", "org-1", []string{"export_reports"}, true))

	identity, err := repo.GetIdentity(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, &domain.Identity{
		UserID:         "u1",
		Role:           "manager",
		OrganizationID: "org-1",
		Permissions:    []string{"export_reports"},
		Active:         true,
		FetchedAt:      fixed,
	}, identity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetIdentityNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM users`).WithArgs("ghost").WillReturnError(pgx.ErrNoRows)

	_, err = NewIdentityRepository(mock).GetIdentity(context.Background(), "ghost")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.ErrorIs(t, err, domain.ErrInvalidContext)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOrganization(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM teams t\s+LEFT JOIN team_members`).
		WithArgs("org-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "organization_id", "name", "member_ids", "manager_ids"}).
			AddRow("t1", "org-1", "Inbound", []string{"a1", "a2"}, []string{"m1"}).
			AddRow("t2", "org-1", "Outbound", []string{}, []string{"m1", "m2"}))

	teams, err := NewTeamRepository(mock).ListByOrganization(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, domain.Team{
		ID: "t1", OrganizationID: "org-1", Name: "Inbound",
		MemberUserIDs: []string{"a1", "a2"}, ManagerUserIDs: []string{"m1"},
	}, teams[0])
	assert.Equal(t, []string{"m1", "m2"}, teams[1].ManagerUserIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOrganizationQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM teams`).WithArgs("org-1").WillReturnError(errors.New("connection reset"))

	_, err = NewTeamRepository(mock).ListByOrganization(context.Background(), "org-1")
	assert.EqualError(t, err, "connection reset")
}

func TestUnavailableDirectory(t *testing.T) {
	db := Unavailable()
	_, err := NewIdentityRepository(db).GetIdentity(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
	assert.NotErrorIs(t, err, domain.ErrInvalidContext)

	_, err = NewTeamRepository(db).ListByOrganization(context.Background(), "org-1")
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
}

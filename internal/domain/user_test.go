package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserContextRejectsUnknownRole(t *testing.T) {
	for _, raw := range []string{"", "owner", "admin", "super-admin"} {
		_, err := NewUserContext(UserContextInput{ID: "u1", Role: raw})
		require.ErrorIsf(t, err, ErrInvalidContext, "role %q", raw)
	}
}

func TestNewUserContextRequiresID(t *testing.T) {
	_, err := NewUserContext(UserContextInput{ID: "  ", Role: "agent"})
	assert.ErrorIs(t, err, ErrInvalidContext)
}

func TestNewUserContextNormalizes(t *testing.T) {
	user, err := NewUserContext(UserContextInput{
		ID:             " u1 ",
		Role:           " Manager ",
		OrganizationID: "org-1",
		Permissions:    []string{"EXPORT_REPORTS", "fly", ""},
		TeamIDs:        []string{"t1", " ", "t2"},
		ManagedTeamIDs: []string{"t3"},
	})
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, RoleManager, user.Role)
	assert.True(t, user.HasPermission(CapExportReports))
	assert.Len(t, user.Permissions, 1)
	assert.True(t, user.InTeam("t2"))
	assert.False(t, user.InTeam(""))
	assert.Len(t, user.TeamIDs, 2)
	assert.True(t, user.ManagesTeam("t3"))
	assert.False(t, user.ManagesTeam("t1"))
}

func TestNilUserContextLookups(t *testing.T) {
	var user *UserContext
	assert.False(t, user.HasPermission(CapViewTickets))
	assert.False(t, user.InTeam("t1"))
	assert.False(t, user.ManagesTeam("t1"))
}

func TestCapabilitySet(t *testing.T) {
	all := AllCapabilities()
	assert.Len(t, all, 28)
	seen := map[Capability]bool{}
	for _, c := range all {
		assert.True(t, c.Valid())
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
	}
	assert.False(t, Capability("fly").Valid())
	assert.True(t, CapDeleteTickets.Destructive())
	assert.True(t, CapManageOrgSettings.Destructive())
	assert.False(t, CapEditTickets.Destructive())
}

func TestRoleHelpers(t *testing.T) {
	role, err := ParseRole("ORG_ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleOrgAdmin, role)
	assert.True(t, role.IsOrgAdmin())
	assert.True(t, RoleSuperAdmin.IsOrgAdmin())
	assert.False(t, RoleManager.IsOrgAdmin())
	assert.Len(t, Roles(), 5)
}

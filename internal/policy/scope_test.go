package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crmkit/crm-authz/internal/domain"
)

func TestAccessScopeFor(t *testing.T) {
	ev := New()
	admin := mustUser(t, domain.UserContextInput{ID: "a", Role: "org_admin", OrganizationID: "org"})
	manager := mustUser(t, domain.UserContextInput{ID: "m", Role: "manager", OrganizationID: "org", ManagedTeamIDs: []string{"t2", "t1"}})
	homed := mustUser(t, domain.UserContextInput{ID: "h", Role: "manager", OrganizationID: "org", TeamIDs: []string{"t3", "t1"}, ManagedTeamIDs: []string{"t1"}})
	agent := mustUser(t, domain.UserContextInput{ID: "g", Role: "agent", OrganizationID: "org", TeamIDs: []string{"t1"}})

	assert.Equal(t, AccessScope{UserID: "a", OrganizationID: "org", All: true}, ev.AccessScopeFor(admin))
	assert.Equal(t, AccessScope{UserID: "m", OrganizationID: "org", Team: true, TeamIDs: []string{"t1", "t2"}}, ev.AccessScopeFor(manager))
	assert.Equal(t, AccessScope{UserID: "h", OrganizationID: "org", Team: true, TeamIDs: []string{"t1", "t3"}}, ev.AccessScopeFor(homed))
	assert.Equal(t, AccessScope{UserID: "g", OrganizationID: "org"}, ev.AccessScopeFor(agent))
	assert.Equal(t, AccessScope{}, ev.AccessScopeFor(nil))
}

func TestCanAccessOrganization(t *testing.T) {
	ev := New()
	root := mustUser(t, domain.UserContextInput{ID: "r", Role: "super_admin", OrganizationID: "org-a"})
	admin := mustUser(t, domain.UserContextInput{ID: "a", Role: "org_admin", OrganizationID: "org-a"})
	orphan := mustUser(t, domain.UserContextInput{ID: "o", Role: "agent"})

	assert.True(t, ev.CanAccessOrganization(root, "org-b"))
	assert.True(t, ev.CanAccessOrganization(admin, "org-a"))
	assert.False(t, ev.CanAccessOrganization(admin, "org-b"))
	assert.False(t, ev.CanAccessOrganization(admin, ""))
	assert.False(t, ev.CanAccessOrganization(orphan, ""))
	assert.False(t, ev.CanAccessOrganization(nil, "org-a"))
}

func TestCanAccessRecord(t *testing.T) {
	ev := New()
	manager := mustUser(t, domain.UserContextInput{ID: "m", Role: "manager", OrganizationID: "org", ManagedTeamIDs: []string{"t1"}})
	agent := mustUser(t, domain.UserContextInput{ID: "g", Role: "agent", OrganizationID: "org"})
	admin := mustUser(t, domain.UserContextInput{ID: "a", Role: "org_admin", OrganizationID: "org"})

	teamTicket := RecordRef{OrganizationID: "org", TeamID: "t1", AssignedTo: "x", CreatedBy: "y"}
	ownTicket := RecordRef{OrganizationID: "org", TeamID: "t2", AssignedTo: "g"}
	foreign := RecordRef{OrganizationID: "other", AssignedTo: "g"}

	assert.True(t, ev.CanAccessRecord(manager, teamTicket))
	assert.False(t, ev.CanAccessRecord(manager, ownTicket))

	// a manager's home team is in scope even when someone else manages it
	homed := mustUser(t, domain.UserContextInput{ID: "h", Role: "manager", OrganizationID: "org", TeamIDs: []string{"t2"}})
	assert.True(t, ev.CanAccessRecord(homed, ownTicket))
	assert.False(t, ev.CanAccessRecord(homed, teamTicket))
	assert.True(t, ev.CanAccessRecord(agent, ownTicket))
	assert.False(t, ev.CanAccessRecord(agent, teamTicket))
	assert.False(t, ev.CanAccessRecord(agent, foreign))
	assert.True(t, ev.CanAccessRecord(admin, teamTicket))
	assert.False(t, ev.CanAccessRecord(admin, foreign))
}

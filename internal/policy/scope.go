package policy

import (
	"sort"

	"github.com/crmkit/crm-authz/internal/domain"
)

// AccessScope describes which records a principal may list.
type AccessScope struct {
	UserID         string   `json:"user_id"`
	OrganizationID string   `json:"organization_id"`
	All            bool     `json:"all"`
	Team           bool     `json:"team"`
	TeamIDs        []string `json:"team_ids,omitempty"`
}

// RecordRef is the ownership metadata of a contact, call log or ticket.
type RecordRef struct {
	OrganizationID string
	TeamID         string
	AssignedTo     string
	CreatedBy      string
}

// AccessScopeFor derives the listing scope: admins see the whole organization,
// managers their home teams plus the teams they manage, everyone else only their
// own records.
func (e *Evaluator) AccessScopeFor(user *domain.UserContext) AccessScope {
	if user == nil {
		return AccessScope{}
	}
	scope := AccessScope{UserID: user.ID, OrganizationID: user.OrganizationID}
	switch {
	case user.Role.IsOrgAdmin():
		scope.All = true
	case user.Role == domain.RoleManager:
		scope.Team = true
		for teamID := range user.TeamIDs {
			scope.TeamIDs = append(scope.TeamIDs, teamID)
		}
		for teamID := range user.ManagedTeamIDs {
			if !user.InTeam(teamID) {
				scope.TeamIDs = append(scope.TeamIDs, teamID)
			}
		}
		sort.Strings(scope.TeamIDs)
	}
	return scope
}

// CanAccessOrganization reports whether user may operate inside orgID.
// Super admins cross organizations; everyone else stays in their own.
func (e *Evaluator) CanAccessOrganization(user *domain.UserContext, orgID string) bool {
	if user == nil || orgID == "" {
		return false
	}
	if user.Role == domain.RoleSuperAdmin {
		return true
	}
	return user.OrganizationID != "" && user.OrganizationID == orgID
}

// CanAccessRecord applies the access scope to a single record.
func (e *Evaluator) CanAccessRecord(user *domain.UserContext, rec RecordRef) bool {
	if !e.CanAccessOrganization(user, rec.OrganizationID) {
		return false
	}
	scope := e.AccessScopeFor(user)
	if scope.All {
		return true
	}
	if rec.AssignedTo == user.ID || rec.CreatedBy == user.ID {
		return true
	}
	return scope.Team && (user.ManagesTeam(rec.TeamID) || user.InTeam(rec.TeamID))
}

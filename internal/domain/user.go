package domain

import (
	"fmt"
	"strings"
)

// UserContext is a read-only snapshot of the evaluated principal.
type UserContext struct {
	ID             string
	Role           Role
	OrganizationID string
	Permissions    map[Capability]struct{}
	TeamIDs        map[string]struct{}
	ManagedTeamIDs map[string]struct{}
}

// UserContextInput carries the raw values supplied by the identity source.
type UserContextInput struct {
	ID             string
	Role           string
	OrganizationID string
	Permissions    []string
	TeamIDs        []string
	ManagedTeamIDs []string
}

// NewUserContext validates input and builds a snapshot. An unknown role is the
// only failure; unknown permission strings are dropped.
func NewUserContext(in UserContextInput) (*UserContext, error) {
	role, err := ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidContext)
	}

	perms := make(map[Capability]struct{}, len(in.Permissions))
	for _, raw := range in.Permissions {
		c := Capability(strings.ToLower(strings.TrimSpace(raw)))
		if c.Valid() {
			perms[c] = struct{}{}
		}
	}

	return &UserContext{
		ID:             id,
		Role:           role,
		OrganizationID: strings.TrimSpace(in.OrganizationID),
		Permissions:    perms,
		TeamIDs:        stringSet(in.TeamIDs),
		ManagedTeamIDs: stringSet(in.ManagedTeamIDs),
	}, nil
}

// HasPermission reports an explicit grant.
func (u *UserContext) HasPermission(c Capability) bool {
	if u == nil {
		return false
	}
	_, ok := u.Permissions[c]
	return ok
}

// InTeam reports membership recorded on the snapshot.
func (u *UserContext) InTeam(teamID string) bool {
	if u == nil || teamID == "" {
		return false
	}
	_, ok := u.TeamIDs[teamID]
	return ok
}

// ManagesTeam reports a manager-of relation recorded on the snapshot.
func (u *UserContext) ManagesTeam(teamID string) bool {
	if u == nil || teamID == "" {
		return false
	}
	_, ok := u.ManagedTeamIDs[teamID]
	return ok
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

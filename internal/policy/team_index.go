package policy

import (
	"sort"

	"github.com/crmkit/crm-authz/internal/domain"
)

// TeamIndex answers membership questions against an immutable team snapshot.
// A nil *TeamIndex is valid and knows no teams.
type TeamIndex struct {
	members   map[string]map[string]struct{}
	managers  map[string]map[string]struct{}
	managedBy map[string][]string
}

// NewTeamIndex builds an index from the team directory's view of an organization.
func NewTeamIndex(teams []domain.Team) *TeamIndex {
	idx := &TeamIndex{
		members:   make(map[string]map[string]struct{}, len(teams)),
		managers:  make(map[string]map[string]struct{}, len(teams)),
		managedBy: make(map[string][]string),
	}
	for _, team := range teams {
		if team.ID == "" {
			continue
		}
		members := ensure(idx.members, team.ID)
		for _, userID := range team.MemberUserIDs {
			if userID != "" {
				members[userID] = struct{}{}
			}
		}
		managers := ensure(idx.managers, team.ID)
		for _, userID := range team.ManagerUserIDs {
			if userID == "" {
				continue
			}
			if _, dup := managers[userID]; dup {
				continue
			}
			managers[userID] = struct{}{}
			idx.managedBy[userID] = append(idx.managedBy[userID], team.ID)
		}
	}
	for userID := range idx.managedBy {
		sort.Strings(idx.managedBy[userID])
	}
	return idx
}

func ensure(m map[string]map[string]struct{}, key string) map[string]struct{} {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	return set
}

// IsMember reports whether userID is a member of teamID.
func (i *TeamIndex) IsMember(teamID, userID string) bool {
	if i == nil {
		return false
	}
	_, ok := i.members[teamID][userID]
	return ok
}

// IsManagerOf reports whether userID manages teamID.
func (i *TeamIndex) IsManagerOf(teamID, userID string) bool {
	if i == nil {
		return false
	}
	_, ok := i.managers[teamID][userID]
	return ok
}

// TeamsManagedBy returns the sorted ids of teams userID manages.
func (i *TeamIndex) TeamsManagedBy(userID string) []string {
	if i == nil {
		return nil
	}
	teams := i.managedBy[userID]
	out := make([]string, len(teams))
	copy(out, teams)
	return out
}

// TeamsOf returns the sorted ids of teams userID is a member of.
func (i *TeamIndex) TeamsOf(userID string) []string {
	if i == nil || userID == "" {
		return nil
	}
	var out []string
	for teamID, members := range i.members {
		if _, ok := members[userID]; ok {
			out = append(out, teamID)
		}
	}
	sort.Strings(out)
	return out
}

// MembersOf returns the sorted member ids of teamID.
func (i *TeamIndex) MembersOf(teamID string) []string {
	if i == nil {
		return nil
	}
	out := make([]string, 0, len(i.members[teamID]))
	for userID := range i.members[teamID] {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out
}

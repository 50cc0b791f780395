package dto

import (
	"github.com/crmkit/crm-authz/internal/domain"
	"github.com/crmkit/crm-authz/internal/policy"
)

// CapabilitiesResponse lists what the caller may do.
type CapabilitiesResponse struct {
	UserID           string               `json:"user_id"`
	Role             domain.Role          `json:"role"`
	OrganizationID   string               `json:"organization_id"`
	Capabilities     []domain.Capability  `json:"capabilities"`
	TeamIDs          []string             `json:"team_ids"`
	ManagedTeamIDs   []string             `json:"managed_team_ids"`
	PrimaryDashboard policy.DashboardKind `json:"primary_dashboard"`
}

// UserDecisionResponse answers a question about a target user.
type UserDecisionResponse struct {
	TargetUserID string `json:"target_user_id"`
	Allowed      bool   `json:"allowed"`
}

// TeamAccessResponse answers team-level questions.
type TeamAccessResponse struct {
	TeamID        string `json:"team_id"`
	CanAccessData bool   `json:"can_access_data"`
	CanManage     bool   `json:"can_manage"`
}

// TeamMembersResponse lists a team's members.
type TeamMembersResponse struct {
	TeamID    string   `json:"team_id"`
	MemberIDs []string `json:"member_ids"`
}

// NormalizeRequest payload.
type NormalizeRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// NormalizeResponse carries the canonical form of a pipeline value.
type NormalizeResponse struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Index int    `json:"index"`
	Label string `json:"label"`
	Known bool   `json:"known"`
}

// TransitionRequest payload.
type TransitionRequest struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// TransitionResponse reports whether a pipeline change is permitted.
type TransitionResponse struct {
	Field   string `json:"field"`
	From    string `json:"from"`
	To      string `json:"to"`
	Allowed bool   `json:"allowed"`
}

// VocabularyField lists the values of one pipeline field.
type VocabularyField struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
	Labels []string `json:"labels"`
}

// VocabularyResponse describes all pipeline fields.
type VocabularyResponse struct {
	UrgentMode string            `json:"urgent_mode"`
	Fields     []VocabularyField `json:"fields"`
}

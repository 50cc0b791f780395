package policy

import "github.com/crmkit/crm-authz/internal/domain"

// DashboardKind selects the landing view for a principal.
type DashboardKind string

const (
	DashboardOrgAdmin DashboardKind = "org_admin"
	DashboardManager  DashboardKind = "manager"
	DashboardAgent    DashboardKind = "agent"
	DashboardViewer   DashboardKind = "viewer"
)

// Section is one panel of a dashboard, shown only when its capability is held.
type Section struct {
	Name       string            `json:"name"`
	Capability domain.Capability `json:"capability"`
}

// Dashboard describes what a dashboard kind renders.
type Dashboard struct {
	Kind     DashboardKind `json:"kind"`
	Title    string        `json:"title"`
	Sections []Section     `json:"sections"`
}

var dashboards = map[DashboardKind]Dashboard{
	DashboardOrgAdmin: {
		Kind:  DashboardOrgAdmin,
		Title: "Organization",
		Sections: []Section{
			{Name: "organization_overview", Capability: domain.CapViewOrgAnalytics},
			{Name: "users", Capability: domain.CapViewUsers},
			{Name: "teams", Capability: domain.CapManageTeams},
			{Name: "call_logs", Capability: domain.CapViewCalls},
			{Name: "tickets", Capability: domain.CapViewTickets},
			{Name: "settings", Capability: domain.CapManageOrgSettings},
		},
	},
	DashboardManager: {
		Kind:  DashboardManager,
		Title: "Team",
		Sections: []Section{
			{Name: "team_performance", Capability: domain.CapViewTeamAnalytics},
			{Name: "team_calls", Capability: domain.CapViewTeamCalls},
			{Name: "lead_assignment", Capability: domain.CapAssignLeads},
			{Name: "tickets", Capability: domain.CapViewTickets},
			{Name: "reports", Capability: domain.CapExportReports},
		},
	},
	DashboardAgent: {
		Kind:  DashboardAgent,
		Title: "My work",
		Sections: []Section{
			{Name: "my_calls", Capability: domain.CapViewCalls},
			{Name: "my_contacts", Capability: domain.CapViewContacts},
			{Name: "my_tickets", Capability: domain.CapViewTickets},
			{Name: "my_performance", Capability: domain.CapViewIndividualPerformance},
		},
	},
	DashboardViewer: {
		Kind:  DashboardViewer,
		Title: "Overview",
		Sections: []Section{
			{Name: "analytics", Capability: domain.CapViewAnalytics},
			{Name: "call_logs", Capability: domain.CapViewCalls},
			{Name: "tickets", Capability: domain.CapViewTickets},
		},
	},
}

// PrimaryDashboardFor resolves the landing dashboard from the role alone, in fixed
// precedence org_admin > manager > agent > viewer; an unknown role means agent.
// Team management rows never promote a non-manager.
func (e *Evaluator) PrimaryDashboardFor(user *domain.UserContext) DashboardKind {
	switch {
	case user == nil:
		return DashboardAgent
	case user.Role.IsOrgAdmin():
		return DashboardOrgAdmin
	case user.Role == domain.RoleManager:
		return DashboardManager
	case user.Role == domain.RoleAgent:
		return DashboardAgent
	case user.Role == domain.RoleViewer:
		return DashboardViewer
	default:
		return DashboardAgent
	}
}

// CanAccessDashboard reports whether user may open the given dashboard.
func (e *Evaluator) CanAccessDashboard(user *domain.UserContext, kind DashboardKind) bool {
	if user == nil {
		return false
	}
	admin := user.Role.IsOrgAdmin()
	manager := user.Role == domain.RoleManager
	switch kind {
	case DashboardOrgAdmin:
		return admin
	case DashboardManager:
		return admin || manager
	case DashboardAgent:
		return admin || manager || user.Role == domain.RoleAgent
	case DashboardViewer:
		return user.Role == domain.RoleViewer
	}
	return false
}

// DashboardFor returns the user's primary dashboard with sections the user
// cannot see removed.
func (e *Evaluator) DashboardFor(user *domain.UserContext) Dashboard {
	base := dashboards[e.PrimaryDashboardFor(user)]
	out := Dashboard{Kind: base.Kind, Title: base.Title, Sections: make([]Section, 0, len(base.Sections))}
	for _, s := range base.Sections {
		if e.Can(user, s.Capability) {
			out.Sections = append(out.Sections, s)
		}
	}
	return out
}

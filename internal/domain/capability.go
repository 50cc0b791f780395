package domain

// Capability names one controllable action.
type Capability string

// Organization management.
const (
	CapManageUsers       Capability = "manage_users"
	CapViewUsers         Capability = "view_users"
	CapInviteUsers       Capability = "invite_users"
	CapDeleteUsers       Capability = "delete_users"
	CapManageTeams       Capability = "manage_teams"
	CapViewOrgAnalytics  Capability = "view_org_analytics"
	CapManageOrgSettings Capability = "manage_org_settings"
)

// Team management.
const (
	CapManageTeamMembers Capability = "manage_team_members"
	CapViewTeamAnalytics Capability = "view_team_analytics"
	CapAssignLeads       Capability = "assign_leads"
	CapViewTeamCalls     Capability = "view_team_calls"
)

// Contacts and leads.
const (
	CapCreateContacts Capability = "create_contacts"
	CapEditContacts   Capability = "edit_contacts"
	CapDeleteContacts Capability = "delete_contacts"
	CapViewContacts   Capability = "view_contacts"
	CapExportContacts Capability = "export_contacts"
)

// Calls.
const (
	CapViewCalls   Capability = "view_calls"
	CapRecordCalls Capability = "record_calls"
	CapDeleteCalls Capability = "delete_calls"
	CapExportCalls Capability = "export_calls"
)

// Tickets.
const (
	CapCreateTickets Capability = "create_tickets"
	CapEditTickets   Capability = "edit_tickets"
	CapDeleteTickets Capability = "delete_tickets"
	CapViewTickets   Capability = "view_tickets"
	CapAssignTickets Capability = "assign_tickets"
)

// Analytics and reporting.
const (
	CapViewAnalytics             Capability = "view_analytics"
	CapExportReports             Capability = "export_reports"
	CapViewIndividualPerformance Capability = "view_individual_performance"
)

var allCapabilities = []Capability{
	CapManageUsers, CapViewUsers, CapInviteUsers, CapDeleteUsers,
	CapManageTeams, CapViewOrgAnalytics, CapManageOrgSettings,
	CapManageTeamMembers, CapViewTeamAnalytics, CapAssignLeads, CapViewTeamCalls,
	CapCreateContacts, CapEditContacts, CapDeleteContacts, CapViewContacts, CapExportContacts,
	CapViewCalls, CapRecordCalls, CapDeleteCalls, CapExportCalls,
	CapCreateTickets, CapEditTickets, CapDeleteTickets, CapViewTickets, CapAssignTickets,
	CapViewAnalytics, CapExportReports, CapViewIndividualPerformance,
}

var knownCapabilities = func() map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(allCapabilities))
	for _, c := range allCapabilities {
		set[c] = struct{}{}
	}
	return set
}()

// AllCapabilities returns every capability in declaration order.
func AllCapabilities() []Capability {
	out := make([]Capability, len(allCapabilities))
	copy(out, allCapabilities)
	return out
}

// Valid reports whether c belongs to the closed capability set.
func (c Capability) Valid() bool {
	_, ok := knownCapabilities[c]
	return ok
}

// Destructive reports whether c must be checked against a freshly fetched snapshot.
func (c Capability) Destructive() bool {
	switch c {
	case CapDeleteUsers, CapDeleteContacts, CapDeleteCalls, CapDeleteTickets, CapManageOrgSettings:
		return true
	}
	return false
}

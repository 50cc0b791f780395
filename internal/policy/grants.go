package policy

import "github.com/crmkit/crm-authz/internal/domain"

type capabilitySet map[domain.Capability]struct{}

func setOf(caps ...domain.Capability) capabilitySet {
	set := make(capabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// readCapabilities are granted to every authenticated role.
var readCapabilities = []domain.Capability{
	domain.CapViewContacts,
	domain.CapViewCalls,
	domain.CapViewTickets,
	domain.CapViewAnalytics,
	domain.CapViewIndividualPerformance,
}

func withReads(caps ...domain.Capability) capabilitySet {
	return setOf(append(caps, readCapabilities...)...)
}

// defaultGrants is the only place role defaults are defined.
var defaultGrants = map[domain.Role]capabilitySet{
	domain.RoleSuperAdmin: setOf(domain.AllCapabilities()...),
	domain.RoleOrgAdmin:   setOf(domain.AllCapabilities()...),
	domain.RoleManager: withReads(
		domain.CapViewUsers,
		domain.CapManageTeamMembers,
		domain.CapViewTeamAnalytics,
		domain.CapAssignLeads,
		domain.CapViewTeamCalls,
		domain.CapCreateContacts,
		domain.CapEditContacts,
		domain.CapDeleteContacts,
		domain.CapExportContacts,
		domain.CapRecordCalls,
		domain.CapExportCalls,
		domain.CapCreateTickets,
		domain.CapEditTickets,
		domain.CapAssignTickets,
		domain.CapExportReports,
	),
	domain.RoleAgent: withReads(
		domain.CapCreateContacts,
		domain.CapEditContacts,
		domain.CapRecordCalls,
		domain.CapCreateTickets,
		domain.CapEditTickets,
	),
	domain.RoleViewer: withReads(),
}

// IsDefaultGranted reports whether role receives capability without an explicit grant.
func IsDefaultGranted(role domain.Role, capability domain.Capability) bool {
	grants, ok := defaultGrants[role]
	if !ok {
		return false
	}
	_, granted := grants[capability]
	return granted
}

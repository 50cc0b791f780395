package domain

// Team groups users under one or more managers inside an organization.
// Membership and management are independent relations.
type Team struct {
	ID             string
	OrganizationID string
	Name           string
	MemberUserIDs  []string
	ManagerUserIDs []string
}

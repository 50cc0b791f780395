package domain

import (
	"fmt"
	"strings"
)

// Role enumerates the principal roles known to the CRM.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleOrgAdmin   Role = "org_admin"
	RoleManager    Role = "manager"
	RoleAgent      Role = "agent"
	RoleViewer     Role = "viewer"
)

// Roles returns every known role from most to least privileged.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleOrgAdmin, RoleManager, RoleAgent, RoleViewer}
}

// ParseRole normalizes a raw role string from the identity source.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidContext, raw)
	}
	return role, nil
}

// Valid reports whether r is one of the five known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleOrgAdmin, RoleManager, RoleAgent, RoleViewer:
		return true
	}
	return false
}

// IsOrgAdmin reports whether r carries organization-administration authority.
func (r Role) IsOrgAdmin() bool {
	return r == RoleSuperAdmin || r == RoleOrgAdmin
}

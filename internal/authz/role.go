package authz

import "strings"

// Role identifies one of the fixed console staff roles.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleAccountManager  Role = "account_manager"
	RoleFrontDesk       Role = "front_desk"
	RoleCustomerSupport Role = "customer_support"
	RoleMarketing       Role = "marketing"
)

// Roles lists every known role in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleAccountManager, RoleFrontDesk, RoleCustomerSupport, RoleMarketing}
}

// legacyRoleNames maps camelCase spellings still present in older session
// records to their canonical form.
var legacyRoleNames = map[string]Role{
	"accountmanager":  RoleAccountManager,
	"frontdesk":       RoleFrontDesk,
	"customersupport": RoleCustomerSupport,
}

// ParseRole normalizes a stored role name to its canonical value. The second
// return reports whether the name required legacy normalization, so callers
// can log the data-integrity drift. Unknown names yield an empty Role.
func ParseRole(raw string) (Role, bool) {
	name := strings.TrimSpace(strings.ToLower(raw))
	switch Role(name) {
	case RoleAdmin, RoleAccountManager, RoleFrontDesk, RoleCustomerSupport, RoleMarketing:
		return Role(name), false
	}
	if role, ok := legacyRoleNames[name]; ok {
		return role, true
	}
	return "", false
}

// Valid reports whether the role is one of the known enumeration values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAccountManager, RoleFrontDesk, RoleCustomerSupport, RoleMarketing:
		return true
	}
	return false
}

// Label returns a human readable role name for display.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleAccountManager:
		return "Account Manager"
	case RoleFrontDesk:
		return "Front Desk"
	case RoleCustomerSupport:
		return "Customer Support"
	case RoleMarketing:
		return "Marketing"
	}
	return string(r)
}

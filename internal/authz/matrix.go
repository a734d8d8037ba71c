package authz

// Capability names a single gated console affordance. Capabilities are flat
// named booleans derived from role, not hierarchical permissions.
type Capability string

const (
	CapViewDashboard      Capability = "view-dashboard"
	CapViewFinancials     Capability = "view-financials"
	CapViewMembers        Capability = "view-members"
	CapSuspendMember      Capability = "suspend-member"
	CapVerifyMember       Capability = "verify-member"
	CapViewGroups         Capability = "view-groups"
	CapViewTransactions   Capability = "view-transactions"
	CapExportTransactions Capability = "export-transactions"
	CapViewTickets        Capability = "view-tickets"
	CapRespondToTicket    Capability = "respond-to-ticket"
	CapUpdateTicketStatus Capability = "update-ticket-status"
	CapViewPayouts        Capability = "view-payouts"
	CapUpdatePayoutStatus Capability = "update-payout-status"
	CapViewAffiliates     Capability = "view-affiliates"
	CapApproveAffiliate   Capability = "approve-affiliate"
	CapManageContent      Capability = "manage-content"
	CapCreateAdmin        Capability = "create-admin"
	CapViewAuditTrail     Capability = "view-audit-trail"
	CapViewSessions       Capability = "view-sessions"
)

// matrix is the single source of truth for every UI gate in the console.
// Each capability enumerates the roles permitted to exercise it; nothing
// outside this table may decide role-based visibility.
var matrix = map[Capability][]Role{
	CapViewDashboard:      {RoleAdmin, RoleAccountManager, RoleFrontDesk, RoleCustomerSupport, RoleMarketing},
	CapViewFinancials:     {RoleAdmin, RoleAccountManager},
	CapViewMembers:        {RoleAdmin, RoleAccountManager, RoleFrontDesk, RoleCustomerSupport},
	CapSuspendMember:      {RoleAdmin, RoleAccountManager},
	CapVerifyMember:       {RoleAdmin, RoleAccountManager},
	CapViewGroups:         {RoleAdmin, RoleAccountManager, RoleFrontDesk},
	CapViewTransactions:   {RoleAdmin, RoleAccountManager},
	CapExportTransactions: {RoleAdmin, RoleAccountManager},
	CapViewTickets:        {RoleAdmin, RoleCustomerSupport, RoleFrontDesk},
	CapRespondToTicket:    {RoleAdmin, RoleCustomerSupport},
	CapUpdateTicketStatus: {RoleAdmin, RoleCustomerSupport},
	CapViewPayouts:        {RoleAdmin, RoleAccountManager},
	CapUpdatePayoutStatus: {RoleAdmin, RoleAccountManager},
	CapViewAffiliates:     {RoleAdmin, RoleAccountManager, RoleMarketing},
	CapApproveAffiliate:   {RoleAdmin, RoleAccountManager},
	CapManageContent:      {RoleAdmin, RoleMarketing},
	CapCreateAdmin:        {RoleAdmin},
	CapViewAuditTrail:     {RoleAdmin},
	CapViewSessions:       {RoleAdmin},
}

// Allows reports whether the role may exercise the capability. Unknown roles
// and unknown capabilities are always denied.
func Allows(role Role, cap Capability) bool {
	for _, allowed := range matrix[cap] {
		if allowed == role {
			return true
		}
	}
	return false
}

// Capabilities returns every declared capability, for audit tooling and tests.
func Capabilities() []Capability {
	caps := make([]Capability, 0, len(matrix))
	for c := range matrix {
		caps = append(caps, c)
	}
	return caps
}

// AllowedRoles exposes the allow-list for one capability.
func AllowedRoles(cap Capability) []Role {
	roles := make([]Role, len(matrix[cap]))
	copy(roles, matrix[cap])
	return roles
}

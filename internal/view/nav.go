package view

import "github.com/ajovest/ajovest-console/internal/authz"

// NavItem is one sidebar navigation entry.
type NavItem struct {
	Label  string
	Path   string
	Active bool
}

type navEntry struct {
	label string
	path  string
	cap   authz.Capability
}

// navEntries declares the full navigation in display order. Visibility is
// decided only by the capability matrix, never by where the user came from.
var navEntries = []navEntry{
	{"Dashboard", "/", authz.CapViewDashboard},
	{"Members", "/members", authz.CapViewMembers},
	{"Groups", "/groups", authz.CapViewGroups},
	{"Transactions", "/transactions", authz.CapViewTransactions},
	{"Payout Requests", "/payouts", authz.CapViewPayouts},
	{"Support Tickets", "/tickets", authz.CapViewTickets},
	{"Affiliates", "/affiliates", authz.CapViewAffiliates},
	{"Content", "/content", authz.CapManageContent},
	{"Admin Accounts", "/admins", authz.CapCreateAdmin},
	{"Audit Trail", "/audit", authz.CapViewAuditTrail},
	{"Active Sessions", "/sessions", authz.CapViewSessions},
}

// BuildNav returns the navigation items the role may see, marking the entry
// matching the current path active.
func BuildNav(role authz.Role, currentPath string) []NavItem {
	var items []NavItem
	for _, entry := range navEntries {
		if !authz.Allows(role, entry.cap) {
			continue
		}
		items = append(items, NavItem{
			Label:  entry.label,
			Path:   entry.path,
			Active: entry.path == currentPath,
		})
	}
	return items
}

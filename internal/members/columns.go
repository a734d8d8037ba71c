package members

import (
	"html/template"

	"github.com/ajovest/ajovest-console/internal/authz"
	"github.com/ajovest/ajovest-console/internal/view"
	"github.com/ajovest/ajovest-console/internal/view/table"
)

// Columns composes the member table columns for a role. Financial figures
// and the verification column are included only when the capability matrix
// allows them; composition happens here, never at render time.
func Columns(role authz.Role) []table.Column[Member] {
	cols := []table.Column[Member]{
		{Key: "name", Label: "Name", Value: func(m Member) string { return m.Name }, Searchable: true},
		{Key: "email", Label: "Email", Value: func(m Member) string { return m.Email }, Searchable: true},
		{Key: "phone", Label: "Phone", Value: func(m Member) string { return m.Phone }},
		{Key: "status", Label: "Status", Render: func(m Member) template.HTML {
			return statusBadge(m.Status)
		}},
	}
	if authz.Allows(role, authz.CapVerifyMember) {
		cols = append(cols, table.Column[Member]{
			Key: "verified", Label: "Verified",
			Value: func(m Member) string {
				if m.Verified {
					return "Yes"
				}
				return "No"
			},
		})
	}
	if authz.Allows(role, authz.CapViewFinancials) {
		cols = append(cols,
			table.Column[Member]{Key: "walletBalance", Label: "Wallet", Value: func(m Member) string {
				return view.Money(m.WalletBalance)
			}},
			table.Column[Member]{Key: "totalContributed", Label: "Contributed", Value: func(m Member) string {
				return view.Money(m.TotalContributed)
			}},
		)
	}
	cols = append(cols, table.Column[Member]{
		Key: "joinedAt", Label: "Joined",
		Value: func(m Member) string { return m.JoinedAt.Format("02 Jan 2006") },
	})
	return cols
}

// Actions composes the per-row action menu for a role.
func Actions(role authz.Role) []table.Action[Member] {
	actions := []table.Action[Member]{
		{Label: "View", URL: func(m Member) string { return "/members/" + m.ID }},
	}
	if authz.Allows(role, authz.CapVerifyMember) {
		actions = append(actions, table.Action[Member]{
			Label:    "Verify",
			Method:   "POST",
			URL:      func(m Member) string { return "/members/" + m.ID + "/verify" },
			Disabled: func(m Member) bool { return m.Verified },
		})
	}
	if authz.Allows(role, authz.CapSuspendMember) {
		actions = append(actions,
			table.Action[Member]{
				Label:    "Suspend",
				Method:   "POST",
				Confirm:  "Suspend this member?",
				URL:      func(m Member) string { return "/members/" + m.ID + "/suspend" },
				Disabled: func(m Member) bool { return m.Status == StatusSuspended },
			},
			table.Action[Member]{
				Label:    "Reactivate",
				Method:   "POST",
				URL:      func(m Member) string { return "/members/" + m.ID + "/reactivate" },
				Disabled: func(m Member) bool { return m.Status != StatusSuspended },
			},
		)
	}
	return actions
}

func statusBadge(status string) template.HTML {
	class := "badge"
	switch status {
	case StatusActive:
		class += " badge-success"
	case StatusSuspended:
		class += " badge-danger"
	case StatusPending:
		class += " badge-muted"
	}
	return template.HTML(`<span class="` + class + `">` + template.HTMLEscapeString(status) + `</span>`)
}

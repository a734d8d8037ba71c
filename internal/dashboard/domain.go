package dashboard

// Stats aggregates the platform-wide figures shown on the console home page.
type Stats struct {
	TotalMembers       int     `json:"totalMembers"`
	VerifiedMembers    int     `json:"verifiedMembers"`
	ActiveGroups       int     `json:"activeGroups"`
	CompletedCycles    int     `json:"completedCycles"`
	TotalContributions float64 `json:"totalContributions"`
	TotalPayouts       float64 `json:"totalPayouts"`
	WalletBalance      float64 `json:"walletBalance"`
	PendingPayouts     int     `json:"pendingPayouts"`
	OpenTickets        int     `json:"openTickets"`
	PendingAffiliates  int     `json:"pendingAffiliates"`
}

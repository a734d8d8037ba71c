package payouts

import "time"

// Payout request statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// Payout is a member's request to receive their rotation payout.
type Payout struct {
	ID          string    `json:"id"`
	MemberName  string    `json:"memberName"`
	GroupName   string    `json:"groupName"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requestedAt"`
}

package affiliates

import "time"

// Affiliate account statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Affiliate is a referral-partner account awaiting or holding approval.
type Affiliate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Referrals int       `json:"referralCount"`
	Status    string    `json:"status"`
	AppliedAt time.Time `json:"appliedAt"`
}

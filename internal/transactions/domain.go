package transactions

import "time"

// Transaction types.
const (
	TypeContribution = "contribution"
	TypePayout       = "payout"
	TypeRefund       = "refund"
	TypeFee          = "fee"
)

// Transaction is one ledger entry on the platform.
type Transaction struct {
	ID         string    `json:"id"`
	Reference  string    `json:"reference"`
	MemberName string    `json:"memberName"`
	GroupName  string    `json:"groupName"`
	Type       string    `json:"type"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

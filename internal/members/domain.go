package members

import "time"

// Member statuses as reported by the platform API.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusPending   = "pending"
)

// Member represents a platform saver account.
type Member struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Status           string    `json:"status"`
	Verified         bool      `json:"verified"`
	WalletBalance    float64   `json:"walletBalance"`
	TotalContributed float64   `json:"totalContributed"`
	Groups           int       `json:"groupCount"`
	JoinedAt         time.Time `json:"joinedAt"`
}

package groups

import "time"

// Group statuses.
const (
	StatusForming   = "forming"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Group is one rotating-savings circle.
type Group struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Status             string    `json:"status"`
	MemberCount        int       `json:"memberCount"`
	Capacity           int       `json:"capacity"`
	ContributionAmount float64   `json:"contributionAmount"`
	Frequency          string    `json:"frequency"`
	CurrentRound       int       `json:"currentRound"`
	StartedAt          time.Time `json:"startedAt"`
	NextPayoutAt       time.Time `json:"nextPayoutAt"`
}

// RotationSlot is one member's position in the payout rotation.
type RotationSlot struct {
	Position   int       `json:"position"`
	MemberID   string    `json:"memberId"`
	MemberName string    `json:"memberName"`
	Paid       bool      `json:"paid"`
	PayoutAt   time.Time `json:"payoutAt"`
}

// Detail is the full group view: the group plus its rotation order.
type Detail struct {
	Group    Group          `json:"group"`
	Rotation []RotationSlot `json:"rotation"`
}

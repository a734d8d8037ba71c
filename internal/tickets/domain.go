package tickets

import "time"

// Ticket statuses. Transitions are open -> in_progress -> resolved -> closed;
// reopening goes back to in_progress.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

// Ticket is a member support request.
type Ticket struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	MemberName string    `json:"memberName"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	Priority   string    `json:"priority"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Message is one entry in a ticket thread.
type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	FromStaff bool      `json:"fromStaff"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sentAt"`
}

// Thread is a ticket with its conversation.
type Thread struct {
	Ticket   Ticket    `json:"ticket"`
	Messages []Message `json:"messages"`
}

// ValidStatus reports whether the status is part of the enumeration.
func ValidStatus(status string) bool {
	switch status {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

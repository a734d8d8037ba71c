package session

import (
	"time"

	"github.com/ajovest/ajovest-console/internal/authz"
)

// Scope selects which storage bucket holds a session record. A "remember me"
// login persists durably; otherwise the record lives only as long as the
// browser session plus the inactivity window.
type Scope string

const (
	// ScopeDurable survives browser restarts (remember-me logins).
	ScopeDurable Scope = "durable"
	// ScopeEphemeral expires with the browser session or on inactivity.
	ScopeEphemeral Scope = "ephemeral"
)

// User carries the identity cached at login time.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is the persisted proof of authentication. It is read-only after
// creation; only the login flow writes it and only logout or the auth-expired
// handler clears it.
type Session struct {
	ID        string     `json:"-"`
	Scope     Scope      `json:"-"`
	Token     string     `json:"token"`
	RoleName  string     `json:"role"`
	User      User       `json:"user"`
	CreatedAt time.Time  `json:"created_at"`
	role      authz.Role `json:"-"`
	roleDrift bool       `json:"-"`
}

// Role returns the canonical role resolved from the stored record, or the
// empty Role when the record carried no recognizable role.
func (s *Session) Role() authz.Role {
	if s == nil {
		return ""
	}
	return s.role
}

// Authenticated reports whether the session carries a usable bearer token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// normalizeRole resolves the canonical role once after load. The stored
// top-level role wins; older records only populated user.role.
func (s *Session) normalizeRole() {
	raw := s.RoleName
	if raw == "" {
		raw = s.User.Role
	}
	role, drifted := authz.ParseRole(raw)
	s.role = role
	s.roleDrift = drifted
}

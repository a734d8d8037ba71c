package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegistryEntry describes one active console session as recorded at login.
type RegistryEntry struct {
	SessionID string
	UserID    string
	Email     string
	Role      string
	IP        string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Registry keeps an auditable record of console sessions in Postgres. Redis
// holds the authoritative session state; the registry exists for the admin
// "active sessions" view and for the sweep job.
type Registry struct {
	pool *pgxpool.Pool
}

// NewRegistry constructs a Registry.
func NewRegistry(pool *pgxpool.Pool) *Registry {
	return &Registry{pool: pool}
}

const uniqueViolation = "23505"

// Register inserts the session record. Re-registering the same session ID is
// treated as a no-op rather than an error.
func (r *Registry) Register(ctx context.Context, entry RegistryEntry) error {
	if r == nil || r.pool == nil {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO console_sessions (session_id, user_id, email, role, ip, user_agent, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
		entry.SessionID, entry.UserID, entry.Email, entry.Role, entry.IP, entry.UserAgent, entry.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Remove deletes the registry record on logout or forced expiry.
func (r *Registry) Remove(ctx context.Context, sessionID string) error {
	if r == nil || r.pool == nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM console_sessions WHERE session_id = $1`, sessionID)
	return err
}

// ListActive returns sessions that have not yet reached their expiry.
func (r *Registry) ListActive(ctx context.Context) ([]RegistryEntry, error) {
	if r == nil || r.pool == nil {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, user_id, email, role, ip, user_agent, expires_at, created_at
		 FROM console_sessions WHERE expires_at > NOW() ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []RegistryEntry
	for rows.Next() {
		var e RegistryEntry
		if err := rows.Scan(&e.SessionID, &e.UserID, &e.Email, &e.Role, &e.IP, &e.UserAgent, &e.ExpiresAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExpiredIDs returns session IDs past their expiry, for the sweep job.
func (r *Registry) ExpiredIDs(ctx context.Context, limit int) ([]string, error) {
	if r == nil || r.pool == nil {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT session_id FROM console_sessions WHERE expires_at <= NOW() LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

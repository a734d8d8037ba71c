package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ajovest/ajovest-console/internal/authz"
)

// Store persists session records in Redis across the two storage scopes.
// The durable scope is always consulted first; the ephemeral scope is the
// fallback. Create writes exactly one scope and clears the stale copy in the
// other so the two can never diverge.
type Store struct {
	client     *redis.Client
	key        *[32]byte
	durableTTL time.Duration
	idleTTL    time.Duration
	logger     *slog.Logger
}

// NewStore constructs a Store. durableTTL bounds remember-me sessions;
// idleTTL is the inactivity window for ephemeral sessions, refreshed on each
// successful resolve.
func NewStore(client *redis.Client, secret string, durableTTL, idleTTL time.Duration, logger *slog.Logger) *Store {
	return &Store{
		client:     client,
		key:        sealKey(secret),
		durableTTL: durableTTL,
		idleTTL:    idleTTL,
		logger:     logger,
	}
}

func scopeKey(scope Scope, id string) string {
	return "console:session:" + string(scope) + ":" + id
}

// Create writes a new session record into the requested scope and removes any
// stale record under the same ID in the other scope. It assigns the session
// ID when the caller has not.
func (s *Store) Create(ctx context.Context, sess *Session, scope Scope) error {
	if sess == nil {
		return errors.New("session: nil session")
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	sess.Scope = scope
	sess.normalizeRole()

	plain, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	sealed, err := seal(s.key, plain)
	if err != nil {
		return err
	}

	ttl := s.idleTTL
	other := ScopeDurable
	if scope == ScopeDurable {
		ttl = s.durableTTL
		other = ScopeEphemeral
	}
	if err := s.client.Set(ctx, scopeKey(scope, sess.ID), sealed, ttl).Err(); err != nil {
		return err
	}
	if err := s.client.Del(ctx, scopeKey(other, sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// Resolve loads the session for an ID, durable scope first. Absent, expired,
// or unreadable records resolve to nil without error; a corrupt record is an
// unauthenticated visitor, never a failure and never a default role.
func (s *Store) Resolve(ctx context.Context, id string) *Session {
	if id == "" {
		return nil
	}
	for _, scope := range []Scope{ScopeDurable, ScopeEphemeral} {
		sealed, err := s.client.Get(ctx, scopeKey(scope, id)).Bytes()
		if err != nil {
			if !errors.Is(err, redis.Nil) && s.logger != nil {
				s.logger.Warn("session resolve", slog.String("scope", string(scope)), slog.Any("error", err))
			}
			continue
		}
		sess := s.decode(sealed)
		if sess == nil {
			continue
		}
		sess.ID = id
		sess.Scope = scope
		if scope == ScopeEphemeral {
			// Sliding inactivity window.
			_ = s.client.Expire(ctx, scopeKey(scope, id), s.idleTTL).Err()
		}
		return sess
	}
	return nil
}

func (s *Store) decode(sealed []byte) *Session {
	plain, err := open(s.key, sealed)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("session unseal failed, treating as unauthenticated")
		}
		return nil
	}
	var sess Session
	if err := json.Unmarshal(plain, &sess); err != nil {
		if s.logger != nil {
			s.logger.Warn("session record malformed, treating as unauthenticated", slog.Any("error", err))
		}
		return nil
	}
	sess.normalizeRole()
	if sess.roleDrift && s.logger != nil {
		s.logger.Warn("session role name drift normalized",
			slog.String("stored", sess.RoleName),
			slog.String("canonical", string(sess.Role())))
	}
	return &sess
}

// Destroy removes the record from both scopes. Idempotent.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	err := s.client.Del(ctx, scopeKey(ScopeDurable, id), scopeKey(ScopeEphemeral, id)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// RoleOf is a convenience for capability checks against a possibly-nil session.
func RoleOf(sess *Session) (authz.Role, bool) {
	if sess == nil || !sess.Authenticated() {
		return "", false
	}
	return sess.Role(), true
}

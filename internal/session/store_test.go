package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ajovest/ajovest-console/internal/authz"
	"github.com/ajovest/ajovest-console/internal/session"
)

func newStore(t *testing.T) (*session.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := session.NewStore(client, "test-secret", 720*time.Hour, 30*time.Minute, nil)
	return store, mr
}

func TestCreateResolveRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	sess := &session.Session{
		Token:    "bearer-token",
		RoleName: "account_manager",
		User:     session.User{ID: "u1", Name: "Ada", Email: "ada@example.com"},
	}
	if err := store.Create(ctx, sess, session.ScopeEphemeral); err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("create should assign a session ID")
	}

	got := store.Resolve(ctx, sess.ID)
	if got == nil {
		t.Fatal("resolve returned nil")
	}
	if got.Token != "bearer-token" {
		t.Fatalf("unexpected token: %q", got.Token)
	}
	if got.Role() != authz.RoleAccountManager {
		t.Fatalf("unexpected role: %q", got.Role())
	}
	if got.Scope != session.ScopeEphemeral {
		t.Fatalf("unexpected scope: %q", got.Scope)
	}
}

func TestResolvePrefersDurableScope(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	durable := &session.Session{ID: "shared-id", Token: "durable-token", RoleName: "admin"}
	if err := store.Create(ctx, durable, session.ScopeDurable); err != nil {
		t.Fatalf("create durable: %v", err)
	}

	got := store.Resolve(ctx, "shared-id")
	if got == nil || got.Scope != session.ScopeDurable {
		t.Fatalf("expected durable resolution, got %+v", got)
	}
}

func TestCreateClearsOtherScope(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	sess := &session.Session{ID: "sid", Token: "old", RoleName: "admin"}
	if err := store.Create(ctx, sess, session.ScopeDurable); err != nil {
		t.Fatalf("create durable: %v", err)
	}
	replacement := &session.Session{ID: "sid", Token: "new", RoleName: "admin"}
	if err := store.Create(ctx, replacement, session.ScopeEphemeral); err != nil {
		t.Fatalf("create ephemeral: %v", err)
	}

	got := store.Resolve(ctx, "sid")
	if got == nil {
		t.Fatal("resolve returned nil")
	}
	if got.Scope != session.ScopeEphemeral || got.Token != "new" {
		t.Fatalf("stale durable record survived: %+v", got)
	}
}

func TestDestroyRemovesBothScopes(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	sess := &session.Session{ID: "sid", Token: "tok", RoleName: "admin"}
	if err := store.Create(ctx, sess, session.ScopeDurable); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Destroy(ctx, "sid"); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if got := store.Resolve(ctx, "sid"); got != nil {
		t.Fatalf("session survived destroy: %+v", got)
	}
	if err := store.Destroy(ctx, "sid"); err != nil {
		t.Fatalf("second destroy should be a no-op: %v", err)
	}
}

func TestCorruptRecordResolvesToNil(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	mr.Set("console:session:ephemeral:bad", "not a sealed payload")
	if got := store.Resolve(ctx, "bad"); got != nil {
		t.Fatalf("corrupt record should resolve to nil, got %+v", got)
	}
}

func TestResolveUnknownAndEmptyID(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	if got := store.Resolve(ctx, "missing"); got != nil {
		t.Fatalf("unknown id should resolve to nil, got %+v", got)
	}
	if got := store.Resolve(ctx, ""); got != nil {
		t.Fatalf("empty id should resolve to nil, got %+v", got)
	}
}

func TestLegacyRoleNameNormalized(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	sess := &session.Session{Token: "tok", RoleName: "frontDesk"}
	if err := store.Create(ctx, sess, session.ScopeEphemeral); err != nil {
		t.Fatalf("create: %v", err)
	}
	got := store.Resolve(ctx, sess.ID)
	if got == nil {
		t.Fatal("resolve returned nil")
	}
	if got.Role() != authz.RoleFrontDesk {
		t.Fatalf("legacy role not normalized: %q", got.Role())
	}
}

func TestRoleFallsBackToUserRole(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	sess := &session.Session{Token: "tok", User: session.User{ID: "u1", Role: "marketing"}}
	if err := store.Create(ctx, sess, session.ScopeEphemeral); err != nil {
		t.Fatalf("create: %v", err)
	}
	got := store.Resolve(ctx, sess.ID)
	if got == nil || got.Role() != authz.RoleMarketing {
		t.Fatalf("expected marketing role from user record, got %+v", got)
	}
}

func TestRoleOf(t *testing.T) {
	if role, ok := session.RoleOf(nil); ok || role != "" {
		t.Fatalf("nil session should have no role, got %q", role)
	}
	sess := &session.Session{Token: "tok", RoleName: "admin"}
	store, _ := newStore(t)
	if err := store.Create(context.Background(), sess, session.ScopeEphemeral); err != nil {
		t.Fatalf("create: %v", err)
	}
	resolved := store.Resolve(context.Background(), sess.ID)
	role, ok := session.RoleOf(resolved)
	if !ok || role != authz.RoleAdmin {
		t.Fatalf("RoleOf = (%q, %v)", role, ok)
	}
}

package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "console_sessions_pkey"}
	if !isUniqueViolation(dup) {
		t.Fatal("duplicate-key error not recognized")
	}
	if !isUniqueViolation(fmt.Errorf("register session: %w", dup)) {
		t.Fatal("wrapped duplicate-key error not recognized")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign-key violation must not be swallowed")
	}
	if isUniqueViolation(errors.New("connection refused")) {
		t.Fatal("plain errors must not be swallowed")
	}
}

func TestRegistryWithoutPoolIsInert(t *testing.T) {
	ctx := context.Background()
	for name, r := range map[string]*Registry{"nil registry": nil, "nil pool": {}} {
		if err := r.Register(ctx, RegistryEntry{SessionID: "s1"}); err != nil {
			t.Fatalf("%s: register: %v", name, err)
		}
		if err := r.Remove(ctx, "s1"); err != nil {
			t.Fatalf("%s: remove: %v", name, err)
		}
		entries, err := r.ListActive(ctx)
		if err != nil || entries != nil {
			t.Fatalf("%s: list: %v %v", name, entries, err)
		}
		ids, err := r.ExpiredIDs(ctx, 10)
		if err != nil || ids != nil {
			t.Fatalf("%s: expired: %v %v", name, ids, err)
		}
	}
}

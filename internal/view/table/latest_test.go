package table_test

import (
	"sync"
	"testing"

	"github.com/ajovest/ajovest-console/internal/view/table"
)

func TestLatestLastRequestWins(t *testing.T) {
	var l table.Latest[string]

	first := l.Begin()
	second := l.Begin()

	if !l.Commit(second, "newer") {
		t.Fatal("latest ticket should commit")
	}
	if l.Commit(first, "stale") {
		t.Fatal("superseded ticket must not commit")
	}

	value, ok := l.Value()
	if !ok || value != "newer" {
		t.Fatalf("Value = (%q, %v)", value, ok)
	}
}

func TestLatestValueUnsetBeforeCommit(t *testing.T) {
	var l table.Latest[int]
	if _, ok := l.Value(); ok {
		t.Fatal("value should be unset before any commit")
	}
	ticket := l.Begin()
	if _, ok := l.Value(); ok {
		t.Fatal("Begin alone must not settle a value")
	}
	if !l.Commit(ticket, 7) {
		t.Fatal("sole ticket should commit")
	}
	if value, ok := l.Value(); !ok || value != 7 {
		t.Fatalf("Value = (%d, %v)", value, ok)
	}
}

func TestLatestConcurrentFetches(t *testing.T) {
	var l table.Latest[int]
	var wg sync.WaitGroup

	tickets := make([]uint64, 10)
	for i := range tickets {
		tickets[i] = l.Begin()
	}
	for i, ticket := range tickets {
		wg.Add(1)
		go func(ticket uint64, value int) {
			defer wg.Done()
			l.Commit(ticket, value)
		}(ticket, i)
	}
	wg.Wait()

	value, ok := l.Value()
	if !ok || value != len(tickets)-1 {
		t.Fatalf("expected the newest fetch to win, got (%d, %v)", value, ok)
	}
}

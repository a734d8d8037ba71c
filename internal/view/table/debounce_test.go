package table_test

import (
	"sync"
	"testing"
	"time"

	"github.com/ajovest/ajovest-console/internal/view/table"
)

func TestDebouncerCoalescesRapidCalls(t *testing.T) {
	d := table.NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	var got []int

	for i := 1; i <= 5; i++ {
		value := i
		d.Call(func() {
			mu.Lock()
			got = append(got, value)
			mu.Unlock()
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("expected exactly one invocation, got %d", len(got))
	}
	if got[0] != 5 {
		t.Fatalf("expected the final value to win, got %d", got[0])
	}
}

func TestDebouncerFiresAfterQuietWindow(t *testing.T) {
	d := table.NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	fired := make(chan struct{})
	d.Call(func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("debounced call never fired")
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	d := table.NewDebouncer(20 * time.Millisecond)

	var mu sync.Mutex
	fired := false
	d.Call(func() {
		mu.Lock()
		fired = true
		mu.Unlock()
	})
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired {
		t.Fatal("stopped debouncer still fired")
	}
}

func TestNewDebouncerDefaultsWindow(t *testing.T) {
	d := table.NewDebouncer(0)
	defer d.Stop()

	start := time.Now()
	fired := make(chan struct{})
	d.Call(func() { close(fired) })

	select {
	case <-fired:
		if elapsed := time.Since(start); elapsed < table.DefaultSearchDebounce {
			t.Fatalf("fired before the default quiet window: %v", elapsed)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("debounced call never fired")
	}
}

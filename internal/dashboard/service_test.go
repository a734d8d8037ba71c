package dashboard_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ajovest/ajovest-console/internal/dashboard"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
	_ "github.com/ajovest/ajovest-console/testing"
)

const statsBody = `{
	"totalMembers": 1200, "verifiedMembers": 900, "activeGroups": 45,
	"completedCycles": 300, "totalContributions": 125000000,
	"totalPayouts": 110000000, "walletBalance": 15000000,
	"pendingPayouts": 12, "openTickets": 7, "pendingAffiliates": 3
}`

func newStatsService(t *testing.T, api http.HandlerFunc) (*dashboard.Service, *miniredis.Miniredis, *int64) {
	t.Helper()
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		api(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := upstream.New(srv.URL, time.Second, nil, nil)
	if err != nil {
		t.Fatalf("upstream client: %v", err)
	}
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	service := dashboard.NewService(client, cache, slog.Default())
	t.Cleanup(service.Close)
	return service, mr, &hits
}

func staffContext() context.Context {
	return session.ContextWith(context.Background(), &session.Session{Token: "tok"})
}

func serveStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(statsBody))
}

func TestStatsFetchesAndCaches(t *testing.T) {
	service, _, hits := newStatsService(t, serveStats)

	stats, err := service.Stats(staffContext())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalMembers != 1200 || stats.OpenTickets != 7 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// Second call must be served from the cache.
	if _, err := service.Stats(staffContext()); err != nil {
		t.Fatalf("cached stats: %v", err)
	}
	if got := atomic.LoadInt64(hits); got != 1 {
		t.Fatalf("expected 1 upstream fetch, got %d", got)
	}
}

func TestConcurrentMissesCollapseToOneFetch(t *testing.T) {
	release := make(chan struct{})
	service, _, hits := newStatsService(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		serveStats(w, r)
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.Stats(staffContext()); err != nil {
				t.Errorf("stats: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt64(hits); got != 1 {
		t.Fatalf("expected a single collapsed fetch, got %d", got)
	}
}

func TestWarmPopulatesCacheWithServiceToken(t *testing.T) {
	var gotAuth string
	service, mr, _ := newStatsService(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		serveStats(w, r)
	})
	service.WithServiceToken("machine-token")

	if err := service.Warm(context.Background()); err != nil {
		t.Fatalf("warm: %v", err)
	}
	if gotAuth != "Bearer machine-token" {
		t.Fatalf("expected the service token, got %q", gotAuth)
	}
	if !mr.Exists("console:dashboard:stats") {
		t.Fatal("warm did not populate the cache")
	}
}

func TestInvalidateDropsCacheOncePerBurst(t *testing.T) {
	service, mr, _ := newStatsService(t, serveStats)

	if err := service.Warm(staffContext()); err != nil {
		t.Fatalf("warm: %v", err)
	}
	if !mr.Exists("console:dashboard:stats") {
		t.Fatal("cache not populated")
	}

	for i := 0; i < 5; i++ {
		service.Invalidate()
	}

	deadline := time.Now().Add(3 * time.Second)
	for mr.Exists("console:dashboard:stats") {
		if time.Now().After(deadline) {
			t.Fatal("cache never invalidated")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestStatsSurfacesUpstreamError(t *testing.T) {
	service, _, _ := newStatsService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := service.Stats(staffContext()); err == nil {
		t.Fatal("expected an error")
	}
}

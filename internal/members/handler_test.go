package members_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/ajovest/ajovest-console/internal/authz"
	"github.com/ajovest/ajovest-console/internal/members"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/internal/shared"
	"github.com/ajovest/ajovest-console/internal/view"
	_ "github.com/ajovest/ajovest-console/testing"
)

const membersBody = `{
	"users": [
		{"id":"m1","name":"Ada Bello","email":"ada@example.com","phone":"0801","status":"active","verified":true,"walletBalance":120000,"totalContributed":480000,"groupCount":2,"joinedAt":"2025-03-01T10:00:00Z"},
		{"id":"m2","name":"Bisi Okoro","email":"bisi@example.com","phone":"0802","status":"suspended","verified":false,"walletBalance":0,"totalContributed":35000,"groupCount":1,"joinedAt":"2025-06-12T09:30:00Z"}
	],
	"currentPage": 1, "totalPages": 1, "total": 2
}`

func newMembersRouter(t *testing.T, role authz.Role, apiURL string) http.Handler {
	t.Helper()
	api, err := upstream.New(apiURL, time.Second, nil, nil)
	if err != nil {
		t.Fatalf("upstream client: %v", err)
	}
	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	render := &view.Renderer{
		Logger: slog.Default(),
		Engine: engine,
		CSRF:   shared.NewCSRFManager("csrf-secret"),
	}
	mw := authz.Middleware{
		CurrentRole: func(ctx context.Context) (authz.Role, bool) {
			return role, true
		},
	}
	handler := members.NewHandler(slog.Default(), members.NewService(api), render, nil, mw)

	r := chi.NewRouter()
	r.Use(injectSession(t, role))
	r.Route("/members", handler.MountRoutes)
	return r
}

// injectSession builds a real store-backed session so the role is resolved
// the same way the session middleware resolves it in production.
func injectSession(t *testing.T, role authz.Role) func(http.Handler) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	store := session.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "secret", time.Hour, time.Hour, nil)
	sess := &session.Session{Token: "tok", RoleName: string(role), User: session.User{ID: "staff-1", Name: "Staff"}}
	if err := store.Create(context.Background(), sess, session.ScopeEphemeral); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			resolved := store.Resolve(req.Context(), sess.ID)
			next.ServeHTTP(w, req.WithContext(session.ContextWith(req.Context(), resolved)))
		})
	}
}

func apiStub(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListShowsFinancialColumnsToAccountManager(t *testing.T) {
	srv := apiStub(t, membersBody)
	router := newMembersRouter(t, authz.RoleAccountManager, srv.URL)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/members", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Ada Bello", "Wallet", "Contributed", "Verified", "Suspend"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
	if strings.Contains(body, "limited access") {
		t.Error("account manager should not see the limited access banner")
	}
}

func TestListHidesFinancialsFromFrontDesk(t *testing.T) {
	srv := apiStub(t, membersBody)
	router := newMembersRouter(t, authz.RoleFrontDesk, srv.URL)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/members", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	body := rr.Body.String()
	for _, banned := range []string{"Wallet", "Contributed", "Verified", "Suspend", "Reactivate"} {
		if strings.Contains(body, banned) {
			t.Errorf("front desk page leaked %q", banned)
		}
	}
	if !strings.Contains(body, "limited access") {
		t.Error("expected the limited access banner")
	}
	if !strings.Contains(body, "Ada Bello") {
		t.Error("member rows missing")
	}
}

func TestListDeniedForMarketing(t *testing.T) {
	srv := apiStub(t, membersBody)
	router := newMembersRouter(t, authz.RoleMarketing, srv.URL)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/members", nil))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestListRendersBannerOnUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"upstream exploded"}`))
	}))
	t.Cleanup(srv.Close)
	router := newMembersRouter(t, authz.RoleAdmin, srv.URL)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/members", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("fetch failure should still render the page, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "upstream exploded") {
		t.Error("expected the upstream message in the banner")
	}
}

func TestSearchReturnsJSONHits(t *testing.T) {
	srv := apiStub(t, membersBody)
	router := newMembersRouter(t, authz.RoleFrontDesk, srv.URL)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/members/search?q=ada", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var payload struct {
		Query   string `json:"query"`
		Results []struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Query != "ada" || len(payload.Results) != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Results[0].Name != "Ada Bello" {
		t.Fatalf("unexpected first hit: %+v", payload.Results[0])
	}
}

func TestSuspendRedirectsWithFlash(t *testing.T) {
	var patched bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch && r.URL.Path == "/admin/users/m1" {
			patched = true
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	router := newMembersRouter(t, authz.RoleAdmin, srv.URL)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/members/m1/suspend", nil))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/members" {
		t.Fatalf("unexpected redirect target: %q", loc)
	}
	if !patched {
		t.Fatal("upstream was never called")
	}
}

func TestMutationsLockedToCapabilities(t *testing.T) {
	srv := apiStub(t, `{}`)
	router := newMembersRouter(t, authz.RoleFrontDesk, srv.URL)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/members/m1/verify", nil))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("front desk verify should be denied, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/members/m1/suspend", nil))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("front desk suspend should be denied, got %d", rr.Code)
	}
}

func TestListRedirectsToLoginWhenUpstreamRejectsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	store := session.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "secret", time.Hour, time.Hour, nil)
	sess := &session.Session{Token: "stale", RoleName: string(authz.RoleAdmin), User: session.User{ID: "staff-1"}}
	if err := store.Create(context.Background(), sess, session.ScopeEphemeral); err != nil {
		t.Fatalf("create session: %v", err)
	}

	api, err := upstream.New(srv.URL, time.Second, store, nil)
	if err != nil {
		t.Fatalf("upstream client: %v", err)
	}
	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	render := &view.Renderer{Logger: slog.Default(), Engine: engine, CSRF: shared.NewCSRFManager("csrf-secret")}
	mw := authz.Middleware{CurrentRole: func(ctx context.Context) (authz.Role, bool) {
		return authz.RoleAdmin, true
	}}
	handler := members.NewHandler(slog.Default(), members.NewService(api), render, nil, mw)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			resolved := store.Resolve(req.Context(), sess.ID)
			next.ServeHTTP(w, req.WithContext(session.ContextWith(req.Context(), resolved)))
		})
	})
	r.Route("/members", handler.MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/members", nil))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected a redirect, got %d", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != "/auth/login?expired=1&next=%2Fmembers" {
		t.Fatalf("unexpected redirect target: %q", got)
	}
	if strings.Contains(rr.Body.String(), "Failed to load") {
		t.Error("rejected token must not fall back to the page banner")
	}
	if store.Resolve(context.Background(), sess.ID) != nil {
		t.Error("session should be destroyed after the upstream rejection")
	}
}

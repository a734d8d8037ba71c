package admins_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ajovest/ajovest-console/internal/admins"
	"github.com/ajovest/ajovest-console/internal/authz"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/shared"
	"github.com/ajovest/ajovest-console/internal/view"
	_ "github.com/ajovest/ajovest-console/testing"
)

func newAdminsRouter(t *testing.T, role authz.Role, api http.HandlerFunc) (http.Handler, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		api(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := upstream.New(srv.URL, time.Second, nil, nil)
	if err != nil {
		t.Fatalf("upstream client: %v", err)
	}
	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	render := &view.Renderer{Logger: slog.Default(), Engine: engine, CSRF: shared.NewCSRFManager("csrf-secret")}
	mw := authz.Middleware{CurrentRole: func(ctx context.Context) (authz.Role, bool) { return role, true }}
	handler := admins.NewHandler(slog.Default(), admins.NewService(client), nil, render, nil, mw)

	r := chi.NewRouter()
	r.Route("/admins", handler.MountRoutes)
	r.Route("/sessions", handler.MountSessionRoutes)
	return r, &calls
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCreateFormValidation(t *testing.T) {
	router, calls := newAdminsRouter(t, authz.RoleAdmin, func(w http.ResponseWriter, r *http.Request) {})

	form := url.Values{"name": {"A"}, "email": {"nope"}, "role": {""}}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, formRequest("/admins", form))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if *calls != 0 {
		t.Fatalf("validation failure must not reach upstream, called %d times", *calls)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "valid name") || !strings.Contains(body, "valid email") {
		t.Error("field errors missing")
	}
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	router, calls := newAdminsRouter(t, authz.RoleAdmin, func(w http.ResponseWriter, r *http.Request) {})

	form := url.Values{"name": {"Ada Bello"}, "email": {"ada@example.com"}, "role": {"superuser"}}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, formRequest("/admins", form))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if *calls != 0 {
		t.Fatal("unknown role must not reach upstream")
	}
	if !strings.Contains(rr.Body.String(), "Unknown role") {
		t.Error("expected the unknown role error")
	}
}

func TestCreateSubmitsToUpstream(t *testing.T) {
	var posted []byte
	router, _ := newAdminsRouter(t, authz.RoleAdmin, func(w http.ResponseWriter, r *http.Request) {
		posted, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"a9","name":"Ada Bello","email":"ada@example.com","role":"marketing"}`))
	})

	form := url.Values{"name": {"Ada Bello"}, "email": {"ada@example.com"}, "role": {"marketing"}}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, formRequest("/admins", form))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/admins" {
		t.Fatalf("unexpected redirect target: %q", loc)
	}
	var input struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(posted, &input); err != nil {
		t.Fatalf("decode posted body: %v", err)
	}
	if input.Name != "Ada Bello" || input.Role != "marketing" {
		t.Fatalf("unexpected payload: %+v", input)
	}
}

func TestCreateDeniedForNonAdmins(t *testing.T) {
	router, calls := newAdminsRouter(t, authz.RoleAccountManager, func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admins/new", nil))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if *calls != 0 {
		t.Fatal("denied request must not reach upstream")
	}
}

func TestShowCreateListsEveryRole(t *testing.T) {
	router, _ := newAdminsRouter(t, authz.RoleAdmin, func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admins/new", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	body := rr.Body.String()
	for _, label := range []string{"Administrator", "Account Manager", "Front Desk", "Customer Support", "Marketing"} {
		if !strings.Contains(body, label) {
			t.Errorf("role option %q missing", label)
		}
	}
}

func TestSessionsViewWithoutRegistry(t *testing.T) {
	router, _ := newAdminsRouter(t, authz.RoleAdmin, func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No data to display yet.") {
		t.Error("expected the settled empty state")
	}
}

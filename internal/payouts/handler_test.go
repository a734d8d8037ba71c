package payouts_test

import (
	"context"
	"encoding/json"
	"io"
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
	"github.com/ajovest/ajovest-console/internal/payouts"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/internal/shared"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/view"
	_ "github.com/ajovest/ajovest-console/testing"
)

const payoutsBody = `{
	"payouts": [
		{"id":"p1","memberName":"Ada Bello","groupName":"Lagos Savers","amount":250000,"status":"pending","requestedAt":"2026-08-01T08:00:00Z"},
		{"id":"p2","memberName":"Bisi Okoro","groupName":"Abuja Circle","amount":100000,"status":"completed","requestedAt":"2026-07-15T08:00:00Z"}
	],
	"currentPage": 1, "totalPages": 1, "total": 2
}`

func newPayoutsRouter(t *testing.T, role authz.Role, api http.HandlerFunc) (http.Handler, *httptest.Server, *int) {
	t.Helper()
	srv := httptest.NewServer(api)
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

	invalidations := 0
	handler := payouts.NewHandler(slog.Default(), payouts.NewService(client), render, nil, mw).
		WithStatsInvalidator(func() { invalidations++ })

	mr := miniredis.RunT(t)
	store := session.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "secret", time.Hour, time.Hour, nil)
	sess := &session.Session{Token: "tok", RoleName: string(role), User: session.User{ID: "staff-1", Name: "Staff"}}
	if err := store.Create(context.Background(), sess, session.ScopeEphemeral); err != nil {
		t.Fatalf("create session: %v", err)
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			resolved := store.Resolve(req.Context(), sess.ID)
			next.ServeHTTP(w, req.WithContext(session.ContextWith(req.Context(), resolved)))
		})
	})
	r.Route("/payouts", handler.MountRoutes)
	return r, srv, &invalidations
}

func TestListRendersPayoutRows(t *testing.T) {
	router, _, _ := newPayoutsRouter(t, authz.RoleAccountManager, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payoutsBody))
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payouts", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Lagos Savers", "Approve", "Reject"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
}

func TestApproveFormPostRedirects(t *testing.T) {
	var patchBody []byte
	router, _, invalidations := newPayoutsRouter(t, authz.RoleAdmin, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			patchBody, _ = io.ReadAll(r.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/payouts/p1/approve", nil))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	var update struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(patchBody, &update); err != nil {
		t.Fatalf("decode patch body: %v", err)
	}
	if update.ID != "p1" || update.Status != "completed" {
		t.Fatalf("unexpected status update: %+v", update)
	}
	if *invalidations != 1 {
		t.Fatalf("expected one stats invalidation, got %d", *invalidations)
	}
}

func TestRejectJSONReturnsPatchedRow(t *testing.T) {
	router, _, _ := newPayoutsRouter(t, authz.RoleAccountManager, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/payouts/p1/reject", nil)
	req.Header.Set("Accept", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var row struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &row); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if row.ID != "p1" || row.Status != "rejected" {
		t.Fatalf("unexpected row patch: %+v", row)
	}
}

func TestStatusChangeDeniedWithoutCapability(t *testing.T) {
	router, _, invalidations := newPayoutsRouter(t, authz.RoleCustomerSupport, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called")
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/payouts/p1/approve", nil))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if *invalidations != 0 {
		t.Fatal("denied request must not invalidate stats")
	}
}

func TestUpstreamErrorOnJSONRequest(t *testing.T) {
	router, _, _ := newPayoutsRouter(t, authz.RoleAdmin, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"payout already settled"}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/payouts/p1/approve", nil)
	req.Header.Set("Accept", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code == http.StatusOK || rr.Code == http.StatusSeeOther {
		t.Fatalf("expected an error status, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "payout already settled") {
		t.Fatalf("expected upstream message, got %s", rr.Body.String())
	}
}

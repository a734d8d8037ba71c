package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ajovest/ajovest-console/internal/admins"
	"github.com/ajovest/ajovest-console/internal/affiliates"
	"github.com/ajovest/ajovest-console/internal/audit"
	"github.com/ajovest/ajovest-console/internal/auth"
	"github.com/ajovest/ajovest-console/internal/content"
	"github.com/ajovest/ajovest-console/internal/dashboard"
	"github.com/ajovest/ajovest-console/internal/groups"
	"github.com/ajovest/ajovest-console/internal/members"
	"github.com/ajovest/ajovest-console/internal/observability"
	"github.com/ajovest/ajovest-console/internal/payouts"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/internal/shared"
	"github.com/ajovest/ajovest-console/internal/tickets"
	"github.com/ajovest/ajovest-console/internal/transactions"
	"github.com/ajovest/ajovest-console/jobs"
	"github.com/ajovest/ajovest-console/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	SessionStore *session.Store
	CSRFManager  *shared.CSRFManager

	AuthHandler        *auth.Handler
	DashboardHandler   *dashboard.Handler
	MembersHandler     *members.Handler
	GroupsHandler      *groups.Handler
	TransactionHandler *transactions.Handler
	PayoutsHandler     *payouts.Handler
	TicketsHandler     *tickets.Handler
	AffiliatesHandler  *affiliates.Handler
	ContentHandler     *content.Handler
	AdminsHandler      *admins.Handler
	AuditHandler       *audit.Handler
	JobsHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:       params.Logger,
		Config:       params.Config,
		SessionStore: params.SessionStore,
		CSRFManager:  params.CSRFManager,
		Metrics:      params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	params.DashboardHandler.MountRoutes(r)
	r.Route("/members", params.MembersHandler.MountRoutes)
	r.Route("/groups", params.GroupsHandler.MountRoutes)
	r.Route("/transactions", params.TransactionHandler.MountRoutes)
	r.Route("/payouts", params.PayoutsHandler.MountRoutes)
	r.Route("/tickets", params.TicketsHandler.MountRoutes)
	r.Route("/affiliates", params.AffiliatesHandler.MountRoutes)
	r.Route("/content", params.ContentHandler.MountRoutes)
	r.Route("/admins", params.AdminsHandler.MountRoutes)
	r.Route("/sessions", params.AdminsHandler.MountSessionRoutes)
	r.Route("/audit", params.AuditHandler.MountRoutes)
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers. Assets
// are cached for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}

package audit

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ajovest/ajovest-console/internal/authz"
	"github.com/ajovest/ajovest-console/internal/view"
	"github.com/ajovest/ajovest-console/internal/view/table"
)

const recentLimit = 500

// Handler serves the audit trail page.
type Handler struct {
	logger *slog.Logger
	trail  *Logger
	render *view.Renderer
	authz  authz.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, trail *Logger, render *view.Renderer, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, trail: trail, render: render, authz: mw}
}

// MountRoutes registers audit trail routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapViewAuditTrail))
		r.Get("/", h.list)
	})
}

// list shows the newest entries. The trail lives in the console's own
// database, so the table filters in memory instead of round-tripping.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.trail.Recent(r.Context(), recentLimit)
	if err != nil {
		h.logger.Error("list audit trail", slog.Any("error", err))
		h.render.PageWithBanner(w, r, "pages/audit/list.html", "Audit Trail",
			"Failed to load audit trail. Please try again.", map[string]any{}, http.StatusOK)
		return
	}

	filter := r.URL.Query().Get("search")
	model := table.Build(columns(), nil, entries, table.Options{Filter: filter})
	h.render.Page(w, r, "pages/audit/list.html", "Audit Trail",
		map[string]any{"Table": model}, http.StatusOK)
}

func columns() []table.Column[Entry] {
	return []table.Column[Entry]{
		{Key: "occurredAt", Label: "When", Value: func(e Entry) string { return e.At.Format("02 Jan 2006 15:04:05") }},
		{Key: "actor", Label: "Actor", Value: func(e Entry) string { return e.ActorID }, Searchable: true},
		{Key: "role", Label: "Role", Value: func(e Entry) string { return e.ActorRole }},
		{Key: "action", Label: "Action", Value: func(e Entry) string { return e.Action }, Searchable: true},
		{Key: "entity", Label: "Entity", Value: func(e Entry) string { return e.Entity }, Searchable: true},
		{Key: "entityId", Label: "Entity ID", Value: func(e Entry) string { return e.EntityID }},
	}
}

package members

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ajovest/ajovest-console/internal/audit"
	"github.com/ajovest/ajovest-console/internal/authz"
	"github.com/ajovest/ajovest-console/internal/platform/httpx"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/internal/view"
	"github.com/ajovest/ajovest-console/internal/view/table"
)

// Handler serves the member pages.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	render     *view.Renderer
	audit      *audit.Logger
	authz      authz.Middleware
	invalidate func()
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, render *view.Renderer, auditLog *audit.Logger, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, render: render, audit: auditLog, authz: mw}
}

// WithStatsInvalidator registers a callback fired after mutations so cached
// dashboard figures do not go stale.
func (h *Handler) WithStatsInvalidator(fn func()) *Handler {
	h.invalidate = fn
	return h
}

// MountRoutes registers member routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapViewMembers))
		r.Get("/", h.list)
		r.Get("/search", h.search)
		r.Get("/{id}", h.detail)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapSuspendMember))
		r.Post("/{id}/suspend", h.suspend)
		r.Post("/{id}/reactivate", h.reactivate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapVerifyMember))
		r.Post("/{id}/verify", h.verify)
	})
}

type listData struct {
	Table         table.Model
	Status        string
	LimitedAccess bool
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	role, _ := session.RoleOf(session.FromContext(r.Context()))
	q := upstream.Query{
		Page:   pageParam(r),
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
	}

	page, err := h.service.List(r.Context(), q)
	if err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("list members", slog.Any("error", err))
		model := table.Build(Columns(role), nil, nil, table.Options{Filter: q.Search})
		h.render.PageWithBanner(w, r, "pages/members/list.html", "Members",
			upstream.BannerMessage(err, "members"), listData{Table: model}, http.StatusOK)
		return
	}

	model := table.Build(Columns(role), Actions(role), page.Items, table.Options{
		Filter:      q.Search,
		Controlled:  true,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		Total:       page.Total,
		BaseURL:     "/members",
		Params:      url.Values{"search": {q.Search}, "status": {q.Status}},
	})
	data := listData{
		Table:         model,
		Status:        q.Status,
		LimitedAccess: !authz.Allows(role, authz.CapViewFinancials),
	}
	h.render.Page(w, r, "pages/members/list.html", "Members", data, http.StatusOK)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	items, err := h.service.Search(r.Context(), query)
	if err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		httpx.RespondError(w, err)
		return
	}
	type hit struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	hits := make([]hit, 0, len(items))
	for _, m := range items {
		hits = append(hits, hit{ID: m.ID, Name: m.Name, Email: m.Email})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"query": query, "results": hits})
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	member, err := h.service.Get(r.Context(), id)
	if err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("get member", slog.String("id", id), slog.Any("error", err))
		h.render.PageWithBanner(w, r, "pages/members/detail.html", "Member",
			upstream.BannerMessage(err, "member"), nil, http.StatusOK)
		return
	}
	role, _ := session.RoleOf(session.FromContext(r.Context()))
	data := map[string]any{
		"Member":         member,
		"CanSuspend":     authz.Allows(role, authz.CapSuspendMember),
		"CanVerify":      authz.Allows(role, authz.CapVerifyMember),
		"ShowFinancials": authz.Allows(role, authz.CapViewFinancials),
	}
	h.render.Page(w, r, "pages/members/detail.html", member.Name, data, http.StatusOK)
}

func (h *Handler) suspend(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "suspend", "Member suspended", h.service.Suspend)
}

func (h *Handler) reactivate(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "reactivate", "Member reactivated", h.service.Reactivate)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "verify", "Member verified", h.service.Verify)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, action, successMsg string, op func(context.Context, string) error) {
	id := chi.URLParam(r, "id")
	if err := op(r.Context(), id); err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("member "+action, slog.String("id", id), slog.Any("error", err))
		h.render.RedirectWithFlash(w, r, "/members", "error", upstream.BannerMessage(err, "member"))
		return
	}
	h.recordAudit(r, action, id)
	if h.invalidate != nil {
		h.invalidate()
	}
	h.render.RedirectWithFlash(w, r, "/members", "success", successMsg)
}

func (h *Handler) recordAudit(r *http.Request, action, id string) {
	sess := session.FromContext(r.Context())
	if sess == nil || h.audit == nil {
		return
	}
	entry := audit.Entry{
		ActorID:   sess.User.ID,
		ActorRole: string(sess.Role()),
		Action:    "member." + action,
		Entity:    "member",
		EntityID:  id,
	}
	if err := h.audit.Record(r.Context(), entry); err != nil {
		h.logger.Warn("record audit", slog.Any("error", err))
	}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

package payouts

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ajovest/ajovest-console/internal/audit"
	"github.com/ajovest/ajovest-console/internal/authz"
	"github.com/ajovest/ajovest-console/internal/platform/httpx"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/internal/view"
	"github.com/ajovest/ajovest-console/internal/view/table"
)

// Handler serves the payout-request pages.
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

// WithStatsInvalidator registers a callback fired after status changes so
// cached dashboard figures do not go stale.
func (h *Handler) WithStatsInvalidator(fn func()) *Handler {
	h.invalidate = fn
	return h
}

// MountRoutes registers payout routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapViewPayouts))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapUpdatePayoutStatus))
		r.Post("/{id}/approve", h.approve)
		r.Post("/{id}/reject", h.reject)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
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
		h.logger.Error("list payouts", slog.Any("error", err))
		model := table.Build(columns(), nil, nil, table.Options{Filter: q.Search})
		h.render.PageWithBanner(w, r, "pages/payouts/list.html", "Payout Requests",
			upstream.BannerMessage(err, "payout requests"), map[string]any{"Table": model}, http.StatusOK)
		return
	}

	role, _ := session.RoleOf(session.FromContext(r.Context()))
	model := table.Build(columns(), actions(role), page.Items, table.Options{
		Filter:      q.Search,
		Controlled:  true,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		Total:       page.Total,
		BaseURL:     "/payouts",
		Params:      url.Values{"search": {q.Search}, "status": {q.Status}},
	})
	h.render.Page(w, r, "pages/payouts/list.html", "Payout Requests",
		map[string]any{"Table": model, "Status": q.Status}, http.StatusOK)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, StatusCompleted, "Payout approved")
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, StatusRejected, "Payout rejected")
}

// setStatus issues the single upstream PATCH and answers the page. JSON
// requests get the locally patched row back so the page updates in place
// without a collection re-fetch; form posts fall back to redirect + flash.
func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status, successMsg string) {
	id := chi.URLParam(r, "id")
	if err := h.service.SetStatus(r.Context(), id, status); err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("payout status", slog.String("id", id), slog.String("status", status), slog.Any("error", err))
		if wantsJSON(r) {
			httpx.RespondError(w, err)
			return
		}
		h.render.RedirectWithFlash(w, r, "/payouts", "error", upstream.BannerMessage(err, "payout request"))
		return
	}

	h.recordAudit(r, status, id)
	if h.invalidate != nil {
		h.invalidate()
	}

	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "status": status})
		return
	}
	h.render.RedirectWithFlash(w, r, "/payouts", "success", successMsg)
}

func (h *Handler) recordAudit(r *http.Request, status, id string) {
	sess := session.FromContext(r.Context())
	if sess == nil || h.audit == nil {
		return
	}
	entry := audit.Entry{
		ActorID:   sess.User.ID,
		ActorRole: string(sess.Role()),
		Action:    "payout." + status,
		Entity:    "payout",
		EntityID:  id,
	}
	if err := h.audit.Record(r.Context(), entry); err != nil {
		h.logger.Warn("record audit", slog.Any("error", err))
	}
}

func columns() []table.Column[Payout] {
	return []table.Column[Payout]{
		{Key: "memberName", Label: "Member", Value: func(p Payout) string { return p.MemberName }, Searchable: true},
		{Key: "groupName", Label: "Group", Value: func(p Payout) string { return p.GroupName }, Searchable: true},
		{Key: "amount", Label: "Amount", Value: func(p Payout) string { return view.Money(p.Amount) }},
		{Key: "status", Label: "Status", Value: func(p Payout) string { return p.Status }},
		{Key: "requestedAt", Label: "Requested", Value: func(p Payout) string { return p.RequestedAt.Format("02 Jan 2006") }},
	}
}

func actions(role authz.Role) []table.Action[Payout] {
	if !authz.Allows(role, authz.CapUpdatePayoutStatus) {
		return nil
	}
	return []table.Action[Payout]{
		{
			Label:    "Approve",
			Method:   "POST",
			URL:      func(p Payout) string { return "/payouts/" + p.ID + "/approve" },
			Disabled: func(p Payout) bool { return p.Status != StatusPending },
		},
		{
			Label:    "Reject",
			Method:   "POST",
			Confirm:  "Reject this payout request?",
			URL:      func(p Payout) string { return "/payouts/" + p.ID + "/reject" },
			Disabled: func(p Payout) bool { return p.Status != StatusPending },
		},
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

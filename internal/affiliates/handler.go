package affiliates

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ajovest/ajovest-console/internal/audit"
	"github.com/ajovest/ajovest-console/internal/authz"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/internal/view"
	"github.com/ajovest/ajovest-console/internal/view/table"
)

// Handler serves the affiliate-account pages.
type Handler struct {
	logger  *slog.Logger
	service *Service
	render  *view.Renderer
	audit   *audit.Logger
	authz   authz.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, render *view.Renderer, auditLog *audit.Logger, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, render: render, audit: auditLog, authz: mw}
}

// MountRoutes registers affiliate routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapViewAffiliates))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapApproveAffiliate))
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
		h.logger.Error("list affiliates", slog.Any("error", err))
		model := table.Build(columns(), nil, nil, table.Options{Filter: q.Search})
		h.render.PageWithBanner(w, r, "pages/affiliates/list.html", "Affiliates",
			upstream.BannerMessage(err, "affiliates"), map[string]any{"Table": model}, http.StatusOK)
		return
	}

	role, _ := session.RoleOf(session.FromContext(r.Context()))
	model := table.Build(columns(), actions(role), page.Items, table.Options{
		Filter:      q.Search,
		Controlled:  true,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		Total:       page.Total,
		BaseURL:     "/affiliates",
		Params:      url.Values{"search": {q.Search}, "status": {q.Status}},
	})
	h.render.Page(w, r, "pages/affiliates/list.html", "Affiliates",
		map[string]any{"Table": model, "Status": q.Status}, http.StatusOK)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, StatusApproved, "Affiliate approved")
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, StatusRejected, "Affiliate rejected")
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status, successMsg string) {
	id := chi.URLParam(r, "id")
	if err := h.service.SetStatus(r.Context(), id, status); err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("affiliate status", slog.String("id", id), slog.Any("error", err))
		h.render.RedirectWithFlash(w, r, "/affiliates", "error", upstream.BannerMessage(err, "affiliate"))
		return
	}
	if sess := session.FromContext(r.Context()); sess != nil && h.audit != nil {
		entry := audit.Entry{
			ActorID:   sess.User.ID,
			ActorRole: string(sess.Role()),
			Action:    "affiliate." + status,
			Entity:    "affiliate",
			EntityID:  id,
		}
		if err := h.audit.Record(r.Context(), entry); err != nil {
			h.logger.Warn("record audit", slog.Any("error", err))
		}
	}
	h.render.RedirectWithFlash(w, r, "/affiliates", "success", successMsg)
}

func columns() []table.Column[Affiliate] {
	return []table.Column[Affiliate]{
		{Key: "name", Label: "Name", Value: func(a Affiliate) string { return a.Name }, Searchable: true},
		{Key: "email", Label: "Email", Value: func(a Affiliate) string { return a.Email }, Searchable: true},
		{Key: "code", Label: "Code", Value: func(a Affiliate) string { return a.Code }},
		{Key: "referrals", Label: "Referrals", Value: func(a Affiliate) string { return strconv.Itoa(a.Referrals) }},
		{Key: "status", Label: "Status", Value: func(a Affiliate) string { return a.Status }},
		{Key: "appliedAt", Label: "Applied", Value: func(a Affiliate) string { return a.AppliedAt.Format("02 Jan 2006") }},
	}
}

func actions(role authz.Role) []table.Action[Affiliate] {
	if !authz.Allows(role, authz.CapApproveAffiliate) {
		return nil
	}
	return []table.Action[Affiliate]{
		{
			Label:    "Approve",
			Method:   "POST",
			URL:      func(a Affiliate) string { return "/affiliates/" + a.ID + "/approve" },
			Disabled: func(a Affiliate) bool { return a.Status != StatusPending },
		},
		{
			Label:    "Reject",
			Method:   "POST",
			Confirm:  "Reject this affiliate application?",
			URL:      func(a Affiliate) string { return "/affiliates/" + a.ID + "/reject" },
			Disabled: func(a Affiliate) bool { return a.Status != StatusPending },
		},
	}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

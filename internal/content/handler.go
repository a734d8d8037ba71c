package content

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

// Handler serves the blog/knowledge-base management pages.
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

// MountRoutes registers content routes. Every content operation is gated by
// the same capability.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapManageContent))
		r.Get("/", h.list)
		r.Post("/{id}/publish", h.publish)
		r.Post("/{id}/unpublish", h.unpublish)
		r.Post("/{id}/delete", h.remove)
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
		h.logger.Error("list posts", slog.Any("error", err))
		model := table.Build(columns(), nil, nil, table.Options{Filter: q.Search})
		h.render.PageWithBanner(w, r, "pages/content/list.html", "Content",
			upstream.BannerMessage(err, "posts"), map[string]any{"Table": model}, http.StatusOK)
		return
	}

	model := table.Build(columns(), actions(), page.Items, table.Options{
		Filter:      q.Search,
		Controlled:  true,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		Total:       page.Total,
		BaseURL:     "/content",
		Params:      url.Values{"search": {q.Search}, "status": {q.Status}},
	})
	h.render.Page(w, r, "pages/content/list.html", "Content",
		map[string]any{"Table": model, "Status": q.Status}, http.StatusOK)
}

func (h *Handler) publish(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "publish", "Post published", func(id string) error {
		return h.service.SetStatus(r.Context(), id, StatusPublished)
	})
}

func (h *Handler) unpublish(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "unpublish", "Post unpublished", func(id string) error {
		return h.service.SetStatus(r.Context(), id, StatusDraft)
	})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "delete", "Post deleted", func(id string) error {
		return h.service.Delete(r.Context(), id)
	})
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, action, successMsg string, op func(string) error) {
	id := chi.URLParam(r, "id")
	if err := op(id); err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("post "+action, slog.String("id", id), slog.Any("error", err))
		h.render.RedirectWithFlash(w, r, "/content", "error", upstream.BannerMessage(err, "post"))
		return
	}
	if sess := session.FromContext(r.Context()); sess != nil && h.audit != nil {
		entry := audit.Entry{
			ActorID:   sess.User.ID,
			ActorRole: string(sess.Role()),
			Action:    "post." + action,
			Entity:    "post",
			EntityID:  id,
		}
		if err := h.audit.Record(r.Context(), entry); err != nil {
			h.logger.Warn("record audit", slog.Any("error", err))
		}
	}
	h.render.RedirectWithFlash(w, r, "/content", "success", successMsg)
}

func columns() []table.Column[Post] {
	return []table.Column[Post]{
		{Key: "title", Label: "Title", Value: func(p Post) string { return p.Title }, Searchable: true},
		{Key: "category", Label: "Category", Value: func(p Post) string { return p.Category }},
		{Key: "author", Label: "Author", Value: func(p Post) string { return p.Author }, Searchable: true},
		{Key: "status", Label: "Status", Value: func(p Post) string { return p.Status }},
		{Key: "updatedAt", Label: "Updated", Value: func(p Post) string { return p.UpdatedAt.Format("02 Jan 2006") }},
	}
}

func actions() []table.Action[Post] {
	return []table.Action[Post]{
		{
			Label:    "Publish",
			Method:   "POST",
			URL:      func(p Post) string { return "/content/" + p.ID + "/publish" },
			Disabled: func(p Post) bool { return p.Status == StatusPublished },
		},
		{
			Label:    "Unpublish",
			Method:   "POST",
			URL:      func(p Post) string { return "/content/" + p.ID + "/unpublish" },
			Disabled: func(p Post) bool { return p.Status != StatusPublished },
		},
		{
			Label:   "Delete",
			Method:  "POST",
			Confirm: "Delete this post permanently?",
			URL:     func(p Post) string { return "/content/" + p.ID + "/delete" },
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

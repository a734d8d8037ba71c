package groups

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ajovest/ajovest-console/internal/authz"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/internal/view"
	"github.com/ajovest/ajovest-console/internal/view/table"
)

// Handler serves the savings-group pages.
type Handler struct {
	logger  *slog.Logger
	service *Service
	render  *view.Renderer
	authz   authz.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, render *view.Renderer, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, render: render, authz: mw}
}

// MountRoutes registers group routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapViewGroups))
		r.Get("/", h.list)
		r.Get("/{id}", h.detail)
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
		h.logger.Error("list groups", slog.Any("error", err))
		model := table.Build(h.columns(r), nil, nil, table.Options{Filter: q.Search})
		h.render.PageWithBanner(w, r, "pages/groups/list.html", "Groups",
			upstream.BannerMessage(err, "groups"), map[string]any{"Table": model}, http.StatusOK)
		return
	}

	model := table.Build(h.columns(r), actions(), page.Items, table.Options{
		Filter:      q.Search,
		Controlled:  true,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		Total:       page.Total,
		BaseURL:     "/groups",
		Params:      url.Values{"search": {q.Search}, "status": {q.Status}},
	})
	h.render.Page(w, r, "pages/groups/list.html", "Groups",
		map[string]any{"Table": model, "Status": q.Status}, http.StatusOK)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("get group", slog.String("id", id), slog.Any("error", err))
		h.render.PageWithBanner(w, r, "pages/groups/detail.html", "Group",
			upstream.BannerMessage(err, "group"), nil, http.StatusOK)
		return
	}
	h.render.Page(w, r, "pages/groups/detail.html", detail.Group.Name,
		map[string]any{"Detail": detail}, http.StatusOK)
}

// columns includes the contribution amount only for roles allowed to see
// financial figures.
func (h *Handler) columns(r *http.Request) []table.Column[Group] {
	role, _ := session.RoleOf(session.FromContext(r.Context()))
	cols := []table.Column[Group]{
		{Key: "name", Label: "Name", Value: func(g Group) string { return g.Name }, Searchable: true},
		{Key: "status", Label: "Status", Value: func(g Group) string { return g.Status }},
		{Key: "members", Label: "Members", Value: func(g Group) string {
			return strconv.Itoa(g.MemberCount) + "/" + strconv.Itoa(g.Capacity)
		}},
		{Key: "frequency", Label: "Frequency", Value: func(g Group) string { return g.Frequency }},
		{Key: "round", Label: "Round", Value: func(g Group) string { return strconv.Itoa(g.CurrentRound) }},
	}
	if authz.Allows(role, authz.CapViewFinancials) {
		cols = append(cols, table.Column[Group]{
			Key: "contribution", Label: "Contribution",
			Value: func(g Group) string { return view.Money(g.ContributionAmount) },
		})
	}
	return cols
}

func actions() []table.Action[Group] {
	return []table.Action[Group]{
		{Label: "View", URL: func(g Group) string { return "/groups/" + g.ID }},
	}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

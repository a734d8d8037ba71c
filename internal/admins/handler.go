package admins

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ajovest/ajovest-console/internal/audit"
	"github.com/ajovest/ajovest-console/internal/authz"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/internal/view"
	"github.com/ajovest/ajovest-console/internal/view/table"
)

// Handler serves the staff-account pages and the active-sessions view.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	registry *session.Registry
	render   *view.Renderer
	audit    *audit.Logger
	authz    authz.Middleware
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, registry *session.Registry, render *view.Renderer, auditLog *audit.Logger, mw authz.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		registry: registry,
		render:   render,
		audit:    auditLog,
		authz:    mw,
		validate: validator.New(),
	}
}

// MountRoutes registers staff-account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapCreateAdmin))
		r.Get("/", h.list)
		r.Get("/new", h.showCreate)
		r.Post("/", h.create)
	})
}

// MountSessionRoutes registers the active-sessions view.
func (h *Handler) MountSessionRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapViewSessions))
		r.Get("/", h.sessions)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := upstream.Query{Page: pageParam(r), Search: r.URL.Query().Get("search")}

	page, err := h.service.List(r.Context(), q)
	if err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("list admins", slog.Any("error", err))
		model := table.Build(columns(), nil, nil, table.Options{Filter: q.Search})
		h.render.PageWithBanner(w, r, "pages/admins/list.html", "Admin Accounts",
			upstream.BannerMessage(err, "admin accounts"), map[string]any{"Table": model}, http.StatusOK)
		return
	}

	model := table.Build(columns(), nil, page.Items, table.Options{
		Filter:      q.Search,
		Controlled:  true,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		Total:       page.Total,
		BaseURL:     "/admins",
		Params:      url.Values{"search": {q.Search}},
	})
	h.render.Page(w, r, "pages/admins/list.html", "Admin Accounts",
		map[string]any{"Table": model}, http.StatusOK)
}

type createForm struct {
	Name  string `validate:"required,min=2"`
	Email string `validate:"required,email"`
	Role  string `validate:"required"`
}

type createData struct {
	Form   createForm
	Errors map[string]string
	Roles  []authz.Role
}

func (h *Handler) showCreate(w http.ResponseWriter, r *http.Request) {
	h.render.Page(w, r, "pages/admins/form.html", "New Admin Account",
		createData{Roles: authz.Roles()}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := createForm{
		Name:  strings.TrimSpace(r.PostFormValue("name")),
		Email: strings.TrimSpace(r.PostFormValue("email")),
		Role:  r.PostFormValue("role"),
	}
	formErrors := make(map[string]string)
	if err := h.validate.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			formErrors[fieldErr.Field()] = "Please provide a valid " + strings.ToLower(fieldErr.Field())
		}
	}
	if role, _ := authz.ParseRole(form.Role); form.Role != "" && !role.Valid() {
		formErrors["Role"] = "Unknown role"
	}
	if len(formErrors) > 0 {
		// Validation failures never reach the platform API.
		h.render.Page(w, r, "pages/admins/form.html", "New Admin Account",
			createData{Form: form, Errors: formErrors, Roles: authz.Roles()}, http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), CreateInput(form))
	if err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("create admin", slog.Any("error", err))
		h.render.PageWithBanner(w, r, "pages/admins/form.html", "New Admin Account",
			upstream.BannerMessage(err, "admin account"),
			createData{Form: form, Roles: authz.Roles()}, http.StatusOK)
		return
	}

	if sess := session.FromContext(r.Context()); sess != nil && h.audit != nil {
		entry := audit.Entry{
			ActorID:   sess.User.ID,
			ActorRole: string(sess.Role()),
			Action:    "admin.create",
			Entity:    "admin",
			EntityID:  created.ID,
			Meta:      map[string]any{"role": form.Role},
		}
		if err := h.audit.Record(r.Context(), entry); err != nil {
			h.logger.Warn("record audit", slog.Any("error", err))
		}
	}
	h.render.RedirectWithFlash(w, r, "/admins", "success", "Admin account created")
}

// sessions lists active console sessions from the local registry. The data
// set is small, so the table runs in uncontrolled search-only mode.
func (h *Handler) sessions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.registry.ListActive(r.Context())
	if err != nil {
		h.logger.Error("list sessions", slog.Any("error", err))
		h.render.PageWithBanner(w, r, "pages/admins/sessions.html", "Active Sessions",
			"Failed to load active sessions. Please try again.", map[string]any{}, http.StatusOK)
		return
	}

	filter := r.URL.Query().Get("search")
	model := table.Build(sessionColumns(), nil, entries, table.Options{Filter: filter})
	h.render.Page(w, r, "pages/admins/sessions.html", "Active Sessions",
		map[string]any{"Table": model}, http.StatusOK)
}

func columns() []table.Column[Admin] {
	return []table.Column[Admin]{
		{Key: "name", Label: "Name", Value: func(a Admin) string { return a.Name }, Searchable: true},
		{Key: "email", Label: "Email", Value: func(a Admin) string { return a.Email }, Searchable: true},
		{Key: "role", Label: "Role", Value: func(a Admin) string { return a.Role }},
		{Key: "status", Label: "Status", Value: func(a Admin) string { return a.Status }},
		{Key: "createdAt", Label: "Created", Value: func(a Admin) string { return a.CreatedAt.Format("02 Jan 2006") }},
	}
}

func sessionColumns() []table.Column[session.RegistryEntry] {
	return []table.Column[session.RegistryEntry]{
		{Key: "email", Label: "Email", Value: func(e session.RegistryEntry) string { return e.Email }, Searchable: true},
		{Key: "role", Label: "Role", Value: func(e session.RegistryEntry) string { return e.Role }},
		{Key: "ip", Label: "IP", Value: func(e session.RegistryEntry) string { return e.IP }},
		{Key: "userAgent", Label: "Client", Value: func(e session.RegistryEntry) string { return e.UserAgent }},
		{Key: "createdAt", Label: "Signed in", Value: func(e session.RegistryEntry) string { return e.CreatedAt.Format("02 Jan 2006 15:04") }},
		{Key: "expiresAt", Label: "Expires", Value: func(e session.RegistryEntry) string { return e.ExpiresAt.Format("02 Jan 2006 15:04") }},
	}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

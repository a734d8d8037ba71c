package tickets

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

// Handler serves the support-ticket pages.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	render   *view.Renderer
	audit    *audit.Logger
	authz    authz.Middleware
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, render *view.Renderer, auditLog *audit.Logger, mw authz.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		render:   render,
		audit:    auditLog,
		authz:    mw,
		validate: validator.New(),
	}
}

// MountRoutes registers ticket routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapViewTickets))
		r.Get("/", h.list)
		r.Get("/{id}", h.detail)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapRespondToTicket))
		r.Post("/{id}/reply", h.reply)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapUpdateTicketStatus))
		r.Post("/{id}/status", h.setStatus)
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
		h.logger.Error("list tickets", slog.Any("error", err))
		model := table.Build(columns(), nil, nil, table.Options{Filter: q.Search})
		h.render.PageWithBanner(w, r, "pages/tickets/list.html", "Support Tickets",
			upstream.BannerMessage(err, "tickets"), map[string]any{"Table": model}, http.StatusOK)
		return
	}

	model := table.Build(columns(), actions(), page.Items, table.Options{
		Filter:      q.Search,
		Controlled:  true,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		Total:       page.Total,
		BaseURL:     "/tickets",
		Params:      url.Values{"search": {q.Search}, "status": {q.Status}},
	})
	h.render.Page(w, r, "pages/tickets/list.html", "Support Tickets",
		map[string]any{"Table": model, "Status": q.Status}, http.StatusOK)
}

type detailData struct {
	Thread     Thread
	CanRespond bool
	CanSetStat bool
	Statuses   []string
	FormErrors map[string]string
	ReplyDraft string
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	h.renderDetail(w, r, chi.URLParam(r, "id"), nil, "")
}

func (h *Handler) renderDetail(w http.ResponseWriter, r *http.Request, id string, formErrors map[string]string, draft string) {
	thread, err := h.service.Get(r.Context(), id)
	if err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("get ticket", slog.String("id", id), slog.Any("error", err))
		h.render.PageWithBanner(w, r, "pages/tickets/detail.html", "Ticket",
			upstream.BannerMessage(err, "ticket"), nil, http.StatusOK)
		return
	}
	role, _ := session.RoleOf(session.FromContext(r.Context()))
	data := detailData{
		Thread:     thread,
		CanRespond: authz.Allows(role, authz.CapRespondToTicket),
		CanSetStat: authz.Allows(role, authz.CapUpdateTicketStatus),
		Statuses:   []string{StatusOpen, StatusInProgress, StatusResolved, StatusClosed},
		FormErrors: formErrors,
		ReplyDraft: draft,
	}
	status := http.StatusOK
	if len(formErrors) > 0 {
		status = http.StatusBadRequest
	}
	h.render.Page(w, r, "pages/tickets/detail.html", thread.Ticket.Subject, data, status)
}

type replyForm struct {
	Message string `validate:"required,min=2,max=5000"`
}

func (h *Handler) reply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := replyForm{Message: strings.TrimSpace(r.PostFormValue("message"))}
	if err := h.validate.Struct(form); err != nil {
		// Validation failures never reach the platform API.
		h.renderDetail(w, r, id, map[string]string{"message": "Reply must be between 2 and 5000 characters"}, form.Message)
		return
	}

	if err := h.service.Reply(r.Context(), id, form.Message); err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("reply ticket", slog.String("id", id), slog.Any("error", err))
		h.render.RedirectWithFlash(w, r, "/tickets/"+id, "error", upstream.BannerMessage(err, "ticket"))
		return
	}
	h.recordAudit(r, "reply", id, nil)
	h.render.RedirectWithFlash(w, r, "/tickets/"+id, "success", "Reply sent")
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := r.PostFormValue("status")
	if !ValidStatus(status) {
		h.renderDetail(w, r, id, map[string]string{"status": "Unknown ticket status"}, "")
		return
	}

	if err := h.service.SetStatus(r.Context(), id, status); err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("ticket status", slog.String("id", id), slog.Any("error", err))
		h.render.RedirectWithFlash(w, r, "/tickets/"+id, "error", upstream.BannerMessage(err, "ticket"))
		return
	}
	h.recordAudit(r, "status", id, map[string]any{"status": status})
	h.render.RedirectWithFlash(w, r, "/tickets/"+id, "success", "Ticket updated")
}

func (h *Handler) recordAudit(r *http.Request, action, id string, meta map[string]any) {
	sess := session.FromContext(r.Context())
	if sess == nil || h.audit == nil {
		return
	}
	entry := audit.Entry{
		ActorID:   sess.User.ID,
		ActorRole: string(sess.Role()),
		Action:    "ticket." + action,
		Entity:    "ticket",
		EntityID:  id,
		Meta:      meta,
	}
	if err := h.audit.Record(r.Context(), entry); err != nil {
		h.logger.Warn("record audit", slog.Any("error", err))
	}
}

func columns() []table.Column[Ticket] {
	return []table.Column[Ticket]{
		{Key: "subject", Label: "Subject", Value: func(t Ticket) string { return t.Subject }, Searchable: true},
		{Key: "memberName", Label: "Member", Value: func(t Ticket) string { return t.MemberName }, Searchable: true},
		{Key: "priority", Label: "Priority", Value: func(t Ticket) string { return t.Priority }},
		{Key: "status", Label: "Status", Value: func(t Ticket) string { return t.Status }},
		{Key: "createdAt", Label: "Opened", Value: func(t Ticket) string { return t.CreatedAt.Format("02 Jan 2006") }},
	}
}

func actions() []table.Action[Ticket] {
	return []table.Action[Ticket]{
		{Label: "Open", URL: func(t Ticket) string { return "/tickets/" + t.ID }},
	}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

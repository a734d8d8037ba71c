package transactions

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ajovest/ajovest-console/internal/authz"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/internal/view"
	"github.com/ajovest/ajovest-console/internal/view/table"
)

// Handler serves the transaction ledger pages.
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

// MountRoutes registers transaction routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapViewTransactions))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapExportTransactions))
		r.Get("/export", h.exportCSV)
	})
}

func (h *Handler) query(r *http.Request) upstream.Query {
	return upstream.Query{
		Page:      pageParam(r),
		Search:    r.URL.Query().Get("search"),
		Type:      r.URL.Query().Get("type"),
		StartDate: dateParam(r, "startDate"),
		EndDate:   dateParam(r, "endDate"),
	}
}

type listData struct {
	Table       table.Model
	Query       upstream.Query
	CanExport   bool
	ExportQuery string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := h.query(r)
	role, _ := session.RoleOf(session.FromContext(r.Context()))

	params := url.Values{
		"search":    {q.Search},
		"type":      {q.Type},
		"startDate": {q.StartDate},
		"endDate":   {q.EndDate},
	}
	data := listData{
		Query:       q,
		CanExport:   authz.Allows(role, authz.CapExportTransactions),
		ExportQuery: "?" + params.Encode(),
	}

	page, err := h.service.List(r.Context(), q)
	if err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("list transactions", slog.Any("error", err))
		data.Table = table.Build(columns(), nil, nil, table.Options{Filter: q.Search})
		h.render.PageWithBanner(w, r, "pages/transactions/list.html", "Transactions",
			upstream.BannerMessage(err, "transactions"), data, http.StatusOK)
		return
	}

	data.Table = table.Build(columns(), nil, page.Items, table.Options{
		Filter:      q.Search,
		Controlled:  true,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		Total:       page.Total,
		BaseURL:     "/transactions",
		Params:      params,
	})
	h.render.Page(w, r, "pages/transactions/list.html", "Transactions", data, http.StatusOK)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	q := h.query(r)
	rows, err := h.service.ListAll(r.Context(), q)
	if err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("export transactions", slog.Any("error", err))
		h.render.RedirectWithFlash(w, r, "/transactions", "error",
			upstream.BannerMessage(err, "transactions"))
		return
	}

	rangeLabel := ""
	if q.StartDate != "" || q.EndDate != "" {
		rangeLabel = q.StartDate + " to " + q.EndDate
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := writeExport(w, rangeLabel, rows); err != nil {
		h.logger.Error("write transaction csv", slog.Any("error", err))
	}
}

func columns() []table.Column[Transaction] {
	return []table.Column[Transaction]{
		{Key: "reference", Label: "Reference", Value: func(t Transaction) string { return t.Reference }, Searchable: true},
		{Key: "memberName", Label: "Member", Value: func(t Transaction) string { return t.MemberName }, Searchable: true},
		{Key: "groupName", Label: "Group", Value: func(t Transaction) string { return t.GroupName }},
		{Key: "type", Label: "Type", Value: func(t Transaction) string { return t.Type }},
		{Key: "amount", Label: "Amount", Value: func(t Transaction) string { return view.Money(t.Amount) }},
		{Key: "status", Label: "Status", Value: func(t Transaction) string { return t.Status }},
		{Key: "createdAt", Label: "Date", Value: func(t Transaction) string { return t.CreatedAt.Format("02 Jan 2006 15:04") }},
	}
}

// dateParam validates an ISO date query parameter, dropping malformed values
// instead of passing them upstream.
func dateParam(r *http.Request, name string) string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return ""
	}
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		return ""
	}
	return raw
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

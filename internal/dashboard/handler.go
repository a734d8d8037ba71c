package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ajovest/ajovest-console/internal/authz"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/internal/view"
)

// Handler serves the console home page.
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

// MountRoutes registers the dashboard route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapViewDashboard))
		r.Get("/", h.home)
	})
}

type homeData struct {
	Stats          Stats
	ShowFinancials bool
	Contributions  string
	Payouts        string
	Wallet         string
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	showFinancials := authz.Allows(sess.Role(), authz.CapViewFinancials)

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		if h.render.Interrupted(w, r, err) {
			return
		}
		h.logger.Error("load dashboard stats", slog.Any("error", err))
		h.render.PageWithBanner(w, r, "pages/home.html", "Dashboard",
			upstream.BannerMessage(err, "dashboard statistics"),
			homeData{ShowFinancials: showFinancials}, http.StatusOK)
		return
	}

	data := homeData{Stats: stats, ShowFinancials: showFinancials}
	if showFinancials {
		data.Contributions = view.Money(stats.TotalContributions)
		data.Payouts = view.Money(stats.TotalPayouts)
		data.Wallet = view.Money(stats.WalletBalance)
	}
	h.render.Page(w, r, "pages/home.html", "Dashboard", data, http.StatusOK)
}

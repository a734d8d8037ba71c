package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ajovest/ajovest-console/internal/observability"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/internal/view"
)

// Handler wires HTTP endpoints for the login and logout flows.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	store      *session.Store
	registry   *session.Registry
	render     *view.Renderer
	metrics    *observability.Metrics
	validator  *validator.Validate
	durableTTL time.Duration
	secure     bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, store *session.Store, registry *session.Registry, render *view.Renderer, metrics *observability.Metrics, durableTTL time.Duration, secure bool) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		store:      store,
		registry:   registry,
		render:     render,
		metrics:    metrics,
		validator:  validator.New(),
		durableTTL: durableTTL,
		secure:     secure,
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Remember bool
	Next     string
}

type loginPageData struct {
	Form    loginForm
	Errors  map[string]string
	Expired bool
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if sess := session.FromContext(r.Context()); sess.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := loginPageData{
		Form:    loginForm{Next: safeNext(r.URL.Query().Get("next"))},
		Expired: r.URL.Query().Get("expired") == "1",
	}
	h.render.Page(w, r, "pages/login.html", "Sign in", data, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Remember: r.PostFormValue("remember") == "1",
		Next:     safeNext(r.PostFormValue("next")),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				switch fieldErr.Field() {
				case "Email":
					formErrors["Email"] = "Please provide a valid email address"
				case "Password":
					formErrors["Password"] = "Password must be at least 8 characters"
				}
			}
		}
	}

	if len(formErrors) == 0 {
		creds, err := h.service.Login(r.Context(), form.Email, form.Password)
		switch {
		case err == nil && creds.Token != "":
			h.metrics.Login("success")
			h.establishSession(w, r, form, creds)
			return
		case upstream.Canceled(err):
			return
		case errors.Is(err, upstream.ErrAuthExpired):
			h.metrics.Login("failure")
			formErrors["general"] = "Invalid email or password"
		default:
			h.metrics.Login("failure")
			var apiErr *upstream.APIError
			if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
				formErrors["general"] = "Invalid email or password"
			} else {
				h.logger.Error("login upstream", slog.Any("error", err))
				formErrors["general"] = "Sign in is temporarily unavailable. Please try again."
			}
		}
	}

	form.Password = ""
	h.render.Page(w, r, "pages/login.html", "Sign in",
		loginPageData{Form: form, Errors: formErrors}, http.StatusBadRequest)
}

func (h *Handler) establishSession(w http.ResponseWriter, r *http.Request, form loginForm, creds Credentials) {
	scope := session.ScopeEphemeral
	if form.Remember {
		scope = session.ScopeDurable
	}

	sess := &session.Session{
		Token:    creds.Token,
		RoleName: creds.Role,
		User:     creds.User,
	}
	if err := h.store.Create(r.Context(), sess, scope); err != nil {
		h.logger.Error("create session", slog.Any("error", err))
		h.render.Page(w, r, "pages/login.html", "Sign in",
			loginPageData{Form: loginForm{Email: form.Email, Next: form.Next}, Errors: map[string]string{
				"general": "Sign in is temporarily unavailable. Please try again.",
			}}, http.StatusInternalServerError)
		return
	}
	session.WriteCookie(w, sess, h.durableTTL, h.secure)

	expiresAt := time.Now().Add(h.durableTTL)
	if err := h.registry.Register(r.Context(), session.RegistryEntry{
		SessionID: sess.ID,
		UserID:    sess.User.ID,
		Email:     sess.User.Email,
		Role:      string(sess.Role()),
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
		ExpiresAt: expiresAt,
	}); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	h.logger.Info("staff signed in",
		slog.String("user", sess.User.ID),
		slog.String("role", string(sess.Role())),
		slog.String("scope", string(scope)))

	target := form.Next
	if target == "" {
		target = "/"
	}
	h.render.RedirectWithFlash(w, r, target, "success", "Welcome back")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := session.FromContext(r.Context()); sess != nil {
		if err := h.store.Destroy(r.Context(), sess.ID); err != nil {
			h.logger.Warn("destroy session", slog.Any("error", err))
		}
		if err := h.registry.Remove(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session record", slog.Any("error", err))
		}
	}
	session.ClearCookie(w, h.secure)
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// safeNext keeps post-login redirects on this host. Absolute URLs and
// protocol-relative paths are rejected.
func safeNext(next string) string {
	if next == "" {
		return ""
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	if u, err := url.Parse(next); err != nil || u.Host != "" {
		return ""
	}
	return next
}

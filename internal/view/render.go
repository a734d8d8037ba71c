package view

import (
	"log/slog"
	"net/http"

	"github.com/ajovest/ajovest-console/internal/authz"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/internal/shared"
)

// Renderer is the single page-composition path: it resolves the actor once,
// derives the role-filtered navigation, attaches CSRF and flash state, and
// executes the template. Handlers never assemble TemplateData by hand.
type Renderer struct {
	Logger *slog.Logger
	Engine *Engine
	CSRF   *shared.CSRFManager
}

// Page renders a console page with the shared chrome.
func (rd *Renderer) Page(w http.ResponseWriter, r *http.Request, template, title string, data any, status int) {
	rd.page(w, r, template, title, "", data, status)
}

// PageWithBanner renders a page with a page-local error banner above the
// content. The banner is for fetch failures; the page itself still renders.
func (rd *Renderer) PageWithBanner(w http.ResponseWriter, r *http.Request, template, title, banner string, data any, status int) {
	rd.page(w, r, template, title, banner, data, status)
}

func (rd *Renderer) page(w http.ResponseWriter, r *http.Request, template, title, banner string, data any, status int) {
	viewData := TemplateData{
		Title:       title,
		CSRFToken:   rd.CSRF.EnsureToken(w, r),
		Flash:       PopFlash(w, r),
		Banner:      banner,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if sess := session.FromContext(r.Context()); sess != nil {
		viewData.ActorName = sess.User.Name
		viewData.ActorRole = sess.Role().Label()
		viewData.Nav = BuildNav(sess.Role(), r.URL.Path)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := rd.Engine.Render(w, template, viewData); err != nil {
		rd.Logger.Error("render template", slog.String("template", template), slog.Any("error", err))
	}
}

// Denied renders the access-denied page; wired as the authz middleware's
// denied handler.
func (rd *Renderer) Denied() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewData := TemplateData{
			Title:       "Access denied",
			CurrentPath: r.URL.Path,
		}
		if sess := session.FromContext(r.Context()); sess != nil {
			viewData.ActorName = sess.User.Name
			viewData.ActorRole = sess.Role().Label()
			viewData.Nav = BuildNav(sess.Role(), r.URL.Path)
		}
		if err := rd.Engine.Render(w, "pages/access_denied.html", viewData); err != nil {
			rd.Logger.Error("render access denied", slog.Any("error", err))
		}
	})
}

// Interrupted consumes the fetch errors that must not reach a banner: a
// canceled request ends silently, and an expired session forces navigation
// to login with the expired marker and the intended destination preserved.
// Returns true when the response has already been written (or deliberately
// left unwritten) and the handler must stop.
func (rd *Renderer) Interrupted(w http.ResponseWriter, r *http.Request, err error) bool {
	if upstream.Canceled(err) {
		return true
	}
	if upstream.AuthExpired(err) {
		authz.RedirectToLogin(w, r, true)
		return true
	}
	return false
}

// RedirectWithFlash queues a flash message and redirects.
func (rd *Renderer) RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	SetFlash(w, kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

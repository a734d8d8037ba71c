package authz

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
)

// LoginPath is the console's authentication entry point.
const LoginPath = "/auth/login"

// Middleware gates routes on the capability matrix. The role resolver is
// injected so this package stays free of storage concerns.
type Middleware struct {
	Logger *slog.Logger
	// CurrentRole resolves the actor's role; the bool reports whether the
	// request carries an authenticated session at all.
	CurrentRole func(ctx context.Context) (Role, bool)
	// Denied renders the access-denied page for authenticated actors whose
	// role is not in the allow-list. Nil falls back to a bare 403.
	Denied http.Handler
}

// Require ensures the current actor holds the capability. Unauthenticated
// visitors are redirected to login with the intended destination preserved;
// authenticated actors outside the allow-list get the access-denied page.
func (m Middleware) Require(cap Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, authenticated := m.CurrentRole(r.Context())
			if !authenticated {
				RedirectToLogin(w, r, false)
				return
			}
			if Allows(role, cap) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("capability denied",
					slog.String("capability", string(cap)),
					slog.String("role", string(role)),
					slog.String("path", r.URL.Path))
			}
			if m.Denied != nil {
				w.WriteHeader(http.StatusForbidden)
				m.Denied.ServeHTTP(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RedirectToLogin sends the visitor to the login page, preserving the
// originally requested destination. expired adds the marker that lets the
// login page show the "session expired" message instead of the fresh one.
func RedirectToLogin(w http.ResponseWriter, r *http.Request, expired bool) {
	values := url.Values{}
	if next := r.URL.RequestURI(); next != "" && next != LoginPath {
		values.Set("next", next)
	}
	if expired {
		values.Set("expired", "1")
	}
	target := LoginPath
	if encoded := values.Encode(); encoded != "" {
		target += "?" + encoded
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

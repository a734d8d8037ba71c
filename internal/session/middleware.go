package session

import (
	"net/http"
	"time"
)

// CookieName is the well-known cookie carrying the session ID.
const CookieName = "ajovest_session"

// Middleware resolves the session once per request and attaches it to the
// request context. It is the single read path for session state; handlers
// must never touch the cookie or Redis directly.
func Middleware(store *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			sess := store.Resolve(r.Context(), cookie.Value)
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWith(r.Context(), sess)))
		})
	}
}

// WriteCookie sets the session cookie for a freshly created session. Durable
// sessions get an explicit expiry so the cookie outlives the browser; the
// ephemeral cookie is a session cookie.
func WriteCookie(w http.ResponseWriter, sess *Session, durableTTL time.Duration, secure bool) {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
	if sess.Scope == ScopeDurable {
		cookie.Expires = time.Now().Add(durableTTL)
	}
	http.SetCookie(w, cookie)
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

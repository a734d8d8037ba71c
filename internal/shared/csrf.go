package shared

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
)

const (
	// CSRFCookieName carries the issued token. Session records are read-only
	// after login, so the token rides its own signed cookie rather than the
	// session store.
	CSRFCookieName = "ajovest_csrf"
	// CSRFFormField is the form field name carrying the CSRF token.
	CSRFFormField = "csrf_token"
	// CSRFHeader is the header alternative for JSON endpoints.
	CSRFHeader = "X-CSRF-Token"
)

// CSRFManager issues and verifies signed double-submit CSRF tokens.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager returns a CSRFManager using the provided secret key.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// EnsureToken returns the request's valid token, minting and setting a new
// cookie when the request carries none.
func (m *CSRFManager) EnsureToken(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(CSRFCookieName); err == nil {
		if m.verifySignature(cookie.Value) == nil {
			return cookie.Value
		}
	}
	token := m.mint()
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return token
}

// VerifyRequest checks the submitted token against the cookie copy.
func (m *CSRFManager) VerifyRequest(r *http.Request) error {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return ErrCSRFTokenMissing
	}
	if err := m.verifySignature(cookie.Value); err != nil {
		return err
	}
	submitted := r.PostFormValue(CSRFFormField)
	if submitted == "" {
		submitted = r.Header.Get(CSRFHeader)
	}
	if submitted == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(cookie.Value), []byte(submitted)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

func (m *CSRFManager) mint() string {
	payload := make([]byte, 16)
	_, _ = rand.Read(payload)
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + m.sign(encoded)
}

func (m *CSRFManager) sign(payload string) string {
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *CSRFManager) verifySignature(token string) error {
	payload, sig, ok := strings.Cut(token, ".")
	if !ok {
		return ErrCSRFTokenMismatch
	}
	if !hmac.Equal([]byte(m.sign(payload)), []byte(sig)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

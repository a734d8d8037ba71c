package auth

import (
	"context"

	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
)

// Service exchanges staff credentials for a platform API token. Password
// verification happens upstream; the console never sees a hash.
type Service struct {
	api *upstream.Client
}

// NewService constructs a new Service.
func NewService(api *upstream.Client) *Service {
	return &Service{api: api}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials is the successful login payload from the platform API.
type Credentials struct {
	Token string       `json:"token"`
	Role  string       `json:"role"`
	User  session.User `json:"user"`
}

// Login authenticates against the platform API. Rejected credentials surface
// as upstream.ErrAuthExpired or an upstream.APIError depending on the status.
func (s *Service) Login(ctx context.Context, email, password string) (Credentials, error) {
	var creds Credentials
	err := s.api.PostJSON(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &creds)
	return creds, err
}

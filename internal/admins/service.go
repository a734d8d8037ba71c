package admins

import (
	"context"

	"github.com/ajovest/ajovest-console/internal/platform/upstream"
)

// Service exposes staff-account operations over the platform API.
type Service struct {
	api *upstream.Client
}

// NewService constructs a Service.
func NewService(api *upstream.Client) *Service {
	return &Service{api: api}
}

// List fetches one page of staff accounts.
func (s *Service) List(ctx context.Context, q upstream.Query) (upstream.Page[Admin], error) {
	return upstream.FetchPage[Admin](ctx, s.api, "/admin/staff", "admins", q)
}

// CreateInput is the payload for a new staff account.
type CreateInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Create provisions a new staff account.
func (s *Service) Create(ctx context.Context, input CreateInput) (Admin, error) {
	var created Admin
	err := s.api.PostJSON(ctx, "/admin/staff", input, &created)
	return created, err
}

package affiliates

import (
	"context"

	"github.com/ajovest/ajovest-console/internal/platform/upstream"
)

// Service exposes affiliate-account operations over the platform API.
type Service struct {
	api *upstream.Client
}

// NewService constructs a Service.
func NewService(api *upstream.Client) *Service {
	return &Service{api: api}
}

// List fetches one page of affiliate accounts.
func (s *Service) List(ctx context.Context, q upstream.Query) (upstream.Page[Affiliate], error) {
	return upstream.FetchPage[Affiliate](ctx, s.api, "/admin/affiliates", "affiliates", q)
}

// SetStatus approves or rejects an affiliate application.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	return s.api.PatchJSON(ctx, "/admin/affiliates/"+id, map[string]string{"status": status}, nil)
}

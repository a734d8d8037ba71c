package payouts

import (
	"context"

	"github.com/ajovest/ajovest-console/internal/platform/upstream"
)

// Service exposes payout-request operations over the platform API.
type Service struct {
	api *upstream.Client
}

// NewService constructs a Service.
func NewService(api *upstream.Client) *Service {
	return &Service{api: api}
}

// List fetches one page of payout requests.
func (s *Service) List(ctx context.Context, q upstream.Query) (upstream.Page[Payout], error) {
	return upstream.FetchPage[Payout](ctx, s.api, "/admin/payouts", "payouts", q)
}

// statusUpdate is the single mutating request an approve or reject sends.
type statusUpdate struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SetStatus issues exactly one PATCH for the status change. The caller
// reflects success by patching its in-memory row; the canonical collection
// is not re-fetched until the next full page load.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	return s.api.PatchJSON(ctx, "/admin/payouts", statusUpdate{ID: id, Status: status}, nil)
}

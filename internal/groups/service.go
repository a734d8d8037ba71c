package groups

import (
	"context"

	"github.com/ajovest/ajovest-console/internal/platform/upstream"
)

// Service exposes savings-group operations over the platform API.
type Service struct {
	api *upstream.Client
}

// NewService constructs a Service.
func NewService(api *upstream.Client) *Service {
	return &Service{api: api}
}

// List fetches one page of groups.
func (s *Service) List(ctx context.Context, q upstream.Query) (upstream.Page[Group], error) {
	return upstream.FetchPage[Group](ctx, s.api, "/admin/groups", "groups", q)
}

// Get fetches a group with its rotation order.
func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	var detail Detail
	err := s.api.GetJSON(ctx, "/admin/groups/"+id, nil, &detail)
	return detail, err
}

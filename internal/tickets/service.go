package tickets

import (
	"context"

	"github.com/ajovest/ajovest-console/internal/platform/upstream"
)

// Service exposes support-ticket operations over the platform API.
type Service struct {
	api *upstream.Client
}

// NewService constructs a Service.
func NewService(api *upstream.Client) *Service {
	return &Service{api: api}
}

// List fetches one page of tickets. The platform names the item field
// "supports".
func (s *Service) List(ctx context.Context, q upstream.Query) (upstream.Page[Ticket], error) {
	return upstream.FetchPage[Ticket](ctx, s.api, "/admin/supports", "supports", q)
}

// Get fetches a ticket thread.
func (s *Service) Get(ctx context.Context, id string) (Thread, error) {
	var thread Thread
	err := s.api.GetJSON(ctx, "/admin/supports/"+id, nil, &thread)
	return thread, err
}

// Reply posts a staff response onto the thread.
func (s *Service) Reply(ctx context.Context, id, body string) error {
	return s.api.PostJSON(ctx, "/admin/supports/"+id+"/reply", map[string]string{"message": body}, nil)
}

// SetStatus updates the ticket status.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	return s.api.PatchJSON(ctx, "/admin/supports/"+id, map[string]string{"status": status}, nil)
}

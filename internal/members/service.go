package members

import (
	"context"

	"github.com/ajovest/ajovest-console/internal/platform/upstream"
)

// Service exposes member operations over the platform API.
type Service struct {
	api *upstream.Client
}

// NewService constructs a Service.
func NewService(api *upstream.Client) *Service {
	return &Service{api: api}
}

// List fetches one page of members.
func (s *Service) List(ctx context.Context, q upstream.Query) (upstream.Page[Member], error) {
	return upstream.FetchPage[Member](ctx, s.api, "/admin/users", "users", q)
}

// Get fetches a single member.
func (s *Service) Get(ctx context.Context, id string) (Member, error) {
	var member Member
	err := s.api.GetJSON(ctx, "/admin/users/"+id, nil, &member)
	return member, err
}

// Search performs the typeahead lookup used by the members search box.
func (s *Service) Search(ctx context.Context, query string) ([]Member, error) {
	page, err := s.List(ctx, upstream.Query{Page: 1, Search: query})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Suspend marks the member suspended.
func (s *Service) Suspend(ctx context.Context, id string) error {
	return s.api.PatchJSON(ctx, "/admin/users/"+id, map[string]string{"status": StatusSuspended}, nil)
}

// Reactivate restores a suspended member.
func (s *Service) Reactivate(ctx context.Context, id string) error {
	return s.api.PatchJSON(ctx, "/admin/users/"+id, map[string]string{"status": StatusActive}, nil)
}

// Verify marks the member's identity documents approved.
func (s *Service) Verify(ctx context.Context, id string) error {
	return s.api.PatchJSON(ctx, "/admin/users/"+id+"/verify", map[string]bool{"verified": true}, nil)
}

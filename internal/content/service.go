package content

import (
	"context"

	"github.com/ajovest/ajovest-console/internal/platform/upstream"
)

// Service exposes content-management operations over the platform API.
type Service struct {
	api *upstream.Client
}

// NewService constructs a Service.
func NewService(api *upstream.Client) *Service {
	return &Service{api: api}
}

// List fetches one page of posts.
func (s *Service) List(ctx context.Context, q upstream.Query) (upstream.Page[Post], error) {
	return upstream.FetchPage[Post](ctx, s.api, "/admin/posts", "posts", q)
}

// SetStatus publishes or unpublishes a post.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	return s.api.PatchJSON(ctx, "/admin/posts/"+id, map[string]string{"status": status}, nil)
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.api.Delete(ctx, "/admin/posts/"+id)
}

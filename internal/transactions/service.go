package transactions

import (
	"context"

	"github.com/ajovest/ajovest-console/internal/platform/upstream"
)

// Service exposes ledger operations over the platform API.
type Service struct {
	api *upstream.Client
}

// NewService constructs a Service.
func NewService(api *upstream.Client) *Service {
	return &Service{api: api}
}

// List fetches one page of transactions.
func (s *Service) List(ctx context.Context, q upstream.Query) (upstream.Page[Transaction], error) {
	return upstream.FetchPage[Transaction](ctx, s.api, "/admin/transactions", "transactions", q)
}

// ListAll walks every page matching the query, for CSV export. The export is
// bounded upstream by the date-range filter.
func (s *Service) ListAll(ctx context.Context, q upstream.Query) ([]Transaction, error) {
	var all []Transaction
	q.Page = 1
	for {
		page, err := s.List(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if q.Page >= page.TotalPages || len(page.Items) == 0 {
			return all, nil
		}
		q.Page++
	}
}

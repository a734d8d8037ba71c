package upstream

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// Page is one server-fetched page of a list resource plus its pagination
// metadata. Items holds the current page only, never the full collection.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	TotalPages  int
	Total       int
}

// Query collects the collection-endpoint parameters shared by every list
// resource. Zero values are omitted from the request.
type Query struct {
	Page      int
	Search    string
	Status    string
	Type      string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

// Values encodes the query for the platform API.
func (q Query) Values() url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.Type != "" {
		values.Set("type", q.Type)
	}
	if q.StartDate != "" {
		values.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		values.Set("endDate", q.EndDate)
	}
	return values
}

// pageEnvelope tolerates the per-resource item field name (users, groups,
// supports, ...) by capturing the whole object and projecting one field.
type pageEnvelope struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Total       int `json:"total"`
	TotalCount  int `json:"totalCount"`
}

// FetchPage loads one page of a collection endpoint. itemsField names the
// JSON field carrying the records for this resource.
func FetchPage[T any](ctx context.Context, c *Client, path, itemsField string, q Query) (Page[T], error) {
	var raw map[string]json.RawMessage
	if err := c.GetJSON(ctx, path, q.Values(), &raw); err != nil {
		return Page[T]{}, err
	}
	return decodePage[T](raw, itemsField)
}

func decodePage[T any](raw map[string]json.RawMessage, itemsField string) (Page[T], error) {
	var page Page[T]

	if data, ok := raw[itemsField]; ok {
		if err := json.Unmarshal(data, &page.Items); err != nil {
			return Page[T]{}, err
		}
	}

	meta := pageEnvelope{}
	for key, target := range map[string]*int{
		"currentPage": &meta.CurrentPage,
		"totalPages":  &meta.TotalPages,
		"total":       &meta.Total,
		"totalCount":  &meta.TotalCount,
	} {
		if data, ok := raw[key]; ok {
			_ = json.Unmarshal(data, target)
		}
	}

	page.CurrentPage = meta.CurrentPage
	page.TotalPages = meta.TotalPages
	page.Total = meta.Total
	if page.Total == 0 {
		page.Total = meta.TotalCount
	}

	// Keep the invariants honest even for sparse responses: an empty result
	// still reports a well-defined current page within [1, totalPages].
	if page.TotalPages < 0 {
		page.TotalPages = 0
	}
	if page.CurrentPage < 1 {
		page.CurrentPage = 1
	}
	if page.TotalPages > 0 && page.CurrentPage > page.TotalPages {
		page.CurrentPage = page.TotalPages
	}
	return page, nil
}

// Package table is the generic paginated resource table every console page
// renders through. Pages declare typed column and action sets, pre-filtered
// by capability, and the package produces a template-ready view model. The
// table itself performs no network I/O; callers surface fetch failures as a
// banner and hand the table an empty, settled state.
package table

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"
)

// Column describes one table column for records of type T. Value extracts the
// raw cell text; Render, when set, overrides it with custom markup.
type Column[T any] struct {
	Key        string
	Label      string
	Value      func(T) string
	Render     func(T) template.HTML
	Searchable bool
}

// Action is one entry in a row's action menu. Callers apply capability
// filtering before constructing the table; Disabled exists only for row-state
// rules such as "Approve" on an already approved row.
type Action[T any] struct {
	Label    string
	URL      func(T) string
	Method   string // "" means GET link, otherwise a form method
	Confirm  string
	Disabled func(T) bool
}

// Cell is one rendered table cell.
type Cell struct {
	HTML template.HTML
	Text string
}

// RowAction is a rendered action menu entry.
type RowAction struct {
	Label    string
	URL      string
	Method   string
	Confirm  string
	Disabled bool
}

// Row is one rendered record.
type Row struct {
	Cells   []Cell
	Actions []RowAction
}

// PageLink is one entry of the rendered pagination strip.
type PageLink struct {
	Label    string
	URL      string
	Current  bool
	Ellipsis bool
}

// Pagination is the controlled-mode pagination block.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	Total       int
	Links       []PageLink
}

// Model is the template-ready table. It distinguishes the loading state from
// settled emptiness, and settled emptiness with an active filter from a
// genuinely empty collection.
type Model struct {
	ColumnLabels []string
	Rows         []Row
	Loading      bool
	FilterActive bool
	EmptyText    string
	SearchQuery  string
	Pagination   *Pagination
	HasActions   bool
}

// Options configures one Build call.
type Options struct {
	// Loading suppresses rows in favour of the loading indicator.
	Loading bool
	// Filter is the active search term. In uncontrolled mode it is applied
	// in memory; in controlled mode the server already applied it and it is
	// recorded only to pick the right empty-state message.
	Filter string
	// Controlled enables server pagination. When false the table owns
	// filtering over the supplied rows (search-only mode).
	Controlled  bool
	CurrentPage int
	TotalPages  int
	Total       int
	// BaseURL and Params rebuild page links preserving current filters.
	BaseURL string
	Params  url.Values
}

// Build renders records through the column and action sets into a Model.
func Build[T any](columns []Column[T], actions []Action[T], items []T, opts Options) Model {
	model := Model{
		ColumnLabels: labels(columns),
		Loading:      opts.Loading,
		FilterActive: opts.Filter != "",
		SearchQuery:  opts.Filter,
		HasActions:   len(actions) > 0,
	}

	if opts.Loading {
		return model
	}

	rows := items
	if !opts.Controlled && opts.Filter != "" {
		rows = filterRows(columns, items, opts.Filter)
	}

	for _, item := range rows {
		model.Rows = append(model.Rows, buildRow(columns, actions, item))
	}

	if len(model.Rows) == 0 {
		if model.FilterActive {
			model.EmptyText = "No results matched your filter."
		} else {
			model.EmptyText = "No data to display yet."
		}
	}

	if opts.Controlled {
		model.Pagination = buildPagination(opts)
	}
	return model
}

func labels[T any](columns []Column[T]) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = col.Label
	}
	return out
}

func buildRow[T any](columns []Column[T], actions []Action[T], item T) Row {
	row := Row{Cells: make([]Cell, 0, len(columns))}
	for _, col := range columns {
		cell := Cell{}
		if col.Render != nil {
			cell.HTML = col.Render(item)
		} else if col.Value != nil {
			cell.Text = col.Value(item)
		}
		row.Cells = append(row.Cells, cell)
	}
	for _, action := range actions {
		ra := RowAction{Label: action.Label, Method: action.Method, Confirm: action.Confirm}
		if action.URL != nil {
			ra.URL = action.URL(item)
		}
		if action.Disabled != nil {
			ra.Disabled = action.Disabled(item)
		}
		row.Actions = append(row.Actions, ra)
	}
	return row
}

// filterRows performs the uncontrolled-mode in-memory substring match. When
// no column opts into search explicitly, every column with a raw value
// participates.
func filterRows[T any](columns []Column[T], items []T, filter string) []T {
	needle := strings.ToLower(strings.TrimSpace(filter))
	if needle == "" {
		return items
	}

	searchable := make([]Column[T], 0, len(columns))
	for _, col := range columns {
		if col.Searchable {
			searchable = append(searchable, col)
		}
	}
	if len(searchable) == 0 {
		for _, col := range columns {
			if col.Value != nil {
				searchable = append(searchable, col)
			}
		}
	}

	var matched []T
	for _, item := range items {
		for _, col := range searchable {
			if col.Value == nil {
				continue
			}
			if strings.Contains(strings.ToLower(col.Value(item)), needle) {
				matched = append(matched, item)
				break
			}
		}
	}
	return matched
}

func buildPagination(opts Options) *Pagination {
	p := &Pagination{
		CurrentPage: opts.CurrentPage,
		TotalPages:  opts.TotalPages,
		Total:       opts.Total,
	}
	for _, item := range Window(opts.CurrentPage, opts.TotalPages) {
		if item.Ellipsis {
			p.Links = append(p.Links, PageLink{Label: "…", Ellipsis: true})
			continue
		}
		p.Links = append(p.Links, PageLink{
			Label:   strconv.Itoa(item.Page),
			URL:     pageURL(opts.BaseURL, opts.Params, item.Page),
			Current: item.Page == opts.CurrentPage,
		})
	}
	return p
}

func pageURL(base string, params url.Values, page int) string {
	values := url.Values{}
	for key, vals := range params {
		for _, v := range vals {
			if v != "" {
				values.Add(key, v)
			}
		}
	}
	values.Set("page", strconv.Itoa(page))
	return base + "?" + values.Encode()
}

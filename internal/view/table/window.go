package table

// PageItem is one entry in the rendered page-number strip: either a concrete
// page number or an ellipsis gap.
type PageItem struct {
	Page     int
	Ellipsis bool
}

// Window computes the page-number strip for the pagination control. Small
// collections render every page; large ones keep the first page, the last
// page, and the current page with its immediate neighbours, compressing the
// gaps to ellipses so the control's width stays bounded.
func Window(currentPage, totalPages int) []PageItem {
	if totalPages < 1 {
		return nil
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	if totalPages <= 7 {
		items := make([]PageItem, 0, totalPages)
		for p := 1; p <= totalPages; p++ {
			items = append(items, PageItem{Page: p})
		}
		return items
	}

	items := []PageItem{{Page: 1}}
	if currentPage > 3 {
		items = append(items, PageItem{Ellipsis: true})
	}
	lo := max(2, currentPage-1)
	hi := min(totalPages-1, currentPage+1)
	// Without an adjacent ellipsis the neighbourhood widens so the strip
	// always carries at least three leading or trailing page numbers.
	if currentPage <= 3 {
		hi = max(hi, 3)
	}
	if currentPage >= totalPages-2 {
		lo = min(lo, totalPages-2)
	}
	for p := lo; p <= hi; p++ {
		items = append(items, PageItem{Page: p})
	}
	if currentPage < totalPages-2 {
		items = append(items, PageItem{Ellipsis: true})
	}
	return append(items, PageItem{Page: totalPages})
}

package pagination

// View contains everything a presenter needs to redraw the pager after a fetch.
type View struct {
	CurrentPage int   `json:"current_page" yaml:"current_page"`
	PageSize    int   `json:"page_size"    yaml:"page_size"`
	TotalPages  int   `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int   `json:"total_items"  yaml:"total_items"`
	FirstRow    int   `json:"first_row"    yaml:"first_row"`
	LastRow     int   `json:"last_row"     yaml:"last_row"`
	Pages       []int `json:"pages"        yaml:"pages"`
	HasPrevious bool  `json:"has_previous" yaml:"has_previous"`
	HasNext     bool  `json:"has_next"     yaml:"has_next"`
}

// NewView computes the pager for total rows at the given page and limit.
// A page past the end, which happens after a filter shrinks the result set,
// is clamped to the last page before the window and labels are computed. With
// no rows the page is 1.
func NewView(total, page, limit, maxVisible int) View {
	totalPages := PageCount(total, limit)
	current := ClampPage(page, totalPages)
	first, last := RangeLabels(current, limit, total)
	if totalPages == 0 {
		first, last = 0, 0
	}

	return View{
		CurrentPage: current,
		PageSize:    limit,
		TotalPages:  totalPages,
		TotalItems:  total,
		FirstRow:    first,
		LastRow:     last,
		Pages:       ComputeWindow(current, totalPages, maxVisible),
		HasPrevious: current > 1,
		HasNext:     current < totalPages,
	}
}

// Contains reports whether page is one of the visible page buttons.
func (v View) Contains(page int) bool {
	for _, p := range v.Pages {
		if p == page {
			return true
		}
	}
	return false
}

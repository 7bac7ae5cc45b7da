package query

import (
	"github.com/rshade/recordview/internal/pagination"
)

// Paginator seeds limit and page into the query and remembers the page count
// reported by the last fetch so that next/last can be bounded.
type Paginator struct {
	maxVisible int
	pageCount  int
}

// NewPaginator creates a Paginator whose window shows at most maxVisible pages.
func NewPaginator(maxVisible int) *Paginator {
	if maxVisible < 1 {
		maxVisible = pagination.DefaultMaxVisible
	}
	return &Paginator{maxVisible: maxVisible}
}

// Apply sets limit and page. Paging actions move page relative to the state
// value: prev stops at 1, next and last stop at the known page count. Before the
// first fetch the page count is 0, and next/last resolve to page 1.
func (p *Paginator) Apply(q Query, s UIState, a Action) Query {
	limit := s.RowsPerPage
	if limit < pagination.MinPageSize {
		limit = pagination.DefaultPageSize
	}
	page := s.Page

	switch a.Kind {
	case ActionPrev:
		page = max(1, page-1)
	case ActionNext:
		page = min(p.pageCount, page+1)
	case ActionFirst:
		page = 1
	case ActionLast:
		page = p.pageCount
	case ActionNone, ActionSort, ActionClear:
	}
	if page < pagination.MinPage {
		page = pagination.MinPage
	}

	return q.WithInt(KeyLimit, limit).WithInt(KeyPage, page)
}

// Update records the page count for total rows and returns the refreshed pager.
func (p *Paginator) Update(total, page, limit int) pagination.View {
	view := pagination.NewView(total, page, limit, p.maxVisible)
	p.pageCount = view.TotalPages
	return view
}

// PageCount returns the page count from the last Update.
func (p *Paginator) PageCount() int {
	return p.pageCount
}

// MaxVisible returns the window size.
func (p *Paginator) MaxVisible() int {
	return p.maxVisible
}

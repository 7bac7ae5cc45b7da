package pagination

// Pagination defaults and limits.
const (
	DefaultPageSize   = 10
	MinPageSize       = 1
	DefaultPage       = 1
	MinPage           = 1
	DefaultMaxVisible = 5
)

// PageCount returns the number of pages needed to show total rows, limit at a time.
// A non-positive total or limit yields 0.
func PageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit > 0 {
		pages++
	}
	return pages
}

// ClampPage bounds page to [1, pageCount]. With no pages it returns 1 so that
// the page parameter sent to the source is always valid.
func ClampPage(page, pageCount int) int {
	if pageCount <= 0 || page < MinPage {
		return MinPage
	}
	if page > pageCount {
		return pageCount
	}
	return page
}

// ComputeWindow returns at most maxVisible contiguous page numbers that include
// current. The window is centred on current where possible and slides against
// the first and last page. The result is empty when there are no pages.
func ComputeWindow(current, pageCount, maxVisible int) []int {
	if pageCount <= 0 || maxVisible <= 0 {
		return []int{}
	}
	current = ClampPage(current, pageCount)

	start := current - maxVisible/2
	if start < 1 {
		start = 1
	}
	end := start + maxVisible - 1
	if end > pageCount {
		end = pageCount
		start = end - maxVisible + 1
		if start < 1 {
			start = 1
		}
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// RangeLabels returns the 1-based numbers of the first and last rows shown on page.
// Both are 0 when there is nothing to show.
//
//nolint:nonamedreturns // Named returns document which label is which.
func RangeLabels(page, limit, total int) (firstRow, lastRow int) {
	if total <= 0 || limit <= 0 || page < MinPage {
		return 0, 0
	}
	firstRow = (page-1)*limit + 1
	lastRow = page * limit
	if lastRow > total {
		lastRow = total
	}
	return firstRow, lastRow
}

// Offset converts a 1-based page and a limit into a row offset.
func Offset(page, limit int) int {
	if page < MinPage || limit <= 0 {
		return 0
	}
	return (page - 1) * limit
}

// Package pagination provides the page arithmetic shared by the record viewer.
//
// This package contains the pure calculations that must stay consistent with the
// totals reported by the remote source:
//   - PageCount: ceil(total / limit), zero for empty results
//   - ComputeWindow: the bounded sliding window of page buttons around the current page
//   - RangeLabels: the "rows X–Y" labels for the current page
//   - View: everything a presenter needs to redraw the pager after a fetch
//
// None of the functions fail: zero totals or zero limits degrade to an empty
// window and zeroed labels.
package pagination

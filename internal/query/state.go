package query

import (
	"strconv"
	"strings"

	"github.com/rshade/recordview/internal/pagination"
)

// Form field names with numeric coercion.
const (
	FieldPage        = "page"
	FieldRowsPerPage = "rowsPerPage"
)

// UIState is a snapshot of the form taken at the start of a render cycle.
type UIState struct {
	Fields      map[string]string
	Page        int
	RowsPerPage int
}

// Value returns the raw value of a form field, or "" when absent.
func (s UIState) Value(name string) string {
	return s.Fields[name]
}

// Collect builds a UIState from raw form values. Page falls back to 1 and
// rowsPerPage to the default page size when missing or not a positive integer.
func Collect(values map[string]string) UIState {
	fields := make(map[string]string, len(values))
	for k, v := range values {
		fields[k] = v
	}

	return UIState{
		Fields:      fields,
		Page:        coerceInt(values[FieldPage], pagination.DefaultPage),
		RowsPerPage: coerceInt(values[FieldRowsPerPage], pagination.DefaultPageSize),
	}
}

func coerceInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

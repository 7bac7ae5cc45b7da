package cli

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/rshade/recordview/internal/gateway"
	"github.com/rshade/recordview/internal/pagination"
	"github.com/rshade/recordview/internal/query"
)

// Form flag errors.
var (
	ErrInvalidFilterFlag = errors.New("filter must be in 'field=value' form")
	ErrUnknownFilter     = errors.New("unknown filter field")
)

// flagForm is the command-line form: field values come from flags and the
// last render is captured for output. It implements viewer.Form and
// viewer.Presenter.
type flagForm struct {
	values  map[string]string
	items   []gateway.Record
	view    pagination.View
	indexes map[string]gateway.Index
}

// newFlagForm builds the form from flag values. filters are "field=value"
// pairs naming one of the allowed filter fields.
func newFlagForm(page, rowsPerPage int, searchField, search string, allowed, filters []string) (*flagForm, error) {
	values := map[string]string{
		query.FieldPage:        strconv.Itoa(page),
		query.FieldRowsPerPage: strconv.Itoa(rowsPerPage),
	}
	if searchField != "" && search != "" {
		values[searchField] = search
	}

	for _, raw := range filters {
		field, value, ok := strings.Cut(raw, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFilterFlag, raw)
		}
		if !slices.Contains(allowed, field) {
			return nil, fmt.Errorf("%w: %q (allowed: %s)", ErrUnknownFilter, field, strings.Join(allowed, ", "))
		}
		values[field] = strings.TrimSpace(value)
	}

	return &flagForm{values: values}, nil
}

func (f *flagForm) Values() map[string]string {
	return maps.Clone(f.values)
}

func (f *flagForm) ClearField(name string) {
	delete(f.values, name)
}

func (f *flagForm) Render(items []gateway.Record) {
	f.items = items
}

// UpdatePagination keeps the page field on the page actually shown so a
// following paging action moves from there.
func (f *flagForm) UpdatePagination(view pagination.View) {
	f.view = view
	f.values[query.FieldPage] = strconv.Itoa(view.CurrentPage)
}

func (f *flagForm) UpdateIndexes(bindings map[string]gateway.Index) {
	f.indexes = bindings
}

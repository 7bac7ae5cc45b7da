package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/rshade/recordview/internal/gateway"
	"github.com/rshade/recordview/internal/pagination"
	"github.com/rshade/recordview/internal/query"
)

// pageSizes are the rows-per-page choices cycled with 'r'.
//
//nolint:gochecknoglobals // Lookup table.
var pageSizes = []int{10, 20, 50}

const inputWidth = 18

// filterField is one filter input, optionally backed by a choice list.
type filterField struct {
	name    string
	input   textinput.Model
	choices []string
	choice  int
}

// Panel is the browser's form and presenter. It is mutated only on the Bubble
// Tea event loop.
type Panel struct {
	searchField string
	search      textinput.Model
	filters     []*filterField
	page        int
	rowsPerPage int
	defaultRows int

	rows []gateway.Record
	view pagination.View
}

// NewPanel creates a Panel with a search input and one input per filter field.
func NewPanel(searchField string, filters []string, rowsPerPage int) *Panel {
	if rowsPerPage < 1 {
		rowsPerPage = pagination.DefaultPageSize
	}
	p := &Panel{
		searchField: searchField,
		search:      newTextInput("search date, seller, customer"),
		page:        pagination.DefaultPage,
		rowsPerPage: rowsPerPage,
		defaultRows: rowsPerPage,
	}
	for _, name := range filters {
		p.filters = append(p.filters, &filterField{name: name, input: newTextInput(name), choice: -1})
	}
	return p
}

func newTextInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.Width = inputWidth
	return ti
}

// Values implements viewer.Form.
func (p *Panel) Values() map[string]string {
	values := map[string]string{
		query.FieldPage:        strconv.Itoa(p.page),
		query.FieldRowsPerPage: strconv.Itoa(p.rowsPerPage),
	}
	if p.searchField != "" {
		values[p.searchField] = p.search.Value()
	}
	for _, f := range p.filters {
		values[f.name] = f.input.Value()
	}
	return values
}

// ClearField implements viewer.Form.
func (p *Panel) ClearField(name string) {
	if name == p.searchField {
		p.search.SetValue("")
		return
	}
	if f := p.filter(name); f != nil {
		f.input.SetValue("")
		f.choice = -1
	}
}

// Reset clears every field and returns paging to its defaults.
func (p *Panel) Reset() {
	p.search.SetValue("")
	for _, f := range p.filters {
		f.input.SetValue("")
		f.choice = -1
	}
	p.page = pagination.DefaultPage
	p.rowsPerPage = p.defaultRows
}

// Render implements viewer.Presenter.
func (p *Panel) Render(items []gateway.Record) {
	p.rows = items
}

// UpdatePagination implements viewer.Presenter. The current page becomes the
// page field so relative paging starts from what is shown.
func (p *Panel) UpdatePagination(view pagination.View) {
	p.view = view
	p.page = view.CurrentPage
}

// UpdateIndexes implements viewer.Presenter. Each bound filter cycles through
// the table's display names.
func (p *Panel) UpdateIndexes(bindings map[string]gateway.Index) {
	for name, ix := range bindings {
		if f := p.filter(name); f != nil {
			f.choices = ix.Names()
			f.choice = -1
		}
	}
}

// SetPage selects a page directly.
func (p *Panel) SetPage(page int) {
	p.page = page
}

// CycleRowsPerPage advances to the next page size.
func (p *Panel) CycleRowsPerPage() {
	next := pageSizes[0]
	for i, size := range pageSizes {
		if size == p.rowsPerPage && i+1 < len(pageSizes) {
			next = pageSizes[i+1]
			break
		}
	}
	p.rowsPerPage = next
}

// CycleChoice steps the named filter through its choices. It reports whether
// the filter has choices.
func (p *Panel) CycleChoice(name string, step int) bool {
	f := p.filter(name)
	if f == nil || len(f.choices) == 0 {
		return false
	}
	n := len(f.choices)
	if f.choice < 0 && step < 0 {
		f.choice = n - 1
	} else {
		f.choice = ((f.choice+step)%n + n) % n
	}
	f.input.SetValue(f.choices[f.choice])
	return true
}

// Rows returns the rendered records.
func (p *Panel) Rows() []gateway.Record {
	return p.rows
}

// Pager returns the last pager state.
func (p *Panel) Pager() pagination.View {
	return p.view
}

// RowsPerPage returns the page size field.
func (p *Panel) RowsPerPage() int {
	return p.rowsPerPage
}

// FilterNames returns the filter fields in display order.
func (p *Panel) FilterNames() []string {
	names := make([]string, len(p.filters))
	for i, f := range p.filters {
		names[i] = f.name
	}
	return names
}

// Choices returns the choice list of a filter.
func (p *Panel) Choices(name string) []string {
	if f := p.filter(name); f != nil {
		return f.choices
	}
	return nil
}

func (p *Panel) filter(name string) *filterField {
	for _, f := range p.filters {
		if f.name == name {
			return f
		}
	}
	return nil
}

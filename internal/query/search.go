package query

// Search emits the search parameter from a single form field.
type Search struct {
	field string
}

// NewSearch creates a Search reading the named form field.
func NewSearch(field string) *Search {
	return &Search{field: field}
}

// Field returns the search field name.
func (s *Search) Field() string {
	return s.field
}

// Apply adds search=<value> when the field is non-empty, otherwise returns q.
func (s *Search) Apply(q Query, st UIState, _ Action) Query {
	if v := st.Value(s.field); v != "" {
		return q.With(KeySearch, v)
	}
	return q
}

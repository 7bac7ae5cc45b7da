package query

// FieldClearer empties a form field. The presentation layer implements it.
type FieldClearer interface {
	ClearField(name string)
}

// Filter emits one filter[<field>] parameter per populated filter field.
type Filter struct {
	fields []string
}

// NewFilter creates a Filter over the given form fields, in emission order.
func NewFilter(fields ...string) *Filter {
	f := &Filter{fields: make([]string, len(fields))}
	copy(f.fields, fields)
	return f
}

// Fields returns the filter field names.
func (f *Filter) Fields() []string {
	out := make([]string, len(f.fields))
	copy(out, f.fields)
	return out
}

// Has reports whether name is a filter field.
func (f *Filter) Has(name string) bool {
	for _, field := range f.fields {
		if field == name {
			return true
		}
	}
	return false
}

// Clear performs the form side of a clear action: it empties the named filter
// field so the following snapshot no longer sees it. It reports whether a field
// was cleared. Call it before collecting state.
func (f *Filter) Clear(form FieldClearer, a Action) bool {
	if a.Kind != ActionClear || form == nil || !f.Has(a.Field) {
		return false
	}
	form.ClearField(a.Field)
	return true
}

// Apply adds filter[<field>]=value for every non-empty filter field. With no
// populated field it returns q itself.
func (f *Filter) Apply(q Query, s UIState, _ Action) Query {
	out := q
	for _, field := range f.fields {
		if v := s.Value(field); v != "" {
			out = out.With(FilterKey(field), v)
		}
	}
	return out
}

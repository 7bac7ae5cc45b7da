package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeForm struct {
	values  map[string]string
	cleared []string
}

func (f *fakeForm) ClearField(name string) {
	f.cleared = append(f.cleared, name)
	delete(f.values, name)
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	sorter, err := NewSorter([]string{"date", "total"})
	require.NoError(t, err)
	return &Pipeline{
		Paginator: NewPaginator(5),
		Filter:    NewFilter("date", "customer", "seller", "totalFrom", "totalTo"),
		Search:    NewSearch("search"),
		Sorter:    sorter,
	}
}

func TestPaginator_Apply(t *testing.T) {
	tests := []struct {
		name      string
		pageCount int
		page      int
		action    Action
		wantPage  int
	}{
		{name: "passive keeps page", pageCount: 5, page: 3, action: None(), wantPage: 3},
		{name: "prev", pageCount: 5, page: 3, action: Prev(), wantPage: 2},
		{name: "prev at first", pageCount: 5, page: 1, action: Prev(), wantPage: 1},
		{name: "next", pageCount: 5, page: 3, action: Next(), wantPage: 4},
		{name: "next clamped at last", pageCount: 3, page: 3, action: Next(), wantPage: 3},
		{name: "first", pageCount: 5, page: 4, action: First(), wantPage: 1},
		{name: "last", pageCount: 5, page: 2, action: Last(), wantPage: 5},
		{name: "next before first fetch", pageCount: 0, page: 1, action: Next(), wantPage: 1},
		{name: "last on empty result", pageCount: 0, page: 4, action: Last(), wantPage: 1},
		{name: "sort leaves page", pageCount: 5, page: 2, action: Sort("date"), wantPage: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginator(5)
			p.pageCount = tt.pageCount
			state := UIState{Page: tt.page, RowsPerPage: 10}

			q := p.Apply(New(), state, tt.action)

			page, ok := q.Int(KeyPage)
			require.True(t, ok)
			assert.Equal(t, tt.wantPage, page)
			limit, _ := q.Int(KeyLimit)
			assert.Equal(t, 10, limit)
		})
	}
}

func TestPaginator_KeepsOtherKeys(t *testing.T) {
	p := NewPaginator(5)
	in := New().With(KeySearch, "x").WithInt(KeyPage, 9)

	out := p.Apply(in, UIState{Page: 2, RowsPerPage: 20}, None())

	assert.Equal(t, []string{KeySearch, KeyPage, KeyLimit}, out.Keys())
	page, _ := out.Int(KeyPage)
	assert.Equal(t, 2, page)
	assert.Equal(t, 2, in.Len(), "input must not be mutated")
}

func TestPaginator_Update(t *testing.T) {
	p := NewPaginator(5)
	view := p.Update(47, 5, 10)

	assert.Equal(t, 5, p.PageCount())
	assert.Equal(t, 5, view.TotalPages)
	assert.Equal(t, 41, view.FirstRow)
	assert.Equal(t, 47, view.LastRow)

	p.Update(0, 1, 10)
	assert.Equal(t, 0, p.PageCount())
}

func TestFilter(t *testing.T) {
	f := NewFilter("date", "seller", "totalFrom")

	t.Run("no populated field returns input", func(t *testing.T) {
		in := New().WithInt(KeyLimit, 10)
		out := f.Apply(in, Collect(map[string]string{"search": "x"}), None())
		assert.True(t, in.Equal(out))
	})

	t.Run("namespaced keys in field order", func(t *testing.T) {
		state := Collect(map[string]string{"totalFrom": "100", "seller": "Ivan", "date": ""})
		out := f.Apply(New(), state, None())

		assert.Equal(t, []string{"filter[seller]", "filter[totalFrom]"}, out.Keys())
		v, _ := out.Get("filter[seller]")
		assert.Equal(t, "Ivan", v)
	})

	t.Run("clear empties the field before snapshot", func(t *testing.T) {
		form := &fakeForm{values: map[string]string{"seller": "Ivan", "date": "2024"}}

		assert.True(t, f.Clear(form, Clear("seller")))
		assert.Equal(t, []string{"seller"}, form.cleared)

		out := f.Apply(New(), Collect(form.values), Clear("seller"))
		assert.Equal(t, []string{"filter[date]"}, out.Keys())
	})

	t.Run("clear ignores other actions and unknown fields", func(t *testing.T) {
		form := &fakeForm{values: map[string]string{}}
		assert.False(t, f.Clear(form, Next()))
		assert.False(t, f.Clear(form, Clear("search")))
		assert.False(t, f.Clear(nil, Clear("seller")))
		assert.Empty(t, form.cleared)
	})
}

func TestSearch(t *testing.T) {
	s := NewSearch("search")
	in := New().WithInt(KeyLimit, 10)

	assert.True(t, in.Equal(s.Apply(in, Collect(nil), None())))

	out := s.Apply(in, Collect(map[string]string{"search": "petrov"}), None())
	v, ok := out.Get(KeySearch)
	require.True(t, ok)
	assert.Equal(t, "petrov", v)
	assert.Equal(t, "search", s.Field())
}

func TestPipeline_EmptyState(t *testing.T) {
	p := newTestPipeline(t)
	state := Collect(map[string]string{"rowsPerPage": "10", "page": "1"})

	q := p.Build(state, None())

	assert.Equal(t, "limit=10&page=1", q.Encode())
	assert.Equal(t, []string{KeyLimit, KeyPage}, q.Keys())
}

func TestPipeline_Order(t *testing.T) {
	p := newTestPipeline(t)
	state := Collect(map[string]string{
		"rowsPerPage": "20",
		"page":        "2",
		"seller":      "Ivan",
		"search":      "abc",
	})

	q := p.Build(state, Sort("total"))

	assert.Equal(t, []string{KeyLimit, KeyPage, "filter[seller]", KeySearch, KeySort}, q.Keys())
	assert.Equal(t, "limit=20&page=2&filter%5Bseller%5D=Ivan&search=abc&sort=total%3Aasc", q.Encode())
}

func TestPipeline_IdleRendersEncodeIdentically(t *testing.T) {
	p := newTestPipeline(t)
	state := Collect(map[string]string{"rowsPerPage": "10", "page": "1", "customer": "Anna"})

	p.Build(state, Sort("date"))
	first := p.Build(state, None())
	second := p.Build(state, None())

	assert.Equal(t, first.Encode(), second.Encode())
	v, _ := second.Get(KeySort)
	assert.Equal(t, "date:asc", v)
}

func TestChain_Empty(t *testing.T) {
	in := New().With("a", "1")
	assert.True(t, in.Equal(Chain{}.Apply(in, UIState{}, None())))
}

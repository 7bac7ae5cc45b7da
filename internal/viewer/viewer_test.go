package viewer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/recordview/internal/gateway"
	"github.com/rshade/recordview/internal/pagination"
	"github.com/rshade/recordview/internal/query"
)

type mapForm struct {
	values map[string]string
	resets int
}

func (f *mapForm) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

func (f *mapForm) ClearField(name string) {
	f.values[name] = ""
}

func (f *mapForm) Reset() {
	f.resets++
	f.values = map[string]string{}
}

type recordingPresenter struct {
	rendered [][]gateway.Record
	views    []pagination.View
	indexes  map[string]gateway.Index
}

func (p *recordingPresenter) Render(items []gateway.Record) {
	p.rendered = append(p.rendered, items)
}

func (p *recordingPresenter) UpdatePagination(view pagination.View) {
	p.views = append(p.views, view)
}

func (p *recordingPresenter) UpdateIndexes(bindings map[string]gateway.Index) {
	p.indexes = bindings
}

type stubFetcher struct {
	page     gateway.Page
	err      error
	queries  []string
	forced   []bool
	indexErr error
}

func (f *stubFetcher) FetchRecords(_ context.Context, q query.Query, force bool) (gateway.Page, error) {
	f.queries = append(f.queries, q.Encode())
	f.forced = append(f.forced, force)
	if f.err != nil {
		return gateway.Page{}, f.err
	}
	return f.page, nil
}

func (f *stubFetcher) FetchIndexes(_ context.Context) (gateway.Indexes, error) {
	if f.indexErr != nil {
		return gateway.Indexes{}, f.indexErr
	}
	return gateway.Indexes{
		Sellers:   gateway.Index{"1": "Ivan Petrov"},
		Customers: gateway.Index{"2": "Oleg Ivanov"},
	}, nil
}

type fixture struct {
	form      *mapForm
	presenter *recordingPresenter
	fetcher   *stubFetcher
	orch      *Orchestrator
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	sorter, err := query.NewSorter([]string{"date", "total"})
	require.NoError(t, err)

	f := &fixture{
		form:      &mapForm{values: map[string]string{"rowsPerPage": "10", "page": "1"}},
		presenter: &recordingPresenter{},
		fetcher: &stubFetcher{page: gateway.Page{
			Total: 47,
			Items: []gateway.Record{{ID: "r1", Seller: "Ivan Petrov", Total: 10}},
		}},
	}
	pipeline := &query.Pipeline{
		Paginator: query.NewPaginator(5),
		Filter:    query.NewFilter("date", "customer", "seller", "totalFrom", "totalTo"),
		Search:    query.NewSearch("search"),
		Sorter:    sorter,
	}
	f.orch, err = New(f.form, f.presenter, f.fetcher, pipeline, opts...)
	require.NoError(t, err)
	return f
}

func TestNew_Validation(t *testing.T) {
	p := &query.Pipeline{}
	_, err := New(nil, &recordingPresenter{}, &stubFetcher{}, p)
	require.ErrorIs(t, err, ErrNilForm)
	_, err = New(&mapForm{}, nil, &stubFetcher{}, p)
	require.ErrorIs(t, err, ErrNilPresent)
	_, err = New(&mapForm{}, &recordingPresenter{}, nil, p)
	require.ErrorIs(t, err, ErrNilFetcher)
	_, err = New(&mapForm{}, &recordingPresenter{}, &stubFetcher{}, nil)
	require.ErrorIs(t, err, ErrNilPipeline)
}

func TestInit_LoadsIndexesThenRenders(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.orch.Init(context.Background()))

	assert.Equal(t, map[string]gateway.Index{"seller": {"1": "Ivan Petrov"}}, f.presenter.indexes)
	assert.Equal(t, []string{"limit=10&page=1"}, f.fetcher.queries)
	require.Len(t, f.presenter.views, 1)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, f.presenter.views[0].Pages)
	require.Len(t, f.presenter.rendered, 1)
}

func TestInit_IndexFailure(t *testing.T) {
	f := newFixture(t)
	f.fetcher.indexErr = errors.New("down")

	require.Error(t, f.orch.Init(context.Background()))
	assert.Empty(t, f.fetcher.queries)
	assert.Empty(t, f.presenter.rendered)
}

func TestWithIndexBindings(t *testing.T) {
	f := newFixture(t, WithIndexBindings(map[string]string{"seller": TableSellers, "customer": TableCustomers}))

	_, err := f.orch.LoadIndexes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, gateway.Index{"2": "Oleg Ivanov"}, f.presenter.indexes["customer"])
	assert.Len(t, f.presenter.indexes, 2)
}

func TestRender_LastPageScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orch.Render(ctx, query.None())
	require.NoError(t, err)

	f.form.values["page"] = "4"
	view, err := f.orch.Render(ctx, query.Next())
	require.NoError(t, err)

	assert.Equal(t, "limit=10&page=5", f.fetcher.queries[1])
	assert.Equal(t, 5, view.CurrentPage)
	assert.Equal(t, 41, view.FirstRow)
	assert.Equal(t, 47, view.LastRow)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, view.Pages)
	assert.False(t, view.HasNext)
}

func TestRender_FetchFailureIsStationary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orch.Render(ctx, query.None())
	require.NoError(t, err)

	f.fetcher.err = &gateway.FetchError{Op: "records", Err: errors.New("timeout")}
	_, err = f.orch.Render(ctx, query.Next())

	var fetchErr *gateway.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Len(t, f.presenter.rendered, 1, "previous rows stay visible")
	assert.Len(t, f.presenter.views, 1)
}

func TestRender_ClearActionEmptiesFieldFirst(t *testing.T) {
	f := newFixture(t)
	f.form.values["seller"] = "Ivan Petrov"
	f.form.values["search"] = "x"

	_, err := f.orch.Render(context.Background(), query.Clear("seller"))
	require.NoError(t, err)

	assert.Equal(t, "", f.form.values["seller"])
	assert.Equal(t, []string{"limit=10&page=1&search=x"}, f.fetcher.queries)
}

func TestComplete_DropsStaleResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	older := f.orch.Prepare(ctx, query.None(), false)
	newer := f.orch.Prepare(ctx, query.Sort("date"), false)

	newerResult := f.orch.Execute(ctx, newer)
	olderResult := f.orch.Execute(ctx, older)

	_, err := f.orch.Complete(ctx, newerResult)
	require.NoError(t, err)
	_, err = f.orch.Complete(ctx, olderResult)
	require.ErrorIs(t, err, ErrStaleResult)

	assert.Len(t, f.presenter.rendered, 1)
	assert.Equal(t, "limit=10&page=1&sort=date%3Aasc", newer.Query.Encode())
}

func TestRender_PagePastEndIsReissued(t *testing.T) {
	f := newFixture(t)
	f.form.values["page"] = "5"
	f.form.values["rowsPerPage"] = "50"

	view, err := f.orch.Render(context.Background(), query.None())
	require.NoError(t, err)

	assert.Equal(t, []string{"limit=50&page=5", "limit=50&page=1"}, f.fetcher.queries)
	assert.Equal(t, 1, view.CurrentPage)
	assert.Equal(t, 1, view.FirstRow)
	assert.Equal(t, 47, view.LastRow)
	require.Len(t, f.presenter.views, 1, "only the reissued cycle reaches the presenter")
	require.Len(t, f.presenter.rendered, 1)
}

func TestComplete_PagePastEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.form.values["page"] = "9"

	c := f.orch.Prepare(ctx, query.Sort("total"), true)
	_, err := f.orch.Complete(ctx, f.orch.Execute(ctx, c))
	require.ErrorIs(t, err, ErrPageOutOfRange)
	assert.Empty(t, f.presenter.rendered)
	assert.Empty(t, f.presenter.views)

	next := f.orch.Reissue(ctx, c)
	assert.Equal(t, "limit=10&page=5&sort=total%3Aasc", next.Query.Encode(), "sort is kept, not cycled again")
	assert.True(t, next.Force)

	_, err = f.orch.Complete(ctx, f.orch.Execute(ctx, c))
	require.ErrorIs(t, err, ErrStaleResult, "reissue supersedes the original cycle")
}

func TestRender_EmptyResultPastFirstPage(t *testing.T) {
	f := newFixture(t)
	f.form.values["page"] = "4"
	f.fetcher.page = gateway.Page{}

	view, err := f.orch.Render(context.Background(), query.None())
	require.NoError(t, err)

	assert.Len(t, f.fetcher.queries, 1)
	assert.Equal(t, 1, view.CurrentPage)
	assert.False(t, view.HasPrevious)
}

func TestRefresh_Forces(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []bool{true}, f.fetcher.forced)
}

func TestReset_ClearsFormBeforeSnapshot(t *testing.T) {
	f := newFixture(t)
	f.form.values["search"] = "abc"
	f.form.values["page"] = "3"

	_, err := f.orch.Reset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.form.resets)
	assert.Equal(t, []string{"limit=10&page=1"}, f.fetcher.queries)
}

package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rshade/recordview/internal/query"
)

type fakeSource struct {
	mu           sync.Mutex
	page         RawPage
	recordsErr   error
	sellersErr   error
	sellers      Index
	customers    Index
	recordCalls  int
	sellerCalls  int
	customerCall int
	lastQuery    string
}

func (f *fakeSource) Records(_ context.Context, rawQuery string) (RawPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordCalls++
	f.lastQuery = rawQuery
	if f.recordsErr != nil {
		return RawPage{}, f.recordsErr
	}
	return f.page, nil
}

func (f *fakeSource) Sellers(_ context.Context) (Index, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sellerCalls++
	if f.sellersErr != nil {
		return nil, f.sellersErr
	}
	return f.sellers, nil
}

func (f *fakeSource) Customers(_ context.Context) (Index, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customerCall++
	return f.customers, nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		page: RawPage{
			Total: 2,
			Items: []RawRecord{
				{ReceiptID: "r1", Date: "2024-01-02", SellerID: "1", CustomerID: "10", TotalAmount: 120.5},
				{ReceiptID: "r2", Date: "2024-01-03", SellerID: "9", CustomerID: "11", TotalAmount: 80},
			},
		},
		sellers:   Index{"1": "Ivan Petrov", "2": "Anna Smirnova"},
		customers: Index{"10": "Oleg Ivanov", "11": "Maria Sokolova"},
	}
}

func newTestGateway(t *testing.T, src Source) *Gateway {
	t.Helper()
	g, err := New(src)
	require.NoError(t, err)
	return g
}

func baseQuery() query.Query {
	return query.New().WithInt(query.KeyLimit, 10).WithInt(query.KeyPage, 1)
}

func TestNew_NilSource(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrNilSource)
}

func TestFetchRecords_CacheHitSkipsRemote(t *testing.T) {
	src := newFakeSource()
	g := newTestGateway(t, src)
	ctx := context.Background()

	first, err := g.FetchRecords(ctx, baseQuery(), false)
	require.NoError(t, err)
	second, err := g.FetchRecords(ctx, baseQuery(), false)
	require.NoError(t, err)

	assert.Equal(t, 1, src.recordCalls)
	assert.Equal(t, first, second)
	assert.Equal(t, Stats{Hits: 1, Misses: 1, RemoteCalls: 1}, g.Stats())
	assert.Equal(t, "limit=10&page=1", src.lastQuery)
}

func TestFetchRecords_ChangedQueryMisses(t *testing.T) {
	src := newFakeSource()
	g := newTestGateway(t, src)
	ctx := context.Background()

	_, err := g.FetchRecords(ctx, baseQuery(), false)
	require.NoError(t, err)
	_, err = g.FetchRecords(ctx, baseQuery().WithInt(query.KeyPage, 2), false)
	require.NoError(t, err)

	assert.Equal(t, 2, src.recordCalls)
	key, ok := g.CachedKey()
	require.True(t, ok)
	assert.Equal(t, "limit=10&page=2", key)
}

func TestFetchRecords_ForceRefresh(t *testing.T) {
	src := newFakeSource()
	g := newTestGateway(t, src)
	ctx := context.Background()

	_, err := g.FetchRecords(ctx, baseQuery(), false)
	require.NoError(t, err)
	_, err = g.FetchRecords(ctx, baseQuery(), true)
	require.NoError(t, err)

	assert.Equal(t, 2, src.recordCalls)
	assert.Equal(t, int64(0), g.Stats().Hits)
}

func TestFetchRecords_FailureLeavesCacheUntouched(t *testing.T) {
	src := newFakeSource()
	g := newTestGateway(t, src)
	ctx := context.Background()

	good, err := g.FetchRecords(ctx, baseQuery(), false)
	require.NoError(t, err)

	src.recordsErr = &FetchError{Op: "records", URL: "http://x/records", StatusCode: 500, Err: ErrUnexpectedCode}
	_, err = g.FetchRecords(ctx, baseQuery().WithInt(query.KeyPage, 2), false)
	require.Error(t, err)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 500, fetchErr.StatusCode)

	key, _ := g.CachedKey()
	assert.Equal(t, "limit=10&page=1", key)

	src.recordsErr = nil
	again, err := g.FetchRecords(ctx, baseQuery(), false)
	require.NoError(t, err)
	assert.Equal(t, good, again)
	assert.Equal(t, 2, src.recordCalls, "previous entry still answers its key")
}

func TestFetchRecords_CachedItemsAreCopied(t *testing.T) {
	g := newTestGateway(t, newFakeSource())
	ctx := context.Background()

	first, err := g.FetchRecords(ctx, baseQuery(), false)
	require.NoError(t, err)
	first.Items[0].Seller = "mutated"

	second, err := g.FetchRecords(ctx, baseQuery(), false)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", second.Items[0].Seller)
}

func TestFetchRecords_Denormalizes(t *testing.T) {
	src := newFakeSource()
	g := newTestGateway(t, src)
	ctx := context.Background()

	_, err := g.FetchIndexes(ctx)
	require.NoError(t, err)

	page, err := g.FetchRecords(ctx, baseQuery(), false)
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Equal(t, Record{ID: "r1", Date: "2024-01-02", Seller: "Ivan Petrov", Customer: "Oleg Ivanov", Total: 120.5}, page.Items[0])
	assert.Equal(t, "9", page.Items[1].Seller, "unknown ids pass through")
	assert.Equal(t, 2, page.Total)
}

func TestFetchRecords_IndexLoadDropsUnresolvedEntry(t *testing.T) {
	src := newFakeSource()
	g := newTestGateway(t, src)
	ctx := context.Background()

	early, err := g.FetchRecords(ctx, baseQuery(), false)
	require.NoError(t, err)
	assert.Equal(t, "1", early.Items[0].Seller)

	_, err = g.FetchIndexes(ctx)
	require.NoError(t, err)
	_, ok := g.CachedKey()
	assert.False(t, ok)

	page, err := g.FetchRecords(ctx, baseQuery(), false)
	require.NoError(t, err)
	assert.Equal(t, "Ivan Petrov", page.Items[0].Seller)
	assert.Equal(t, 2, src.recordCalls)

	_, err = g.FetchRecords(ctx, baseQuery(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, src.recordCalls, "resolved page is cached")
}

func TestFetchIndexes_LoadsOnce(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	src := newFakeSource()
	g := newTestGateway(t, src)
	ctx := context.Background()

	first, err := g.FetchIndexes(ctx)
	require.NoError(t, err)
	second, err := g.FetchIndexes(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.sellerCalls)
	assert.Equal(t, 1, src.customerCall)
	assert.Equal(t, int64(1), g.Stats().IndexLoads)
	assert.Equal(t, []string{"Anna Smirnova", "Ivan Petrov"}, first.Sellers.Names())
}

func TestFetchIndexes_FailureIsRetried(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	src := newFakeSource()
	src.sellersErr = errors.New("boom")
	g := newTestGateway(t, src)
	ctx := context.Background()

	_, err := g.FetchIndexes(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching sellers")

	src.sellersErr = nil
	ix, err := g.FetchIndexes(ctx)
	require.NoError(t, err)
	assert.Len(t, ix.Sellers, 2)
	assert.Equal(t, 2, src.sellerCalls)
}

func TestIndex_IDs(t *testing.T) {
	ix := Index{"10": "a", "2": "b", "1": "c"}
	assert.Equal(t, []string{"1", "2", "10"}, ix.IDs())
	assert.Equal(t, "c", ix.Name("1"))
	assert.Equal(t, "42", ix.Name("42"))
	assert.Equal(t, "7", Index(nil).Name("7"))
}

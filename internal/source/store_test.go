package source

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/recordview/internal/query"
)

func openTestStore(t *testing.T, receipts int) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", receipts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_SeedsIndexes(t *testing.T) {
	s := openTestStore(t, 47)
	ctx := context.Background()

	sellers, err := s.Sellers(ctx)
	require.NoError(t, err)
	assert.Len(t, sellers, len(seedSellers))
	assert.Equal(t, "Ivan Petrov", sellers["1"])

	customers, err := s.Customers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, len(seedCustomers))
	assert.Equal(t, "Oleg Ivanov", customers["1"])
}

func TestOpen_SeedOnlyOnce(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "records.db")
	ctx := context.Background()

	s, err := Open(ctx, dsn, 12)
	require.NoError(t, err)
	first, err := s.Records(ctx, RecordQuery{Limit: 50})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, dsn, 30)
	require.NoError(t, err)
	defer s.Close()
	second, err := s.Records(ctx, RecordQuery{Limit: 50})
	require.NoError(t, err)

	assert.Equal(t, 12, second.Total)
	assert.Equal(t, first, second)
}

func TestOpen_Deterministic(t *testing.T) {
	ctx := context.Background()
	a, err := openTestStore(t, 20).Records(ctx, RecordQuery{Limit: 20})
	require.NoError(t, err)
	b, err := openTestStore(t, 20).Records(ctx, RecordQuery{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRecords_Paging(t *testing.T) {
	s := openTestStore(t, 47)
	ctx := context.Background()

	last, err := s.Records(ctx, RecordQuery{Limit: 10, Page: 5})
	require.NoError(t, err)
	assert.Equal(t, 47, last.Total)
	require.Len(t, last.Items, 7)
	assert.Equal(t, "41", last.Items[0].ReceiptID.String())

	beyond, err := s.Records(ctx, RecordQuery{Limit: 10, Page: 9})
	require.NoError(t, err)
	assert.Equal(t, 47, beyond.Total)
	assert.Empty(t, beyond.Items)

	defaults, err := s.Records(ctx, RecordQuery{})
	require.NoError(t, err)
	assert.Len(t, defaults.Items, 10)
}

func TestRecords_Filters(t *testing.T) {
	s := openTestStore(t, 120)
	ctx := context.Background()
	sellers, err := s.Sellers(ctx)
	require.NoError(t, err)
	customers, err := s.Customers(ctx)
	require.NoError(t, err)

	from, to := 500.0, 1000.0

	tests := []struct {
		name  string
		q     RecordQuery
		check func(t *testing.T, seller, customer string, total float64)
	}{
		{
			name: "seller",
			q:    RecordQuery{Seller: "Anna Smirnova"},
			check: func(t *testing.T, seller, _ string, _ float64) {
				assert.Equal(t, "Anna Smirnova", seller)
			},
		},
		{
			name: "customer",
			q:    RecordQuery{Customer: "Olga Popova"},
			check: func(t *testing.T, _, customer string, _ float64) {
				assert.Equal(t, "Olga Popova", customer)
			},
		},
		{
			name: "total range",
			q:    RecordQuery{TotalFrom: &from, TotalTo: &to},
			check: func(t *testing.T, _, _ string, total float64) {
				assert.GreaterOrEqual(t, total, from)
				assert.LessOrEqual(t, total, to)
			},
		},
		{
			name: "search seller name",
			q:    RecordQuery{Search: "Petrov"},
			check: func(t *testing.T, seller, _ string, _ float64) {
				assert.Equal(t, "Ivan Petrov", seller)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.q.Limit = MaxLimit
			page, err := s.Records(ctx, tt.q)
			require.NoError(t, err)
			require.NotEmpty(t, page.Items)
			assert.Len(t, page.Items, page.Total)
			for _, item := range page.Items {
				tt.check(t, sellers[item.SellerID.String()], customers[item.CustomerID.String()], item.TotalAmount)
			}
		})
	}
}

func TestRecords_DateFilter(t *testing.T) {
	s := openTestStore(t, 120)
	ctx := context.Background()

	all, err := s.Records(ctx, RecordQuery{Limit: 1})
	require.NoError(t, err)
	date := all.Items[0].Date

	page, err := s.Records(ctx, RecordQuery{Date: date, Limit: MaxLimit})
	require.NoError(t, err)
	require.NotEmpty(t, page.Items)
	for _, item := range page.Items {
		assert.Equal(t, date, item.Date)
	}
}

func TestRecords_SearchEscapesWildcards(t *testing.T) {
	s := openTestStore(t, 20)
	page, err := s.Records(context.Background(), RecordQuery{Search: "%"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestRecords_Sort(t *testing.T) {
	s := openTestStore(t, 60)
	ctx := context.Background()

	asc, err := s.Records(ctx, RecordQuery{Limit: 60, SortField: "total", SortDir: query.DirectionAsc})
	require.NoError(t, err)
	assert.True(t, sort.SliceIsSorted(asc.Items, func(i, j int) bool {
		return asc.Items[i].TotalAmount < asc.Items[j].TotalAmount
	}))

	desc, err := s.Records(ctx, RecordQuery{Limit: 60, SortField: "date", SortDir: query.DirectionDesc})
	require.NoError(t, err)
	assert.True(t, sort.SliceIsSorted(desc.Items, func(i, j int) bool {
		return desc.Items[i].Date > desc.Items[j].Date
	}))
}

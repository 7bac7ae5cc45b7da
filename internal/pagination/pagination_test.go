package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		want  int
	}{
		{name: "exact multiple", total: 100, limit: 10, want: 10},
		{name: "remainder", total: 101, limit: 10, want: 11},
		{name: "partial single page", total: 3, limit: 10, want: 1},
		{name: "empty", total: 0, limit: 10, want: 0},
		{name: "zero limit", total: 50, limit: 0, want: 0},
		{name: "negative total", total: -1, limit: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageCount(tt.total, tt.limit))
		})
	}
}

func TestPageCount_MatchesCeil(t *testing.T) {
	for total := 0; total <= 200; total++ {
		for limit := 1; limit <= 25; limit++ {
			want := (total + limit - 1) / limit
			assert.Equal(t, want, PageCount(total, limit), "total=%d limit=%d", total, limit)
		}
	}
}

func TestComputeWindow(t *testing.T) {
	tests := []struct {
		name       string
		current    int
		pageCount  int
		maxVisible int
		want       []int
	}{
		{name: "first page", current: 1, pageCount: 10, maxVisible: 5, want: []int{1, 2, 3, 4, 5}},
		{name: "middle page", current: 6, pageCount: 10, maxVisible: 5, want: []int{4, 5, 6, 7, 8}},
		{name: "last page", current: 10, pageCount: 10, maxVisible: 5, want: []int{6, 7, 8, 9, 10}},
		{name: "near end", current: 9, pageCount: 10, maxVisible: 5, want: []int{6, 7, 8, 9, 10}},
		{name: "fewer pages than window", current: 2, pageCount: 3, maxVisible: 5, want: []int{1, 2, 3}},
		{name: "even window", current: 5, pageCount: 10, maxVisible: 4, want: []int{3, 4, 5, 6}},
		{name: "single page", current: 1, pageCount: 1, maxVisible: 5, want: []int{1}},
		{name: "no pages", current: 1, pageCount: 0, maxVisible: 5, want: []int{}},
		{name: "zero window", current: 1, pageCount: 4, maxVisible: 0, want: []int{}},
		{name: "current past end", current: 12, pageCount: 10, maxVisible: 3, want: []int{8, 9, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeWindow(tt.current, tt.pageCount, tt.maxVisible))
		})
	}
}

func TestComputeWindow_Bounds(t *testing.T) {
	for pageCount := 0; pageCount <= 30; pageCount++ {
		for maxVisible := 1; maxVisible <= 7; maxVisible++ {
			for current := 1; current <= pageCount; current++ {
				window := ComputeWindow(current, pageCount, maxVisible)

				assert.LessOrEqual(t, len(window), maxVisible)
				assert.Contains(t, window, current)
				for i, p := range window {
					assert.GreaterOrEqual(t, p, 1)
					assert.LessOrEqual(t, p, pageCount)
					if i > 0 {
						assert.Equal(t, window[i-1]+1, p, "window must be contiguous")
					}
				}
				assert.Equal(t, window, ComputeWindow(current, pageCount, maxVisible))
			}
		}
	}
}

func TestRangeLabels(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		total     int
		wantFirst int
		wantLast  int
	}{
		{name: "last partial page", page: 5, limit: 10, total: 47, wantFirst: 41, wantLast: 47},
		{name: "first page", page: 1, limit: 10, total: 47, wantFirst: 1, wantLast: 10},
		{name: "empty", page: 1, limit: 10, total: 0, wantFirst: 0, wantLast: 0},
		{name: "zero limit", page: 1, limit: 0, total: 10, wantFirst: 0, wantLast: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := RangeLabels(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestClampPageAndOffset(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 5))
	assert.Equal(t, 5, ClampPage(9, 5))
	assert.Equal(t, 3, ClampPage(3, 5))
	assert.Equal(t, 1, ClampPage(4, 0))

	assert.Equal(t, 20, Offset(3, 10))
	assert.Equal(t, 0, Offset(0, 10))
	assert.Equal(t, 0, Offset(2, 0))
}

func TestNewView(t *testing.T) {
	tests := []struct {
		name  string
		total int
		page  int
		limit int
		want  View
	}{
		{
			name:  "last page of 47",
			total: 47,
			page:  5,
			limit: 10,
			want: View{
				CurrentPage: 5,
				PageSize:    10,
				TotalPages:  5,
				TotalItems:  47,
				FirstRow:    41,
				LastRow:     47,
				Pages:       []int{1, 2, 3, 4, 5},
				HasPrevious: true,
				HasNext:     false,
			},
		},
		{
			name:  "empty result",
			total: 0,
			page:  1,
			limit: 10,
			want: View{
				CurrentPage: 1,
				PageSize:    10,
				TotalPages:  0,
				TotalItems:  0,
				FirstRow:    0,
				LastRow:     0,
				Pages:       []int{},
			},
		},
		{
			name:  "empty result past the first page",
			total: 0,
			page:  4,
			limit: 10,
			want: View{
				CurrentPage: 1,
				PageSize:    10,
				Pages:       []int{},
			},
		},
		{
			name:  "page beyond shrunk result",
			total: 25,
			page:  9,
			limit: 10,
			want: View{
				CurrentPage: 3,
				PageSize:    10,
				TotalPages:  3,
				TotalItems:  25,
				FirstRow:    21,
				LastRow:     25,
				Pages:       []int{1, 2, 3},
				HasPrevious: true,
				HasNext:     false,
			},
		},
		{
			name:  "zero limit",
			total: 25,
			page:  1,
			limit: 0,
			want: View{
				CurrentPage: 1,
				TotalItems:  25,
				Pages:       []int{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewView(tt.total, tt.page, tt.limit, DefaultMaxVisible)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Contains", func(t *testing.T) {
		v := NewView(100, 5, 10, DefaultMaxVisible)
		assert.True(t, v.Contains(3))
		assert.False(t, v.Contains(9))
	})
}

package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagesIsCeilOfTotalOverLimit(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		pages int
	}{
		{0, 50, 0},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{101, 10, 11},
	}

	for _, tt := range tests {
		p := NewPagination(1, tt.limit, tt.total)
		assert.Equal(t, tt.pages, p.Pages, "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestValidateClampsParams(t *testing.T) {
	p := &PaginationParams{Page: 0, Limit: 0}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)

	p = &PaginationParams{Page: 3, Limit: 10_000}
	p.Validate()
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 2*MaxLimit, p.Offset())
}

func TestNewPaginatedResultNeverNil(t *testing.T) {
	res := NewPaginatedResult[int](nil, NewPagination(1, 50, 0))
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}
